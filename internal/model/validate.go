package model

import (
	"fmt"
	"strings"
)

// ValidationError holds a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation failure on a named field.
type FieldError struct {
	Field   string
	Message string
}

// Error formats the validation error as a semicolon-separated list of field messages.
func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// HasErrors reports whether the validation error contains any field errors.
func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

// ValidateRecord checks a Record for constraint violations.
// It returns a *ValidationError if any rules fail, or nil if the record is valid.
func ValidateRecord(r *Record) error {
	var ve ValidationError

	title := strings.TrimSpace(r.Title)
	if title == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "title", Message: "is required"})
	} else if len([]rune(title)) > 500 {
		ve.Errors = append(ve.Errors, FieldError{Field: "title", Message: "must be 500 characters or fewer"})
	}

	if !r.Kind.IsValid() {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "kind",
			Message: fmt.Sprintf("invalid value %q", r.Kind),
		})
	}

	if r.Priority < 0 || r.Priority > 4 {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "priority",
			Message: fmt.Sprintf("must be between 0 and 4, got %d", r.Priority),
		})
	}

	// A stage reference is only meaningful relative to a pipeline.
	if r.StageID != "" && r.PipelineID == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "stage_id", Message: "requires pipeline_id"})
	}

	if ve.HasErrors() {
		return &ve
	}
	return nil
}

// ValidatePipeline checks a Pipeline for constraint violations.
func ValidatePipeline(p *Pipeline) error {
	var ve ValidationError

	name := strings.TrimSpace(p.Name)
	if name == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "name", Message: "is required"})
	} else if len([]rune(name)) > 200 {
		ve.Errors = append(ve.Errors, FieldError{Field: "name", Message: "must be 200 characters or fewer"})
	}

	if ve.HasErrors() {
		return &ve
	}
	return nil
}

// ValidateStage checks a Stage for constraint violations.
func ValidateStage(s *Stage) error {
	var ve ValidationError

	if strings.TrimSpace(s.Name) == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "name", Message: "is required"})
	}
	if s.PipelineID == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "pipeline_id", Message: "is required"})
	}
	if !s.Kind.IsValid() {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "kind",
			Message: fmt.Sprintf("invalid value %q", s.Kind),
		})
	}
	if s.Order < 0 {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "order",
			Message: fmt.Sprintf("must not be negative, got %d", s.Order),
		})
	}

	if ve.HasErrors() {
		return &ve
	}
	return nil
}

// ValidateFilterTag checks a FilterTag for constraint violations.
func ValidateFilterTag(t *FilterTag) error {
	var ve ValidationError

	if strings.TrimSpace(t.Name) == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "name", Message: "is required"})
	}
	if !t.Kind.IsValid() {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "kind",
			Message: fmt.Sprintf("invalid value %q", t.Kind),
		})
	}

	if ve.HasErrors() {
		return &ve
	}
	return nil
}
