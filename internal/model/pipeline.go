package model

import "time"

// SystemCreator marks pipelines and stages provisioned by the system.
// System-owned rows cannot be deleted through the API.
const SystemCreator = "SYSTEM"

// Pipeline is a named container grouping ordered stages. A single pipeline
// carries independent stage sequences per record kind.
type Pipeline struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	CreatedBy string    `json:"created_by,omitempty"`
}

// IsProtected reports whether the pipeline may not be deleted.
// Protection is decided by ownership alone; reserved display names such as
// "Sales" or "Marketing" are not load-bearing.
func (p *Pipeline) IsProtected() bool {
	return p.CreatedBy == SystemCreator
}

// Stage is a single step within a pipeline, scoped to one record kind.
// Order is a dense integer within the (pipeline, kind) partition; at most
// one stage per partition should have IsDefault set.
type Stage struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	PipelineID string    `json:"pipeline_id"`
	Kind       Kind      `json:"kind"`
	Order      int       `json:"order"`
	IsDefault  bool      `json:"is_default"`
	CreatedAt  time.Time `json:"created_at"`
	CreatedBy  string    `json:"created_by,omitempty"`
}

// FilterKind identifies which lookup collection a filter tag belongs to.
type FilterKind string

const (
	FilterSource   FilterKind = "source"
	FilterCategory FilterKind = "category"
	FilterStatus   FilterKind = "status"
)

// String returns the string representation of the filter kind.
func (k FilterKind) String() string {
	return string(k)
}

// IsValid checks whether the filter kind is a known value.
func (k FilterKind) IsValid() bool {
	switch k {
	case FilterSource, FilterCategory, FilterStatus:
		return true
	}
	return false
}

// FilterTag is a flat tag-like lookup (source, category, or status) reused
// across records. Tags are not hierarchical.
type FilterTag struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Kind      FilterKind `json:"kind"`
	CreatedAt time.Time  `json:"created_at"`
	CreatedBy string     `json:"created_by,omitempty"`
}
