package model

import (
	"encoding/json"
	"time"
)

// Kind identifies which CRM collection a record belongs to.
type Kind string

const (
	KindLead     Kind = "lead"
	KindProject  Kind = "project"
	KindProposal Kind = "proposal"
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	return string(k)
}

// IsValid checks whether the kind is a known value.
func (k Kind) IsValid() bool {
	switch k {
	case KindLead, KindProject, KindProposal:
		return true
	}
	return false
}

// Record is the core CRM entity (lead, project, or proposal).
// The three kinds share one shape: a title, a pipeline/stage position,
// flat lookup references (source, category, status), and free-form
// extra fields. Kind-specific attributes live in Fields.
type Record struct {
	ID         string `json:"id"`
	Kind       Kind   `json:"kind"`
	Title      string `json:"title"`
	PipelineID string `json:"pipeline_id,omitempty"`
	StageID    string `json:"stage_id,omitempty"`

	Client   string  `json:"client,omitempty"`
	Source   string  `json:"source,omitempty"`
	Category string  `json:"category,omitempty"`
	Status   string  `json:"status,omitempty"`
	Priority int     `json:"priority"`
	Value    float64 `json:"value,omitempty"`

	Description string          `json:"description,omitempty"`
	Fields      json.RawMessage `json:"fields,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	CreatedBy string    `json:"created_by,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a deep copy of the record. Fields is copied byte-for-byte
// so mutations of the clone never alias the original.
func (r *Record) Clone() *Record {
	c := *r
	if r.Fields != nil {
		c.Fields = append(json.RawMessage(nil), r.Fields...)
	}
	return &c
}
