package model

import "strings"

// RecordFilter holds criteria for querying records. A zero filter matches
// everything of the given kind; empty string fields are ignored.
type RecordFilter struct {
	Kind       Kind   `json:"kind,omitempty"`
	PipelineID string `json:"pipeline_id,omitempty"`
	StageID    string `json:"stage_id,omitempty"`
	Source     string `json:"source,omitempty"`
	Category   string `json:"category,omitempty"`
	Status     string `json:"status,omitempty"`
	Client     string `json:"client,omitempty"`
	Priority   *int   `json:"priority,omitempty"`
	Search     string `json:"search,omitempty"` // substring match on title/description
	Sort       string `json:"sort,omitempty"`   // e.g. "-priority", "created_at"; prefix "-" = descending
	Limit      int    `json:"limit,omitempty"`
	Offset     int    `json:"offset,omitempty"`
}

// Matches reports whether a record satisfies every set criterion of the
// filter. Limit, Offset, and Sort are pagination concerns and ignored here.
func (f RecordFilter) Matches(r *Record) bool {
	if f.Kind != "" && r.Kind != f.Kind {
		return false
	}
	if f.PipelineID != "" && r.PipelineID != f.PipelineID {
		return false
	}
	if f.StageID != "" && r.StageID != f.StageID {
		return false
	}
	if f.Source != "" && r.Source != f.Source {
		return false
	}
	if f.Category != "" && r.Category != f.Category {
		return false
	}
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if f.Client != "" && r.Client != f.Client {
		return false
	}
	if f.Priority != nil && r.Priority != *f.Priority {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(r.Title), needle) &&
			!strings.Contains(strings.ToLower(r.Description), needle) {
			return false
		}
	}
	return true
}
