package registry

import "github.com/palak-ardeshna/crmd/internal/model"

// NextSelection computes the selection that replaces deletedID when the
// currently selected item of a candidate set is deleted. The rule is the
// same for pipelines, filter tags, and contacts:
//
//   - remaining = candidates minus deletedID
//   - empty remaining clears the selection
//   - otherwise the item at the deleted item's original index is chosen,
//     wrapping to the first item when that index falls off the end
//
// The wrap rule is deliberate: the replacement is reproducible, so the UI
// never jumps to an arbitrary item. The second return is false when the
// selection is cleared.
func NextSelection(candidates []string, deletedID string) (string, bool) {
	idx := -1
	remaining := make([]string, 0, len(candidates))
	for i, c := range candidates {
		if c == deletedID {
			idx = i
			continue
		}
		remaining = append(remaining, c)
	}
	if len(remaining) == 0 {
		return "", false
	}
	if idx < 0 || idx >= len(remaining) {
		idx = 0
	}
	return remaining[idx], true
}

// Selection is the pipeline/stage pair a form currently points at.
type Selection struct {
	PipelineID string `json:"pipeline_id,omitempty"`
	StageID    string `json:"stage_id,omitempty"`
}

// Reselect computes the form selection after a pipeline deletion. The new
// pipeline follows the NextSelection rule over the candidate ids; the stage
// is then re-resolved against the new pipeline so it can never keep pointing
// at a stage owned by the deleted one. When the new pipeline has no stage at
// all for the kind the stage field is cleared and the caller must prompt for
// re-selection.
func (s *StageSet) Reselect(candidates []string, deletedPipelineID string, kind model.Kind) Selection {
	next, ok := NextSelection(candidates, deletedPipelineID)
	if !ok {
		return Selection{}
	}
	sel := Selection{PipelineID: next}
	if st, ok := s.Default(next, kind); ok {
		sel.StageID = st.ID
	} else if partition := s.For(next, kind); len(partition) > 0 {
		sel.StageID = partition[0].ID
	}
	return sel
}
