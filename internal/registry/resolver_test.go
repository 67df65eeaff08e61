package registry

import (
	"testing"

	"github.com/palak-ardeshna/crmd/internal/model"
)

func TestNextSelection(t *testing.T) {
	for _, tc := range []struct {
		name       string
		candidates []string
		deleted    string
		want       string
		wantOK     bool
	}{
		{"single candidate clears", []string{"A"}, "A", "", false},
		{"delete first picks next", []string{"A", "B", "C"}, "A", "B", true},
		{"delete middle picks item at same index", []string{"A", "B", "C"}, "B", "C", true},
		{"delete last wraps to first", []string{"A", "B", "C"}, "C", "A", true},
		{"two items delete second wraps", []string{"A", "B"}, "B", "A", true},
		{"deleted not in set falls back to first", []string{"A", "B"}, "Z", "A", true},
		{"empty candidates clears", nil, "A", "", false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := NextSelection(tc.candidates, tc.deleted)
			if got != tc.want || ok != tc.wantOK {
				t.Errorf("NextSelection(%v, %q) = %q, %v; want %q, %v",
					tc.candidates, tc.deleted, got, ok, tc.want, tc.wantOK)
			}
		})
	}
}

// Deleting the selected pipeline moves the form to the next pipeline and
// re-resolves the stage against it, never leaving a stage owned by the
// deleted pipeline.
func TestStageSet_Reselect(t *testing.T) {
	stages := NewStageSet([]model.Stage{
		{ID: "st-1", PipelineID: "pl-1", Kind: model.KindLead, Order: 0, IsDefault: true},
		{ID: "st-2", PipelineID: "pl-2", Kind: model.KindLead, Order: 0, IsDefault: true},
		{ID: "st-3", PipelineID: "pl-3", Kind: model.KindLead, Order: 0},
	})

	sel := stages.Reselect([]string{"pl-1", "pl-2", "pl-3"}, "pl-1", model.KindLead)
	if sel.PipelineID != "pl-2" || sel.StageID != "st-2" {
		t.Errorf("Reselect() = %+v, want pipeline pl-2 stage st-2", sel)
	}

	// New pipeline has stages but no default: first by order is used.
	sel = stages.Reselect([]string{"pl-2", "pl-3"}, "pl-2", model.KindLead)
	if sel.PipelineID != "pl-3" || sel.StageID != "st-3" {
		t.Errorf("Reselect() = %+v, want pipeline pl-3 stage st-3", sel)
	}

	// Wrap rule: deleting the last candidate selects the first remaining.
	sel = stages.Reselect([]string{"pl-1", "pl-2", "pl-3"}, "pl-3", model.KindLead)
	if sel.PipelineID != "pl-1" || sel.StageID != "st-1" {
		t.Errorf("Reselect() wrap = %+v, want pipeline pl-1 stage st-1", sel)
	}

	// No remaining pipeline clears both fields.
	sel = stages.Reselect([]string{"pl-1"}, "pl-1", model.KindLead)
	if sel.PipelineID != "" || sel.StageID != "" {
		t.Errorf("Reselect() with no remaining = %+v, want cleared", sel)
	}

	// New pipeline with an empty partition clears the stage only.
	sel = stages.Reselect([]string{"pl-1", "pl-9"}, "pl-1", model.KindLead)
	if sel.PipelineID != "pl-9" || sel.StageID != "" {
		t.Errorf("Reselect() into empty partition = %+v, want pl-9 with cleared stage", sel)
	}
}
