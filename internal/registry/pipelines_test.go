package registry

import (
	"errors"
	"testing"

	"github.com/palak-ardeshna/crmd/internal/model"
)

func testPipelineSet() *PipelineSet {
	stages := NewStageSet([]model.Stage{
		{ID: "st-1", PipelineID: "pl-sales", Kind: model.KindLead, Order: 0, IsDefault: true},
		{ID: "st-2", PipelineID: "pl-custom", Kind: model.KindLead, Order: 0},
	})
	pipelines := []model.Pipeline{
		{ID: "pl-sales", Name: "Sales", CreatedBy: model.SystemCreator},
		{ID: "pl-custom", Name: "Outbound", CreatedBy: "palak"},
	}
	return NewPipelineSet(pipelines, stages)
}

func TestPipelineSet_ListUsable(t *testing.T) {
	opts := testPipelineSet().ListUsable(model.KindLead)
	if len(opts) != 2 {
		t.Fatalf("ListUsable() returned %d options, want 2 (disabled stay visible)", len(opts))
	}
	if opts[0].ID != "pl-sales" || opts[0].Disabled {
		t.Errorf("opts[0] = %+v, want usable pl-sales first", opts[0])
	}
	if opts[1].ID != "pl-custom" || !opts[1].Disabled {
		t.Errorf("opts[1] = %+v, want disabled pl-custom after", opts[1])
	}
	if opts[1].DisabledReason == "" {
		t.Error("disabled option has no reason")
	}
}

func TestPipelineSet_ListUsable_OtherKind(t *testing.T) {
	// Neither pipeline has a project default, so both come back disabled.
	opts := testPipelineSet().ListUsable(model.KindProject)
	for _, o := range opts {
		if !o.Disabled {
			t.Errorf("option %s should be disabled for project kind", o.ID)
		}
	}
}

func TestPipelineSet_CheckDelete(t *testing.T) {
	p := testPipelineSet()

	err := p.CheckDelete("pl-sales")
	var pre *ProtectedResourceError
	if !errors.As(err, &pre) {
		t.Fatalf("CheckDelete(system pipeline) = %v, want *ProtectedResourceError", err)
	}
	if pre.ID != "pl-sales" || pre.Name != "Sales" {
		t.Errorf("ProtectedResourceError = %+v", pre)
	}

	if err := p.CheckDelete("pl-custom"); err != nil {
		t.Errorf("CheckDelete(user pipeline) = %v, want nil", err)
	}
	if err := p.CheckDelete("pl-missing"); err != nil {
		t.Errorf("CheckDelete(unknown id) = %v, want nil", err)
	}
}

func TestPipelineSet_IDs(t *testing.T) {
	ids := testPipelineSet().IDs()
	if len(ids) != 2 || ids[0] != "pl-sales" || ids[1] != "pl-custom" {
		t.Errorf("IDs() = %v, want input order preserved", ids)
	}
}
