package registry

import "github.com/palak-ardeshna/crmd/internal/model"

// Option is a pipeline presented for selection. Disabled options remain
// visible with an explanatory reason; the presentation layer decides how to
// render them.
type Option struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Disabled       bool   `json:"disabled"`
	DisabledReason string `json:"disabled_reason,omitempty"`
}

// PipelineSet is a read-only view over the loaded pipelines, paired with the
// stage view that decides per-kind usability.
type PipelineSet struct {
	pipelines []model.Pipeline
	stages    *StageSet
}

// NewPipelineSet builds a view over the given pipelines and stages.
func NewPipelineSet(pipelines []model.Pipeline, stages *StageSet) *PipelineSet {
	return &PipelineSet{pipelines: pipelines, stages: stages}
}

// ListUsable returns every pipeline as a selection option for the given
// record kind: pipelines with a usable default stage first, the rest after,
// disabled with a reason. Input order is preserved within each group.
func (p *PipelineSet) ListUsable(kind model.Kind) []Option {
	var usable, disabled []Option
	for _, pl := range p.pipelines {
		if p.stages.HasUsableDefault(pl.ID, kind) {
			usable = append(usable, Option{ID: pl.ID, Name: pl.Name})
			continue
		}
		disabled = append(disabled, Option{
			ID:             pl.ID,
			Name:           pl.Name,
			Disabled:       true,
			DisabledReason: "no default " + kind.String() + " stage",
		})
	}
	return append(usable, disabled...)
}

// CheckDelete refuses deletion of protected pipelines with
// *ProtectedResourceError. It is evaluated locally, before any network call.
func (p *PipelineSet) CheckDelete(id string) error {
	for _, pl := range p.pipelines {
		if pl.ID != id {
			continue
		}
		if pl.IsProtected() {
			return &ProtectedResourceError{ID: pl.ID, Name: pl.Name}
		}
		return nil
	}
	return nil
}

// IDs returns the pipeline ids in input order, the candidate set fed to
// NextSelection when a pipeline is deleted.
func (p *PipelineSet) IDs() []string {
	ids := make([]string, len(p.pipelines))
	for i, pl := range p.pipelines {
		ids[i] = pl.ID
	}
	return ids
}
