// Package registry provides pure, side-effect-free views over the loaded
// pipeline and stage collections: ordered per-kind stage sequences, default
// stage lookup, pipeline usability, stage auto-resolution at submit time,
// and the next-selection rule applied after deletions.
package registry

import (
	"sort"

	"github.com/palak-ardeshna/crmd/internal/model"
)

// StageSet is a read-only view over a loaded stage collection. It holds no
// state beyond the slice it was built from and can be rebuilt on demand.
type StageSet struct {
	stages []model.Stage
}

// NewStageSet builds a view over the given stages. The input slice is not
// copied; callers must not mutate it while the view is in use.
func NewStageSet(stages []model.Stage) *StageSet {
	return &StageSet{stages: stages}
}

// For returns the stages belonging to the (pipeline, kind) partition,
// ordered by Order ascending with ID as a deterministic tie-break.
func (s *StageSet) For(pipelineID string, kind model.Kind) []model.Stage {
	var out []model.Stage
	for _, st := range s.stages {
		if st.PipelineID == pipelineID && st.Kind == kind {
			out = append(out, st)
		}
	}
	sortStages(out)
	return out
}

// Default returns the default stage for the (pipeline, kind) partition.
// If the loaded data carries more than one default, the one with the lowest
// order (then lowest ID) wins, so the answer is deterministic.
func (s *StageSet) Default(pipelineID string, kind model.Kind) (model.Stage, bool) {
	var defaults []model.Stage
	for _, st := range s.stages {
		if st.PipelineID == pipelineID && st.Kind == kind && st.IsDefault {
			defaults = append(defaults, st)
		}
	}
	if len(defaults) == 0 {
		return model.Stage{}, false
	}
	sortStages(defaults)
	return defaults[0], true
}

// HasUsableDefault reports whether the pipeline can be offered for the given
// kind. It is true exactly when Default returns a stage.
func (s *StageSet) HasUsableDefault(pipelineID string, kind model.Kind) bool {
	_, ok := s.Default(pipelineID, kind)
	return ok
}

// Resolve picks the stage a record lands in when its form is submitted
// without an explicit stage. The fallback order is strict and total:
//
//  1. the default stage for (pipeline, kind)
//  2. any stage for (pipeline, kind), first by order
//  3. any stage in the pipeline regardless of kind
//  4. any stage anywhere with matching kind
//  5. the first stage in the entire collection
//
// Only a completely empty stage collection fails, with *NoStageAvailableError.
func (s *StageSet) Resolve(pipelineID string, kind model.Kind) (model.Stage, error) {
	if st, ok := s.Default(pipelineID, kind); ok {
		return st, nil
	}
	if partition := s.For(pipelineID, kind); len(partition) > 0 {
		return partition[0], nil
	}
	var inPipeline []model.Stage
	for _, st := range s.stages {
		if st.PipelineID == pipelineID {
			inPipeline = append(inPipeline, st)
		}
	}
	if len(inPipeline) > 0 {
		sortStages(inPipeline)
		return inPipeline[0], nil
	}
	var ofKind []model.Stage
	for _, st := range s.stages {
		if st.Kind == kind {
			ofKind = append(ofKind, st)
		}
	}
	if len(ofKind) > 0 {
		sortStages(ofKind)
		return ofKind[0], nil
	}
	if len(s.stages) > 0 {
		all := make([]model.Stage, len(s.stages))
		copy(all, s.stages)
		sortStages(all)
		return all[0], nil
	}
	return model.Stage{}, &NoStageAvailableError{PipelineID: pipelineID, Kind: kind.String()}
}

// ValidatePipelineChange checks a user-driven pipeline change on a form,
// before the change is committed. A pipeline without a usable default for
// the record's kind is rejected with *NoDefaultStageError and the form's
// pipeline field must revert; otherwise the stage the form should move to
// is returned.
func (s *StageSet) ValidatePipelineChange(pipelineID string, kind model.Kind) (model.Stage, error) {
	st, ok := s.Default(pipelineID, kind)
	if !ok {
		return model.Stage{}, &NoDefaultStageError{PipelineID: pipelineID, Kind: kind.String()}
	}
	return st, nil
}

func sortStages(stages []model.Stage) {
	sort.SliceStable(stages, func(i, j int) bool {
		if stages[i].Order != stages[j].Order {
			return stages[i].Order < stages[j].Order
		}
		return stages[i].ID < stages[j].ID
	})
}
