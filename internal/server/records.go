package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/palak-ardeshna/crmd/internal/events"
	"github.com/palak-ardeshna/crmd/internal/idgen"
	"github.com/palak-ardeshna/crmd/internal/model"
	"github.com/palak-ardeshna/crmd/internal/registry"
)

// createRecordInput holds transport-agnostic parameters for creating a record.
type createRecordInput struct {
	Kind        string          `json:"kind"`
	Title       string          `json:"title"`
	PipelineID  string          `json:"pipeline_id"`
	StageID     string          `json:"stage_id"`
	Client      string          `json:"client"`
	Source      string          `json:"source"`
	Category    string          `json:"category"`
	Status      string          `json:"status"`
	Priority    int             `json:"priority"`
	Value       float64         `json:"value"`
	Description string          `json:"description"`
	CreatedBy   string          `json:"created_by"`
	Fields      json.RawMessage `json:"fields"`
}

// idPrefix maps a record kind to its ID prefix.
func idPrefix(kind model.Kind) string {
	switch kind {
	case model.KindProject:
		return idgen.PrefixProject
	case model.KindProposal:
		return idgen.PrefixProposal
	default:
		return idgen.PrefixLead
	}
}

// stageSet loads every stage and wraps it in a registry view.
func (s *CRMServer) stageSet(ctx context.Context) (*registry.StageSet, error) {
	stages, err := s.store.ListStages(ctx, "", "")
	if err != nil {
		return nil, fmt.Errorf("load stages: %w", err)
	}
	return registry.NewStageSet(stages), nil
}

// createRecord validates input, resolves the landing stage, persists the
// record, and publishes a RecordCreated event. When no explicit stage is
// given (or the given stage is gone) the registry fallback chain decides
// where the record lands; the pipeline follows the chosen stage.
func (s *CRMServer) createRecord(ctx context.Context, in createRecordInput) (*model.Record, error) {
	if in.Title == "" {
		return nil, inputError("title is required")
	}
	kind := model.Kind(in.Kind)
	if !kind.IsValid() {
		return nil, inputError("unknown record kind " + in.Kind)
	}

	set, err := s.stageSet(ctx)
	if err != nil {
		return nil, err
	}

	stageID, pipelineID := in.StageID, in.PipelineID
	if st, ok := findStage(set, kind, pipelineID, stageID); ok {
		stageID, pipelineID = st.ID, st.PipelineID
	} else {
		st, err := set.Resolve(pipelineID, kind)
		if err != nil {
			var nse *registry.NoStageAvailableError
			if errors.As(err, &nse) {
				return nil, inputError("no stage available: " + err.Error())
			}
			return nil, err
		}
		stageID, pipelineID = st.ID, st.PipelineID
	}

	id, err := idgen.Generate(idPrefix(kind))
	if err != nil {
		return nil, fmt.Errorf("failed to generate ID: %w", err)
	}

	now := time.Now().UTC()
	rec := &model.Record{
		ID:          id,
		Kind:        kind,
		Title:       in.Title,
		PipelineID:  pipelineID,
		StageID:     stageID,
		Client:      in.Client,
		Source:      in.Source,
		Category:    in.Category,
		Status:      in.Status,
		Priority:    in.Priority,
		Value:       in.Value,
		Description: in.Description,
		CreatedAt:   now,
		CreatedBy:   in.CreatedBy,
		UpdatedAt:   now,
	}
	if len(in.Fields) > 0 {
		rec.Fields = in.Fields
	}

	if err := model.ValidateRecord(rec); err != nil {
		return nil, inputError("invalid record: " + err.Error())
	}

	if err := s.store.CreateRecord(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to create record: %w", err)
	}

	s.publish(ctx, events.TopicRecordCreated, events.RecordCreated{Record: rec})

	return rec, nil
}

// findStage looks up an explicitly requested stage. The request only counts
// when the stage still exists in the (pipeline, kind) partition it was
// submitted against; otherwise the fallback chain takes over.
func findStage(set *registry.StageSet, kind model.Kind, pipelineID, stageID string) (model.Stage, bool) {
	if stageID == "" {
		return model.Stage{}, false
	}
	for _, st := range set.For(pipelineID, kind) {
		if st.ID == stageID {
			return st, true
		}
	}
	return model.Stage{}, false
}

// updateRecordInput holds transport-agnostic parameters for updating a record.
// Pointer fields indicate optionality: nil means "don't change".
type updateRecordInput struct {
	Title       *string         `json:"title,omitempty"`
	PipelineID  *string         `json:"pipeline_id,omitempty"`
	StageID     *string         `json:"stage_id,omitempty"`
	Client      *string         `json:"client,omitempty"`
	Source      *string         `json:"source,omitempty"`
	Category    *string         `json:"category,omitempty"`
	Status      *string         `json:"status,omitempty"`
	Priority    *int            `json:"priority,omitempty"`
	Value       *float64        `json:"value,omitempty"`
	Description *string         `json:"description,omitempty"`
	Fields      json.RawMessage `json:"fields,omitempty"`
}

// updateRecord applies partial updates to an existing record, persists them,
// and publishes a RecordUpdated event. Returns inputError for validation
// failures. A pipeline change without an explicit stage moves the record to
// the new pipeline's default stage for its kind and is rejected when that
// pipeline carries no usable default.
func (s *CRMServer) updateRecord(ctx context.Context, id string, in updateRecordInput) (*model.Record, error) {
	rec, err := s.store.GetRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, sql.ErrNoRows
	}

	changes := make(map[string]any)

	if in.Title != nil {
		rec.Title = *in.Title
		changes["title"] = rec.Title
	}
	if in.Client != nil {
		rec.Client = *in.Client
		changes["client"] = rec.Client
	}
	if in.Source != nil {
		rec.Source = *in.Source
		changes["source"] = rec.Source
	}
	if in.Category != nil {
		rec.Category = *in.Category
		changes["category"] = rec.Category
	}
	if in.Status != nil {
		rec.Status = *in.Status
		changes["status"] = rec.Status
	}
	if in.Priority != nil {
		rec.Priority = *in.Priority
		changes["priority"] = rec.Priority
	}
	if in.Value != nil {
		rec.Value = *in.Value
		changes["value"] = rec.Value
	}
	if in.Description != nil {
		rec.Description = *in.Description
		changes["description"] = rec.Description
	}

	pipelineChanged := in.PipelineID != nil && *in.PipelineID != rec.PipelineID
	if pipelineChanged || in.StageID != nil {
		set, err := s.stageSet(ctx)
		if err != nil {
			return nil, err
		}

		switch {
		case pipelineChanged && in.StageID == nil:
			st, err := set.ValidatePipelineChange(*in.PipelineID, rec.Kind)
			if err != nil {
				return nil, inputError(err.Error())
			}
			rec.PipelineID = *in.PipelineID
			rec.StageID = st.ID
		case in.StageID != nil:
			pipeline := rec.PipelineID
			if in.PipelineID != nil {
				pipeline = *in.PipelineID
			}
			st, ok := findStage(set, rec.Kind, pipeline, *in.StageID)
			if !ok {
				return nil, inputError("stage " + *in.StageID + " not found in pipeline " + pipeline)
			}
			rec.PipelineID = st.PipelineID
			rec.StageID = st.ID
		}
		changes["pipeline_id"] = rec.PipelineID
		changes["stage_id"] = rec.StageID
	}

	if in.Fields != nil {
		// Merge incoming fields into existing fields (patch semantics).
		existing := make(map[string]any)
		if len(rec.Fields) > 0 {
			_ = json.Unmarshal(rec.Fields, &existing)
		}
		var patch map[string]any
		if err := json.Unmarshal(in.Fields, &patch); err == nil {
			for k, v := range patch {
				existing[k] = v
			}
		}
		merged, mergeErr := json.Marshal(existing)
		if mergeErr != nil {
			return nil, fmt.Errorf("failed to merge fields: %w", mergeErr)
		}
		rec.Fields = merged
		changes["fields"] = rec.Fields
	}

	rec.UpdatedAt = time.Now().UTC()

	if err := model.ValidateRecord(rec); err != nil {
		return nil, inputError("invalid record: " + err.Error())
	}

	if err := s.store.UpdateRecord(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to update record: %w", err)
	}

	s.publish(ctx, events.TopicRecordUpdated, events.RecordUpdated{
		Record:  rec,
		Changes: changes,
	})

	return rec, nil
}
