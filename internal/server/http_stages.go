package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/palak-ardeshna/crmd/internal/events"
	"github.com/palak-ardeshna/crmd/internal/idgen"
	"github.com/palak-ardeshna/crmd/internal/model"
	"github.com/palak-ardeshna/crmd/internal/registry"
	"github.com/palak-ardeshna/crmd/internal/store"
)

// handleCreateStage handles POST /v1/stages. Marking the new stage default
// clears any previous default in the same (pipeline, kind) partition inside
// the same transaction, so at most one default survives any write.
func (s *CRMServer) handleCreateStage(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name       string     `json:"name"`
		PipelineID string     `json:"pipeline_id"`
		Kind       model.Kind `json:"kind"`
		Order      int        `json:"order"`
		IsDefault  bool       `json:"is_default"`
		CreatedBy  string     `json:"created_by"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if _, err := s.store.GetPipeline(r.Context(), in.PipelineID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusBadRequest, "pipeline not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get pipeline")
		return
	}

	id, err := idgen.Generate(idgen.PrefixStage)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate ID")
		return
	}

	st := &model.Stage{
		ID:         id,
		Name:       in.Name,
		PipelineID: in.PipelineID,
		Kind:       in.Kind,
		Order:      in.Order,
		IsDefault:  in.IsDefault,
		CreatedAt:  time.Now().UTC(),
		CreatedBy:  in.CreatedBy,
	}
	if err := model.ValidateStage(st); err != nil {
		writeError(w, http.StatusBadRequest, "invalid stage: "+err.Error())
		return
	}

	err = s.store.RunInTransaction(r.Context(), func(tx store.Store) error {
		if st.IsDefault {
			if err := tx.ClearDefaultStage(r.Context(), st.PipelineID, st.Kind); err != nil {
				return fmt.Errorf("clear previous default: %w", err)
			}
		}
		return tx.CreateStage(r.Context(), st)
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create stage")
		return
	}

	s.publish(r.Context(), events.TopicStageCreated, events.StageCreated{Stage: st})

	writeJSON(w, http.StatusCreated, st)
}

// handleListStages handles GET /v1/stages.
func (s *CRMServer) handleListStages(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	stages, err := s.store.ListStages(r.Context(), q.Get("pipeline"), model.Kind(q.Get("kind")))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list stages")
		return
	}

	if stages == nil {
		stages = []model.Stage{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"stages": stages})
}

// handleUpdateStage handles PATCH /v1/stages/{id}.
func (s *CRMServer) handleUpdateStage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	var in struct {
		Name      *string `json:"name,omitempty"`
		Order     *int    `json:"order,omitempty"`
		IsDefault *bool   `json:"is_default,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	st, err := s.store.GetStage(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "stage not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get stage")
		return
	}

	if in.Name != nil {
		st.Name = *in.Name
	}
	if in.Order != nil {
		st.Order = *in.Order
	}
	becameDefault := in.IsDefault != nil && *in.IsDefault && !st.IsDefault
	if in.IsDefault != nil {
		st.IsDefault = *in.IsDefault
	}

	if err := model.ValidateStage(st); err != nil {
		writeError(w, http.StatusBadRequest, "invalid stage: "+err.Error())
		return
	}

	err = s.store.RunInTransaction(r.Context(), func(tx store.Store) error {
		if becameDefault {
			if err := tx.ClearDefaultStage(r.Context(), st.PipelineID, st.Kind); err != nil {
				return fmt.Errorf("clear previous default: %w", err)
			}
		}
		return tx.UpdateStage(r.Context(), st)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "stage not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update stage")
		return
	}

	s.publish(r.Context(), events.TopicStageUpdated, events.StageUpdated{Stage: st})

	writeJSON(w, http.StatusOK, st)
}

// handleDeleteStage handles DELETE /v1/stages/{id}.
func (s *CRMServer) handleDeleteStage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	st, err := s.store.GetStage(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "stage not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get stage")
		return
	}
	if st.CreatedBy == model.SystemCreator {
		writeError(w, http.StatusForbidden, (&registry.ProtectedResourceError{ID: st.ID, Name: st.Name}).Error())
		return
	}

	if err := s.store.DeleteStage(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "stage not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete stage")
		return
	}

	s.publish(r.Context(), events.TopicStageDeleted, events.StageDeleted{
		StageID:    st.ID,
		PipelineID: st.PipelineID,
	})

	w.WriteHeader(http.StatusNoContent)
}
