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

// handleCreatePipeline handles POST /v1/pipelines.
func (s *CRMServer) handleCreatePipeline(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name      string `json:"name"`
		CreatedBy string `json:"created_by"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if in.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	id, err := idgen.Generate(idgen.PrefixPipeline)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate ID")
		return
	}

	p := &model.Pipeline{
		ID:        id,
		Name:      in.Name,
		CreatedAt: time.Now().UTC(),
		CreatedBy: in.CreatedBy,
	}
	if err := model.ValidatePipeline(p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid pipeline: "+err.Error())
		return
	}

	if err := s.store.CreatePipeline(r.Context(), p); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create pipeline")
		return
	}

	s.publish(r.Context(), events.TopicPipelineCreated, events.PipelineCreated{Pipeline: p})

	writeJSON(w, http.StatusCreated, p)
}

// handleListPipelines handles GET /v1/pipelines.
func (s *CRMServer) handleListPipelines(w http.ResponseWriter, r *http.Request) {
	pipelines, err := s.store.ListPipelines(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list pipelines")
		return
	}

	if pipelines == nil {
		pipelines = []model.Pipeline{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"pipelines": pipelines})
}

// handleDeletePipeline handles DELETE /v1/pipelines/{id}.
//
// System-owned pipelines are refused with 403. Records on the deleted
// pipeline are moved to a reassignment target: the ?reassign_to= pipeline
// when given, otherwise the next pipeline by the selection rule. Deletion,
// stage cascade, and record reassignment happen in one transaction.
func (s *CRMServer) handleDeletePipeline(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	p, err := s.store.GetPipeline(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "pipeline not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get pipeline")
		return
	}
	if p.IsProtected() {
		writeError(w, http.StatusForbidden, (&registry.ProtectedResourceError{ID: p.ID, Name: p.Name}).Error())
		return
	}

	reassignTo := r.URL.Query().Get("reassign_to")
	if reassignTo != "" {
		if reassignTo == id {
			writeError(w, http.StatusBadRequest, "cannot reassign records to the pipeline being deleted")
			return
		}
		if _, err := s.store.GetPipeline(r.Context(), reassignTo); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				writeError(w, http.StatusBadRequest, "reassignment target pipeline not found")
				return
			}
			writeError(w, http.StatusInternalServerError, "failed to get reassignment target")
			return
		}
	} else {
		pipelines, err := s.store.ListPipelines(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to list pipelines")
			return
		}
		ids := make([]string, 0, len(pipelines))
		for _, pl := range pipelines {
			ids = append(ids, pl.ID)
		}
		reassignTo, _ = registry.NextSelection(ids, id)
	}

	var moved int
	err = s.store.RunInTransaction(r.Context(), func(tx store.Store) error {
		if reassignTo != "" {
			n, err := tx.ReassignRecords(r.Context(), id, reassignTo, "")
			if err != nil {
				return fmt.Errorf("reassign records: %w", err)
			}
			moved = n
		}
		// Stage rows cascade with the pipeline; orphaned records (no target)
		// have pipeline and stage cleared by the FK.
		return tx.DeletePipeline(r.Context(), id)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "pipeline not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete pipeline")
		return
	}

	s.publish(r.Context(), events.TopicPipelineDeleted, events.PipelineDeleted{
		PipelineID:   id,
		ReassignedTo: reassignTo,
		MovedRecords: moved,
	})

	w.WriteHeader(http.StatusNoContent)
}
