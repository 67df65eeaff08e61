package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/palak-ardeshna/crmd/internal/events"
	"github.com/palak-ardeshna/crmd/internal/idgen"
	"github.com/palak-ardeshna/crmd/internal/model"
)

// handleCreateFilterTag handles POST /v1/filters.
func (s *CRMServer) handleCreateFilterTag(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name      string           `json:"name"`
		Kind      model.FilterKind `json:"kind"`
		CreatedBy string           `json:"created_by"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	id, err := idgen.Generate(idgen.PrefixFilter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate ID")
		return
	}

	tag := &model.FilterTag{
		ID:        id,
		Name:      in.Name,
		Kind:      in.Kind,
		CreatedAt: time.Now().UTC(),
		CreatedBy: in.CreatedBy,
	}
	if err := model.ValidateFilterTag(tag); err != nil {
		writeError(w, http.StatusBadRequest, "invalid filter: "+err.Error())
		return
	}

	if err := s.store.CreateFilterTag(r.Context(), tag); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create filter")
		return
	}

	s.publish(r.Context(), events.TopicFilterCreated, events.FilterCreated{Filter: tag})

	writeJSON(w, http.StatusCreated, tag)
}

// handleListFilterTags handles GET /v1/filters.
func (s *CRMServer) handleListFilterTags(w http.ResponseWriter, r *http.Request) {
	kind := model.FilterKind(r.URL.Query().Get("kind"))
	tags, err := s.store.ListFilterTags(r.Context(), kind)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list filters")
		return
	}

	if tags == nil {
		tags = []model.FilterTag{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"filters": tags})
}

// handleDeleteFilterTag handles DELETE /v1/filters/{id}.
func (s *CRMServer) handleDeleteFilterTag(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	tag, err := s.store.GetFilterTag(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "filter not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get filter")
		return
	}

	if err := s.store.DeleteFilterTag(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "filter not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete filter")
		return
	}

	s.publish(r.Context(), events.TopicFilterDeleted, events.FilterDeleted{
		FilterID: tag.ID,
		Kind:     tag.Kind,
	})

	w.WriteHeader(http.StatusNoContent)
}
