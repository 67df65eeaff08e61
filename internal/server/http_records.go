package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/palak-ardeshna/crmd/internal/events"
	"github.com/palak-ardeshna/crmd/internal/model"
)

// handleCreateRecord handles POST /v1/records.
func (s *CRMServer) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	var in createRecordInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	rec, err := s.createRecord(r.Context(), in)
	if err != nil {
		var ie inputError
		if errors.As(err, &ie) {
			writeError(w, http.StatusBadRequest, ie.Error())
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusCreated, rec)
}

// handleListRecords handles GET /v1/records.
func (s *CRMServer) handleListRecords(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := model.RecordFilter{
		Kind:       model.Kind(q.Get("kind")),
		PipelineID: q.Get("pipeline"),
		StageID:    q.Get("stage"),
		Source:     q.Get("source"),
		Category:   q.Get("category"),
		Status:     q.Get("status"),
		Client:     q.Get("client"),
		Search:     q.Get("search"),
		Sort:       q.Get("sort"),
	}

	if v := q.Get("priority"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Priority = &n
		}
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}

	records, total, err := s.store.ListRecords(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list records")
		return
	}

	// Ensure records is never null in JSON output.
	if records == nil {
		records = []*model.Record{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"records": records,
		"total":   total,
	})
}

// handleGetRecord handles GET /v1/records/{id}.
func (s *CRMServer) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	rec, err := s.store.GetRecord(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "record not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get record")
		return
	}
	if rec == nil {
		writeError(w, http.StatusNotFound, "record not found")
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

// handleUpdateRecord handles PATCH /v1/records/{id}.
func (s *CRMServer) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	var in updateRecordInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	rec, err := s.updateRecord(r.Context(), id, in)
	if err != nil {
		var ie inputError
		if errors.As(err, &ie) {
			writeError(w, http.StatusBadRequest, ie.Error())
			return
		}
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "record not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

// handleDeleteRecord handles DELETE /v1/records/{id}.
func (s *CRMServer) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	rec, err := s.store.GetRecord(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "record not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get record")
		return
	}
	if rec == nil {
		writeError(w, http.StatusNotFound, "record not found")
		return
	}

	if err := s.store.DeleteRecord(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "record not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete record")
		return
	}

	s.publish(r.Context(), events.TopicRecordDeleted, events.RecordDeleted{RecordID: id, Kind: rec.Kind})

	w.WriteHeader(http.StatusNoContent)
}
