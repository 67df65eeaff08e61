package server

import (
	"encoding/json"
	"net/http"
)

// NewHTTPHandler returns an http.Handler with all routes registered.
// When authToken is non-empty, requests (except GET /v1/health) must include
// a valid Authorization: Bearer <token> header.
func (s *CRMServer) NewHTTPHandler(authToken string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/records", s.handleCreateRecord)
	mux.HandleFunc("GET /v1/records", s.handleListRecords)
	mux.HandleFunc("GET /v1/records/{id}", s.handleGetRecord)
	mux.HandleFunc("PATCH /v1/records/{id}", s.handleUpdateRecord)
	mux.HandleFunc("DELETE /v1/records/{id}", s.handleDeleteRecord)
	mux.HandleFunc("POST /v1/pipelines", s.handleCreatePipeline)
	mux.HandleFunc("GET /v1/pipelines", s.handleListPipelines)
	mux.HandleFunc("DELETE /v1/pipelines/{id}", s.handleDeletePipeline)
	mux.HandleFunc("POST /v1/stages", s.handleCreateStage)
	mux.HandleFunc("GET /v1/stages", s.handleListStages)
	mux.HandleFunc("PATCH /v1/stages/{id}", s.handleUpdateStage)
	mux.HandleFunc("DELETE /v1/stages/{id}", s.handleDeleteStage)
	mux.HandleFunc("POST /v1/filters", s.handleCreateFilterTag)
	mux.HandleFunc("GET /v1/filters", s.handleListFilterTags)
	mux.HandleFunc("DELETE /v1/filters/{id}", s.handleDeleteFilterTag)
	mux.HandleFunc("GET /v1/health", s.handleHealth)
	return AuthMiddleware(authToken, mux)
}

// handleHealth handles GET /v1/health.
func (s *CRMServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
