package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/palak-ardeshna/crmd/internal/model"
)

// HTTPClient implements CRMClient using the crmd HTTP/JSON REST API.
type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewHTTPClient creates a new HTTP client targeting the given base URL
// (e.g. "http://localhost:8080"). When token is non-empty, an Authorization
// header is set on every request.
func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{},
	}
}

// Close is a no-op for the HTTP client.
func (c *HTTPClient) Close() error { return nil }

// --- Record CRUD ---

func (c *HTTPClient) CreateRecord(ctx context.Context, req *CreateRecordRequest) (*model.Record, error) {
	var rec model.Record
	if err := c.doJSON(ctx, http.MethodPost, "/v1/records", req, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *HTTPClient) GetRecord(ctx context.Context, id string) (*model.Record, error) {
	var rec model.Record
	if err := c.doJSON(ctx, http.MethodGet, "/v1/records/"+url.PathEscape(id), nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *HTTPClient) ListRecords(ctx context.Context, filter model.RecordFilter) (*ListRecordsResponse, error) {
	q := url.Values{}
	if filter.Kind != "" {
		q.Set("kind", filter.Kind.String())
	}
	if filter.PipelineID != "" {
		q.Set("pipeline", filter.PipelineID)
	}
	if filter.StageID != "" {
		q.Set("stage", filter.StageID)
	}
	if filter.Source != "" {
		q.Set("source", filter.Source)
	}
	if filter.Category != "" {
		q.Set("category", filter.Category)
	}
	if filter.Status != "" {
		q.Set("status", filter.Status)
	}
	if filter.Client != "" {
		q.Set("client", filter.Client)
	}
	if filter.Priority != nil {
		q.Set("priority", strconv.Itoa(*filter.Priority))
	}
	if filter.Search != "" {
		q.Set("search", filter.Search)
	}
	if filter.Sort != "" {
		q.Set("sort", filter.Sort)
	}
	if filter.Limit > 0 {
		q.Set("limit", strconv.Itoa(filter.Limit))
	}
	if filter.Offset > 0 {
		q.Set("offset", strconv.Itoa(filter.Offset))
	}

	path := "/v1/records"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp ListRecordsResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) UpdateRecord(ctx context.Context, id string, req *UpdateRecordRequest) (*model.Record, error) {
	var rec model.Record
	if err := c.doJSON(ctx, http.MethodPatch, "/v1/records/"+url.PathEscape(id), req, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *HTTPClient) DeleteRecord(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/v1/records/"+url.PathEscape(id), nil, nil)
}

// --- Pipelines ---

func (c *HTTPClient) CreatePipeline(ctx context.Context, req *CreatePipelineRequest) (*model.Pipeline, error) {
	var p model.Pipeline
	if err := c.doJSON(ctx, http.MethodPost, "/v1/pipelines", req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *HTTPClient) ListPipelines(ctx context.Context) ([]model.Pipeline, error) {
	var resp struct {
		Pipelines []model.Pipeline `json:"pipelines"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/pipelines", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Pipelines, nil
}

func (c *HTTPClient) DeletePipeline(ctx context.Context, id, reassignTo string) error {
	path := "/v1/pipelines/" + url.PathEscape(id)
	if reassignTo != "" {
		path += "?reassign_to=" + url.QueryEscape(reassignTo)
	}
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil)
}

// --- Stages ---

func (c *HTTPClient) CreateStage(ctx context.Context, req *CreateStageRequest) (*model.Stage, error) {
	var st model.Stage
	if err := c.doJSON(ctx, http.MethodPost, "/v1/stages", req, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (c *HTTPClient) ListStages(ctx context.Context, pipelineID string, kind model.Kind) ([]model.Stage, error) {
	q := url.Values{}
	if pipelineID != "" {
		q.Set("pipeline", pipelineID)
	}
	if kind != "" {
		q.Set("kind", kind.String())
	}
	path := "/v1/stages"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var resp struct {
		Stages []model.Stage `json:"stages"`
	}
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Stages, nil
}

func (c *HTTPClient) UpdateStage(ctx context.Context, id string, req *UpdateStageRequest) (*model.Stage, error) {
	var st model.Stage
	if err := c.doJSON(ctx, http.MethodPatch, "/v1/stages/"+url.PathEscape(id), req, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (c *HTTPClient) DeleteStage(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/v1/stages/"+url.PathEscape(id), nil, nil)
}

// --- Filter tags ---

func (c *HTTPClient) CreateFilterTag(ctx context.Context, req *CreateFilterTagRequest) (*model.FilterTag, error) {
	var tag model.FilterTag
	if err := c.doJSON(ctx, http.MethodPost, "/v1/filters", req, &tag); err != nil {
		return nil, err
	}
	return &tag, nil
}

func (c *HTTPClient) ListFilterTags(ctx context.Context, kind model.FilterKind) ([]model.FilterTag, error) {
	path := "/v1/filters"
	if kind != "" {
		path += "?kind=" + url.QueryEscape(kind.String())
	}
	var resp struct {
		Filters []model.FilterTag `json:"filters"`
	}
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Filters, nil
}

func (c *HTTPClient) DeleteFilterTag(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/v1/filters/"+url.PathEscape(id), nil, nil)
}

// --- Health ---

func (c *HTTPClient) Health(ctx context.Context) (string, error) {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/health", nil, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

// --- internal helpers ---

// APIError represents an error response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// doJSON performs an HTTP request with optional JSON body and decodes the JSON response.
// If result is nil, the response body is discarded (for DELETE/204 responses).
// A default timeout is applied when the caller's context has no deadline.
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body any, result any) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultTimeout)
		defer cancel()
	}

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	// 204 No Content carries no body.
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			return &APIError{StatusCode: resp.StatusCode, Message: errResp.Error}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}
