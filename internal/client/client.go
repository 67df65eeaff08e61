// Package client provides a transport-agnostic interface for the crmd service
// and an HTTP/JSON implementation that talks to the crmd REST API.
package client

import (
	"context"
	"encoding/json"
	"time"

	"github.com/palak-ardeshna/crmd/internal/model"
)

// CRMClient is the interface the CLI and the mirror store use to communicate
// with the crmd server. It is implemented by HTTPClient and can be backed by
// any transport.
type CRMClient interface {
	// Record CRUD
	CreateRecord(ctx context.Context, req *CreateRecordRequest) (*model.Record, error)
	GetRecord(ctx context.Context, id string) (*model.Record, error)
	ListRecords(ctx context.Context, filter model.RecordFilter) (*ListRecordsResponse, error)
	UpdateRecord(ctx context.Context, id string, req *UpdateRecordRequest) (*model.Record, error)
	DeleteRecord(ctx context.Context, id string) error

	// Pipelines
	CreatePipeline(ctx context.Context, req *CreatePipelineRequest) (*model.Pipeline, error)
	ListPipelines(ctx context.Context) ([]model.Pipeline, error)
	DeletePipeline(ctx context.Context, id, reassignTo string) error

	// Stages
	CreateStage(ctx context.Context, req *CreateStageRequest) (*model.Stage, error)
	ListStages(ctx context.Context, pipelineID string, kind model.Kind) ([]model.Stage, error)
	UpdateStage(ctx context.Context, id string, req *UpdateStageRequest) (*model.Stage, error)
	DeleteStage(ctx context.Context, id string) error

	// Filter tags
	CreateFilterTag(ctx context.Context, req *CreateFilterTagRequest) (*model.FilterTag, error)
	ListFilterTags(ctx context.Context, kind model.FilterKind) ([]model.FilterTag, error)
	DeleteFilterTag(ctx context.Context, id string) error

	// Health
	Health(ctx context.Context) (string, error)

	// Lifecycle
	Close() error
}

// CreateRecordRequest holds parameters for creating a record.
type CreateRecordRequest struct {
	Kind        model.Kind      `json:"kind"`
	Title       string          `json:"title"`
	PipelineID  string          `json:"pipeline_id,omitempty"`
	StageID     string          `json:"stage_id,omitempty"`
	Client      string          `json:"client,omitempty"`
	Source      string          `json:"source,omitempty"`
	Category    string          `json:"category,omitempty"`
	Status      string          `json:"status,omitempty"`
	Priority    int             `json:"priority"`
	Value       float64         `json:"value,omitempty"`
	Description string          `json:"description,omitempty"`
	CreatedBy   string          `json:"created_by,omitempty"`
	Fields      json.RawMessage `json:"fields,omitempty"`
}

// ListRecordsResponse is the response from ListRecords.
type ListRecordsResponse struct {
	Records []*model.Record `json:"records"`
	Total   int             `json:"total"`
}

// UpdateRecordRequest holds optional parameters for updating a record.
// Nil pointer fields mean "don't change".
type UpdateRecordRequest struct {
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

// CreatePipelineRequest holds parameters for creating a pipeline.
type CreatePipelineRequest struct {
	Name      string `json:"name"`
	CreatedBy string `json:"created_by,omitempty"`
}

// CreateStageRequest holds parameters for creating a stage.
type CreateStageRequest struct {
	Name       string     `json:"name"`
	PipelineID string     `json:"pipeline_id"`
	Kind       model.Kind `json:"kind"`
	Order      int        `json:"order"`
	IsDefault  bool       `json:"is_default"`
	CreatedBy  string     `json:"created_by,omitempty"`
}

// UpdateStageRequest holds optional parameters for updating a stage.
// Nil pointer fields mean "don't change".
type UpdateStageRequest struct {
	Name      *string `json:"name,omitempty"`
	Order     *int    `json:"order,omitempty"`
	IsDefault *bool   `json:"is_default,omitempty"`
}

// CreateFilterTagRequest holds parameters for creating a filter tag.
type CreateFilterTagRequest struct {
	Name      string           `json:"name"`
	Kind      model.FilterKind `json:"kind"`
	CreatedBy string           `json:"created_by,omitempty"`
}

// DefaultTimeout bounds a single HTTP request when the caller's context
// carries no deadline of its own.
const DefaultTimeout = 15 * time.Second
