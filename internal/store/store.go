package store

import (
	"context"

	"github.com/palak-ardeshna/crmd/internal/model"
)

// Store defines the persistence interface for CRM data.
type Store interface {
	// Record CRUD
	CreateRecord(ctx context.Context, rec *model.Record) error
	GetRecord(ctx context.Context, id string) (*model.Record, error)
	ListRecords(ctx context.Context, filter model.RecordFilter) ([]*model.Record, int, error) // returns records, total count, error
	UpdateRecord(ctx context.Context, rec *model.Record) error
	DeleteRecord(ctx context.Context, id string) error
	// ReassignRecords moves every record on fromPipeline to toPipeline with
	// the given stage, returning the number moved.
	ReassignRecords(ctx context.Context, fromPipeline, toPipeline, toStage string) (int, error)

	// Pipelines
	CreatePipeline(ctx context.Context, p *model.Pipeline) error
	GetPipeline(ctx context.Context, id string) (*model.Pipeline, error)
	ListPipelines(ctx context.Context) ([]model.Pipeline, error)
	DeletePipeline(ctx context.Context, id string) error

	// Stages
	CreateStage(ctx context.Context, st *model.Stage) error
	GetStage(ctx context.Context, id string) (*model.Stage, error)
	ListStages(ctx context.Context, pipelineID string, kind model.Kind) ([]model.Stage, error)
	UpdateStage(ctx context.Context, st *model.Stage) error
	DeleteStage(ctx context.Context, id string) error
	// ClearDefaultStage drops the default flag from every stage in the
	// (pipeline, kind) partition. Used to keep at most one default per
	// partition when another stage is being marked default.
	ClearDefaultStage(ctx context.Context, pipelineID string, kind model.Kind) error

	// Filter tags
	CreateFilterTag(ctx context.Context, tag *model.FilterTag) error
	GetFilterTag(ctx context.Context, id string) (*model.FilterTag, error)
	ListFilterTags(ctx context.Context, kind model.FilterKind) ([]model.FilterTag, error)
	DeleteFilterTag(ctx context.Context, id string) error

	// Transaction support
	RunInTransaction(ctx context.Context, fn func(tx Store) error) error

	// Lifecycle
	Close() error
}
