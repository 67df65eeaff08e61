package events

import (
	"context"

	"github.com/palak-ardeshna/crmd/internal/model"
)

// Event topic constants
const (
	TopicRecordCreated = "crm.record.created"
	TopicRecordUpdated = "crm.record.updated"
	TopicRecordDeleted = "crm.record.deleted"

	TopicPipelineCreated = "crm.pipeline.created"
	TopicPipelineDeleted = "crm.pipeline.deleted"

	TopicStageCreated = "crm.stage.created"
	TopicStageUpdated = "crm.stage.updated"
	TopicStageDeleted = "crm.stage.deleted"

	TopicFilterCreated = "crm.filter.created"
	TopicFilterDeleted = "crm.filter.deleted"
)

// Event types

type RecordCreated struct {
	Record *model.Record `json:"record"`
}

type RecordUpdated struct {
	Record  *model.Record  `json:"record"`
	Changes map[string]any `json:"changes"` // field name -> new value
}

type RecordDeleted struct {
	RecordID string     `json:"record_id"`
	Kind     model.Kind `json:"kind"`
}

type PipelineCreated struct {
	Pipeline *model.Pipeline `json:"pipeline"`
}

// PipelineDeleted carries the reassignment outcome alongside the deletion:
// every record that referenced the deleted pipeline was moved to ReassignedTo.
type PipelineDeleted struct {
	PipelineID   string `json:"pipeline_id"`
	ReassignedTo string `json:"reassigned_to,omitempty"`
	MovedRecords int    `json:"moved_records"`
}

type StageCreated struct {
	Stage *model.Stage `json:"stage"`
}

type StageUpdated struct {
	Stage *model.Stage `json:"stage"`
}

type StageDeleted struct {
	StageID    string `json:"stage_id"`
	PipelineID string `json:"pipeline_id"`
}

type FilterCreated struct {
	Filter *model.FilterTag `json:"filter"`
}

type FilterDeleted struct {
	FilterID string           `json:"filter_id"`
	Kind     model.FilterKind `json:"kind"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}
