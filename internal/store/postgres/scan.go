package postgres

import (
	"database/sql"
	"encoding/json"

	"github.com/palak-ardeshna/crmd/internal/model"
)

// scannable is the interface satisfied by both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

// scanRecord scans a single row into a model.Record.
// The row must contain columns in the order defined by recordColumns.
func scanRecord(row scannable) (*model.Record, error) {
	var r model.Record
	var (
		pipelineID  sql.NullString
		stageID     sql.NullString
		client      sql.NullString
		source      sql.NullString
		category    sql.NullString
		status      sql.NullString
		description sql.NullString
		createdBy   sql.NullString
		fields      []byte
	)

	err := row.Scan(
		&r.ID,
		&r.Kind,
		&r.Title,
		&pipelineID,
		&stageID,
		&client,
		&source,
		&category,
		&status,
		&r.Priority,
		&r.Value,
		&description,
		&fields,
		&r.CreatedAt,
		&createdBy,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	r.PipelineID = pipelineID.String
	r.StageID = stageID.String
	r.Client = client.String
	r.Source = source.String
	r.Category = category.String
	r.Status = status.String
	r.Description = description.String
	r.CreatedBy = createdBy.String

	if len(fields) > 0 {
		r.Fields = json.RawMessage(fields)
	}

	return &r, nil
}

// scanRecordWithTotal scans a row that has a leading total_count column
// followed by the standard record columns. Used by queryListRecords with
// COUNT(*) OVER().
func scanRecordWithTotal(row scannable) (*model.Record, int, error) {
	var total int
	var r model.Record
	var (
		pipelineID  sql.NullString
		stageID     sql.NullString
		client      sql.NullString
		source      sql.NullString
		category    sql.NullString
		status      sql.NullString
		description sql.NullString
		createdBy   sql.NullString
		fields      []byte
	)

	err := row.Scan(
		&total,
		&r.ID,
		&r.Kind,
		&r.Title,
		&pipelineID,
		&stageID,
		&client,
		&source,
		&category,
		&status,
		&r.Priority,
		&r.Value,
		&description,
		&fields,
		&r.CreatedAt,
		&createdBy,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, 0, err
	}

	r.PipelineID = pipelineID.String
	r.StageID = stageID.String
	r.Client = client.String
	r.Source = source.String
	r.Category = category.String
	r.Status = status.String
	r.Description = description.String
	r.CreatedBy = createdBy.String

	if len(fields) > 0 {
		r.Fields = json.RawMessage(fields)
	}

	return &r, total, nil
}

// scanPipeline scans a single row into a model.Pipeline.
func scanPipeline(row scannable) (*model.Pipeline, error) {
	var p model.Pipeline
	var createdBy sql.NullString
	err := row.Scan(&p.ID, &p.Name, &p.CreatedAt, &createdBy)
	if err != nil {
		return nil, err
	}
	p.CreatedBy = createdBy.String
	return &p, nil
}

// scanPipelines scans multiple rows into a slice of model.Pipeline values.
func scanPipelines(rows *sql.Rows) ([]model.Pipeline, error) {
	var pipelines []model.Pipeline
	for rows.Next() {
		p, err := scanPipeline(rows)
		if err != nil {
			return nil, err
		}
		pipelines = append(pipelines, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return pipelines, nil
}

// scanStage scans a single row into a model.Stage.
func scanStage(row scannable) (*model.Stage, error) {
	var s model.Stage
	var createdBy sql.NullString
	err := row.Scan(
		&s.ID,
		&s.Name,
		&s.PipelineID,
		&s.Kind,
		&s.Order,
		&s.IsDefault,
		&s.CreatedAt,
		&createdBy,
	)
	if err != nil {
		return nil, err
	}
	s.CreatedBy = createdBy.String
	return &s, nil
}

// scanStages scans multiple rows into a slice of model.Stage values.
func scanStages(rows *sql.Rows) ([]model.Stage, error) {
	var stages []model.Stage
	for rows.Next() {
		s, err := scanStage(rows)
		if err != nil {
			return nil, err
		}
		stages = append(stages, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return stages, nil
}

// scanFilterTag scans a single row into a model.FilterTag.
func scanFilterTag(row scannable) (*model.FilterTag, error) {
	var t model.FilterTag
	var createdBy sql.NullString
	err := row.Scan(&t.ID, &t.Name, &t.Kind, &t.CreatedAt, &createdBy)
	if err != nil {
		return nil, err
	}
	t.CreatedBy = createdBy.String
	return &t, nil
}

// scanFilterTags scans multiple rows into a slice of model.FilterTag values.
func scanFilterTags(rows *sql.Rows) ([]model.FilterTag, error) {
	var tags []model.FilterTag
	for rows.Next() {
		t, err := scanFilterTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tags, nil
}

// nullString converts a string to sql.NullString; empty string is null.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// jsonbBytes converts json.RawMessage to a []byte suitable for JSONB columns.
func jsonbBytes(m json.RawMessage) []byte {
	if len(m) == 0 {
		return nil
	}
	return []byte(m)
}
