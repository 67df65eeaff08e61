package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/palak-ardeshna/crmd/internal/model"
)

// recordColumns is the column list used for SELECT statements on the records table.
const recordColumns = `id, kind, title, pipeline_id, stage_id,
	client, source, category, status, priority, value,
	description, fields, created_at, created_by, updated_at`

// executor is the interface satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func queryCreateRecord(ctx context.Context, db executor, r *model.Record) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO records (
			id, kind, title, pipeline_id, stage_id,
			client, source, category, status, priority, value,
			description, fields, created_at, created_by, updated_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9, $10, $11,
			$12, $13, $14, $15, $16
		)`,
		r.ID,
		string(r.Kind),
		r.Title,
		nullString(r.PipelineID),
		nullString(r.StageID),
		r.Client,
		r.Source,
		r.Category,
		r.Status,
		r.Priority,
		r.Value,
		r.Description,
		jsonbBytes(r.Fields),
		r.CreatedAt,
		r.CreatedBy,
		r.UpdatedAt,
	)
	return err
}

func queryGetRecord(ctx context.Context, db executor, id string) (*model.Record, error) {
	row := db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM records WHERE id = $1`, id)
	return scanRecord(row)
}

func queryListRecords(ctx context.Context, db executor, filter model.RecordFilter) ([]*model.Record, int, error) {
	var (
		whereClauses []string
		args         []any
		argIdx       int
	)

	nextArg := func() string {
		argIdx++
		return fmt.Sprintf("$%d", argIdx)
	}

	if filter.Kind != "" {
		whereClauses = append(whereClauses, "kind = "+nextArg())
		args = append(args, string(filter.Kind))
	}

	if filter.PipelineID != "" {
		whereClauses = append(whereClauses, "pipeline_id = "+nextArg())
		args = append(args, filter.PipelineID)
	}

	if filter.StageID != "" {
		whereClauses = append(whereClauses, "stage_id = "+nextArg())
		args = append(args, filter.StageID)
	}

	if filter.Source != "" {
		whereClauses = append(whereClauses, "source = "+nextArg())
		args = append(args, filter.Source)
	}

	if filter.Category != "" {
		whereClauses = append(whereClauses, "category = "+nextArg())
		args = append(args, filter.Category)
	}

	if filter.Status != "" {
		whereClauses = append(whereClauses, "status = "+nextArg())
		args = append(args, filter.Status)
	}

	if filter.Client != "" {
		whereClauses = append(whereClauses, "client = "+nextArg())
		args = append(args, filter.Client)
	}

	if filter.Priority != nil {
		whereClauses = append(whereClauses, "priority = "+nextArg())
		args = append(args, *filter.Priority)
	}

	if filter.Search != "" {
		p := nextArg()
		whereClauses = append(whereClauses,
			fmt.Sprintf("(title ILIKE '%%' || %s || '%%' OR description ILIKE '%%' || %s || '%%')", p, p))
		args = append(args, filter.Search)
	}

	whereSQL := ""
	if len(whereClauses) > 0 {
		whereSQL = " WHERE " + strings.Join(whereClauses, " AND ")
	}

	// Single query with COUNT(*) OVER() to get total and rows atomically.
	dataQuery := "SELECT COUNT(*) OVER() AS total_count, " + recordColumns + " FROM records" + whereSQL + " ORDER BY " + parseSortClause(filter.Sort)

	if filter.Limit > 0 {
		dataQuery += " LIMIT " + nextArg()
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		dataQuery += " OFFSET " + nextArg()
		args = append(args, filter.Offset)
	}

	rows, err := db.QueryContext(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var records []*model.Record
	var total int
	for rows.Next() {
		r, t, err := scanRecordWithTotal(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan records: %w", err)
		}
		total = t
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("scan records: %w", err)
	}

	return records, total, nil
}

func queryUpdateRecord(ctx context.Context, db executor, r *model.Record) error {
	return db.QueryRowContext(ctx, `
		UPDATE records SET
			kind = $2,
			title = $3,
			pipeline_id = $4,
			stage_id = $5,
			client = $6,
			source = $7,
			category = $8,
			status = $9,
			priority = $10,
			value = $11,
			description = $12,
			fields = $13,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		r.ID,
		string(r.Kind),
		r.Title,
		nullString(r.PipelineID),
		nullString(r.StageID),
		r.Client,
		r.Source,
		r.Category,
		r.Status,
		r.Priority,
		r.Value,
		r.Description,
		jsonbBytes(r.Fields),
	).Scan(&r.UpdatedAt)
}

func queryDeleteRecord(ctx context.Context, db executor, id string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM records WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func queryReassignRecords(ctx context.Context, db executor, fromPipeline, toPipeline, toStage string) (int, error) {
	// Each moved record lands in the target pipeline's default stage for its
	// own kind; toStage is only a fallback when no default exists.
	res, err := db.ExecContext(ctx, `
		UPDATE records
		SET pipeline_id = $2,
			stage_id = COALESCE(
				(SELECT s.id FROM stages s
				 WHERE s.pipeline_id = $2 AND s.kind = records.kind AND s.is_default
				 ORDER BY s.stage_order, s.id LIMIT 1),
				$3),
			updated_at = NOW()
		WHERE pipeline_id = $1`,
		fromPipeline, toPipeline, nullString(toStage),
	)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(n), nil
}

func queryCreatePipeline(ctx context.Context, db executor, p *model.Pipeline) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO pipelines (id, name, created_at, created_by)
		VALUES ($1, $2, $3, $4)`,
		p.ID, p.Name, p.CreatedAt, p.CreatedBy,
	)
	return err
}

func queryGetPipeline(ctx context.Context, db executor, id string) (*model.Pipeline, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, name, created_at, created_by
		FROM pipelines WHERE id = $1`, id)
	return scanPipeline(row)
}

func queryListPipelines(ctx context.Context, db executor) ([]model.Pipeline, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, name, created_at, created_by
		FROM pipelines ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPipelines(rows)
}

func queryDeletePipeline(ctx context.Context, db executor, id string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM pipelines WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func queryCreateStage(ctx context.Context, db executor, s *model.Stage) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO stages (id, name, pipeline_id, kind, stage_order, is_default, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		s.ID, s.Name, s.PipelineID, string(s.Kind), s.Order, s.IsDefault, s.CreatedAt, s.CreatedBy,
	)
	return err
}

func queryGetStage(ctx context.Context, db executor, id string) (*model.Stage, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, name, pipeline_id, kind, stage_order, is_default, created_at, created_by
		FROM stages WHERE id = $1`, id)
	return scanStage(row)
}

func queryListStages(ctx context.Context, db executor, pipelineID string, kind model.Kind) ([]model.Stage, error) {
	var (
		whereClauses []string
		args         []any
		argIdx       int
	)

	nextArg := func() string {
		argIdx++
		return fmt.Sprintf("$%d", argIdx)
	}

	if pipelineID != "" {
		whereClauses = append(whereClauses, "pipeline_id = "+nextArg())
		args = append(args, pipelineID)
	}
	if kind != "" {
		whereClauses = append(whereClauses, "kind = "+nextArg())
		args = append(args, string(kind))
	}

	query := `SELECT id, name, pipeline_id, kind, stage_order, is_default, created_at, created_by FROM stages`
	if len(whereClauses) > 0 {
		query += " WHERE " + strings.Join(whereClauses, " AND ")
	}
	query += " ORDER BY stage_order ASC, id ASC"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStages(rows)
}

func queryUpdateStage(ctx context.Context, db executor, s *model.Stage) error {
	res, err := db.ExecContext(ctx, `
		UPDATE stages SET
			name = $2,
			stage_order = $3,
			is_default = $4
		WHERE id = $1`,
		s.ID, s.Name, s.Order, s.IsDefault,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func queryDeleteStage(ctx context.Context, db executor, id string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM stages WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func queryClearDefaultStage(ctx context.Context, db executor, pipelineID string, kind model.Kind) error {
	_, err := db.ExecContext(ctx, `
		UPDATE stages SET is_default = FALSE
		WHERE pipeline_id = $1 AND kind = $2 AND is_default`,
		pipelineID, string(kind),
	)
	return err
}

func queryCreateFilterTag(ctx context.Context, db executor, tag *model.FilterTag) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO filter_tags (id, name, kind, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5)`,
		tag.ID, tag.Name, string(tag.Kind), tag.CreatedAt, tag.CreatedBy,
	)
	return err
}

func queryGetFilterTag(ctx context.Context, db executor, id string) (*model.FilterTag, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, name, kind, created_at, created_by
		FROM filter_tags WHERE id = $1`, id)
	return scanFilterTag(row)
}

func queryListFilterTags(ctx context.Context, db executor, kind model.FilterKind) ([]model.FilterTag, error) {
	query := `SELECT id, name, kind, created_at, created_by FROM filter_tags`
	var args []any
	if kind != "" {
		query += ` WHERE kind = $1`
		args = append(args, string(kind))
	}
	query += ` ORDER BY name ASC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFilterTags(rows)
}

func queryDeleteFilterTag(ctx context.Context, db executor, id string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM filter_tags WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func parseSortClause(sort string) string {
	if sort == "" {
		return "created_at DESC"
	}
	desc := strings.HasPrefix(sort, "-")
	col := strings.TrimPrefix(sort, "-")
	allowed := map[string]bool{
		"priority": true, "created_at": true, "updated_at": true,
		"title": true, "status": true, "value": true,
	}
	if !allowed[col] {
		return "created_at DESC"
	}
	if desc {
		return col + " DESC"
	}
	return col + " ASC"
}
