package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/palak-ardeshna/crmd/internal/model"
	"github.com/palak-ardeshna/crmd/internal/store"
)

// newMockDB creates a sqlmock database with automatic cleanup and expectation checking.
func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unfulfilled expectations: %v", err)
		}
		db.Close()
	})
	return db, mock
}

// recordWithTotalColumns is the column list for queryListRecords results
// (total_count + record columns).
var recordWithTotalColumns = []string{
	"total_count",
	"id", "kind", "title", "pipeline_id", "stage_id",
	"client", "source", "category", "status", "priority", "value",
	"description", "fields", "created_at", "created_by", "updated_at",
}

// recordRowColumns is the column list for scanRecord results.
var recordRowColumns = []string{
	"id", "kind", "title", "pipeline_id", "stage_id",
	"client", "source", "category", "status", "priority", "value",
	"description", "fields", "created_at", "created_by", "updated_at",
}

// addRecordWithTotalRow adds a minimal record row with a leading total_count to a sqlmock.Rows.
func addRecordWithTotalRow(rows *sqlmock.Rows, total int, id, kind, title string, priority int, now time.Time) *sqlmock.Rows {
	return rows.AddRow(
		total,
		id, kind, title, nil, nil,
		nil, nil, nil, nil, priority, 0.0,
		nil, nil, now, nil, now,
	)
}

var stageRowColumns = []string{"id", "name", "pipeline_id", "kind", "stage_order", "is_default", "created_at", "created_by"}

func TestParseSortClause(t *testing.T) {
	for _, tc := range []struct {
		input string
		want  string
	}{
		{"", "created_at DESC"},
		{"priority", "priority ASC"},
		{"-priority", "priority DESC"},
		{"evil_column", "created_at DESC"},
		{"-evil_column", "created_at DESC"},
	} {
		if got := parseSortClause(tc.input); got != tc.want {
			t.Errorf("parseSortClause(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
	// All allowed columns.
	for _, col := range []string{"priority", "created_at", "updated_at", "title", "status", "value"} {
		if got := parseSortClause(col); got != col+" ASC" {
			t.Errorf("parseSortClause(%q) = %q, want %q", col, got, col+" ASC")
		}
		if got := parseSortClause("-" + col); got != col+" DESC" {
			t.Errorf("parseSortClause(-%q) = %q, want %q", col, got, col+" DESC")
		}
	}
}

func TestScanHelpers(t *testing.T) {
	// nullString
	if nullString("").Valid {
		t.Error("nullString(\"\") should be invalid")
	}
	if ns := nullString("hello"); !ns.Valid || ns.String != "hello" {
		t.Errorf("nullString(\"hello\") = %v", ns)
	}

	// jsonbBytes
	if jsonbBytes(nil) != nil {
		t.Error("jsonbBytes(nil) should be nil")
	}
	if jsonbBytes(json.RawMessage{}) != nil {
		t.Error("jsonbBytes({}) should be nil")
	}
	input := json.RawMessage(`{"key":"value"}`)
	if string(jsonbBytes(input)) != `{"key":"value"}` {
		t.Errorf("jsonbBytes = %s", jsonbBytes(input))
	}
}

func TestQueryCreateRecord(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()
	rec := &model.Record{
		ID: "ld-test1", Kind: model.KindLead, Title: "Test lead",
		CreatedAt: now, UpdatedAt: now,
	}
	mock.ExpectExec("INSERT INTO records").
		WithArgs(
			"ld-test1", "lead", "Test lead", sqlmock.AnyArg(), sqlmock.AnyArg(),
			"", "", "", "", 0, 0.0,
			"", sqlmock.AnyArg(), now, "", now,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := queryCreateRecord(context.Background(), db, rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestQueryGetRecord(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()

	rows := sqlmock.NewRows(recordRowColumns).AddRow(
		"ld-test1", "lead", "Test lead", "pl-sales", "st-new",
		"Acme", "web", nil, "active", 2, 5000.0,
		nil, []byte(`{"foo":"bar"}`), now, "alice", now,
	)
	mock.ExpectQuery("SELECT .+ FROM records WHERE id = \\$1").WithArgs("ld-test1").WillReturnRows(rows)

	rec, err := queryGetRecord(context.Background(), db, "ld-test1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.ID != "ld-test1" || rec.Title != "Test lead" {
		t.Fatalf("got id=%q title=%q", rec.ID, rec.Title)
	}
	if rec.PipelineID != "pl-sales" || rec.StageID != "st-new" {
		t.Fatalf("got pipeline=%q stage=%q", rec.PipelineID, rec.StageID)
	}
	if rec.Client != "Acme" || rec.Value != 5000 || rec.CreatedBy != "alice" {
		t.Fatalf("got client=%q value=%v created_by=%q", rec.Client, rec.Value, rec.CreatedBy)
	}
	if string(rec.Fields) != `{"foo":"bar"}` {
		t.Fatalf("got fields=%s", rec.Fields)
	}
}

func TestQueryGetRecord_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("SELECT .+ FROM records WHERE id = \\$1").WithArgs("nonexistent").WillReturnError(sql.ErrNoRows)

	_, err := queryGetRecord(context.Background(), db, "nonexistent")
	if err != sql.ErrNoRows {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestQueryUpdateRecord(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()
	rec := &model.Record{
		ID: "ld-test1", Kind: model.KindLead, Title: "Updated lead",
		PipelineID: "pl-sales", StageID: "st-won", Priority: 3,
	}
	mock.ExpectQuery("UPDATE records SET").
		WithArgs(
			"ld-test1", "lead", "Updated lead", sqlmock.AnyArg(), sqlmock.AnyArg(),
			"", "", "", "", 3, 0.0, "", sqlmock.AnyArg(),
		).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(now))

	if err := queryUpdateRecord(context.Background(), db, rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rec.UpdatedAt.Equal(now) {
		t.Fatalf("expected updated_at to be refreshed, got %v", rec.UpdatedAt)
	}
}

func TestQueryUpdateRecord_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	rec := &model.Record{ID: "nonexistent", Kind: model.KindLead, Title: "Test"}
	mock.ExpectQuery("UPDATE records SET").
		WithArgs(
			"nonexistent", "lead", "Test", sqlmock.AnyArg(), sqlmock.AnyArg(),
			"", "", "", "", 0, 0.0, "", sqlmock.AnyArg(),
		).
		WillReturnError(sql.ErrNoRows)

	if err := queryUpdateRecord(context.Background(), db, rec); err != sql.ErrNoRows {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestQueryDeleteRecord(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec("DELETE FROM records WHERE id = \\$1").WithArgs("ld-del1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := queryDeleteRecord(context.Background(), db, "ld-del1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestQueryDeleteRecord_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec("DELETE FROM records WHERE id = \\$1").WithArgs("nonexistent").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := queryDeleteRecord(context.Background(), db, "nonexistent"); err != sql.ErrNoRows {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestQueryListRecords(t *testing.T) {
	now := time.Now().UTC()
	pri := func(v int) *int { return &v }

	for _, tc := range []struct {
		name      string
		filter    model.RecordFilter
		queryPat  string
		args      []driver.Value
		wantCount int
		wantTotal int
	}{
		{
			name:      "NoFilter",
			filter:    model.RecordFilter{},
			queryPat:  "SELECT COUNT\\(\\*\\) OVER\\(\\) AS total_count, .+ FROM records ORDER BY created_at DESC",
			wantCount: 2,
			wantTotal: 2,
		},
		{
			name:      "FilterByKind",
			filter:    model.RecordFilter{Kind: model.KindProject},
			queryPat:  "SELECT .+ FROM records WHERE kind = \\$1 ORDER BY",
			args:      []driver.Value{"project"},
			wantCount: 1,
			wantTotal: 1,
		},
		{
			name:      "FilterByPipelineAndStage",
			filter:    model.RecordFilter{PipelineID: "pl-sales", StageID: "st-new"},
			queryPat:  "SELECT .+ FROM records WHERE pipeline_id = \\$1 AND stage_id = \\$2 ORDER BY",
			args:      []driver.Value{"pl-sales", "st-new"},
			wantCount: 1,
			wantTotal: 1,
		},
		{
			name:      "FilterBySource",
			filter:    model.RecordFilter{Source: "web"},
			queryPat:  "SELECT .+ FROM records WHERE source = \\$1 ORDER BY",
			args:      []driver.Value{"web"},
			wantCount: 1,
			wantTotal: 1,
		},
		{
			name:      "FilterByPriority",
			filter:    model.RecordFilter{Priority: pri(3)},
			queryPat:  "SELECT .+ FROM records WHERE priority = \\$1 ORDER BY",
			args:      []driver.Value{3},
			wantCount: 1,
			wantTotal: 1,
		},
		{
			name:      "FilterBySearch",
			filter:    model.RecordFilter{Search: "acme"},
			queryPat:  "SELECT .+ FROM records WHERE \\(title ILIKE .+\\) ORDER BY",
			args:      []driver.Value{"acme"},
			wantCount: 1,
			wantTotal: 1,
		},
		{
			name:      "WithLimitAndOffset",
			filter:    model.RecordFilter{Limit: 10, Offset: 5},
			queryPat:  "SELECT .+ FROM records ORDER BY .+ LIMIT \\$1 OFFSET \\$2",
			args:      []driver.Value{10, 5},
			wantCount: 1,
			wantTotal: 20,
		},
		{
			name:     "WithSort",
			filter:   model.RecordFilter{Sort: "-priority"},
			queryPat: "SELECT .+ FROM records ORDER BY priority DESC",
		},
		{
			name:      "CombinedFilters",
			filter:    model.RecordFilter{Kind: model.KindLead, Client: "Acme", Limit: 5},
			queryPat:  "SELECT .+ FROM records WHERE kind = \\$1 AND client = \\$2 ORDER BY .+ LIMIT \\$3",
			args:      []driver.Value{"lead", "Acme", 5},
			wantCount: 1,
			wantTotal: 3,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			eq := mock.ExpectQuery(tc.queryPat)
			if len(tc.args) > 0 {
				eq.WithArgs(tc.args...)
			}
			r := sqlmock.NewRows(recordWithTotalColumns)
			for i := range tc.wantCount {
				addRecordWithTotalRow(r, tc.wantTotal, fmt.Sprintf("ld-%d", i+1), "lead", "T", 0, now)
			}
			eq.WillReturnRows(r)

			records, total, err := queryListRecords(context.Background(), db, tc.filter)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(records) != tc.wantCount {
				t.Fatalf("expected %d records, got %d", tc.wantCount, len(records))
			}
			if total != tc.wantTotal {
				t.Fatalf("expected total=%d, got %d", tc.wantTotal, total)
			}
		})
	}
}

func TestQueryReassignRecords(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec("UPDATE records").
		WithArgs("pl-old", "pl-new", "st-intake").
		WillReturnResult(sqlmock.NewResult(0, 7))

	moved, err := queryReassignRecords(context.Background(), db, "pl-old", "pl-new", "st-intake")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if moved != 7 {
		t.Fatalf("expected 7 moved, got %d", moved)
	}
}

func TestQueryCreatePipeline(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()
	p := &model.Pipeline{ID: "pl-sales", Name: "Sales", CreatedAt: now, CreatedBy: "alice"}
	mock.ExpectExec("INSERT INTO pipelines").
		WithArgs("pl-sales", "Sales", now, "alice").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := queryCreatePipeline(context.Background(), db, p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestQueryListPipelines(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "name", "created_at", "created_by"}).
		AddRow("pl-sales", "Sales", now, "SYSTEM").
		AddRow("pl-custom", "Custom", now, "alice")
	mock.ExpectQuery("SELECT .+ FROM pipelines ORDER BY").WillReturnRows(rows)

	pipelines, err := queryListPipelines(context.Background(), db)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pipelines) != 2 {
		t.Fatalf("expected 2 pipelines, got %d", len(pipelines))
	}
	if !pipelines[0].IsProtected() || pipelines[1].IsProtected() {
		t.Fatalf("protection flags wrong: %+v", pipelines)
	}
}

func TestQueryDeletePipeline_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec("DELETE FROM pipelines WHERE id = \\$1").WithArgs("nonexistent").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := queryDeletePipeline(context.Background(), db, "nonexistent"); err != sql.ErrNoRows {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestQueryCreateStage(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()
	st := &model.Stage{
		ID: "st-new", Name: "New", PipelineID: "pl-sales", Kind: model.KindLead,
		Order: 1, IsDefault: true, CreatedAt: now, CreatedBy: "alice",
	}
	mock.ExpectExec("INSERT INTO stages").
		WithArgs("st-new", "New", "pl-sales", "lead", 1, true, now, "alice").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := queryCreateStage(context.Background(), db, st); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestQueryListStages(t *testing.T) {
	now := time.Now().UTC()

	for _, tc := range []struct {
		name       string
		pipelineID string
		kind       model.Kind
		queryPat   string
		args       []driver.Value
	}{
		{
			name:     "All",
			queryPat: "SELECT .+ FROM stages ORDER BY stage_order ASC",
		},
		{
			name:       "ByPipeline",
			pipelineID: "pl-sales",
			queryPat:   "SELECT .+ FROM stages WHERE pipeline_id = \\$1 ORDER BY",
			args:       []driver.Value{"pl-sales"},
		},
		{
			name:       "ByPipelineAndKind",
			pipelineID: "pl-sales",
			kind:       model.KindLead,
			queryPat:   "SELECT .+ FROM stages WHERE pipeline_id = \\$1 AND kind = \\$2 ORDER BY",
			args:       []driver.Value{"pl-sales", "lead"},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			eq := mock.ExpectQuery(tc.queryPat)
			if len(tc.args) > 0 {
				eq.WithArgs(tc.args...)
			}
			eq.WillReturnRows(sqlmock.NewRows(stageRowColumns).
				AddRow("st-1", "New", "pl-sales", "lead", 1, true, now, nil).
				AddRow("st-2", "Won", "pl-sales", "lead", 2, false, now, "alice"))

			stages, err := queryListStages(context.Background(), db, tc.pipelineID, tc.kind)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(stages) != 2 {
				t.Fatalf("expected 2 stages, got %d", len(stages))
			}
			if !stages[0].IsDefault || stages[1].CreatedBy != "alice" {
				t.Fatalf("got %+v", stages)
			}
		})
	}
}

func TestQueryUpdateStage_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	st := &model.Stage{ID: "nonexistent", Name: "Renamed", Order: 2}
	mock.ExpectExec("UPDATE stages SET").
		WithArgs("nonexistent", "Renamed", 2, false).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := queryUpdateStage(context.Background(), db, st); err != sql.ErrNoRows {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestQueryClearDefaultStage(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec("UPDATE stages SET is_default = FALSE").
		WithArgs("pl-sales", "lead").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := queryClearDefaultStage(context.Background(), db, "pl-sales", model.KindLead); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestQueryCreateFilterTag(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()
	tag := &model.FilterTag{ID: "ft-web", Name: "web", Kind: model.FilterSource, CreatedAt: now, CreatedBy: "alice"}
	mock.ExpectExec("INSERT INTO filter_tags").
		WithArgs("ft-web", "web", "source", now, "alice").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := queryCreateFilterTag(context.Background(), db, tag); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestQueryListFilterTags(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()
	mock.ExpectQuery("SELECT .+ FROM filter_tags WHERE kind = \\$1 ORDER BY name").
		WithArgs("source").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "kind", "created_at", "created_by"}).
			AddRow("ft-ref", "referral", "source", now, nil).
			AddRow("ft-web", "web", "source", now, "alice"))

	tags, err := queryListFilterTags(context.Background(), db, model.FilterSource)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tags) != 2 || tags[0].Name != "referral" || tags[1].CreatedBy != "alice" {
		t.Fatalf("got %+v", tags)
	}
}

func TestQueryDeleteFilterTag_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec("DELETE FROM filter_tags WHERE id = \\$1").WithArgs("nonexistent").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := queryDeleteFilterTag(context.Background(), db, "nonexistent"); err != sql.ErrNoRows {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestRunInTransaction_Commit(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM records WHERE id = \\$1").WithArgs("ld-tx1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	s := &PostgresStore{db: db}
	err := s.RunInTransaction(context.Background(), func(tx store.Store) error {
		return tx.DeleteRecord(context.Background(), "ld-tx1")
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunInTransaction_RollbackOnError(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM records WHERE id = \\$1").WithArgs("nonexistent").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	s := &PostgresStore{db: db}
	err := s.RunInTransaction(context.Background(), func(tx store.Store) error {
		return tx.DeleteRecord(context.Background(), "nonexistent")
	})
	if err != sql.ErrNoRows {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestRunInTransaction_NestedReusesTx(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM records WHERE id = \\$1").WithArgs("ld-tx2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	s := &PostgresStore{db: db}
	err := s.RunInTransaction(context.Background(), func(tx store.Store) error {
		// Nested call must not open a second transaction.
		return tx.RunInTransaction(context.Background(), func(inner store.Store) error {
			return inner.DeleteRecord(context.Background(), "ld-tx2")
		})
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
