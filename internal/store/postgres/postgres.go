// Package postgres implements the store.Store interface backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	"github.com/palak-ardeshna/crmd/internal/model"
	"github.com/palak-ardeshna/crmd/internal/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresStore implements store.Store backed by a PostgreSQL database.
type PostgresStore struct {
	db *sql.DB
}

// Compile-time check that PostgresStore implements store.Store.
var _ store.Store = (*PostgresStore)(nil)

// New opens a connection to the PostgreSQL database at the given URL,
// configures the connection pool, and runs any pending migrations.
func New(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

// Close closes the underlying database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) CreateRecord(ctx context.Context, rec *model.Record) error {
	return queryCreateRecord(ctx, s.db, rec)
}

func (s *PostgresStore) GetRecord(ctx context.Context, id string) (*model.Record, error) {
	return queryGetRecord(ctx, s.db, id)
}

func (s *PostgresStore) ListRecords(ctx context.Context, filter model.RecordFilter) ([]*model.Record, int, error) {
	return queryListRecords(ctx, s.db, filter)
}

func (s *PostgresStore) UpdateRecord(ctx context.Context, rec *model.Record) error {
	return queryUpdateRecord(ctx, s.db, rec)
}

func (s *PostgresStore) DeleteRecord(ctx context.Context, id string) error {
	return queryDeleteRecord(ctx, s.db, id)
}

func (s *PostgresStore) ReassignRecords(ctx context.Context, fromPipeline, toPipeline, toStage string) (int, error) {
	return queryReassignRecords(ctx, s.db, fromPipeline, toPipeline, toStage)
}

func (s *PostgresStore) CreatePipeline(ctx context.Context, p *model.Pipeline) error {
	return queryCreatePipeline(ctx, s.db, p)
}

func (s *PostgresStore) GetPipeline(ctx context.Context, id string) (*model.Pipeline, error) {
	return queryGetPipeline(ctx, s.db, id)
}

func (s *PostgresStore) ListPipelines(ctx context.Context) ([]model.Pipeline, error) {
	return queryListPipelines(ctx, s.db)
}

func (s *PostgresStore) DeletePipeline(ctx context.Context, id string) error {
	return queryDeletePipeline(ctx, s.db, id)
}

func (s *PostgresStore) CreateStage(ctx context.Context, st *model.Stage) error {
	return queryCreateStage(ctx, s.db, st)
}

func (s *PostgresStore) GetStage(ctx context.Context, id string) (*model.Stage, error) {
	return queryGetStage(ctx, s.db, id)
}

func (s *PostgresStore) ListStages(ctx context.Context, pipelineID string, kind model.Kind) ([]model.Stage, error) {
	return queryListStages(ctx, s.db, pipelineID, kind)
}

func (s *PostgresStore) UpdateStage(ctx context.Context, st *model.Stage) error {
	return queryUpdateStage(ctx, s.db, st)
}

func (s *PostgresStore) DeleteStage(ctx context.Context, id string) error {
	return queryDeleteStage(ctx, s.db, id)
}

func (s *PostgresStore) ClearDefaultStage(ctx context.Context, pipelineID string, kind model.Kind) error {
	return queryClearDefaultStage(ctx, s.db, pipelineID, kind)
}

func (s *PostgresStore) CreateFilterTag(ctx context.Context, tag *model.FilterTag) error {
	return queryCreateFilterTag(ctx, s.db, tag)
}

func (s *PostgresStore) GetFilterTag(ctx context.Context, id string) (*model.FilterTag, error) {
	return queryGetFilterTag(ctx, s.db, id)
}

func (s *PostgresStore) ListFilterTags(ctx context.Context, kind model.FilterKind) ([]model.FilterTag, error) {
	return queryListFilterTags(ctx, s.db, kind)
}

func (s *PostgresStore) DeleteFilterTag(ctx context.Context, id string) error {
	return queryDeleteFilterTag(ctx, s.db, id)
}

// RunInTransaction begins a database transaction, creates a txStore that
// delegates to it, calls fn, and commits on success or rolls back on error.
func (s *PostgresStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	txS := &txStore{tx: tx}
	if err := fn(txS); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// txStore implements store.Store using a *sql.Tx.
type txStore struct {
	tx *sql.Tx
}

// Compile-time check that txStore implements store.Store.
var _ store.Store = (*txStore)(nil)

func (s *txStore) CreateRecord(ctx context.Context, rec *model.Record) error {
	return queryCreateRecord(ctx, s.tx, rec)
}

func (s *txStore) GetRecord(ctx context.Context, id string) (*model.Record, error) {
	return queryGetRecord(ctx, s.tx, id)
}

func (s *txStore) ListRecords(ctx context.Context, filter model.RecordFilter) ([]*model.Record, int, error) {
	return queryListRecords(ctx, s.tx, filter)
}

func (s *txStore) UpdateRecord(ctx context.Context, rec *model.Record) error {
	return queryUpdateRecord(ctx, s.tx, rec)
}

func (s *txStore) DeleteRecord(ctx context.Context, id string) error {
	return queryDeleteRecord(ctx, s.tx, id)
}

func (s *txStore) ReassignRecords(ctx context.Context, fromPipeline, toPipeline, toStage string) (int, error) {
	return queryReassignRecords(ctx, s.tx, fromPipeline, toPipeline, toStage)
}

func (s *txStore) CreatePipeline(ctx context.Context, p *model.Pipeline) error {
	return queryCreatePipeline(ctx, s.tx, p)
}

func (s *txStore) GetPipeline(ctx context.Context, id string) (*model.Pipeline, error) {
	return queryGetPipeline(ctx, s.tx, id)
}

func (s *txStore) ListPipelines(ctx context.Context) ([]model.Pipeline, error) {
	return queryListPipelines(ctx, s.tx)
}

func (s *txStore) DeletePipeline(ctx context.Context, id string) error {
	return queryDeletePipeline(ctx, s.tx, id)
}

func (s *txStore) CreateStage(ctx context.Context, st *model.Stage) error {
	return queryCreateStage(ctx, s.tx, st)
}

func (s *txStore) GetStage(ctx context.Context, id string) (*model.Stage, error) {
	return queryGetStage(ctx, s.tx, id)
}

func (s *txStore) ListStages(ctx context.Context, pipelineID string, kind model.Kind) ([]model.Stage, error) {
	return queryListStages(ctx, s.tx, pipelineID, kind)
}

func (s *txStore) UpdateStage(ctx context.Context, st *model.Stage) error {
	return queryUpdateStage(ctx, s.tx, st)
}

func (s *txStore) DeleteStage(ctx context.Context, id string) error {
	return queryDeleteStage(ctx, s.tx, id)
}

func (s *txStore) ClearDefaultStage(ctx context.Context, pipelineID string, kind model.Kind) error {
	return queryClearDefaultStage(ctx, s.tx, pipelineID, kind)
}

func (s *txStore) CreateFilterTag(ctx context.Context, tag *model.FilterTag) error {
	return queryCreateFilterTag(ctx, s.tx, tag)
}

func (s *txStore) GetFilterTag(ctx context.Context, id string) (*model.FilterTag, error) {
	return queryGetFilterTag(ctx, s.tx, id)
}

func (s *txStore) ListFilterTags(ctx context.Context, kind model.FilterKind) ([]model.FilterTag, error) {
	return queryListFilterTags(ctx, s.tx, kind)
}

func (s *txStore) DeleteFilterTag(ctx context.Context, id string) error {
	return queryDeleteFilterTag(ctx, s.tx, id)
}

// RunInTransaction on a txStore reuses the existing transaction (no nesting).
func (s *txStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	return fn(s)
}

// Close is a no-op for a transaction store; the parent store owns the connection.
func (s *txStore) Close() error {
	return nil
}
