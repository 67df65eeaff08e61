package sync

import (
	"context"
	"database/sql"
	"sort"

	"github.com/palak-ardeshna/crmd/internal/model"
	"github.com/palak-ardeshna/crmd/internal/store"
)

// mockStore is a minimal in-memory store for sync tests.
type mockStore struct {
	records   map[string]*model.Record
	pipelines map[string]*model.Pipeline
	stages    map[string]*model.Stage
	filters   map[string]*model.FilterTag
}

func newMockStore() *mockStore {
	return &mockStore{
		records:   make(map[string]*model.Record),
		pipelines: make(map[string]*model.Pipeline),
		stages:    make(map[string]*model.Stage),
		filters:   make(map[string]*model.FilterTag),
	}
}

func (m *mockStore) CreateRecord(_ context.Context, rec *model.Record) error {
	m.records[rec.ID] = rec
	return nil
}

func (m *mockStore) GetRecord(_ context.Context, id string) (*model.Record, error) {
	r, ok := m.records[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return r, nil
}

func (m *mockStore) ListRecords(_ context.Context, _ model.RecordFilter) ([]*model.Record, int, error) {
	var result []*model.Record
	for _, r := range m.records {
		result = append(result, r)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result, len(result), nil
}

func (m *mockStore) UpdateRecord(_ context.Context, rec *model.Record) error {
	m.records[rec.ID] = rec
	return nil
}

func (m *mockStore) DeleteRecord(_ context.Context, id string) error {
	delete(m.records, id)
	return nil
}

func (m *mockStore) ReassignRecords(_ context.Context, _, _, _ string) (int, error) {
	return 0, nil
}

func (m *mockStore) CreatePipeline(_ context.Context, p *model.Pipeline) error {
	m.pipelines[p.ID] = p
	return nil
}

func (m *mockStore) GetPipeline(_ context.Context, id string) (*model.Pipeline, error) {
	p, ok := m.pipelines[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return p, nil
}

func (m *mockStore) ListPipelines(_ context.Context) ([]model.Pipeline, error) {
	var result []model.Pipeline
	for _, p := range m.pipelines {
		result = append(result, *p)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (m *mockStore) DeletePipeline(_ context.Context, id string) error {
	delete(m.pipelines, id)
	return nil
}

func (m *mockStore) CreateStage(_ context.Context, st *model.Stage) error {
	m.stages[st.ID] = st
	return nil
}

func (m *mockStore) GetStage(_ context.Context, id string) (*model.Stage, error) {
	st, ok := m.stages[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return st, nil
}

func (m *mockStore) ListStages(_ context.Context, _ string, _ model.Kind) ([]model.Stage, error) {
	var result []model.Stage
	for _, st := range m.stages {
		result = append(result, *st)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (m *mockStore) UpdateStage(_ context.Context, st *model.Stage) error {
	m.stages[st.ID] = st
	return nil
}

func (m *mockStore) DeleteStage(_ context.Context, id string) error {
	delete(m.stages, id)
	return nil
}

func (m *mockStore) ClearDefaultStage(_ context.Context, _ string, _ model.Kind) error {
	return nil
}

func (m *mockStore) CreateFilterTag(_ context.Context, tag *model.FilterTag) error {
	m.filters[tag.ID] = tag
	return nil
}

func (m *mockStore) GetFilterTag(_ context.Context, id string) (*model.FilterTag, error) {
	t, ok := m.filters[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return t, nil
}

func (m *mockStore) ListFilterTags(_ context.Context, _ model.FilterKind) ([]model.FilterTag, error) {
	var result []model.FilterTag
	for _, t := range m.filters {
		result = append(result, *t)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (m *mockStore) DeleteFilterTag(_ context.Context, id string) error {
	delete(m.filters, id)
	return nil
}

func (m *mockStore) RunInTransaction(_ context.Context, fn func(tx store.Store) error) error {
	return fn(m)
}

func (m *mockStore) Close() error {
	return nil
}
