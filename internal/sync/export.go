package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/palak-ardeshna/crmd/internal/model"
	"github.com/palak-ardeshna/crmd/internal/store"
)

// header is the first JSONL record written by ExportJSONL.
type header struct {
	Version       string    `json:"version"`
	Type          string    `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	PipelineCount int       `json:"pipeline_count"`
	StageCount    int       `json:"stage_count"`
	FilterCount   int       `json:"filter_count"`
	RecordCount   int       `json:"record_count"`
}

// record wraps a single JSONL line with a type discriminator.
type record struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// ExportJSONL writes the full workspace state as JSONL to w. Configuration
// rows (pipelines, stages, filters) come first so an importer can rebuild
// the stage registry before it sees any record referencing a stage.
func ExportJSONL(ctx context.Context, s store.Store, w io.Writer) error {
	pipelines, err := s.ListPipelines(ctx)
	if err != nil {
		return fmt.Errorf("list pipelines: %w", err)
	}

	stages, err := s.ListStages(ctx, "", "")
	if err != nil {
		return fmt.Errorf("list stages: %w", err)
	}

	filters, err := s.ListFilterTags(ctx, "")
	if err != nil {
		return fmt.Errorf("list filters: %w", err)
	}

	// Fetch all records (no filter, no limit).
	records, _, err := s.ListRecords(ctx, model.RecordFilter{Sort: "created_at"})
	if err != nil {
		return fmt.Errorf("list records: %w", err)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].ID < records[j].ID
	})

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(header{
		Version:       "1",
		Type:          "header",
		Timestamp:     time.Now().UTC(),
		PipelineCount: len(pipelines),
		StageCount:    len(stages),
		FilterCount:   len(filters),
		RecordCount:   len(records),
	}); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}

	for _, p := range pipelines {
		if err := enc.Encode(record{Type: "pipeline", Data: p}); err != nil {
			return fmt.Errorf("encode pipeline %s: %w", p.ID, err)
		}
	}

	for _, st := range stages {
		if err := enc.Encode(record{Type: "stage", Data: st}); err != nil {
			return fmt.Errorf("encode stage %s: %w", st.ID, err)
		}
	}

	for _, f := range filters {
		if err := enc.Encode(record{Type: "filter", Data: f}); err != nil {
			return fmt.Errorf("encode filter %s: %w", f.ID, err)
		}
	}

	for _, r := range records {
		if err := enc.Encode(record{Type: "record", Data: r}); err != nil {
			return fmt.Errorf("encode record %s: %w", r.ID, err)
		}
	}

	return nil
}
