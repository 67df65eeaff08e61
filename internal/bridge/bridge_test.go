package bridge

import (
	"path/filepath"
	"testing"

	"github.com/palak-ardeshna/crmd/internal/model"
)

func testBridge(t *testing.T) *Bridge {
	t.Helper()
	return NewAt(filepath.Join(t.TempDir(), "conversion.json"))
}

func TestBridge_StageAndConsume(t *testing.T) {
	b := testBridge(t)

	err := b.Stage(&Payload{
		SourceKind: model.KindLead,
		SourceID:   "ld-1",
		TargetKind: model.KindProject,
		Fields:     map[string]any{"title": "Acme rollout", "client": "Acme"},
	})
	if err != nil {
		t.Fatalf("Stage() error: %v", err)
	}

	p, err := b.Consume()
	if err != nil {
		t.Fatalf("Consume() error: %v", err)
	}
	if p == nil {
		t.Fatal("Consume() = nil, want staged payload")
	}
	if p.SourceID != "ld-1" || p.TargetKind != model.KindProject {
		t.Errorf("Consume() = %+v", p)
	}
	if !p.IsNew {
		t.Error("consumed payload must always be marked as a creation")
	}
	if p.Fields["title"] != "Acme rollout" {
		t.Errorf("Fields[title] = %v", p.Fields["title"])
	}
}

func TestBridge_ConsumeTwiceReturnsNone(t *testing.T) {
	b := testBridge(t)
	if err := b.Stage(&Payload{SourceKind: model.KindLead, SourceID: "ld-1"}); err != nil {
		t.Fatalf("Stage() error: %v", err)
	}

	if p, err := b.Consume(); err != nil || p == nil {
		t.Fatalf("first Consume() = %v, %v", p, err)
	}
	p, err := b.Consume()
	if err != nil {
		t.Fatalf("second Consume() error: %v", err)
	}
	if p != nil {
		t.Errorf("second Consume() = %+v, want nil", p)
	}
}

// The slot must survive "page reload": a fresh Bridge over the same path
// sees the payload staged by the previous one.
func TestBridge_SurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conversion.json")

	if err := NewAt(path).Stage(&Payload{SourceKind: model.KindLead, SourceID: "ld-7"}); err != nil {
		t.Fatalf("Stage() error: %v", err)
	}

	p, err := NewAt(path).Consume()
	if err != nil || p == nil {
		t.Fatalf("Consume() after restart = %v, %v", p, err)
	}
	if p.SourceID != "ld-7" {
		t.Errorf("SourceID = %s, want ld-7", p.SourceID)
	}
}

func TestBridge_StageOverwritesPending(t *testing.T) {
	b := testBridge(t)
	if err := b.Stage(&Payload{SourceID: "ld-1"}); err != nil {
		t.Fatalf("Stage() error: %v", err)
	}
	if err := b.Stage(&Payload{SourceID: "ld-2"}); err != nil {
		t.Fatalf("Stage() error: %v", err)
	}

	p, err := b.Consume()
	if err != nil || p == nil {
		t.Fatalf("Consume() = %v, %v", p, err)
	}
	if p.SourceID != "ld-2" {
		t.Errorf("SourceID = %s, want the later payload ld-2", p.SourceID)
	}
}

func TestBridge_StripsIDFields(t *testing.T) {
	b := testBridge(t)
	err := b.Stage(&Payload{
		SourceKind: model.KindLead,
		SourceID:   "ld-1",
		Fields:     map[string]any{"id": "ld-1", "_id": "ld-1", "title": "Acme"},
	})
	if err != nil {
		t.Fatalf("Stage() error: %v", err)
	}

	p, err := b.Consume()
	if err != nil || p == nil {
		t.Fatalf("Consume() = %v, %v", p, err)
	}
	for _, k := range []string{"id", "_id"} {
		if _, present := p.Fields[k]; present {
			t.Errorf("field %q survived staging, must be stripped", k)
		}
	}
	if p.Fields["title"] != "Acme" {
		t.Errorf("Fields[title] = %v, want Acme", p.Fields["title"])
	}
}

func TestBridge_ConsumeEmpty(t *testing.T) {
	p, err := testBridge(t).Consume()
	if err != nil || p != nil {
		t.Errorf("Consume() on empty slot = %v, %v; want nil, nil", p, err)
	}
}
