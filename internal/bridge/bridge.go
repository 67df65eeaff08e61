// Package bridge implements the one-shot conversion handoff between two
// screens (e.g. lead → project). The source screen stages a partial record
// into a durable single slot; the destination screen consumes it exactly
// once during initialization. The slot is a file under the user state
// directory, so it survives a full process restart.
package bridge

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/palak-ardeshna/crmd/internal/model"
)

// Payload is the staged conversion data. Consumers must treat it as
// advisory defaults for a creation form, never as an update target.
type Payload struct {
	SourceKind model.Kind     `json:"source_kind"`
	SourceID   string         `json:"source_id"`
	TargetKind model.Kind     `json:"target_kind"`
	Fields     map[string]any `json:"fields,omitempty"`
	IsNew      bool           `json:"is_new"`
	StagedAt   time.Time      `json:"staged_at"`
}

// Bridge is a file-backed single slot. At most one conversion is in flight
// at a time; staging overwrites any pending payload.
type Bridge struct {
	path string
}

// New returns a bridge backed by the default slot location,
// ~/.local/state/crmd/conversion.json.
func New() (*Bridge, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	dir := filepath.Join(home, ".local", "state", "crmd")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	return &Bridge{path: filepath.Join(dir, "conversion.json")}, nil
}

// NewAt returns a bridge backed by the given slot file.
func NewAt(path string) *Bridge {
	return &Bridge{path: path}
}

// idFields are stripped from the staged fields: the destination operation is
// always a creation, and a carried-over source id would turn it into an
// accidental update.
var idFields = []string{"id", "_id", "record_id"}

// Stage serializes the payload into the slot, overwriting any prior pending
// payload. The destination is always marked as a creation.
func (b *Bridge) Stage(p *Payload) error {
	staged := *p
	staged.IsNew = true
	staged.StagedAt = time.Now()
	if staged.Fields != nil {
		fields := make(map[string]any, len(staged.Fields))
		for k, v := range staged.Fields {
			fields[k] = v
		}
		for _, k := range idFields {
			delete(fields, k)
		}
		staged.Fields = fields
	}

	data, err := json.Marshal(&staged)
	if err != nil {
		return fmt.Errorf("marshal conversion payload: %w", err)
	}

	// Write-then-rename keeps the slot atomic: a consumer never sees a
	// half-written payload.
	tmp := b.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write conversion slot: %w", err)
	}
	if err := os.Rename(tmp, b.path); err != nil {
		return fmt.Errorf("commit conversion slot: %w", err)
	}
	return nil
}

// Consume reads and atomically clears the slot. It returns (nil, nil) when
// no conversion is pending; a second call always does.
func (b *Bridge) Consume() (*Payload, error) {
	data, err := os.ReadFile(b.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read conversion slot: %w", err)
	}
	if err := os.Remove(b.path); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("clear conversion slot: %w", err)
	}

	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		// A corrupt slot is cleared rather than wedging every future
		// conversion behind it.
		return nil, fmt.Errorf("decode conversion payload: %w", err)
	}
	return &p, nil
}
