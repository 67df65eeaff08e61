// Package mirror keeps a client-held copy of one record collection
// consistent with optimistic create/update/delete operations, and derives
// the visible page from it. Two modes exist per list screen: client mode
// filters and paginates the local superset in memory; server mode forwards
// every filter change to the entity service and shows the returned page.
package mirror

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/palak-ardeshna/crmd/internal/client"
	"github.com/palak-ardeshna/crmd/internal/model"
)

// Mode selects how the visible page is produced.
type Mode string

const (
	// ModeClient fetches the whole collection once and filters/paginates
	// in memory. This is the default.
	ModeClient Mode = "client"
	// ModeServer issues a fresh paginated query for every filter change.
	ModeServer Mode = "server"
)

// IsValid checks whether the mode is a known value.
func (m Mode) IsValid() bool {
	return m == ModeClient || m == ModeServer
}

// RecordService is the slice of the entity service the mirror depends on.
// *client.HTTPClient satisfies it.
type RecordService interface {
	ListRecords(ctx context.Context, filter model.RecordFilter) (*client.ListRecordsResponse, error)
	CreateRecord(ctx context.Context, req *client.CreateRecordRequest) (*model.Record, error)
	UpdateRecord(ctx context.Context, id string, req *client.UpdateRecordRequest) (*model.Record, error)
	DeleteRecord(ctx context.Context, id string) error
}

// MutationFailedError wraps a failed network mutation. By the time it is
// returned the optimistic local change has already been reverted, so the
// mirror never diverges from the server.
type MutationFailedError struct {
	Op  string
	ID  string
	Err error
}

func (e *MutationFailedError) Error() string {
	return fmt.Sprintf("%s %s failed: %v", e.Op, e.ID, e.Err)
}

func (e *MutationFailedError) Unwrap() error { return e.Err }

// DefaultPageSize is used when no page size is configured.
const DefaultPageSize = 10

// Store mirrors one record collection. All methods are safe for concurrent
// use; the optimistic update is applied under the lock strictly before the
// network request is issued, and the settle branch re-acquires it after.
type Store struct {
	svc     RecordService
	kind    model.Kind
	timeout time.Duration

	mu       sync.Mutex
	mode     Mode
	all      []*model.Record // client mode superset; nil in server mode
	visible  []*model.Record
	total    int // filtered total (client) or server-reported total
	filter   model.RecordFilter
	page     int // 1-based
	pageSize int
	loaded   bool
}

// New creates a mirror for one record kind in client mode. Call Load before
// reading the visible page.
func New(svc RecordService, kind model.Kind) *Store {
	return &Store{
		svc:      svc,
		kind:     kind,
		timeout:  client.DefaultTimeout,
		mode:     ModeClient,
		page:     1,
		pageSize: DefaultPageSize,
	}
}

// SetTimeout overrides the per-network-call timeout.
func (s *Store) SetTimeout(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timeout = d
}

// Mode returns the active mode.
func (s *Store) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Load performs the initial fetch for the active mode.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	mode := s.mode
	s.mu.Unlock()
	return s.resync(ctx, mode)
}

// SetMode switches between client and server mode. Switching always forces
// a full resync: into client mode the unfiltered collection is re-fetched,
// into server mode the local superset is discarded and a filtered query is
// issued.
func (s *Store) SetMode(ctx context.Context, mode Mode) error {
	if !mode.IsValid() {
		return fmt.Errorf("unknown mirror mode %q", mode)
	}
	return s.resync(ctx, mode)
}

// resync re-fetches state for the given mode and installs it atomically.
func (s *Store) resync(ctx context.Context, mode Mode) error {
	s.mu.Lock()
	filter := s.remoteFilter(mode)
	s.mu.Unlock()

	resp, err := s.fetch(ctx, filter)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = mode
	s.loaded = true
	if mode == ModeClient {
		s.all = resp.Records
		s.recomputeLocked()
		return nil
	}
	s.all = nil
	s.visible = resp.Records
	s.total = resp.Total
	return nil
}

// remoteFilter builds the query sent to the service for the given mode.
// Client mode fetches the entire unfiltered collection of the kind; server
// mode sends the active filters plus pagination.
func (s *Store) remoteFilter(mode Mode) model.RecordFilter {
	if mode == ModeClient {
		return model.RecordFilter{Kind: s.kind}
	}
	f := s.filter
	f.Kind = s.kind
	f.Limit = s.pageSize
	f.Offset = (s.page - 1) * s.pageSize
	return f
}

// SetFilter replaces the active filters and resets to the first page.
// In client mode this is a pure in-memory recompute; in server mode it
// triggers a remote fetch.
func (s *Store) SetFilter(ctx context.Context, f model.RecordFilter) error {
	s.mu.Lock()
	f.Kind = s.kind
	f.Limit, f.Offset = 0, 0
	s.filter = f
	s.page = 1
	if s.mode == ModeClient {
		s.recomputeLocked()
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()
	return s.resync(ctx, ModeServer)
}

// SetPage moves to the given 1-based page.
func (s *Store) SetPage(ctx context.Context, page int) error {
	if page < 1 {
		page = 1
	}
	s.mu.Lock()
	s.page = page
	if s.mode == ModeClient {
		s.recomputeLocked()
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()
	return s.resync(ctx, ModeServer)
}

// SetPageSize changes the page size and resets to the first page.
func (s *Store) SetPageSize(ctx context.Context, size int) error {
	if size < 1 {
		size = DefaultPageSize
	}
	s.mu.Lock()
	s.pageSize = size
	s.page = 1
	if s.mode == ModeClient {
		s.recomputeLocked()
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()
	return s.resync(ctx, ModeServer)
}

// Visible returns the current page. The slice is a copy; the records are
// shared and must be treated as read-only by callers.
func (s *Store) Visible() []*model.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.Record, len(s.visible))
	copy(out, s.visible)
	return out
}

// Total returns the number of records matching the active filters.
func (s *Store) Total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

// Page returns the current 1-based page number.
func (s *Store) Page() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

// All returns a copy of the local superset. It is empty in server mode.
func (s *Store) All() []*model.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.Record, len(s.all))
	copy(out, s.all)
	return out
}

// recomputeLocked derives visible/total from all + filter + page. The page
// is clamped to the last non-empty page so deletions never strand the view
// past the end. Callers must hold s.mu.
func (s *Store) recomputeLocked() {
	if s.mode != ModeClient {
		return
	}
	var filtered []*model.Record
	for _, r := range s.all {
		if s.filter.Matches(r) {
			filtered = append(filtered, r)
		}
	}
	s.total = len(filtered)

	lastPage := (s.total + s.pageSize - 1) / s.pageSize
	if lastPage < 1 {
		lastPage = 1
	}
	if s.page > lastPage {
		s.page = lastPage
	}

	start := (s.page - 1) * s.pageSize
	if start > len(filtered) {
		start = len(filtered)
	}
	end := start + s.pageSize
	if end > len(filtered) {
		end = len(filtered)
	}
	s.visible = filtered[start:end]
}

// callCtx detaches the network call from the caller's cancellation while
// still bounding it with the configured timeout. A torn-down caller must not
// abandon the settle/revert branch, or the mirror would diverge for every
// other view sharing it.
func (s *Store) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
}

func (s *Store) fetch(ctx context.Context, filter model.RecordFilter) (*client.ListRecordsResponse, error) {
	cctx, cancel := s.callCtx(ctx)
	defer cancel()
	resp, err := s.svc.ListRecords(cctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return resp, nil
}

// isGone reports whether a delete failed only because the record no longer
// exists server-side. Once the local state already reflects removal that is
// a success, not an error.
func isGone(err error) bool {
	var apiErr *client.APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// indexOf returns the position of id in records, or -1.
func indexOf(records []*model.Record, id string) int {
	for i, r := range records {
		if r.ID == id {
			return i
		}
	}
	return -1
}
