package mirror

import (
	"context"
	"encoding/json"
	"time"

	"github.com/palak-ardeshna/crmd/internal/client"
	"github.com/palak-ardeshna/crmd/internal/idgen"
	"github.com/palak-ardeshna/crmd/internal/model"
)

// Mutation protocol, client mode: the local change is applied strictly
// before the network request is issued, giving immediate feedback; on
// failure the optimistic change is reverted and *MutationFailedError is
// returned, so the mirror state after the failure branch equals the state
// before the mutation. Server mode skips optimistic state and resyncs the
// visible page after the call settles.

// provisionalID generates the placeholder id an optimistic create carries
// until the server's persisted copy replaces it.
func provisionalID(kind model.Kind) string {
	prefix := map[model.Kind]string{
		model.KindLead:     idgen.PrefixLead,
		model.KindProject:  idgen.PrefixProject,
		model.KindProposal: idgen.PrefixProposal,
	}[kind]
	id, err := idgen.Generate(prefix)
	if err != nil {
		// nanoid only fails when the system randomness source does;
		// a timestamp id keeps the optimistic path alive.
		return prefix + "tmp" + time.Now().Format("150405.000000000")
	}
	return id
}

// Create inserts the record optimistically, then persists it. On success the
// provisional record is replaced with the server's copy, which carries the
// generated id.
func (s *Store) Create(ctx context.Context, req *client.CreateRecordRequest) (*model.Record, error) {
	req.Kind = s.kind

	if s.Mode() == ModeServer {
		cctx, cancel := s.callCtx(ctx)
		defer cancel()
		rec, err := s.svc.CreateRecord(cctx, req)
		if err != nil {
			return nil, &MutationFailedError{Op: "create", ID: "", Err: err}
		}
		_ = s.resync(ctx, ModeServer)
		return rec, nil
	}

	optimistic := &model.Record{
		ID:          provisionalID(s.kind),
		Kind:        s.kind,
		Title:       req.Title,
		PipelineID:  req.PipelineID,
		StageID:     req.StageID,
		Client:      req.Client,
		Source:      req.Source,
		Category:    req.Category,
		Status:      req.Status,
		Priority:    req.Priority,
		Value:       req.Value,
		Description: req.Description,
		CreatedBy:   req.CreatedBy,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
		Fields:      append(json.RawMessage(nil), req.Fields...),
	}

	s.mu.Lock()
	s.all = append([]*model.Record{optimistic}, s.all...)
	s.recomputeLocked()
	s.mu.Unlock()

	cctx, cancel := s.callCtx(ctx)
	defer cancel()
	rec, err := s.svc.CreateRecord(cctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.all, optimistic.ID)
	if err != nil {
		if i >= 0 {
			s.all = append(s.all[:i], s.all[i+1:]...)
		}
		s.recomputeLocked()
		return nil, &MutationFailedError{Op: "create", ID: optimistic.ID, Err: err}
	}
	if i >= 0 {
		s.all[i] = rec
	}
	s.recomputeLocked()
	return rec, nil
}

// Update patches the record optimistically, then persists the change. On
// failure the prior copy is restored.
func (s *Store) Update(ctx context.Context, id string, req *client.UpdateRecordRequest) (*model.Record, error) {
	if s.Mode() == ModeServer {
		cctx, cancel := s.callCtx(ctx)
		defer cancel()
		rec, err := s.svc.UpdateRecord(cctx, id, req)
		if err != nil {
			return nil, &MutationFailedError{Op: "update", ID: id, Err: err}
		}
		_ = s.resync(ctx, ModeServer)
		return rec, nil
	}

	s.mu.Lock()
	i := indexOf(s.all, id)
	var prior *model.Record
	if i >= 0 {
		prior = s.all[i]
		s.all[i] = applyPatch(prior, req)
		s.recomputeLocked()
	}
	s.mu.Unlock()

	cctx, cancel := s.callCtx(ctx)
	defer cancel()
	rec, err := s.svc.UpdateRecord(cctx, id, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	i = indexOf(s.all, id)
	if err != nil {
		if i >= 0 && prior != nil {
			s.all[i] = prior
		}
		s.recomputeLocked()
		return nil, &MutationFailedError{Op: "update", ID: id, Err: err}
	}
	if i >= 0 {
		s.all[i] = rec
	}
	s.recomputeLocked()
	return rec, nil
}

// Delete removes the record optimistically, then persists the removal.
// Deleting an id the mirror no longer holds is a no-op success, and a 404
// from the server is swallowed once local state already reflects removal.
// On any other failure the record is reinserted at its original position.
func (s *Store) Delete(ctx context.Context, id string) error {
	if s.Mode() == ModeServer {
		cctx, cancel := s.callCtx(ctx)
		defer cancel()
		if err := s.svc.DeleteRecord(cctx, id); err != nil && !isGone(err) {
			return &MutationFailedError{Op: "delete", ID: id, Err: err}
		}
		return s.resync(ctx, ModeServer)
	}

	s.mu.Lock()
	i := indexOf(s.all, id)
	if i < 0 {
		s.mu.Unlock()
		return nil
	}
	removed := s.all[i]
	s.all = append(s.all[:i], s.all[i+1:]...)
	s.recomputeLocked()
	s.mu.Unlock()

	cctx, cancel := s.callCtx(ctx)
	defer cancel()
	err := s.svc.DeleteRecord(cctx, id)

	if err != nil && !isGone(err) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if indexOf(s.all, id) < 0 {
			if i > len(s.all) {
				i = len(s.all)
			}
			s.all = append(s.all[:i], append([]*model.Record{removed}, s.all[i:]...)...)
		}
		s.recomputeLocked()
		return &MutationFailedError{Op: "delete", ID: id, Err: err}
	}
	return nil
}

// BulkResult aggregates the outcome of a bulk operation. Partial failure is
// reported as counts, not per-item detail.
type BulkResult struct {
	SuccessCount int `json:"success_count"`
	ErrorCount   int `json:"error_count"`
}

// BulkDelete deletes each id through the single-delete protocol and counts
// outcomes. The final mirror state holds exactly the records whose delete
// calls failed, duplicates collapsed by the idempotent single delete.
func (s *Store) BulkDelete(ctx context.Context, ids []string) BulkResult {
	var res BulkResult
	for _, id := range ids {
		if err := s.Delete(ctx, id); err != nil {
			res.ErrorCount++
			continue
		}
		res.SuccessCount++
	}
	return res
}

// applyPatch returns a copy of rec with the request's non-nil fields applied.
func applyPatch(rec *model.Record, req *client.UpdateRecordRequest) *model.Record {
	out := rec.Clone()
	if req.Title != nil {
		out.Title = *req.Title
	}
	if req.PipelineID != nil {
		out.PipelineID = *req.PipelineID
	}
	if req.StageID != nil {
		out.StageID = *req.StageID
	}
	if req.Client != nil {
		out.Client = *req.Client
	}
	if req.Source != nil {
		out.Source = *req.Source
	}
	if req.Category != nil {
		out.Category = *req.Category
	}
	if req.Status != nil {
		out.Status = *req.Status
	}
	if req.Priority != nil {
		out.Priority = *req.Priority
	}
	if req.Value != nil {
		out.Value = *req.Value
	}
	if req.Description != nil {
		out.Description = *req.Description
	}
	if req.Fields != nil {
		out.Fields = append(json.RawMessage(nil), req.Fields...)
	}
	out.UpdatedAt = time.Now()
	return out
}
