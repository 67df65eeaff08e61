// Package server implements the crmd HTTP/JSON API on top of a store.Store
// and an events.Publisher.
package server

import (
	"context"
	"log/slog"

	"github.com/palak-ardeshna/crmd/internal/events"
	"github.com/palak-ardeshna/crmd/internal/store"
)

// CRMServer holds the persistence and event publishing dependencies shared
// by every handler.
type CRMServer struct {
	store     store.Store
	publisher events.Publisher
}

// NewCRMServer returns a new CRMServer backed by the given store and publisher.
func NewCRMServer(s store.Store, p events.Publisher) *CRMServer {
	return &CRMServer{
		store:     s,
		publisher: p,
	}
}

// publish emits an event to the publisher. Publishing is best-effort;
// failures are logged but do not block the caller.
func (s *CRMServer) publish(ctx context.Context, topic string, event any) {
	if err := s.publisher.Publish(ctx, topic, event); err != nil {
		slog.Warn("failed to publish event", "topic", topic, "error", err)
	}
}

// inputError indicates invalid user input.
// Transport layers map this to 400 Bad Request.
type inputError string

func (e inputError) Error() string { return string(e) }
