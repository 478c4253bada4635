package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"factstream/internal/model"
	"factstream/internal/store"
)

// Registry owns the single-active-session invariant. The store is the record
// of truth; the registry only shapes and validates what goes into it.
type Registry struct {
	store  store.Store
	logger *slog.Logger
}

// NewRegistry creates a registry over the given store
func NewRegistry(st store.Store, logger *slog.Logger) *Registry {
	return &Registry{store: st, logger: logger}
}

// Metadata describes the source a new session is bound to.
type Metadata struct {
	Title           string
	DurationSeconds int
	IsLive          bool
	Requester       string
}

// Create resolves the raw source reference, atomically demotes the previous
// active session and inserts the new one as active. Returns ErrInvalidSource
// for unresolvable references; no state changes in that case.
func (r *Registry) Create(ctx context.Context, rawRef string, meta Metadata) (*model.Session, error) {
	src, err := ParseSourceRef(rawRef)
	if err != nil {
		return nil, err
	}

	session := &model.Session{
		ID:              uuid.NewString(),
		SourceRef:       src.Ref,
		SourceURL:       src.URL,
		Title:           meta.Title,
		DurationSeconds: meta.DurationSeconds,
		IsLive:          meta.IsLive,
		Status:          model.SessionActive,
		Requester:       meta.Requester,
		CreatedAt:       time.Now().UTC(),
	}
	if session.Title == "" {
		session.Title = src.Ref
	}

	if err := r.store.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	r.logger.Info("session created",
		"session_id", session.ID,
		"source_ref", session.SourceRef,
		"is_live", session.IsLive,
	)
	return session, nil
}

// Active returns the current active session, or nil when none exists.
func (r *Registry) Active(ctx context.Context) (*model.Session, error) {
	return r.store.ActiveSession(ctx)
}

// ByID returns a session by id, or nil when unknown.
func (r *Registry) ByID(ctx context.Context, id string) (*model.Session, error) {
	return r.store.SessionByID(ctx, id)
}
