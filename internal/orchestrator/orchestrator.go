package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"factstream/internal/media"
	"factstream/internal/model"
	"factstream/internal/pipeline"
	"factstream/internal/session"
	"factstream/internal/store"
)

// ErrNotProcessing marks a fragment submitted while no processing run is in
// progress.
var ErrNotProcessing = errors.New("no processing run in progress")

// ErrStaleSession marks a fragment that targets a session other than the one
// being processed.
var ErrStaleSession = errors.New("fragment targets a superseded session")

// SourceInspector fetches metadata for a video source.
type SourceInspector interface {
	VideoInfo(ctx context.Context, sourceURL string) (*media.VideoInfo, error)
}

// Orchestrator is the seam the transport layer talks to. It owns the single
// pipeline run per process and routes session, fragment and subscription
// operations to the components underneath.
type Orchestrator struct {
	registry *session.Registry
	pipeline *pipeline.Pipeline
	hub      Subscriptions
	store    store.Store
	verifier pipeline.Verifier
	media    SourceInspector // nil disables metadata lookup
	logger   *slog.Logger

	// Serializes set-source/start/stop decisions against each other
	mu sync.Mutex
}

// Subscriptions is the live-observer surface of the hub.
type Subscriptions interface {
	Subscribe(observerKey string) <-chan *model.VerificationResult
	Unsubscribe(observerKey string)
}

// New wires the orchestrator.
func New(
	registry *session.Registry,
	pipe *pipeline.Pipeline,
	subs Subscriptions,
	st store.Store,
	verifier pipeline.Verifier,
	inspector SourceInspector,
	logger *slog.Logger,
) *Orchestrator {
	return &Orchestrator{
		registry: registry,
		pipeline: pipe,
		hub:      subs,
		store:    st,
		verifier: verifier,
		media:    inspector,
		logger:   logger,
	}
}

// SetSource resolves a source reference and creates the new active session,
// superseding the previous one. A pipeline still running for the superseded
// session is stopped before this returns. Only ErrInvalidSource is surfaced
// for bad references; metadata lookup failures degrade to placeholder
// metadata as the session can still be processed.
func (o *Orchestrator) SetSource(ctx context.Context, rawRef, requester string) (*model.Session, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	src, err := session.ParseSourceRef(rawRef)
	if err != nil {
		return nil, err
	}

	meta := session.Metadata{Requester: requester}
	if src.IsVideo && o.media != nil {
		if info, err := o.media.VideoInfo(ctx, src.URL); err != nil {
			o.logger.Warn("video metadata lookup failed", "source_ref", src.Ref, "error", err)
		} else {
			meta.Title = info.Title
			meta.DurationSeconds = info.DurationSeconds
			meta.IsLive = info.IsLive
		}
	}

	sess, err := o.registry.Create(ctx, rawRef, meta)
	if err != nil {
		return nil, err
	}

	// The stale run would notice supersession on its own; stopping here
	// makes the hand-off prompt and deterministic.
	if running, staleID := o.pipeline.Running(); running && staleID != sess.ID {
		o.pipeline.Stop()
	}

	return sess, nil
}

// StartProcessing begins the pipeline run for the current active session.
// With no active session it is a no-op with a descriptive status, not an
// error.
func (o *Orchestrator) StartProcessing(ctx context.Context) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if running, sessionID := o.pipeline.Running(); running {
		return fmt.Sprintf("processing already running for session %s", sessionID), nil
	}

	started, err := o.pipeline.Start(ctx)
	if err != nil {
		return "", fmt.Errorf("start processing: %w", err)
	}
	if !started {
		return "no active session to process", nil
	}
	return "processing started", nil
}

// StopProcessing stops the current run, if any. Idempotent and always safe.
func (o *Orchestrator) StopProcessing() string {
	o.pipeline.Stop()
	return "processing stopped"
}

// CurrentSession returns the active session, or nil when none exists.
func (o *Orchestrator) CurrentSession(ctx context.Context) (*model.Session, error) {
	return o.registry.Active(ctx)
}

// SessionResults returns a session's persisted results in production order.
func (o *Orchestrator) SessionResults(ctx context.Context, sessionID string) ([]*model.VerificationResult, error) {
	return o.store.ResultsBySession(ctx, sessionID)
}

// SubmitFragment pushes one transcript fragment into the running pipeline.
// The result is nil when the fragment was filtered (interim, too short, or a
// duplicate id).
func (o *Orchestrator) SubmitFragment(sessionID, segmentID, text string, isFinal bool) (*model.VerificationResult, error) {
	running, currentID := o.pipeline.Running()
	if !running {
		return nil, ErrNotProcessing
	}
	if sessionID != "" && sessionID != currentID {
		return nil, ErrStaleSession
	}

	return o.pipeline.ProcessFragment(pipeline.Fragment{
		SegmentID: segmentID,
		Text:      text,
		IsFinal:   isFinal,
	}), nil
}

// Verify is the direct, session-less verification path. The result is
// persisted for the record but not broadcast.
func (o *Orchestrator) Verify(ctx context.Context, statement, contextText string) *model.VerificationResult {
	checked := o.verifier.Check(ctx, statement, contextText)

	result := new(model.VerificationResult)
	*result = *checked
	result.ID = uuid.NewString()

	if err := o.store.AppendResult(ctx, result); err != nil {
		o.logger.Error("persist direct verification failed", "error", err)
	}
	return result
}

// Subscribe registers a live observer for a session key.
func (o *Orchestrator) Subscribe(observerKey string) <-chan *model.VerificationResult {
	return o.hub.Subscribe(observerKey)
}

// Unsubscribe removes a live observer.
func (o *Orchestrator) Unsubscribe(observerKey string) {
	o.hub.Unsubscribe(observerKey)
}
