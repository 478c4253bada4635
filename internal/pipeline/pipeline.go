package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"factstream/internal/config"
	"factstream/internal/model"
	"factstream/internal/store"
)

// Verifier produces a verdict for one statement. It never fails; degraded
// paths come back as Unverified results.
type Verifier interface {
	Check(ctx context.Context, statement, contextText string) *model.VerificationResult
}

// Source produces transcript text from a video source.
type Source interface {
	// NextFragment pulls and transcribes one audio window of a live stream.
	NextFragment(ctx context.Context, sourceURL string, window time.Duration) (string, error)
	// FullTranscript extracts and transcribes a static video's full audio.
	FullTranscript(ctx context.Context, sourceURL string) (string, error)
}

// Broadcaster fans one produced result out to live observers of a session.
type Broadcaster interface {
	Publish(observerKey string, result *model.VerificationResult)
}

// ActiveSessions exposes the current active session, for supersession checks.
type ActiveSessions interface {
	Active(ctx context.Context) (*model.Session, error)
}

// Fragment is one incoming unit of raw text. SegmentID may be supplied by
// the caller for idempotent re-delivery; when empty the pipeline assigns the
// next id in the session's sequence.
type Fragment struct {
	SegmentID string
	Text      string
	IsFinal   bool
}

// Pipeline is the segment ingestion loop: it consumes fragments for exactly
// one session at a time, filters and deduplicates them, serializes
// verification through the Verifier, writes through the store and emits
// completed results. States are Idle and Running; a stopped pipeline returns
// to Idle and can be restarted against the then-current active session.
type Pipeline struct {
	store    store.Store
	verifier Verifier
	source   Source
	hub      Broadcaster
	sessions ActiveSessions
	opts     config.PipelineConfig
	logger   *slog.Logger

	mu        sync.Mutex
	running   bool
	sessionID string
	seen      map[string]struct{}
	seq       int
	cancel    context.CancelFunc
	done      chan struct{}
}

// New creates an idle pipeline.
func New(st store.Store, verifier Verifier, source Source, hub Broadcaster, sessions ActiveSessions, opts config.PipelineConfig, logger *slog.Logger) *Pipeline {
	if opts.MinSegmentLength <= 0 {
		opts.MinSegmentLength = 10
	}
	if opts.LiveWindow <= 0 {
		opts.LiveWindow = 30 * time.Second
	}
	if opts.LiveErrorBackoff <= 0 {
		opts.LiveErrorBackoff = 10 * time.Second
	}
	if opts.StaticThrottle <= 0 {
		opts.StaticThrottle = 2 * time.Second
	}

	return &Pipeline{
		store:    st,
		verifier: verifier,
		source:   source,
		hub:      hub,
		sessions: sessions,
		opts:     opts,
		logger:   logger,
	}
}

// Running reports whether a run is in progress and for which session.
func (p *Pipeline) Running() (bool, string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running, p.sessionID
}

// Start transitions Idle to Running against the current active session and
// begins consuming fragments. It is a no-op (false) when already running or
// when no active session exists.
func (p *Pipeline) Start(ctx context.Context) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return false, nil
	}

	sess, err := p.sessions.Active(ctx)
	if err != nil {
		return false, err
	}
	if sess == nil {
		return false, nil
	}

	// The run outlives the request that started it; cancellation comes from
	// Stop or supersession, not from the caller's context.
	runCtx, cancel := context.WithCancel(context.Background())

	p.running = true
	p.sessionID = sess.ID
	p.seen = make(map[string]struct{})
	p.seq = 0
	p.cancel = cancel
	p.done = make(chan struct{})

	go p.run(runCtx, sess)
	return true, nil
}

// Stop transitions Running to Idle. Cancellation is cooperative: an
// in-flight fragment cycle completes, is persisted and broadcast, and no
// further fragments are consumed. Safe to call in any state, any number of
// times.
func (p *Pipeline) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	cancel := p.cancel
	done := p.done
	p.mu.Unlock()

	cancel()
	<-done
}

func (p *Pipeline) run(ctx context.Context, sess *model.Session) {
	defer func() {
		p.mu.Lock()
		p.running = false
		p.sessionID = ""
		p.seen = nil
		p.mu.Unlock()
		close(p.done)
		p.logger.Info("pipeline stopped", "session_id", sess.ID)
	}()

	p.logger.Info("pipeline started",
		"session_id", sess.ID,
		"source_ref", sess.SourceRef,
		"is_live", sess.IsLive,
	)

	switch {
	case sess.SourceURL == "":
		p.runPushMode(ctx, sess)
	case sess.IsLive:
		p.runLive(ctx, sess)
	default:
		p.runStatic(ctx, sess)
	}
}

// runPushMode has nothing to pull; it idles until stopped or superseded,
// while SubmitFragment feeds segments in from the transport layer.
func (p *Pipeline) runPushMode(ctx context.Context, sess *model.Session) {
	ticker := time.NewTicker(p.opts.LiveWindow)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !p.sessionStillActive(sess.ID) {
				return
			}
		}
	}
}

// runLive pulls one audio window at a time, pacing itself between windows
// and backing off on adapter failures instead of terminating.
func (p *Pipeline) runLive(ctx context.Context, sess *model.Session) {
	for {
		if ctx.Err() != nil || !p.sessionStillActive(sess.ID) {
			return
		}

		text, err := p.source.NextFragment(ctx, sess.SourceURL, p.opts.LiveWindow)
		if err != nil {
			p.logger.Warn("live fragment failed, backing off",
				"session_id", sess.ID, "error", err)
			if !p.wait(ctx, p.opts.LiveErrorBackoff) {
				return
			}
			continue
		}

		if strings.TrimSpace(text) != "" {
			p.ProcessFragment(Fragment{Text: text, IsFinal: true})
		}

		if !p.wait(ctx, p.opts.LiveWindow) {
			return
		}
	}
}

// runStatic drains the adapter's full output once, at sentence granularity,
// throttling between fragments to stay under the verifier's own quota.
func (p *Pipeline) runStatic(ctx context.Context, sess *model.Session) {
	text, err := p.source.FullTranscript(ctx, sess.SourceURL)
	if err != nil {
		p.logger.Error("full transcript failed", "session_id", sess.ID, "error", err)
		return
	}

	for _, sentence := range SplitSentences(text) {
		if ctx.Err() != nil || !p.sessionStillActive(sess.ID) {
			return
		}

		p.ProcessFragment(Fragment{Text: sentence, IsFinal: true})

		if !p.wait(ctx, p.opts.StaticThrottle) {
			return
		}
	}
}

// ProcessFragment runs one fragment through the dedup/filter/verify/persist/
// broadcast cycle. Individual stage failures are logged and absorbed; the
// returned result is nil for ineligible or duplicate fragments. Callers in
// push mode invoke this directly.
func (p *Pipeline) ProcessFragment(frag Fragment) *model.VerificationResult {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	sessionID := p.sessionID

	id := frag.SegmentID
	if id == "" {
		id = model.SegmentID(sessionID, p.seq)
		p.seq++
	}

	if _, dup := p.seen[id]; dup {
		p.mu.Unlock()
		return nil
	}

	eligible := frag.IsFinal && len(strings.TrimSpace(frag.Text)) > p.opts.MinSegmentLength
	if eligible {
		p.seen[id] = struct{}{}
	}
	p.mu.Unlock()

	// External calls run under their own deadline handling; stopping the
	// pipeline does not abort an in-flight cycle.
	ctx := context.Background()

	segment := &model.Segment{
		ID:         id,
		SessionID:  sessionID,
		Text:       frag.Text,
		IsFinal:    frag.IsFinal,
		ReceivedAt: time.Now().UTC(),
	}
	if err := p.store.AppendSegment(ctx, segment); err != nil {
		// Left unprocessed in the store; the loop keeps going
		p.logger.Error("persist segment failed", "segment_id", id, "error", err)
	}

	if !eligible {
		return nil
	}

	if !p.sessionStillActive(sessionID) {
		return nil
	}

	checked := p.verifier.Check(ctx, strings.TrimSpace(frag.Text), "")

	// The verifier may hand back a shared (cached) result; tag a copy
	result := new(model.VerificationResult)
	*result = *checked
	result.ID = uuid.NewString()
	result.SegmentID = id
	result.SessionID = sessionID

	if err := p.store.AppendResult(ctx, result); err != nil {
		p.logger.Error("persist result failed", "segment_id", id, "error", err)
	} else if err := p.store.MarkSegmentProcessed(ctx, id); err != nil {
		p.logger.Warn("mark segment processed failed", "segment_id", id, "error", err)
	}

	p.hub.Publish(sessionID, result)

	p.logger.Info("segment processed",
		"segment_id", id,
		"verdict", result.Verdict,
		"statement", truncate(frag.Text, 50),
	)
	return result
}

// sessionStillActive guards against a stale run writing on behalf of a
// superseded session.
func (p *Pipeline) sessionStillActive(sessionID string) bool {
	active, err := p.sessions.Active(context.Background())
	if err != nil {
		p.logger.Warn("active session lookup failed", "error", err)
		return false
	}
	return active != nil && active.ID == sessionID
}

// wait sleeps for d unless the run is cancelled first. Returns false on
// cancellation.
func (p *Pipeline) wait(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
