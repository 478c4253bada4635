package store

import (
	"context"

	"factstream/internal/model"
)

// Store is the durable, append-only record of sessions, transcript segments
// and their verification results. Sessions are never deleted, only demoted;
// segments and results are write-once.
type Store interface {
	// CreateSession atomically demotes every active session and inserts the
	// new one as active. Last writer wins under concurrent creation.
	CreateSession(ctx context.Context, session *model.Session) error

	// ActiveSession returns the most recently created active session, or
	// nil when none exists.
	ActiveSession(ctx context.Context) (*model.Session, error)

	// SessionByID returns a session by id, or nil when unknown.
	SessionByID(ctx context.Context, id string) (*model.Session, error)

	// AppendSegment records one transcript segment.
	AppendSegment(ctx context.Context, segment *model.Segment) error

	// MarkSegmentProcessed flags a segment once its verification result has
	// been persisted.
	MarkSegmentProcessed(ctx context.Context, segmentID string) error

	// AppendResult records one verification result.
	AppendResult(ctx context.Context, result *model.VerificationResult) error

	// ResultsBySession returns a session's results in production order.
	ResultsBySession(ctx context.Context, sessionID string) ([]*model.VerificationResult, error)
}
