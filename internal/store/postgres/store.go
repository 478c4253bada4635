package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"factstream/internal/model"
)

// Store is the Postgres-backed segment store.
type Store struct {
	db *sqlx.DB
}

// Open connects to Postgres and ensures the schema exists.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	s := &Store{db: db}
	if err := s.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

// New wraps an existing connection, for tests.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		source_ref TEXT NOT NULL,
		source_url TEXT NOT NULL DEFAULT '',
		title TEXT NOT NULL DEFAULT '',
		duration_seconds INT NOT NULL DEFAULT 0,
		is_live BOOLEAN NOT NULL DEFAULT FALSE,
		status TEXT NOT NULL,
		requester TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_status_created ON sessions (status, created_at DESC);

	CREATE TABLE IF NOT EXISTS segments (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL REFERENCES sessions (id),
		text TEXT NOT NULL,
		is_final BOOLEAN NOT NULL,
		processed BOOLEAN NOT NULL DEFAULT FALSE,
		received_at TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_segments_session ON segments (session_id, received_at);

	CREATE TABLE IF NOT EXISTS fact_checks (
		id TEXT PRIMARY KEY,
		segment_id TEXT NOT NULL DEFAULT '',
		session_id TEXT NOT NULL DEFAULT '',
		statement TEXT NOT NULL,
		verdict TEXT NOT NULL,
		confidence_score DOUBLE PRECISION NOT NULL,
		explanation TEXT NOT NULL,
		sources JSONB NOT NULL DEFAULT '[]',
		processing_time_ms BIGINT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		seq BIGSERIAL
	);
	CREATE INDEX IF NOT EXISTS idx_fact_checks_session ON fact_checks (session_id, seq);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// CreateSession demotes every active session and inserts the new one as
// active, in one transaction.
func (s *Store) CreateSession(ctx context.Context, session *model.Session) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`UPDATE sessions SET status = $1 WHERE status = $2`,
		model.SessionInactive, model.SessionActive,
	); err != nil {
		return fmt.Errorf("demote active sessions: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO sessions (id, source_ref, source_url, title, duration_seconds, is_live, status, requester, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		session.ID, session.SourceRef, session.SourceURL, session.Title,
		session.DurationSeconds, session.IsLive, model.SessionActive,
		session.Requester, session.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	return tx.Commit()
}

type sessionRow struct {
	ID              string `db:"id"`
	SourceRef       string `db:"source_ref"`
	SourceURL       string `db:"source_url"`
	Title           string `db:"title"`
	DurationSeconds int    `db:"duration_seconds"`
	IsLive          bool   `db:"is_live"`
	Status          string `db:"status"`
	Requester       string `db:"requester"`
	CreatedAt       sql.NullTime `db:"created_at"`
}

func (r sessionRow) toModel() *model.Session {
	session := &model.Session{
		ID:              r.ID,
		SourceRef:       r.SourceRef,
		SourceURL:       r.SourceURL,
		Title:           r.Title,
		DurationSeconds: r.DurationSeconds,
		IsLive:          r.IsLive,
		Status:          model.SessionStatus(r.Status),
		Requester:       r.Requester,
	}
	if r.CreatedAt.Valid {
		session.CreatedAt = r.CreatedAt.Time
	}
	return session
}

// ActiveSession returns the most recently created active session, or nil.
func (s *Store) ActiveSession(ctx context.Context) (*model.Session, error) {
	var row sessionRow
	err := s.db.GetContext(ctx, &row, `
		SELECT id, source_ref, source_url, title, duration_seconds, is_live, status, requester, created_at
		FROM sessions WHERE status = $1 ORDER BY created_at DESC LIMIT 1`,
		model.SessionActive,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query active session: %w", err)
	}
	return row.toModel(), nil
}

// SessionByID returns a session by id, or nil when unknown.
func (s *Store) SessionByID(ctx context.Context, id string) (*model.Session, error) {
	var row sessionRow
	err := s.db.GetContext(ctx, &row, `
		SELECT id, source_ref, source_url, title, duration_seconds, is_live, status, requester, created_at
		FROM sessions WHERE id = $1`,
		id,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query session: %w", err)
	}
	return row.toModel(), nil
}

// AppendSegment records one transcript segment. Re-delivery of an id is a
// no-op to keep re-processing idempotent.
func (s *Store) AppendSegment(ctx context.Context, segment *model.Segment) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO segments (id, session_id, text, is_final, processed, received_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING`,
		segment.ID, segment.SessionID, segment.Text, segment.IsFinal,
		segment.Processed, segment.ReceivedAt,
	)
	if err != nil {
		return fmt.Errorf("insert segment: %w", err)
	}
	return nil
}

// MarkSegmentProcessed flags a segment once its result has been persisted.
func (s *Store) MarkSegmentProcessed(ctx context.Context, segmentID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE segments SET processed = TRUE WHERE id = $1`, segmentID)
	if err != nil {
		return fmt.Errorf("mark segment processed: %w", err)
	}
	return nil
}

// AppendResult records one verification result.
func (s *Store) AppendResult(ctx context.Context, result *model.VerificationResult) error {
	sources, err := json.Marshal(result.Sources)
	if err != nil {
		return fmt.Errorf("marshal sources: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO fact_checks (id, segment_id, session_id, statement, verdict, confidence_score, explanation, sources, processing_time_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		result.ID, result.SegmentID, result.SessionID, result.Statement,
		string(result.Verdict), result.ConfidenceScore, result.Explanation,
		sources, result.ProcessingTimeMs, result.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert fact check: %w", err)
	}
	return nil
}

// ResultsBySession returns a session's results in production order.
func (s *Store) ResultsBySession(ctx context.Context, sessionID string) ([]*model.VerificationResult, error) {
	rows, err := s.db.QueryxContext(ctx, `
		SELECT id, segment_id, session_id, statement, verdict, confidence_score, explanation, sources, processing_time_ms, created_at
		FROM fact_checks WHERE session_id = $1 ORDER BY seq`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query fact checks: %w", err)
	}
	defer rows.Close()

	var results []*model.VerificationResult
	for rows.Next() {
		var (
			r       model.VerificationResult
			verdict string
			sources []byte
		)
		if err := rows.Scan(&r.ID, &r.SegmentID, &r.SessionID, &r.Statement,
			&verdict, &r.ConfidenceScore, &r.Explanation, &sources,
			&r.ProcessingTimeMs, &r.Timestamp); err != nil {
			return nil, fmt.Errorf("scan fact check: %w", err)
		}
		r.Verdict = model.ParseVerdict(verdict)
		if err := json.Unmarshal(sources, &r.Sources); err != nil {
			return nil, fmt.Errorf("unmarshal sources: %w", err)
		}
		results = append(results, &r)
	}
	return results, rows.Err()
}
