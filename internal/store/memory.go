package store

import (
	"context"
	"sync"

	"factstream/internal/model"
)

// MemoryStore is the in-process Store used for tests and credential-less
// development runs. Same contract as the Postgres store, no durability.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions []*model.Session
	segments map[string]*model.Segment
	results  map[string][]*model.VerificationResult // keyed by session id
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		segments: make(map[string]*model.Segment),
		results:  make(map[string][]*model.VerificationResult),
	}
}

// CreateSession demotes all active sessions and appends the new one as active.
func (s *MemoryStore) CreateSession(_ context.Context, session *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.sessions {
		existing.Status = model.SessionInactive
	}
	copied := *session
	copied.Status = model.SessionActive
	s.sessions = append(s.sessions, &copied)
	return nil
}

// ActiveSession returns the most recently created active session, or nil.
func (s *MemoryStore) ActiveSession(_ context.Context) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := len(s.sessions) - 1; i >= 0; i-- {
		if s.sessions[i].Status == model.SessionActive {
			copied := *s.sessions[i]
			return &copied, nil
		}
	}
	return nil, nil
}

// SessionByID returns a session by id, or nil when unknown.
func (s *MemoryStore) SessionByID(_ context.Context, id string) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, session := range s.sessions {
		if session.ID == id {
			copied := *session
			return &copied, nil
		}
	}
	return nil, nil
}

// AppendSegment records one transcript segment.
func (s *MemoryStore) AppendSegment(_ context.Context, segment *model.Segment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *segment
	s.segments[segment.ID] = &copied
	return nil
}

// MarkSegmentProcessed flags a stored segment as processed.
func (s *MemoryStore) MarkSegmentProcessed(_ context.Context, segmentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if segment, ok := s.segments[segmentID]; ok {
		segment.Processed = true
	}
	return nil
}

// AppendResult records one verification result.
func (s *MemoryStore) AppendResult(_ context.Context, result *model.VerificationResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *result
	s.results[result.SessionID] = append(s.results[result.SessionID], &copied)
	return nil
}

// ResultsBySession returns a session's results in production order.
func (s *MemoryStore) ResultsBySession(_ context.Context, sessionID string) ([]*model.VerificationResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.results[sessionID]
	out := make([]*model.VerificationResult, len(stored))
	for i, r := range stored {
		copied := *r
		out[i] = &copied
	}
	return out, nil
}

// SegmentByID returns a stored segment, or nil. Used by tests.
func (s *MemoryStore) SegmentByID(id string) *model.Segment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if segment, ok := s.segments[id]; ok {
		copied := *segment
		return &copied
	}
	return nil
}
