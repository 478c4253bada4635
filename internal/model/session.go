package model

import "time"

// SessionStatus is the lifecycle state of a fact-checking session
type SessionStatus string

const (
	SessionActive   SessionStatus = "active"
	SessionInactive SessionStatus = "inactive"
)

// Session represents one continuous fact-checking context bound to a single
// source reference. At most one session is active at a time; creating a new
// active session demotes the previous one. Sessions are never deleted.
type Session struct {
	ID              string        `json:"id"`
	SourceRef       string        `json:"source_ref"`        // Video id or transcript-session tag
	SourceURL       string        `json:"source_url,omitempty"`
	Title           string        `json:"title"`
	DurationSeconds int           `json:"duration_seconds"`  // 0 if unknown or live
	IsLive          bool          `json:"is_live"`
	Status          SessionStatus `json:"status"`
	Requester       string        `json:"requester,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
}

// IsActive reports whether the session is the current append target.
func (s *Session) IsActive() bool {
	return s.Status == SessionActive
}
