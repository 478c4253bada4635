package model

import (
	"fmt"
	"time"
)

// Segment is one candidate unit of text considered for verification.
type Segment struct {
	ID         string    `json:"id"`          // Deterministic: "<session id>-<sequence>"
	SessionID  string    `json:"session_id"`
	Text       string    `json:"text"`
	IsFinal    bool      `json:"is_final"`    // Interim partials are stored but never verified
	Processed  bool      `json:"processed"`   // Set once a verification result exists
	ReceivedAt time.Time `json:"received_at"`
}

// SegmentID derives the deterministic segment id for a session-local
// sequence number. Re-processing the same sequence yields the same id,
// which is what makes dedup idempotent.
func SegmentID(sessionID string, seq int) string {
	return fmt.Sprintf("%s-%d", sessionID, seq)
}
