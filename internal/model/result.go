package model

import (
	"strings"
	"time"
)

// Verdict is the closed classification of a statement's truthfulness
type Verdict string

const (
	VerdictTrue          Verdict = "True"
	VerdictFalse         Verdict = "False"
	VerdictPartiallyTrue Verdict = "Partially True"
	VerdictUnverified    Verdict = "Unverified"
)

// ParseVerdict normalizes a verdict string coming from an external boundary.
// Unknown strings collapse to Unverified rather than propagating.
func ParseVerdict(s string) Verdict {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		return VerdictTrue
	case "false":
		return VerdictFalse
	case "partially true", "partially_true", "partial":
		return VerdictPartiallyTrue
	default:
		return VerdictUnverified
	}
}

// SourceCitation is one supporting source returned by the verification backend
type SourceCitation struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Domain      string `json:"domain"`
	PublishDate string `json:"publish_date,omitempty"`
}

// VerificationResult is the outcome of checking one statement. It is created
// exactly once per eligible segment and never mutated afterwards.
type VerificationResult struct {
	ID               string           `json:"id"`
	SegmentID        string           `json:"segment_id,omitempty"`
	SessionID        string           `json:"session_id,omitempty"`
	Statement        string           `json:"statement"`
	Verdict          Verdict          `json:"verdict"`
	ConfidenceScore  float64          `json:"confidence_score"` // Always within [0, 1]
	Explanation      string           `json:"explanation"`
	Sources          []SourceCitation `json:"sources"`          // Relevance order, at most 5
	ProcessingTimeMs int64            `json:"processing_time_ms"`
	Timestamp        time.Time        `json:"timestamp"`
}
