package verify

import (
	"fmt"
	"strings"
	"time"

	"factstream/internal/model"
)

// Keyword lists for the deterministic fallback classifier. Used whenever the
// real backend is unconfigured or failing so callers always get a result.
var (
	likelyTrueWords  = []string{"earth", "sun", "gravity", "water", "sky"}
	likelyFalseWords = []string{"flat earth", "fake moon", "chemtrails"}
)

// fallbackCheck produces a deterministic local verdict. backendFailed marks
// results substituted after a real backend failure, which forces Unverified.
// The artificial delay keeps the client's latency characteristics consistent
// between mock and real mode so callers throttling on it behave the same.
func (c *Checker) fallbackCheck(statement string, backendFailed bool) *model.VerificationResult {
	start := time.Now()
	c.sleep(c.mockDelay)

	var (
		verdict     model.Verdict
		confidence  float64
		explanation string
	)

	if backendFailed {
		verdict = model.VerdictUnverified
		confidence = 0.3
		explanation = "Unable to verify due to API error. Please check your Perplexity API key configuration."
	} else {
		lower := strings.ToLower(statement)
		switch {
		// False phrases win over single true words: "flat earth" contains "earth"
		case containsAny(lower, likelyFalseWords):
			verdict = model.VerdictFalse
			confidence = 0.95
			explanation = fmt.Sprintf("Mock verification: The statement '%s' contains claims that contradict established scientific evidence.", statement)
		case containsAny(lower, likelyTrueWords):
			verdict = model.VerdictTrue
			confidence = 0.9
			explanation = fmt.Sprintf("Mock verification: The statement '%s' appears to contain factual information based on basic scientific knowledge.", statement)
		default:
			verdict = model.VerdictPartiallyTrue
			confidence = 0.7
			explanation = fmt.Sprintf("Mock verification: The statement '%s' requires further investigation. Add your Perplexity API key for real fact-checking.", statement)
		}
	}

	return &model.VerificationResult{
		Statement:       statement,
		Verdict:         verdict,
		ConfidenceScore: confidence,
		Explanation:     explanation,
		Sources: []model.SourceCitation{
			{
				Title:  "Mock Source - Add Perplexity API Key",
				URL:    "https://perplexity.ai",
				Domain: "perplexity.ai",
			},
		},
		ProcessingTimeMs: time.Since(start).Milliseconds(),
		Timestamp:        time.Now().UTC(),
	}
}
