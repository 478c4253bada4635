package verify

import (
	"net/url"
	"strings"

	"factstream/internal/model"
)

// Keyword lists for classifying the backend's free-text analysis. This is a
// heuristic scan, not a semantic parse; kept as-is for compatibility with
// results produced by earlier deployments.
var (
	affirmingWords   = []string{"true", "correct", "accurate", "confirmed"}
	qualifierWords   = []string{"partially", "somewhat", "mostly"}
	negatingWords    = []string{"false", "incorrect", "inaccurate", "wrong"}
	uncertaintyWords = []string{"unclear", "uncertain", "insufficient", "cannot determine"}
)

// analyzeResponse classifies the backend's analysis text into a verdict and
// confidence score.
func analyzeResponse(content string) (model.Verdict, float64) {
	lower := strings.ToLower(content)

	switch {
	case containsAny(lower, affirmingWords):
		if containsAny(lower, qualifierWords) {
			return model.VerdictPartiallyTrue, 0.7
		}
		return model.VerdictTrue, 0.9
	case containsAny(lower, negatingWords):
		return model.VerdictFalse, 0.85
	case containsAny(lower, uncertaintyWords):
		return model.VerdictUnverified, 0.3
	default:
		return model.VerdictUnverified, 0.5
	}
}

// processSearchResults converts backend search results into citations,
// keeping relevance order and truncating to the first five. A source with an
// unparseable URL is still included, with domain "unknown".
func processSearchResults(results []SearchResult) []model.SourceCitation {
	sources := make([]model.SourceCitation, 0, 5)
	for _, r := range results {
		if len(sources) >= 5 {
			break
		}
		title := r.Title
		if title == "" {
			title = "Unknown Title"
		}
		sources = append(sources, model.SourceCitation{
			Title:       title,
			URL:         r.URL,
			Domain:      domainOf(r.URL),
			PublishDate: r.Date,
		})
	}
	return sources
}

// domainOf extracts the host portion of a URL, or "unknown" when it cannot
// be parsed.
func domainOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return "unknown"
	}
	return parsed.Host
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
