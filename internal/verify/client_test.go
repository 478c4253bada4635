package verify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"factstream/internal/config"
	"factstream/internal/model"
)

type fakeBackend struct {
	resp  *BackendResponse
	err   error
	calls int
}

func (f *fakeBackend) Query(ctx context.Context, prompt, statement string) (*BackendResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func newTestChecker(backend Backend, interval time.Duration) *Checker {
	c := NewCheckerWithBackend(backend, config.VerifyConfig{
		RateInterval: interval,
		Timeout:      time.Second,
	}, slog.New(slog.NewTextHandler(testWriter{}, nil)))
	c.mockDelay = 0
	return c
}

type testWriter struct{}

func (testWriter) Write(p []byte) (int, error) { return len(p), nil }

func TestChecker_MockMode_TrueStatement(t *testing.T) {
	c := newTestChecker(nil, time.Millisecond)

	result := c.Check(context.Background(), "The sky is blue", "")
	if result.Verdict != model.VerdictTrue {
		t.Errorf("expected True, got %s", result.Verdict)
	}
	if result.ConfidenceScore != 0.9 {
		t.Errorf("expected confidence 0.9, got %v", result.ConfidenceScore)
	}
}

func TestChecker_MockMode_FalseStatement(t *testing.T) {
	c := newTestChecker(nil, time.Millisecond)

	result := c.Check(context.Background(), "flat earth is real", "")
	if result.Verdict != model.VerdictFalse {
		t.Errorf("expected False, got %s", result.Verdict)
	}
	if result.ConfidenceScore != 0.95 {
		t.Errorf("expected confidence 0.95, got %v", result.ConfidenceScore)
	}
}

func TestChecker_MockMode_UnknownStatement(t *testing.T) {
	c := newTestChecker(nil, time.Millisecond)

	result := c.Check(context.Background(), "quarterly revenue grew by twelve percent", "")
	if result.Verdict != model.VerdictPartiallyTrue {
		t.Errorf("expected Partially True, got %s", result.Verdict)
	}
	if result.ConfidenceScore != 0.7 {
		t.Errorf("expected confidence 0.7, got %v", result.ConfidenceScore)
	}
}

func TestChecker_MockMode_SyntheticSource(t *testing.T) {
	c := newTestChecker(nil, time.Millisecond)

	result := c.Check(context.Background(), "anything at all here", "")
	if len(result.Sources) != 1 {
		t.Fatalf("expected exactly one synthetic source, got %d", len(result.Sources))
	}
	if result.Sources[0].Domain != "perplexity.ai" {
		t.Errorf("unexpected synthetic source domain: %s", result.Sources[0].Domain)
	}
}

func TestChecker_MockMode_ArtificialDelay(t *testing.T) {
	c := newTestChecker(nil, time.Millisecond)

	var slept time.Duration
	c.mockDelay = 500 * time.Millisecond
	c.sleep = func(d time.Duration) { slept = d }

	c.Check(context.Background(), "the sun is a star", "")
	if slept != 500*time.Millisecond {
		t.Errorf("expected 500ms artificial delay, got %v", slept)
	}
}

func TestChecker_BackendFailure_FallsBack(t *testing.T) {
	backend := &fakeBackend{err: errors.New("connection refused")}
	c := newTestChecker(backend, time.Millisecond)

	result := c.Check(context.Background(), "some statement long enough", "")
	if result.Verdict != model.VerdictUnverified {
		t.Errorf("expected Unverified after backend failure, got %s", result.Verdict)
	}
	if result.ConfidenceScore != 0.3 {
		t.Errorf("expected confidence 0.3, got %v", result.ConfidenceScore)
	}
	if backend.calls != 1 {
		t.Errorf("expected 1 backend call, got %d", backend.calls)
	}
}

func TestChecker_BackendSuccess(t *testing.T) {
	backend := &fakeBackend{resp: &BackendResponse{
		Content: "  The statement is accurate according to multiple sources.  ",
		SearchResults: []SearchResult{
			{Title: "NASA", URL: "https://nasa.gov/article", Date: "2025-01-01"},
			{Title: "", URL: "::bad url::"},
		},
	}}
	c := newTestChecker(backend, time.Millisecond)

	result := c.Check(context.Background(), "the earth orbits the sun", "")
	if result.Verdict != model.VerdictTrue {
		t.Errorf("expected True, got %s", result.Verdict)
	}
	if result.Explanation != "The statement is accurate according to multiple sources." {
		t.Errorf("explanation not trimmed: %q", result.Explanation)
	}
	if len(result.Sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(result.Sources))
	}
	if result.Sources[0].Domain != "nasa.gov" {
		t.Errorf("expected domain nasa.gov, got %s", result.Sources[0].Domain)
	}
	if result.Sources[1].Domain != "unknown" {
		t.Errorf("expected unknown domain for bad URL, got %s", result.Sources[1].Domain)
	}
	if result.Sources[1].Title != "Unknown Title" {
		t.Errorf("expected placeholder title, got %s", result.Sources[1].Title)
	}
}

func TestChecker_SourcesTruncatedToFive(t *testing.T) {
	var results []SearchResult
	for i := 0; i < 8; i++ {
		results = append(results, SearchResult{
			Title: fmt.Sprintf("Source %d", i),
			URL:   fmt.Sprintf("https://example.com/%d", i),
		})
	}
	backend := &fakeBackend{resp: &BackendResponse{Content: "confirmed", SearchResults: results}}
	c := newTestChecker(backend, time.Millisecond)

	result := c.Check(context.Background(), "statement with many sources", "")
	if len(result.Sources) != 5 {
		t.Errorf("expected 5 sources, got %d", len(result.Sources))
	}
	// Relevance order preserved
	if result.Sources[0].Title != "Source 0" {
		t.Errorf("expected first source preserved, got %s", result.Sources[0].Title)
	}
}

func TestChecker_RateLimitSpacing(t *testing.T) {
	backend := &fakeBackend{resp: &BackendResponse{Content: "confirmed"}}
	interval := 60 * time.Millisecond
	c := newTestChecker(backend, interval)

	start := time.Now()
	c.Check(context.Background(), "first statement", "")
	c.Check(context.Background(), "second statement", "")
	elapsed := time.Since(start)

	if elapsed < interval {
		t.Errorf("back-to-back calls spaced %v, want at least %v", elapsed, interval)
	}
}

func TestChecker_CacheHit_SkipsBackend(t *testing.T) {
	backend := &fakeBackend{resp: &BackendResponse{Content: "confirmed"}}
	c := newTestChecker(backend, time.Millisecond)

	first := c.Check(context.Background(), "repeated statement", "")
	second := c.Check(context.Background(), "repeated statement", "")

	if backend.calls != 1 {
		t.Errorf("expected 1 backend call for repeated statement, got %d", backend.calls)
	}
	if first != second {
		t.Error("expected the cached result to be returned")
	}
}

func TestChecker_ConfidenceAlwaysInRange(t *testing.T) {
	statements := []string{
		"The sky is blue",
		"flat earth is real",
		"arbitrary unrelated claim",
		"",
	}

	c := newTestChecker(nil, time.Millisecond)
	for _, s := range statements {
		result := c.Check(context.Background(), s, "")
		if result.ConfidenceScore < 0 || result.ConfidenceScore > 1 {
			t.Errorf("confidence out of range for %q: %v", s, result.ConfidenceScore)
		}
		switch result.Verdict {
		case model.VerdictTrue, model.VerdictFalse, model.VerdictPartiallyTrue, model.VerdictUnverified:
		default:
			t.Errorf("unexpected verdict for %q: %s", s, result.Verdict)
		}
	}
}
