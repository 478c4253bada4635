package verify

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"factstream/internal/cache"
	"factstream/internal/config"
	"factstream/internal/model"
)

const factCheckPrompt = `You are an expert fact-checker. Your task is to verify the accuracy of statements using current, reliable sources.

For each statement:
1. Search for recent, authoritative sources
2. Analyze the claim's accuracy based on available evidence
3. Provide a clear verdict: True, False, Partially True, or Unverified
4. Explain your reasoning with specific references to sources
5. Consider the statement's context and any nuances

Be precise, objective, and transparent about limitations in available information.`

const defaultMockDelay = 500 * time.Millisecond

// Checker is the rate-limited, fault-tolerant verification client. Check
// never returns an error: every failure path resolves to a result with
// verdict Unverified. There is one outbound quota per process regardless of
// how many pipelines call in, so a single Checker should be shared.
type Checker struct {
	backend  Backend // nil when no credential is configured
	limiter  *rate.Limiter
	results  *cache.Memory
	cacheTTL time.Duration
	timeout  time.Duration
	logger   *slog.Logger

	// mockDelay and sleep exist so fallback-path tests don't wait wall time
	mockDelay time.Duration
	sleep     func(time.Duration)
}

// NewChecker builds a Checker from configuration. With no API key the real
// backend is skipped entirely and every check uses the deterministic
// fallback classifier.
func NewChecker(cfg config.VerifyConfig, logger *slog.Logger) *Checker {
	var backend Backend
	if cfg.APIKey != "" {
		backend = NewPerplexityBackend(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.Timeout)
	}
	return NewCheckerWithBackend(backend, cfg, logger)
}

// NewCheckerWithBackend builds a Checker around an explicit backend. A nil
// backend selects mock mode.
func NewCheckerWithBackend(backend Backend, cfg config.VerifyConfig, logger *slog.Logger) *Checker {
	interval := cfg.RateInterval
	if interval <= 0 {
		interval = time.Second
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Checker{
		backend: backend,
		// Burst 1: calls are spaced at least one interval apart, measured
		// call start to call start.
		limiter:   rate.NewLimiter(rate.Every(interval), 1),
		results:   cache.NewMemory(ttl, 2*ttl),
		cacheTTL:  ttl,
		timeout:   timeout,
		logger:    logger,
		mockDelay: defaultMockDelay,
		sleep:     time.Sleep,
	}
}

// Configured reports whether a real backend credential is present.
func (c *Checker) Configured() bool {
	return c.backend != nil
}

// Check verifies one statement, with optional context. All failures resolve
// to a fallback result rather than an error.
func (c *Checker) Check(ctx context.Context, statement, contextText string) *model.VerificationResult {
	start := time.Now()

	cacheKey := cache.Key("check", statement, contextText)
	if cached, ok := c.results.Get(cacheKey); ok {
		if result, ok := cached.(*model.VerificationResult); ok {
			return result
		}
	}

	// No credential: straight to the fallback, no rate limiting
	if c.backend == nil {
		return c.fallbackCheck(statement, false)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		c.logger.Warn("rate limit wait aborted", "error", err)
		return c.fallbackCheck(statement, true)
	}

	prompt := factCheckPrompt
	if contextText != "" {
		prompt += "\n\nContext: " + contextText
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.backend.Query(callCtx, prompt, statement)
	if err != nil {
		c.logger.Error("fact-check backend call failed", "error", err)
		return c.fallbackCheck(statement, true)
	}

	verdict, confidence := analyzeResponse(resp.Content)

	result := &model.VerificationResult{
		Statement:        statement,
		Verdict:          verdict,
		ConfidenceScore:  confidence,
		Explanation:      strings.TrimSpace(resp.Content),
		Sources:          processSearchResults(resp.SearchResults),
		ProcessingTimeMs: time.Since(start).Milliseconds(),
		Timestamp:        time.Now().UTC(),
	}

	c.results.Set(cacheKey, result, c.cacheTTL)
	return result
}
