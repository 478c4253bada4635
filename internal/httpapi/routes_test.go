package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"factstream/internal/config"
	"factstream/internal/hub"
	"factstream/internal/model"
	"factstream/internal/orchestrator"
	"factstream/internal/pipeline"
	"factstream/internal/session"
	"factstream/internal/store"
)

type stubVerifier struct{}

func (stubVerifier) Check(ctx context.Context, statement, contextText string) *model.VerificationResult {
	return &model.VerificationResult{
		Statement:       statement,
		Verdict:         model.VerdictTrue,
		ConfidenceScore: 0.9,
		Explanation:     "stub verdict",
	}
}

func (stubVerifier) Configured() bool { return false }

type stubSource struct{}

func (stubSource) NextFragment(ctx context.Context, sourceURL string, window time.Duration) (string, error) {
	return "", nil
}

func (stubSource) FullTranscript(ctx context.Context, sourceURL string) (string, error) {
	return "", nil
}

func newTestServer(t *testing.T) (*Server, *orchestrator.Orchestrator) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(testWriter{t}, nil))
	st := store.NewMemoryStore()
	registry := session.NewRegistry(st, logger)
	h := hub.New(logger)
	fanout := orchestrator.NewFanOut(h, nil, logger)

	opts := config.PipelineConfig{MinSegmentLength: 10}
	verifier := stubVerifier{}
	pipe := pipeline.New(st, verifier, stubSource{}, fanout, registry, opts, logger)
	t.Cleanup(pipe.Stop)

	orch := orchestrator.New(registry, pipe, h, st, verifier, nil, logger)
	return NewServer(config.ServerConfig{Addr: ":0"}, orch, false, logger), orch
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(strings.TrimSpace(string(p)))
	return len(p), nil
}

func doJSON(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "factstream", body["service"])
	assert.Equal(t, false, body["perplexity_api_configured"])
}

func TestFactCheck(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/fact-check",
		`{"statement": "the earth orbits the sun"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var result model.VerificationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, model.VerdictTrue, result.Verdict)
	assert.Equal(t, "the earth orbits the sun", result.Statement)
}

func TestFactCheckMissingStatement(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/fact-check", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSetVideoInvalidSource(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/video", `{"url": "   "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSetVideoAndCurrent(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/video",
		`{"url": "https://www.youtube.com/watch?v=abc123", "requester": "tester"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var sess model.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sess))
	assert.Equal(t, "abc123", sess.SourceRef)
	assert.True(t, sess.IsActive())

	rec = doJSON(t, s, http.MethodGet, "/api/video/current", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), sess.ID)
}

func TestTranscriptionWithoutProcessing(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/transcription",
		`{"session_id": "sess-1", "text": "whatever statement", "is_final": true}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestTranscriptionEndToEnd(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/video", `{"url": "debate-night"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var sess model.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sess))

	rec = doJSON(t, s, http.MethodPost, "/api/video/start", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/api/transcription",
		`{"session_id": "`+sess.ID+`", "text": "the earth orbits the sun every year", "is_final": true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "processed")

	rec = doJSON(t, s, http.MethodGet, "/api/sessions/"+sess.ID+"/fact-checks", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "stub verdict")

	rec = doJSON(t, s, http.MethodPost, "/api/video/stop", "")
	require.Equal(t, http.StatusOK, rec.Code)
}
