package httpapi

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"factstream/internal/orchestrator"
	"factstream/internal/session"
)

type api struct {
	orch               *orchestrator.Orchestrator
	verifierConfigured bool
	logger             *slog.Logger
}

func newAPI(orch *orchestrator.Orchestrator, verifierConfigured bool, logger *slog.Logger) *api {
	return &api{orch: orch, verifierConfigured: verifierConfigured, logger: logger}
}

func registerRoutes(engine *gin.Engine, a *api) {
	root := engine.Group("/api")
	root.GET("/health", a.health)
	root.POST("/fact-check", a.factCheck)
	root.POST("/transcription", a.transcription)
	root.GET("/sessions/:session_id/fact-checks", a.sessionFactChecks)
	root.POST("/video", a.setVideo)
	root.POST("/video/start", a.startProcessing)
	root.POST("/video/stop", a.stopProcessing)
	root.GET("/video/current", a.currentSession)

	engine.GET("/ws/:session_id", a.websocket)
}

func (a *api) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":                    "healthy",
		"service":                   "factstream",
		"perplexity_api_configured": a.verifierConfigured,
	})
}

type factCheckRequest struct {
	Statement string `json:"statement" binding:"required"`
	Context   string `json:"context"`
	SessionID string `json:"session_id"`
}

func (a *api) factCheck(c *gin.Context) {
	var req factCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "statement is required"})
		return
	}

	result := a.orch.Verify(c.Request.Context(), req.Statement, req.Context)
	c.JSON(http.StatusOK, result)
}

type transcriptionRequest struct {
	SessionID string `json:"session_id"`
	SegmentID string `json:"segment_id"`
	Text      string `json:"text" binding:"required"`
	IsFinal   bool   `json:"is_final"`
}

func (a *api) transcription(c *gin.Context) {
	var req transcriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}

	result, err := a.orch.SubmitFragment(req.SessionID, req.SegmentID, req.Text, req.IsFinal)
	switch {
	case errors.Is(err, orchestrator.ErrNotProcessing), errors.Is(err, orchestrator.ErrStaleSession):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "transcription processing error"})
		return
	}

	if result == nil {
		c.JSON(http.StatusOK, gin.H{"status": "received"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "processed", "fact_check": result})
}

func (a *api) sessionFactChecks(c *gin.Context) {
	sessionID := c.Param("session_id")

	results, err := a.orch.SessionResults(c.Request.Context(), sessionID)
	if err != nil {
		a.logger.Error("list fact checks failed", "session_id", sessionID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "error retrieving fact checks"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id":  sessionID,
		"fact_checks": results,
	})
}

type setVideoRequest struct {
	URL       string `json:"url" binding:"required"`
	Requester string `json:"requester"`
}

func (a *api) setVideo(c *gin.Context) {
	var req setVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}

	sess, err := a.orch.SetSource(c.Request.Context(), req.URL, req.Requester)
	switch {
	case errors.Is(err, session.ErrInvalidSource):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid source reference"})
		return
	case err != nil:
		a.logger.Error("set source failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "error setting source"})
		return
	}

	c.JSON(http.StatusOK, sess)
}

func (a *api) startProcessing(c *gin.Context) {
	status, err := a.orch.StartProcessing(c.Request.Context())
	if err != nil {
		a.logger.Error("start processing failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "error starting processing"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}

func (a *api) stopProcessing(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": a.orch.StopProcessing()})
}

func (a *api) currentSession(c *gin.Context) {
	sess, err := a.orch.CurrentSession(c.Request.Context())
	if err != nil {
		a.logger.Error("current session lookup failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "error getting current session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sess})
}
