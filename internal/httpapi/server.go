package httpapi

import (
	"fmt"
	"log/slog"

	"github.com/gin-gonic/gin"

	"factstream/internal/config"
	"factstream/internal/orchestrator"
)

// Server is the HTTP/WebSocket transport. It carries no business logic;
// every handler delegates to the orchestrator.
type Server struct {
	engine *gin.Engine
	cfg    config.ServerConfig
}

// NewServer builds the gin engine with middleware and routes.
func NewServer(cfg config.ServerConfig, orch *orchestrator.Orchestrator, verifierConfigured bool, logger *slog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(RequestLogger(logger))
	engine.Use(CORS())

	api := newAPI(orch, verifierConfigured, logger)
	registerRoutes(engine, api)

	return &Server{engine: engine, cfg: cfg}
}

// Run serves until the listener fails.
func (s *Server) Run() error {
	if err := s.engine.Run(s.cfg.Addr); err != nil {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}
