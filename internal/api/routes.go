package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/codemind-go/internal/chat"
	"github.com/codemind-go/internal/config"
	"github.com/codemind-go/internal/pkg/logger"
)

// Server exposes one chat session over HTTP.
type Server struct {
	router  *gin.Engine
	config  *config.Config
	session *chat.Session
	logger  logger.ILogger
	http    *http.Server
}

func NewServer(cfg *config.Config, session *chat.Session, log logger.ILogger) *Server {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.MaxMultipartMemory = cfg.Upload.MaxFileBytes
	router.Use(
		gin.Recovery(),
		LoggingMiddleware(log),
		CORSMiddleware(cfg.Server.AllowedOrigins),
		ErrorHandlerMiddleware(log),
	)

	s := &Server{
		router:  router,
		config:  cfg,
		session: session,
		logger:  log,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.GET("/", s.handleRoot)

	s.router.GET("/session", s.handleSession)
	s.router.PUT("/session/mode", s.handleSetMode)
	s.router.PUT("/session/model", s.handleSetModel)

	s.router.POST("/chat/messages", s.handleSendMessage)
	s.router.POST("/chat/messages/:index/suggestion", s.handleResolveSuggestion)
	s.router.POST("/chat/new", s.handleNewChat)

	// file ids may contain slashes, so they are matched as catch-all parameters
	s.router.GET("/files", s.handleListFiles)
	s.router.GET("/files/*id", s.handleGetFile)
	s.router.GET("/edits", s.handleListEdits)
	s.router.GET("/edits/*id", s.handleEditDiff)

	s.router.POST("/datasets/custom", s.handleUploadDataset)
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on the configured port until Shutdown is called.
func (s *Server) Start() error {
	port := s.config.Server.Port
	if port == "" {
		port = "8001"
	}
	s.http = &http.Server{
		Addr:              ":" + port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("server", "Listening", map[string]interface{}{"port": port, "session": s.session.ID()})

	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}
