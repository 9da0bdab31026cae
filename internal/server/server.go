package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/kapu/contentful-constructor-go/internal/app"
	"github.com/kapu/contentful-constructor-go/internal/indexer"
	"github.com/kapu/contentful-constructor-go/internal/util"
	"github.com/kapu/contentful-constructor-go/pkg/errors"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Server exposes the indexation trigger and the run-summary endpoints the
// operator panel consumes.
type Server struct {
	httpServer *http.Server
	container  *app.Container
	hub        *EventHub
	logger     *zap.Logger
}

func New(addr string, container *app.Container, hub *EventHub) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		container: container,
		hub:       hub,
		logger:    container.Logger,
	}

	router := gin.New()
	router.Use(gin.Recovery())
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	router.GET("/healthz", s.handleHealth)
	router.POST("/v1/index", s.handleIndex)
	router.GET("/v1/runs/:contentType", s.handleLastRun)
	router.GET("/v1/runs/:contentType/history", s.handleRunHistory)
	router.GET("/v1/index/stream", s.handleStream)

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: router,
	}
	return s
}

func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"content_types": s.container.Registry.ContentTypes(),
		"subscribers":   s.hub.Count(),
	})
}

// handleIndex triggers one full indexation run. The response is the
// orchestrator's structured summary; ok=false without an HTTP error status
// marks a caller-input condition, not a system fault.
func (s *Server) handleIndex(c *gin.Context) {
	var params app.RunParams
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "invalid request body: " + err.Error()})
		return
	}

	result, err := s.container.Orchestrator.Run(c.Request.Context(), params)
	if err != nil {
		s.logger.Error("Indexation run failed",
			zap.String("content_type", params.ContentTypeID),
			zap.Error(err),
		)
		c.JSON(statusFor(err), gin.H{"ok": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) handleLastRun(c *gin.Context) {
	contentType := canonicalParam(c.Param("contentType"))

	if s.container.Cache == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"ok": false, "message": "run summary cache not configured"})
		return
	}

	var summary app.RunResult
	found, err := s.container.Cache.GetRunSummary(c.Request.Context(), contentType, &summary)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": err.Error()})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "message": "no recorded run for " + contentType})
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (s *Server) handleRunHistory(c *gin.Context) {
	contentType := canonicalParam(c.Param("contentType"))

	if s.container.Runs == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"ok": false, "message": "run history store not configured"})
		return
	}

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = util.Min(util.Max(n, 1), 100)
		}
	}

	records, err := s.container.Runs.Recent(c.Request.Context(), contentType, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"contentType": contentType, "runs": records})
}

func (s *Server) handleStream(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	s.hub.Join(ws)

	// Reader loop only detects disconnects; the stream is write-only.
	go func() {
		defer s.hub.Leave(ws)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func canonicalParam(raw string) string {
	if key, ok := indexer.CanonicalContentType(raw); ok {
		return key
	}
	return raw
}

func statusFor(err error) int {
	var validation *errors.ValidationError
	if stderrors.As(err, &validation) {
		return http.StatusBadRequest
	}
	var api *errors.APIError
	if stderrors.As(err, &api) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
