// Package server exposes the shortener over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/dtnitsch/linkslug/models"
	"github.com/dtnitsch/linkslug/pkg/pattern"
	"github.com/dtnitsch/linkslug/pkg/shortener"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDHeader    = "X-Request-ID"
	defaultRecentLimit = 10
	maxRecentLimit     = 100
	shutdownTimeout    = 10 * time.Second
	readHeaderTimeout  = 5 * time.Second
)

// Service is the slice of *shortener.Service the HTTP layer calls.
type Service interface {
	GenerateSlug(ctx context.Context, rawURL string, opts models.GenerateOptions) (models.SlugResult, error)
	GenerateMultipleSlugs(ctx context.Context, rawURL string, opts models.GenerateOptions, count int) ([]models.Candidate, error)
	AnalyzeIdentityPattern(ctx context.Context, identityID string, force bool) (*pattern.Result, error)
	CacheSize(ctx context.Context) (int, error)
	RecentEntries(ctx context.Context, n int) ([]models.CacheEntry, error)
	ClearCache(ctx context.Context) error
}

type slugRequest struct {
	URL string `json:"url" binding:"required"`
	models.GenerateOptions
	Count int `json:"count,omitempty"`
}

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

type cacheResponse struct {
	Size    int                 `json:"size"`
	Entries []models.CacheEntry `json:"entries"`
}

type Server struct {
	svc     Service
	metrics http.Handler
	logger  *slog.Logger
	router  *gin.Engine
}

// New builds the router. metrics may be nil, in which case /metrics is
// not registered.
func New(svc Service, metrics http.Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{svc: svc, metrics: metrics, logger: logger}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), s.logRequests())

	r.GET("/health", s.health)
	if s.metrics != nil {
		r.GET("/metrics", gin.WrapH(s.metrics))
	}
	r.POST("/slugs", s.generate)
	r.POST("/slugs/multiple", s.generateMultiple)
	r.POST("/identities/:id/analyze", s.analyze)
	r.GET("/cache", s.cacheStats)
	r.DELETE("/cache", s.clearCache)
	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("http server shutting down")
	return srv.Shutdown(shutdownCtx)
}

// requestID tags every request with an id, taken from X-Request-ID when
// the caller supplies one.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Writer.Header().Set(requestIDHeader, id)
		c.Next()
	}
}

func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"request_id", c.GetString("request_id"),
		}
		if len(c.Errors) > 0 {
			s.logger.Error("http request with errors", append(attrs, "errors", c.Errors.String())...)
			return
		}
		s.logger.Info("http request", attrs...)
	}
}

func (s *Server) fail(c *gin.Context, status int, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, errorResponse{Error: err.Error(), RequestID: c.GetString("request_id")})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) generate(c *gin.Context) {
	var req slugRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}
	res, err := s.svc.GenerateSlug(c.Request.Context(), req.URL, req.GenerateOptions)
	if err != nil {
		s.fail(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) generateMultiple(c *gin.Context) {
	var req slugRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}
	candidates, err := s.svc.GenerateMultipleSlugs(c.Request.Context(), req.URL, req.GenerateOptions, req.Count)
	if err != nil {
		s.fail(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"candidates": candidates})
}

func (s *Server) analyze(c *gin.Context) {
	force, _ := strconv.ParseBool(c.Query("force"))
	res, err := s.svc.AnalyzeIdentityPattern(c.Request.Context(), c.Param("id"), force)
	if err != nil {
		s.fail(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) cacheStats(c *gin.Context) {
	limit := defaultRecentLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.fail(c, http.StatusBadRequest, errors.New("limit must be a non-negative integer"))
			return
		}
		limit = min(n, maxRecentLimit)
	}

	ctx := c.Request.Context()
	size, err := s.svc.CacheSize(ctx)
	if err != nil {
		s.fail(c, http.StatusInternalServerError, err)
		return
	}
	entries, err := s.svc.RecentEntries(ctx, limit)
	if err != nil {
		s.fail(c, http.StatusInternalServerError, err)
		return
	}
	if entries == nil {
		entries = []models.CacheEntry{}
	}
	c.JSON(http.StatusOK, cacheResponse{Size: size, Entries: entries})
}

func (s *Server) clearCache(c *gin.Context) {
	if err := s.svc.ClearCache(c.Request.Context()); err != nil {
		s.fail(c, http.StatusInternalServerError, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, shortener.ErrMalformedURL), errors.Is(err, shortener.ErrNoIdentity):
		return http.StatusBadRequest
	case errors.Is(err, shortener.ErrNoLearner):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
