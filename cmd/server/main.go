package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/sentinelhq/sentinel/internal/audit"
	"github.com/sentinelhq/sentinel/internal/auditor"
	"github.com/sentinelhq/sentinel/internal/config"
	"github.com/sentinelhq/sentinel/internal/database"
	"github.com/sentinelhq/sentinel/internal/dataset"
	"github.com/sentinelhq/sentinel/internal/errors"
	"github.com/sentinelhq/sentinel/internal/monitoring"
	"github.com/sentinelhq/sentinel/internal/ratelimit"
	"github.com/sentinelhq/sentinel/internal/recommend"
	"github.com/sentinelhq/sentinel/internal/report"
	"github.com/sentinelhq/sentinel/internal/resilience"
	"github.com/sentinelhq/sentinel/internal/security"
	"github.com/sentinelhq/sentinel/internal/types"
)

const serviceVersion = "1.0.0"

// server bundles the wired dependencies behind the HTTP handlers.
type server struct {
	cfg      config.Config
	db       *database.DB
	store    database.Store
	auditor  *auditor.Auditor
	renderer *report.Renderer
	metrics  *monitoring.Metrics
	logger   *monitoring.Logger
	limiter  *ratelimit.RateLimiter

	// recommender trims the recommendation list for HTML reports only;
	// stored results and the JSON API carry the full list.
	recommender *recommend.Engine
}

func main() {
	appLogger := monitoring.NewLogger()
	slog.SetDefault(appLogger.Logger)

	cfg := config.FromEnv()

	db, err := database.NewDB(cfg.Server.DataDir)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	renderer, err := report.NewRenderer()
	if err != nil {
		slog.Error("Failed to initialize report renderer", "error", err)
		os.Exit(1)
	}

	provider := dataset.NewProvider(cfg.Server.DatasetSize)

	srv := &server{
		cfg:         cfg,
		db:          db,
		store:       database.NewStore(db),
		auditor:     auditor.New(provider, cfg, appLogger.Logger),
		renderer:    renderer,
		recommender: recommend.New(cfg.Recommend),
		metrics:     monitoring.NewMetrics(),
		logger:      appLogger,
		limiter: ratelimit.NewRateLimiter(ratelimit.Config{
			IPLimitPerMin:   cfg.Server.RateLimitPerMin,
			BurstMultiplier: 2,
		}),
	}

	appLogger.SystemLogger("startup", "all components initialized")

	httpServer := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: srv.routes(),
	}

	go func() {
		slog.Info("Starting server", "port", cfg.Server.Port, "version", serviceVersion)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	appLogger.SystemLogger("shutdown", "server exited cleanly")
}

// routes builds the gin engine with the full middleware stack.
func (s *server) routes() *gin.Engine {
	r := gin.New()

	r.Use(monitoring.Middleware(s.metrics, s.logger))
	r.Use(errors.ErrorHandler())
	r.Use(errors.RecoveryHandler())
	r.Use(security.SecurityHeadersMiddleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}))
	r.Use(s.limiter.IPRateLimitMiddleware())

	r.GET("/", s.handleInfo)
	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", s.handleHealth)
		v1.POST("/audit/start", s.handleStartAudit)
		v1.GET("/audit/result/:id", s.handleGetResult)
		v1.GET("/audit/history", s.handleHistory)
		v1.GET("/audit/report/:id", s.handleReport)
		v1.POST("/audit/quick-report", s.handleQuickReport)
	}

	return r
}

func (s *server) handleInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "sentinel",
		"version": serviceVersion,
		"endpoints": []string{
			"GET /api/v1/health",
			"POST /api/v1/audit/start",
			"GET /api/v1/audit/result/:id",
			"GET /api/v1/audit/history",
			"GET /api/v1/audit/report/:id",
			"POST /api/v1/audit/quick-report",
			"GET /metrics",
		},
	})
}

func (s *server) handleHealth(c *gin.Context) {
	stored, err := s.store.Count(c.Request.Context())
	if err != nil {
		stored = -1
		slog.Warn("Health check could not count stored audits", "error", err)
	} else {
		s.metrics.SetStoredAudits(stored)
	}

	c.JSON(http.StatusOK, types.HealthResponse{
		Status:       "ok",
		Service:      "sentinel",
		Version:      serviceVersion,
		Timestamp:    time.Now().UTC(),
		StoredAudits: stored,
		Database:     s.db.GetPoolStats(),
		RateLimiter:  s.limiter.GetStats(),
	})
}

// handleStartAudit runs a full audit and persists the result. Audit
// computation and persistence are deliberately decoupled: a computed
// result is returned to the caller even when every persistence attempt
// fails.
func (s *server) handleStartAudit(c *gin.Context) {
	var req types.AuditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		appErr := errors.NewValidationError("request body must include dataset_mode")
		errors.LogError(c, appErr)
		c.JSON(appErr.HTTPStatus, appErr)
		return
	}

	result, ok := s.runAudit(c, audit.Mode(req.DatasetMode))
	if !ok {
		return
	}

	s.persistResult(c.Request.Context(), result)

	c.JSON(http.StatusOK, result)
}

func (s *server) handleGetResult(c *gin.Context) {
	result, err := s.store.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		appErr := errors.ToAppError(err)
		errors.LogError(c, appErr)
		c.JSON(appErr.HTTPStatus, appErr)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *server) handleHistory(c *gin.Context) {
	limit := 20
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	summaries, err := s.store.ListRecent(c.Request.Context(), limit)
	if err != nil {
		appErr := errors.ToAppError(err)
		errors.LogError(c, appErr)
		c.JSON(appErr.HTTPStatus, appErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"audits": summaries,
		"count":  len(summaries),
	})
}

func (s *server) handleReport(c *gin.Context) {
	id := c.Param("id")

	result, err := s.store.GetByID(c.Request.Context(), id)
	if err != nil {
		appErr := errors.ToAppError(err)
		errors.LogError(c, appErr)
		c.JSON(appErr.HTTPStatus, appErr)
		return
	}

	display := *result
	display.Recommendations = s.recommender.Top(display.Recommendations)

	html, err := s.renderer.Render(&display)
	if err != nil {
		appErr := errors.ToAppError(err)
		errors.LogError(c, appErr)
		c.JSON(appErr.HTTPStatus, appErr)
		return
	}

	c.Header("Content-Disposition", `inline; filename="`+id+`.html"`)
	c.Data(http.StatusOK, "text/html; charset=utf-8", html)
}

// handleQuickReport runs an ad-hoc audit and returns the rendered report
// without persisting anything.
func (s *server) handleQuickReport(c *gin.Context) {
	var req types.AuditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		appErr := errors.NewValidationError("request body must include dataset_mode")
		errors.LogError(c, appErr)
		c.JSON(appErr.HTTPStatus, appErr)
		return
	}

	result, ok := s.runAudit(c, audit.Mode(req.DatasetMode))
	if !ok {
		return
	}

	display := *result
	display.Recommendations = s.recommender.Top(display.Recommendations)

	html, err := s.renderer.Render(&display)
	if err != nil {
		appErr := errors.ToAppError(err)
		errors.LogError(c, appErr)
		c.JSON(appErr.HTTPStatus, appErr)
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", html)
}

// runAudit executes the audit and records its metrics. On failure the
// error response has already been written; ok is false.
func (s *server) runAudit(c *gin.Context, mode audit.Mode) (*audit.Result, bool) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	started := time.Now()
	result, err := s.auditor.Run(ctx, mode)
	if err != nil {
		appErr := errors.ToAppError(err)
		s.metrics.RecordAuditFailure(string(appErr.Category))
		errors.LogError(c, appErr)
		c.JSON(appErr.HTTPStatus, appErr)
		return nil, false
	}

	duration := time.Since(started)
	s.metrics.RecordAudit(string(result.DatasetMode), string(result.RiskStatus), duration)
	s.logger.AuditLogger(result.AuditID, string(result.DatasetMode),
		result.AIRiskScore, string(result.RiskStatus), duration)

	return result, true
}

// persistResult stores a computed audit, retrying transient store
// failures with backoff. Exhausting the retries is logged but never
// discards the computed result.
func (s *server) persistResult(ctx context.Context, result *audit.Result) {
	attempt := 0
	err := resilience.Retry(ctx, func() error {
		attempt++
		if attempt > 1 {
			s.metrics.RecordStoreRetry()
		}
		return s.store.Create(ctx, result)
	})
	if err != nil {
		slog.Error("Failed to persist audit result; returning unpersisted result",
			"audit_id", result.AuditID, "attempts", attempt, "error", err)
	}
}
