package httpapi

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"askverba.app/server/internal/achievement"
	"askverba.app/server/internal/auth"
	"askverba.app/server/internal/cache"
	"askverba.app/server/internal/globaltime"
	"askverba.app/server/internal/learning"
	"askverba.app/server/internal/translation"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

//go:embed assets
var embeddedAssets embed.FS

type Options struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	CookieSecure       bool
	AllowedOrigins     []string
	TranslateRateLimit int
}

type HealthChecker interface {
	Ping(ctx context.Context) error
}

type Translator interface {
	Translate(ctx context.Context, req translation.Request) (*translation.Response, error)
}

// Dependencies are the collaborators behind the API. Achievements and
// Learning may be nil in tests that do not exercise them.
type Dependencies struct {
	Auth         AuthStore
	History      HistoryStore
	Health       []HealthChecker
	Translator   Translator
	Learning     *learning.Service
	Achievements *achievement.Service
	Tokens       *auth.TokenManager
	Limiter      cache.Limiter
}

type Server struct {
	authStore    AuthStore
	history      HistoryStore
	health       []HealthChecker
	translator   Translator
	learning     *learning.Service
	achievements *achievement.Service
	tokens       *auth.TokenManager
	limiter      cache.Limiter
	cookies      cookieBridge
	logger       zerolog.Logger
	opts         Options
}

func NewServer(deps Dependencies, logger zerolog.Logger, opts Options) *Server {
	host := strings.TrimSpace(opts.Host)
	if host == "" {
		host = "0.0.0.0"
	}
	port := opts.Port
	if port <= 0 {
		port = 8080
	}
	readTimeout := opts.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 10 * time.Second
	}
	writeTimeout := opts.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 90 * time.Second
	}
	shutdownTimeout := opts.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}

	opts.Host = host
	opts.Port = port
	opts.ReadTimeout = readTimeout
	opts.WriteTimeout = writeTimeout
	opts.ShutdownTimeout = shutdownTimeout

	return &Server{
		authStore:    deps.Auth,
		history:      deps.History,
		health:       deps.Health,
		translator:   deps.Translator,
		learning:     deps.Learning,
		achievements: deps.Achievements,
		tokens:       deps.Tokens,
		limiter:      deps.Limiter,
		cookies:      cookieBridge{secure: opts.CookieSecure},
		logger:       logger,
		opts:         opts,
	}
}

// Handler builds the Echo router with middleware, API routes and the guarded
// page shell.
func (s *Server) Handler() (*echo.Echo, error) {
	if s == nil {
		return nil, fmt.Errorf("server is not initialized")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.httpErrorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	if len(s.opts.AllowedOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     s.opts.AllowedOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
			AllowCredentials: true,
			MaxAge:           3600,
		}))
	}
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				s.logger.Error().
					Err(v.Error).
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Str("remote_ip", v.RemoteIP).
					Str("request_id", v.RequestID).
					Msg("http request failed")
				return nil
			}

			s.logger.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Str("request_id", v.RequestID).
				Msg("http request")
			return nil
		},
	}))
	e.Use(RouteGuard())

	assetsSub, err := fs.Sub(embeddedAssets, "assets")
	if err != nil {
		return nil, fmt.Errorf("load embedded assets: %w", err)
	}
	indexHTML, err := fs.ReadFile(assetsSub, "index.html")
	if err != nil {
		return nil, fmt.Errorf("load index.html: %w", err)
	}

	indexHandler := func(c echo.Context) error {
		if strings.HasPrefix(c.Request().URL.Path, "/api/") {
			return echo.ErrNotFound
		}
		return c.Blob(http.StatusOK, "text/html; charset=utf-8", indexHTML)
	}

	e.GET("/assets/*", echo.WrapHandler(http.StripPrefix("/assets/", http.FileServer(http.FS(assetsSub)))))
	e.GET("/", indexHandler)
	e.GET("/*", indexHandler)

	api := e.Group("/api")
	api.GET("/health", s.handleHealth)

	authGroup := api.Group("/auth")
	authGroup.POST("/register", s.handleRegister)
	authGroup.POST("/login", s.handleLogin)
	authGroup.POST("/logout", s.handleLogout)
	authGroup.GET("/me", s.handleMe, s.requireAuth())

	api.POST("/translate", s.handleTranslate, s.optionalAuth(), s.rateLimit("translate"))

	history := api.Group("/history", s.requireAuth())
	history.GET("", s.handleListHistory)
	history.DELETE("", s.handleClearHistory)
	history.GET("/:id", s.handleGetHistory)
	history.PATCH("/:id", s.handlePatchHistory)
	history.DELETE("/:id", s.handleDeleteHistory)

	vocabulary := api.Group("/vocabulary", s.requireAuth())
	vocabulary.GET("", s.handleListVocabulary)
	vocabulary.POST("", s.handleCreateVocabulary)
	vocabulary.POST("/extract", s.handleExtractVocabulary)
	vocabulary.GET("/:id", s.handleGetVocabulary)
	vocabulary.PATCH("/:id", s.handlePatchVocabulary)
	vocabulary.DELETE("/:id", s.handleDeleteVocabulary)

	practice := api.Group("/practice", s.requireAuth())
	practice.GET("/sessions", s.handleListPracticeSessions)
	practice.POST("/sessions", s.handleStartPracticeSession)
	practice.GET("/sessions/:id", s.handleGetPracticeSession)
	practice.POST("/sessions/:id/answers", s.handleRecordPracticeAnswer)
	practice.POST("/sessions/:id/complete", s.handleCompletePracticeSession)

	api.GET("/achievements", s.handleListAchievements)
	api.GET("/achievements/me", s.handleMyAchievements, s.requireAuth())
	api.POST("/achievements/refresh", s.handleRefreshAchievements, s.requireAuth())
	api.PATCH("/achievements/:id", s.handlePatchAchievement, s.requireAuth())
	api.GET("/progress", s.handleProgress, s.requireAuth())

	return e, nil
}

func (s *Server) Start(ctx context.Context) error {
	e, err := s.Handler()
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", s.opts.Host, s.opts.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      e,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		if shutdownErr := e.Shutdown(shutdownCtx); shutdownErr != nil {
			s.logger.Error().Err(shutdownErr).Msg("server shutdown failed")
		}
	}()

	s.logger.Info().Str("addr", addr).Msg("askverba server started")

	if err := e.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("start server: %w", err)
	}
	s.logger.Info().Msg("askverba server stopped")
	return nil
}

func (s *Server) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := "Internal server error"
	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		switch v := he.Message.(type) {
		case string:
			if strings.TrimSpace(v) != "" {
				message = v
			}
		default:
			if text := strings.TrimSpace(http.StatusText(status)); text != "" {
				message = text
			}
		}
	} else if err != nil {
		s.logger.Error().Err(err).Str("path", c.Request().URL.Path).Msg("unhandled request error")
	}

	isAPI := strings.HasPrefix(c.Request().URL.Path, "/api/")
	if isAPI {
		if status >= 500 {
			_ = internalError(c, "Internal server error")
			return
		}
		_ = fail(c, status, message, nil)
		return
	}

	_ = c.String(status, message)
}

func (s *Server) handleHealth(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	for _, checker := range s.health {
		if checker == nil {
			continue
		}
		if err := checker.Ping(ctx); err != nil {
			s.logger.Error().Err(err).Msg("health check failed")
			return fail(c, http.StatusServiceUnavailable, "Service unavailable", nil)
		}
	}
	return success(c, map[string]any{
		"status":  "ok",
		"service": "askverba",
		"time":    globaltime.UTC(),
	})
}

type pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalItems int64 `json:"totalItems"`
	TotalPages int   `json:"totalPages"`
}

// parsePage reads page and page_size. On failure the 400 response has been
// written and handled is true.
func parsePage(c echo.Context) (page, pageSize int, handled bool, err error) {
	page, perr := parsePositiveInt(c.QueryParam("page"), 1, 1, 1_000_000)
	if perr != nil {
		return 0, 0, true, failValidation(c, map[string]string{"page": perr.Error()})
	}
	pageSize, perr = parsePositiveInt(c.QueryParam("page_size"), defaultPageSize, 1, maxPageSize)
	if perr != nil {
		return 0, 0, true, failValidation(c, map[string]string{"page_size": perr.Error()})
	}
	return page, pageSize, false, nil
}

func newPagination(page, pageSize int, total int64) pagination {
	totalPages := 0
	if total > 0 {
		totalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return pagination{Page: page, PageSize: pageSize, TotalItems: total, TotalPages: totalPages}
}

func parsePositiveInt(raw string, defaultValue, minValue, maxValue int) (int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return defaultValue, nil
	}

	value, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("must be an integer")
	}
	if value < minValue || value > maxValue {
		return 0, fmt.Errorf("must be between %d and %d", minValue, maxValue)
	}
	return value, nil
}

func parseBoolFilter(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return false, nil
	case "1", "true", "yes":
		return true, nil
	case "0", "false", "no":
		return false, nil
	default:
		return false, fmt.Errorf("must be true or false")
	}
}
