package server

import (
	"fmt"
	"net/http"
	"time"

	"Lumi_V0.1/internal/admin"
	"Lumi_V0.1/internal/auth"
	"Lumi_V0.1/internal/utility"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

func (s *Server) RegisterRoutes() http.Handler {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = utility.NewRequestValidator()

	e.Use(middleware.Recover())
	e.Use(LoggerMiddleware)
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogMethod:   true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger := log.Ctx(c.Request().Context())
			event := logger.Info()
			if v.Error != nil {
				event = logger.Error().Err(v.Error)
			}
			event.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	}))

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"https://*", "http://*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Data URIs are base64, a third larger than the file itself.
	e.Use(middleware.BodyLimit(fmt.Sprintf("%dK", (s.cfg.MaxUploadBytes*4/3)/1024+64)))

	e.GET("/health", admin.HealthHandler(s.db))

	// Protected routes
	protected := e.Group("")
	protected.Use(auth.JwtAuthMiddleware([]byte(s.cfg.JWTSecret)))

	protected.POST("/analyze", s.user.AnalyzeHandler, s.analyzeRateLimiter())

	protected.GET("/favorites", s.user.ListFavoritesHandler)
	protected.POST("/favorites", s.user.AddFavoriteHandler)
	protected.GET("/favorites/:name", s.user.IsFavoriteHandler)
	protected.DELETE("/favorites/:name", s.user.RemoveFavoriteHandler)

	protected.GET("/progress", s.user.ListProgressHandler)
	protected.POST("/progress", s.user.AddProgressHandler)
	protected.GET("/progress/:id", s.user.GetProgressEntryHandler)

	protected.GET("/ws", s.user.WebSocketHandler)

	return e
}

// analyzeRateLimiter limits each client address on the expensive model route.
func (s *Server) analyzeRateLimiter() echo.MiddlewareFunc {
	limit := rate.Limit(s.cfg.AnalyzeRateLimit)
	burst := int(s.cfg.AnalyzeRateLimit)
	if burst < 1 {
		burst = 1
	}

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      limit,
			Burst:     burst,
			ExpiresIn: 3 * time.Minute,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			if id, err := utility.GetUserIDFromContext(c); err == nil {
				return id, nil
			}
			return utility.GetRealIP(c), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusForbidden, map[string]string{"error": "Unable to identify client"})
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			log.Ctx(c.Request().Context()).Warn().Str("client", identifier).Msg("Analysis rate limit exceeded")
			return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "Too many analysis requests, please wait a moment."})
		},
	})
}

// LoggerMiddleware tags the request with an id and puts a logger carrying
// it into the request context, so log.Ctx works everywhere downstream.
func LoggerMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := c.Request().Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Response().Header().Set("X-Request-ID", requestID)

		logger := log.With().Str("request_id", requestID).Logger()
		ctx := logger.WithContext(c.Request().Context())
		c.SetRequest(c.Request().WithContext(ctx))

		return next(c)
	}
}
