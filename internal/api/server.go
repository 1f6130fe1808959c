package api

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/tazhate/couplebot/config"
	"github.com/tazhate/couplebot/internal/logger"
	"github.com/tazhate/couplebot/internal/service"
)

// Services are the collaborators the handlers call into
type Services struct {
	Profiles      *service.ProfileService
	Events        *service.EventService
	Anniversaries *service.AnniversaryService
	Memories      *service.MemoryService
	Favorites     *service.FavoriteService
	Calendar      *service.CalendarService
	Export        *service.ExportService
}

// WebhookHandler consumes Telegram webhook posts
type WebhookHandler interface {
	HandleWebhook(r *http.Request) error
}

// Pinger reports database health
type Pinger interface {
	Ping() error
}

// Server represents the HTTP server
type Server struct {
	echo    *echo.Echo
	config  *config.Config
	logger  *logger.Logger
	svc     Services
	webhook WebhookHandler
	db      Pinger
}

// CustomValidator wraps the validator
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates structs
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// New creates the server. webhook may be nil when the bot is disabled.
func New(cfg *config.Config, svc Services, db Pinger, webhook WebhookHandler, appLogger *logger.Logger) *Server {
	if appLogger == nil {
		appLogger = logger.Nop()
	}
	e := echo.New()

	e.Validator = &CustomValidator{validator: service.NewValidator()}
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:    e,
		config:  cfg,
		logger:  appLogger.WithComponent("api"),
		svc:     svc,
		webhook: webhook,
		db:      db,
	}
	e.HTTPErrorHandler = customErrorHandler(s.logger)

	s.setupMiddleware()
	if cfg.Metrics.Enabled {
		s.setupMetrics()
	}
	s.setupRoutes()

	return s
}

// Echo exposes the router, mainly for tests
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.Recover())

	s.echo.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))

	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogError:     true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, values middleware.RequestLoggerValues) error {
			s.logger.LogHTTPRequest(
				values.Method,
				values.URI,
				values.RequestID,
				values.Status,
				float64(values.Latency.Nanoseconds())/1000000,
				values.Error,
			)
			return nil
		},
	}))

	if limit := s.config.Server.RateLimit; limit > 0 {
		burst := int(limit)
		if burst < 1 {
			burst = 1
		}
		s.echo.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
			Skipper: func(c echo.Context) bool {
				return c.Path() == "/bot" || c.Path() == "/health"
			},
			Store: middleware.NewRateLimiterMemoryStoreWithConfig(
				middleware.RateLimiterMemoryStoreConfig{Rate: rate.Limit(limit), Burst: burst, ExpiresIn: 3 * time.Minute},
			),
			IdentifierExtractor: func(ctx echo.Context) (string, error) {
				return ctx.RealIP(), nil
			},
			ErrorHandler: func(c echo.Context, err error) error {
				return c.JSON(http.StatusForbidden, APIResponse{Error: "rate limit exceeded"})
			},
			DenyHandler: func(c echo.Context, identifier string, err error) error {
				return c.JSON(http.StatusTooManyRequests, APIResponse{Error: "rate limit exceeded"})
			},
		}))
	}
}

func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)

	if s.webhook != nil {
		s.echo.POST("/bot", s.telegramWebhook)
	}

	// API disabled if no credentials
	if !s.config.APIEnabled() {
		return
	}

	api := s.echo.Group("/api", s.basicAuth())

	api.GET("/profile", s.getProfile)
	api.PUT("/profile", s.saveProfile)

	api.GET("/events", s.listEvents)
	api.POST("/events", s.createEvent)
	api.GET("/events/:id", s.getEvent)
	api.PUT("/events/:id", s.updateEvent)
	api.DELETE("/events/:id", s.deleteEvent)

	api.GET("/anniversaries", s.listAnniversaries)
	api.GET("/anniversaries/upcoming", s.upcomingAnniversaries)
	api.GET("/anniversaries.ics", s.anniversariesFeed)

	api.GET("/calendar/day/:date", s.calendarDay)
	api.GET("/calendar/range", s.calendarRange)
	api.GET("/calendar/month/:month", s.calendarMonth)
	api.GET("/calendar/colors/:month", s.calendarColors)
	api.POST("/calendar/sync", s.calendarSync)

	api.GET("/memories", s.listMemories)
	api.POST("/memories", s.createMemory)
	api.GET("/memories/:id", s.getMemory)
	api.PUT("/memories/:id", s.updateMemory)
	api.DELETE("/memories/:id", s.deleteMemory)

	api.GET("/favorites", s.listFavorites)
	api.POST("/favorites", s.createFavorite)
	api.GET("/favorites/:id", s.getFavorite)
	api.PUT("/favorites/:id", s.updateFavorite)
	api.DELETE("/favorites/:id", s.deleteFavorite)

	api.GET("/export", s.export)
}

func (s *Server) basicAuth() echo.MiddlewareFunc {
	username := []byte(s.config.API.Username)
	password := []byte(s.config.API.Password)
	return middleware.BasicAuthWithConfig(middleware.BasicAuthConfig{
		Realm: "couplebot",
		Validator: func(u, p string, c echo.Context) (bool, error) {
			if subtle.ConstantTimeCompare([]byte(u), username) == 1 &&
				subtle.ConstantTimeCompare([]byte(p), password) == 1 {
				return true, nil
			}
			s.logger.Warnw("API auth failed", "remote_ip", c.RealIP())
			return false, nil
		},
	})
}

func (s *Server) healthCheck(c echo.Context) error {
	status := http.StatusOK
	resp := map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	}
	if s.db != nil {
		if err := s.db.Ping(); err != nil {
			status = http.StatusServiceUnavailable
			resp["status"] = "error"
			resp["database"] = err.Error()
		}
	}
	return c.JSON(status, resp)
}

func (s *Server) telegramWebhook(c echo.Context) error {
	if err := s.webhook.HandleWebhook(c.Request()); err != nil {
		s.logger.WithError(err).Warn("Bad webhook update")
		return echo.NewHTTPError(http.StatusBadRequest, "invalid update")
	}
	return c.NoContent(http.StatusOK)
}

// Start serves on the configured port until Shutdown
func (s *Server) Start() error {
	address := ":" + s.config.Server.Port
	s.logger.Infow("Starting server", "address", address, "api", s.config.APIEnabled(), "metrics", s.config.Metrics.Enabled)
	if err := s.echo.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server")
	return s.echo.Shutdown(ctx)
}

// customErrorHandler maps service errors onto status codes
func customErrorHandler(log *logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		code, msg := errorStatus(err)

		if code == http.StatusInternalServerError {
			log.Errorw("Internal server error", "error", err, "path", c.Request().URL.Path)
		}

		if !c.Response().Committed {
			if c.Request().Method == http.MethodHead {
				err = c.NoContent(code)
			} else {
				err = c.JSON(code, APIResponse{Error: msg})
			}
			if err != nil {
				log.Errorw("Error sending response", "error", err)
			}
		}
	}
}

func errorStatus(err error) (int, string) {
	var he *echo.HTTPError
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &he):
		return he.Code, fmt.Sprint(he.Message)
	case errors.As(err, &verrs):
		return http.StatusBadRequest, "validation failed: " + verrs.Error()
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrEventNotFound),
		errors.Is(err, service.ErrMemoryNotFound),
		errors.Is(err, service.ErrFavoriteNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, service.ErrNotConfigured):
		return http.StatusServiceUnavailable, err.Error()
	default:
		return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
	}
}
