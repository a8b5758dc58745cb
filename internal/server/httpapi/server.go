// Package httpapi exposes the proposal service over HTTP with fiber.
package httpapi

import (
	"context"
	"time"

	"github.com/dmitrijs2005/proposals/internal/logging"
	"github.com/dmitrijs2005/proposals/internal/server/auth"
	"github.com/dmitrijs2005/proposals/internal/server/metrics"
	"github.com/dmitrijs2005/proposals/internal/server/models"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

const shutdownTimeout = 5 * time.Second

// Config holds the transport settings of the HTTP server.
type Config struct {
	Address        string
	AllowedOrigins []string
	AuthRateLimit  int
	AuthRateWindow time.Duration
	StorageKind    string
}

type HTTPServer struct {
	address string
	app     *fiber.App
	logger  logging.Logger
}

func NewHTTPServer(cfg Config, us UserAPI, ps ProposalAPI, g *auth.Guard, mt *metrics.Metrics, l logging.Logger) *HTTPServer {
	logger := l.With("module", "http_server")

	app := fiber.New(fiber.Config{
		AppName:               "proposals",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(logger),
	})

	window := cfg.AuthRateWindow
	if window <= 0 {
		window = time.Minute
	}

	h := &handlers{users: us, proposals: ps, storage: cfg.StorageKind}

	app.Use(requestLogger(logger, mt))
	app.Use(recover.New())
	app.Use(corsMiddleware(cfg.AllowedOrigins))
	app.Use(authenticate(g, logger, mt))

	app.Get("/health", h.health)
	app.Get("/metrics", adaptor.HTTPHandler(mt.Handler()))

	api := app.Group("/api")

	authLimit := rateLimitAuth(cfg.AuthRateLimit, window)
	api.Post("/auth/register", authLimit, h.register)
	api.Post("/auth/login", authLimit, h.login)
	api.Post("/auth/forgot-password", h.forgotPassword)

	api.Post("/proposal/create", h.createProposal)
	api.Get("/proposal/mine", h.mine)
	api.Post("/proposal/:token/respond", h.respond)
	api.Post("/proposal/:token/accept", h.fixedAnswer(models.AnswerYes))
	api.Post("/proposal/:token/reject", h.fixedAnswer(models.AnswerNo))
	api.Get("/proposal/:proposalId/status", h.status)

	api.Get("/notifications", h.notifications)

	return &HTTPServer{address: cfg.Address, app: app, logger: logger}
}

// App exposes the fiber application, mainly for app.Test.
func (s *HTTPServer) App() *fiber.App {
	return s.app
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info(ctx, "Starting HTTP server", "address", s.address)
		errCh <- s.app.Listen(s.address)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info(ctx, "Stopping HTTP server...")
		return s.app.ShutdownWithTimeout(shutdownTimeout)
	case err := <-errCh:
		return err
	}
}
