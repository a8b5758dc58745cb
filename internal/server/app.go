// Package server wires the proposal service together: storage, token
// codec, services, notification backends, and the HTTP and gRPC servers.
// It also owns signal handling and graceful shutdown.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/proposals/internal/logging"
	"github.com/dmitrijs2005/proposals/internal/server/auth"
	"github.com/dmitrijs2005/proposals/internal/server/config"
	"github.com/dmitrijs2005/proposals/internal/server/httpapi"
	"github.com/dmitrijs2005/proposals/internal/server/metrics"
	"github.com/dmitrijs2005/proposals/internal/server/notify"
	"github.com/dmitrijs2005/proposals/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/proposals/internal/server/services"
	"golang.org/x/crypto/bcrypt"

	gs "github.com/dmitrijs2005/proposals/internal/server/grpc"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	repomanager repomanager.RepositoryManager
	httpServer  *httpapi.HTTPServer
	grpcServer  *gs.GRPCServer
}

// openStorage picks the in-memory store when no DSN is configured.
var openStorage = func(ctx context.Context, dsn string) (repomanager.RepositoryManager, error) {
	if dsn == "" {
		return repomanager.NewInMemoryRepositoryManager(), nil
	}
	return repomanager.OpenPostgres(ctx, dsn)
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(c.LogLevel, os.Stdout)

	rm, err := openStorage(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := rm.RunMigrations(ctx); err != nil {
		_ = rm.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	if c.TokenKeyDerivation == "" || c.TokenKeyDerivation == auth.KeyDerivationRaw {
		logger.Warn(ctx, "token signing key is the raw secret; set key derivation to hkdf for stronger keys")
	}

	key, err := auth.NewSigningKey(c.SecretKey, c.TokenKeyDerivation)
	if err != nil {
		_ = rm.Close()
		return nil, fmt.Errorf("signing key error: %w", err)
	}

	codec, err := auth.NewTokenCodec(key, c.TokenValidityDuration)
	if err != nil {
		_ = rm.Close()
		return nil, fmt.Errorf("token codec error: %w", err)
	}

	dispatcher, err := buildDispatcher(ctx, c, logger)
	if err != nil {
		_ = rm.Close()
		return nil, err
	}

	mt := metrics.New()

	us, err := services.NewUserService(rm, codec, logger, bcrypt.DefaultCost)
	if err != nil {
		_ = rm.Close()
		return nil, fmt.Errorf("user service error: %w", err)
	}

	ps := services.NewProposalService(rm, dispatcher, mt, logger, services.ProposalConfig{
		FrontendURL:   c.FrontendURL,
		NotifyTimeout: c.NotifyTimeout,
	})

	guard := auth.NewGuard(auth.NewRouteGate(auth.DefaultRouteRules()), codec)

	hs := httpapi.NewHTTPServer(httpapi.Config{
		Address:        c.EndpointAddrHTTP,
		AllowedOrigins: c.AllowedOrigins(),
		AuthRateLimit:  c.AuthRateLimitMax,
		StorageKind:    rm.Kind(),
	}, us, ps, guard, mt, logger)

	grpcServer := gs.NewGRPCServer(c.EndpointAddrGRPC, logger)

	logger.Info(ctx, "app initialized", "storage", rm.Kind(), "mail", c.MailProvider)

	return &App{
		config:      c,
		logger:      logger,
		repomanager: rm,
		httpServer:  hs,
		grpcServer:  grpcServer,
	}, nil
}

// buildDispatcher selects the mail backend and adds the S3 archive when a
// bucket is configured.
func buildDispatcher(ctx context.Context, c *config.Config, l logging.Logger) (notify.Dispatcher, error) {
	var primary notify.Dispatcher

	switch c.MailProvider {
	case "", "log":
		primary = notify.NewLogDispatcher(l)
	case "sendgrid":
		sg, err := notify.NewSendGridDispatcher(c.SendGridAPIKey, c.MailFromAddress, c.MailFromName)
		if err != nil {
			return nil, fmt.Errorf("sendgrid init error: %w", err)
		}
		primary = sg
	case "smtp":
		sm, err := notify.NewSMTPDispatcher(notify.SMTPConfig{
			Host:     c.SMTPHost,
			Port:     c.SMTPPort,
			Username: c.SMTPUsername,
			Password: c.SMTPPassword,
			FromAddr: c.MailFromAddress,
			FromName: c.MailFromName,
		})
		if err != nil {
			return nil, fmt.Errorf("smtp init error: %w", err)
		}
		primary = sm
	default:
		return nil, fmt.Errorf("unknown mail provider %q", c.MailProvider)
	}

	if c.S3Bucket == "" {
		return primary, nil
	}

	archive, err := notify.NewS3Archive(ctx, notify.S3Config{
		User:     c.S3RootUser,
		Password: c.S3RootPassword,
		Bucket:   c.S3Bucket,
		Region:   c.S3Region,
		Endpoint: c.S3BaseEndpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("s3 archive init error: %w", err)
	}

	return notify.Multi{primary, archive}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.httpServer.Run(ctx); err != nil {
		app.logger.Error(ctx, "http server error", "error", err)
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.grpcServer.Run(ctx); err != nil {
		app.logger.Error(ctx, "grpc server error", "error", err)
		cancelFunc()
	}
}

// Run blocks until a termination signal arrives or a server fails, then
// stops both servers and closes storage.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	app.grpcServer.SetServing(true)

	wg.Wait()

	if err := app.repomanager.Close(); err != nil {
		app.logger.Error(ctx, "storage close error", "error", err)
	}

	app.logger.Info(ctx, "App stopped")
}
