package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	api "github.com/oshokin/sweetmoney-versioning/internal/api/grpc/version"
	"github.com/oshokin/sweetmoney-versioning/internal/api/rest"
	"github.com/oshokin/sweetmoney-versioning/internal/config"
	"github.com/oshokin/sweetmoney-versioning/internal/logger"
	"github.com/oshokin/sweetmoney-versioning/internal/repository/record"
	"github.com/oshokin/sweetmoney-versioning/internal/service/checker"
)

// Options controls the version server process and configuration.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// GRPCAddress overrides the configured gRPC listen address.
	GRPCAddress string
	// HTTPAddress overrides the configured HTTP listen address.
	HTTPAddress string
}

// Run starts the gRPC and HTTP servers and blocks until the context is cancelled
// or one of them fails.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "sweetmoney-server")

	// Load configuration first to get server settings.
	settings, err := config.LoadOrDefault(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	grpcAddress := settings.Server.GRPCAddress
	if opts.GRPCAddress != "" {
		grpcAddress = opts.GRPCAddress
	}

	httpAddress := settings.Server.HTTPAddress
	if opts.HTTPAddress != "" {
		httpAddress = opts.HTTPAddress
	}

	repo, err := record.Open(ctx, &settings.Store)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	defer func() {
		_ = repo.Close()
	}()

	formatChecker, err := checker.NewFromConfig(&settings.Formats, "")
	if err != nil {
		return fmt.Errorf("initialise format checker: %w", err)
	}

	// Setup TCP listeners before serving so address errors surface immediately.
	lc := net.ListenConfig{}

	grpcListener, err := lc.Listen(ctx, "tcp", grpcAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", grpcAddress, err)
	}

	httpListener, err := lc.Listen(ctx, "tcp", httpAddress)
	if err != nil {
		_ = grpcListener.Close()

		return fmt.Errorf("listen on %s: %w", httpAddress, err)
	}

	return Serve(ctx, &Listeners{GRPC: grpcListener, HTTP: httpListener}, &Dependencies{
		Repository:      repo,
		Checker:         formatChecker,
		Languages:       settings.Formats.Languages,
		ShutdownTimeout: settings.Server.ShutdownTimeout,
	})
}

// Listeners are the sockets the servers accept connections on.
type Listeners struct {
	// GRPC accepts gRPC connections.
	GRPC net.Listener
	// HTTP accepts HTTP connections.
	HTTP net.Listener
}

// Dependencies are the collaborators of the servers.
type Dependencies struct {
	// Repository reads the Version Record.
	Repository record.Repository
	// Checker serves format checks over HTTP.
	Checker rest.FormatChecker
	// Languages are checked by GET /api/formats.
	Languages []string
	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration
}

// Serve runs both servers on the given listeners until ctx is cancelled.
func Serve(ctx context.Context, listeners *Listeners, deps *Dependencies) error {
	svc := newService(deps.Repository)

	// Create and configure gRPC server with the version and health services.
	grpcServer := grpc.NewServer()
	api.RegisterVersionServiceServer(grpcServer, api.NewServer(svc))

	healthServer := health.NewServer()
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(api.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)

	app := rest.NewApp(ctx, svc, deps.Checker, deps.Languages)

	logger.InfoKV(ctx, "Version server listening",
		"grpc_address", listeners.GRPC.Addr().String(), "http_address", listeners.HTTP.Addr().String())

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		if err := grpcServer.Serve(listeners.GRPC); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("serve gRPC: %w", err)
		}

		return nil
	})

	group.Go(func() error {
		if err := app.Listener(listeners.HTTP); err != nil {
			return fmt.Errorf("serve HTTP: %w", err)
		}

		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()

		logger.Info(ctx, "Shutting down version server")

		healthServer.Shutdown()
		stopGRPC(grpcServer, deps.ShutdownTimeout)

		return shutdownHTTP(app, deps.ShutdownTimeout)
	})

	if err := group.Wait(); err != nil {
		return err
	}

	logger.Info(ctx, "Version server stopped")

	return nil
}

// stopGRPC stops gracefully, forcing the stop once the timeout elapses.
func stopGRPC(server *grpc.Server, timeout time.Duration) {
	done := make(chan struct{})

	go func() {
		server.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		server.Stop()
		<-done
	}
}

// shutdownHTTP stops the fiber application within the timeout.
func shutdownHTTP(app *fiber.App, timeout time.Duration) error {
	if err := app.ShutdownWithTimeout(timeout); err != nil {
		return fmt.Errorf("shutdown HTTP: %w", err)
	}

	return nil
}
