package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/promptline/promptline-api/config"
	"github.com/promptline/promptline-api/internal/adapters/chatworker"
	httpx "github.com/promptline/promptline-api/internal/http"
)

// RunOptions contains everything needed to run the enabled services.
type RunOptions struct {
	Config      *config.AppConfig
	Services    *ServiceContainer
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// Run starts all enabled services and blocks until a shutdown signal arrives
// or a service fails. The first failure cancels the rest.
func Run(ctx context.Context, opts RunOptions) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	enabled, err := opts.Config.GetEnabledServices()
	if err != nil {
		return fmt.Errorf("determine enabled services: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	if enabled[config.ServiceModeHTTP] {
		startHTTPService(ctx, g, opts, logger)
	}

	if enabled[config.ServiceModeWorker] {
		if err := startWorkerService(ctx, g, opts, logger); err != nil {
			return err
		}
	}

	err = g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logger.Info("all services stopped")
	return nil
}

func startHTTPService(ctx context.Context, g *errgroup.Group, opts RunOptions, logger *slog.Logger) {
	router := httpx.NewRouter(httpx.RouterServices{
		Auth:         opts.Services.Auth,
		Chat:         opts.Services.Chat,
		Jobs:         opts.Services.Jobs,
		RateLimiter:  opts.Services.RateLimiter,
		HealthChecks: healthChecks(opts),
		Logger:       logger,
	})

	server := &http.Server{
		Addr:              opts.Config.HTTP.Addr,
		Handler:           router,
		ReadHeaderTimeout: opts.Config.HTTP.ReadHeaderTimeout,
	}

	g.Go(func() error {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), opts.Config.HTTP.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		logger.Info("HTTP server stopped")
		return nil
	})
}

func startWorkerService(ctx context.Context, g *errgroup.Group, opts RunOptions, logger *slog.Logger) error {
	if opts.Services.Consumer == nil {
		return errors.New("worker service requires the redis executor mode")
	}

	runner, err := chatworker.NewRunner(chatworker.RunnerOptions{
		Consumer:      opts.Services.Consumer,
		Provider:      opts.Services.Provider,
		Conversations: opts.Services.Conversations,
		Concurrency:   opts.Config.Worker.Concurrency,
		TaskTimeout:   opts.Config.Worker.TaskTimeout,
		Logger:        logger,
	})
	if err != nil {
		return fmt.Errorf("build chat worker: %w", err)
	}

	g.Go(func() error {
		if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("chat worker: %w", err)
		}
		logger.Info("chat worker stopped")
		return nil
	})
	return nil
}

func healthChecks(opts RunOptions) map[string]httpx.HealthCheck {
	checks := make(map[string]httpx.HealthCheck)
	if opts.DB != nil {
		checks["database"] = opts.DB.PingContext
	}
	if opts.RedisClient != nil {
		client := opts.RedisClient
		checks["redis"] = func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}
	}
	return checks
}
