package bootstrap

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/promptline/promptline-api/config"
	"github.com/promptline/promptline-api/internal/adapters/chatworker"
	"github.com/promptline/promptline-api/internal/adapters/executor/inproc"
	"github.com/promptline/promptline-api/internal/adapters/executor/redisq"
	"github.com/promptline/promptline-api/internal/adapters/providers/huggingface"
	"github.com/promptline/promptline-api/internal/adapters/providers/openai"
	redisadapter "github.com/promptline/promptline-api/internal/adapters/redis"
	"github.com/promptline/promptline-api/internal/core"
	"github.com/promptline/promptline-api/internal/data"
	"github.com/promptline/promptline-api/internal/observability/statsd"
	"github.com/promptline/promptline-api/internal/service"
)

// ServiceDeps contains the shared infrastructure services are built on.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// ServiceContainer holds the constructed application services and the
// adapters the runtime needs to start them.
type ServiceContainer struct {
	Auth *service.AuthService
	Chat *service.ChatService
	Jobs *service.JobService

	// RateLimiter is nil when rate limiting is disabled.
	RateLimiter core.RateLimiter

	// Consumer is non-nil only in redis executor mode; the worker service
	// drains it.
	Consumer *redisq.Consumer

	Provider      core.CompletionProvider
	Conversations core.ConversationRepository

	// Metrics is the StatsD client; callers should Close it on shutdown.
	Metrics *statsd.Client
}

// NewServices builds the full service graph from configuration.
func NewServices(deps *ServiceDeps) (*ServiceContainer, error) {
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	jobRepo := data.NewJobRepo(deps.DB, data.RepoConfig{Logger: logger})
	userRepo := data.NewUserRepo(deps.DB, data.RepoConfig{})
	conversationRepo := data.NewConversationRepo(deps.DB, data.RepoConfig{})

	provider, err := newProvider(cfg.Provider)
	if err != nil {
		return nil, err
	}

	statsdClient, err := statsd.NewClient(statsd.Config{
		Enabled: cfg.Observability.StatsdEnabled,
		Address: cfg.Observability.StatsdAddr,
		Prefix:  cfg.Observability.StatsdPrefix,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build statsd client: %w", err)
	}

	executor, consumer, err := newExecutor(executorDeps{
		cfg:           cfg,
		redisClient:   deps.RedisClient,
		provider:      provider,
		conversations: conversationRepo,
		logger:        logger,
	})
	if err != nil {
		return nil, err
	}

	jobs, err := service.NewJobService(service.JobServiceOptions{
		Store:    jobRepo,
		Executor: executor,
		Logger:   logger,
		Metrics:  statsdClient,
	})
	if err != nil {
		return nil, fmt.Errorf("build job service: %w", err)
	}

	auth, err := service.NewAuthService(service.AuthServiceOptions{
		Users:     userRepo,
		JWTSecret: []byte(cfg.Auth.JWTSecret),
		TokenTTL:  cfg.Auth.TokenTTL,
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build auth service: %w", err)
	}

	chat, err := service.NewChatService(service.ChatServiceOptions{
		Provider:      provider,
		Conversations: conversationRepo,
		Jobs:          jobs,
		Logger:        logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build chat service: %w", err)
	}

	var limiter core.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter, err = redisadapter.NewRateLimiter(redisadapter.RateLimiterConfig{
			Client: deps.RedisClient,
			Limit:  cfg.RateLimit.Limit,
			Window: cfg.RateLimit.Window,
		})
		if err != nil {
			return nil, fmt.Errorf("build rate limiter: %w", err)
		}
	}

	return &ServiceContainer{
		Auth:          auth,
		Chat:          chat,
		Jobs:          jobs,
		RateLimiter:   limiter,
		Consumer:      consumer,
		Provider:      provider,
		Conversations: conversationRepo,
		Metrics:       statsdClient,
	}, nil
}

//nolint:ireturn // provider selection happens at runtime.
func newProvider(cfg config.ProviderConfig) (core.CompletionProvider, error) {
	switch cfg.Name {
	case config.ProviderHuggingFace:
		return huggingface.New(huggingface.Config{
			APIKey:  cfg.HuggingFace.APIKey,
			BaseURL: cfg.HuggingFace.BaseURL,
		}), nil
	case config.ProviderOpenAI:
		client, err := openai.New(openai.Config{
			APIKey:  cfg.OpenAI.APIKey,
			BaseURL: cfg.OpenAI.BaseURL,
		})
		if err != nil {
			return nil, fmt.Errorf("build openai provider: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Name)
	}
}

type executorDeps struct {
	cfg           *config.AppConfig
	redisClient   redis.UniversalClient
	provider      core.CompletionProvider
	conversations core.ConversationRepository
	logger        *slog.Logger
}

// newExecutor builds the configured background executor. In redis mode the
// returned consumer feeds the worker service; in inproc mode tasks run inside
// this process and no consumer exists.
//
//nolint:ireturn // executor selection happens at runtime.
func newExecutor(deps executorDeps) (core.JobExecutor, *redisq.Consumer, error) {
	execCfg := deps.cfg.Executor

	if execCfg.Mode == config.ExecutorModeInproc {
		dispatcher, err := chatworker.NewDispatcher(chatworker.DispatcherOptions{
			Provider:      deps.provider,
			Conversations: deps.conversations,
			TaskTimeout:   deps.cfg.Worker.TaskTimeout,
			Logger:        deps.logger,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("build task dispatcher: %w", err)
		}

		executor, err := inproc.New(inproc.Config{
			Handler:   dispatcher.Handle,
			Retention: execCfg.Retention,
			Logger:    deps.logger,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("build inproc executor: %w", err)
		}
		return executor, nil, nil
	}

	queueCfg := redisq.Config{
		Client:    deps.redisClient,
		Queue:     execCfg.Queue,
		KeyPrefix: execCfg.KeyPrefix,
		Retention: execCfg.Retention,
	}

	executor, err := redisq.New(queueCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("build redis executor: %w", err)
	}
	consumer, err := redisq.NewConsumer(queueCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("build queue consumer: %w", err)
	}
	return executor, consumer, nil
}
