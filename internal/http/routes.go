package httpx

import (
	"log/slog"
	"net/http"

	"github.com/promptline/promptline-api/internal/core"
	"github.com/promptline/promptline-api/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Auth *service.AuthService
	Chat *service.ChatService
	Jobs *service.JobService
	// Optional: request budget enforcement on chat routes. If nil, no limit.
	RateLimiter core.RateLimiter
	// Optional: dependency probes surfaced on /healthz.
	HealthChecks map[string]HealthCheck
	Logger       *slog.Logger
}

// NewRouter creates and configures the HTTP router.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()

	authHandlers := &AuthHandlers{Svc: services.Auth}
	chatHandlers := &ChatHandlers{Chat: services.Chat, Jobs: services.Jobs}
	healthHandlers := &HealthHandlers{Checks: services.HealthChecks}

	mux.Handle("POST /auth/register", http.HandlerFunc(authHandlers.Register))
	mux.Handle("POST /auth/login", http.HandlerFunc(authHandlers.Login))

	requireUser := RequireUser(services.Auth)
	limited := func(h http.Handler) http.Handler {
		if services.RateLimiter == nil {
			return h
		}
		return RateLimit(services.RateLimiter, logger)(h)
	}

	mux.Handle("POST /chat", requireUser(limited(http.HandlerFunc(chatHandlers.Complete))))
	mux.Handle("POST /chat/background", requireUser(limited(http.HandlerFunc(chatHandlers.SubmitBackground))))
	mux.Handle("GET /chat/jobs/stats", requireUser(http.HandlerFunc(chatHandlers.JobStats)))
	mux.Handle("GET /chat/jobs/{id}", requireUser(http.HandlerFunc(chatHandlers.JobStatus)))
	mux.Handle("GET /conversations", requireUser(http.HandlerFunc(chatHandlers.ListConversations)))

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandlers.Health))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandlers.Health))

	var handler http.Handler = mux
	handler = Logging(logger)(handler)
	handler = Recover(logger)(handler)
	return handler
}
