package di

import (
	"context"
	"fmt"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Tzuyuchae/QuickThoughts/internal/config"
	"github.com/Tzuyuchae/QuickThoughts/internal/handlers"
	"github.com/Tzuyuchae/QuickThoughts/internal/middleware"
	"github.com/Tzuyuchae/QuickThoughts/internal/observability"
	"github.com/Tzuyuchae/QuickThoughts/internal/repository"
	"github.com/Tzuyuchae/QuickThoughts/internal/repository/supabase"
	"github.com/Tzuyuchae/QuickThoughts/internal/service/llm"
	"github.com/Tzuyuchae/QuickThoughts/internal/service/transcription"
	"github.com/Tzuyuchae/QuickThoughts/pkg/auth"
)

func provideLevel(cfg *config.Config) zap.AtomicLevel {
	return zap.NewAtomicLevelAt(observability.ParseLevel(cfg.Logging.Level))
}

func provideLogger(cfg *config.Config, level zap.AtomicLevel) (*zap.Logger, error) {
	logger, err := observability.NewLoggerWithLevel(string(cfg.Environment), cfg.Logging.Format, level)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger.With(zap.String("environment", string(cfg.Environment))), nil
}

func provideMetrics(cfg *config.Config) *observability.Collector {
	return observability.NewCollector(cfg.Metrics.Namespace)
}

func provideTracer(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*observability.TracerProvider, func(), error) {
	tp, err := observability.InitTracing(ctx, cfg.Tracing.Enabled, cfg.Tracing.ServiceName, string(cfg.Environment), cfg.Tracing.Endpoint)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	cleanup := func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			logger.Warn("tracer shutdown failed", zap.Error(err))
		}
	}
	return tp, cleanup, nil
}

// provideLLMProvider selects the model backend and guards it with a breaker.
func provideLLMProvider(cfg *config.Config, logger *zap.Logger) llm.Provider {
	var next llm.Provider
	switch cfg.AI.Provider {
	case "mock":
		logger.Warn("using mock AI provider")
		next = llm.NewMockProvider()
	default:
		next = llm.NewGeminiProvider(llm.GeminiConfig{
			APIKey:  cfg.AI.APIKey,
			Model:   cfg.AI.Model,
			BaseURL: cfg.AI.BaseURL,
			Timeout: cfg.AI.Timeout,
		}, logger)
	}

	cb := cfg.CircuitBreaker
	return llm.NewBreakerProvider(next, llm.BreakerConfig{
		Name:             "ai-provider",
		MaxRequests:      cb.MaxRequests,
		Interval:         cb.Interval,
		Timeout:          cb.Timeout,
		FailureThreshold: cb.FailureThreshold,
		MinRequests:      cb.MinRequests,
	}, logger)
}

func provideTranscriptionService(cfg *config.Config, provider llm.Provider, logger *zap.Logger, metrics *observability.Collector) *transcription.Service {
	return transcription.NewService(provider, logger, metrics, cfg.Classification.MaxThoughts)
}

func provideRepository(cfg *config.Config, logger *zap.Logger, metrics *observability.Collector) (repository.Repository, error) {
	repo, err := supabase.NewRepository(supabase.Config{
		URL:            cfg.Supabase.URL,
		AnonKey:        cfg.Supabase.AnonKey,
		ServiceRoleKey: cfg.Supabase.ServiceRoleKey,
	}, logger, metrics)
	if err != nil {
		return nil, err
	}
	return repo, nil
}

// provideVerifier checks tokens locally when the JWT secret is known and asks
// GoTrue otherwise.
func provideVerifier(cfg *config.Config) (auth.Verifier, error) {
	var local auth.Verifier
	if cfg.Supabase.JWTSecret != "" {
		v, err := auth.NewJWTVerifier(cfg.Supabase.JWTSecret)
		if err != nil {
			return nil, err
		}
		local = v
	}

	key := cfg.Supabase.AnonKey
	if key == "" {
		key = cfg.Supabase.Key()
	}
	remote, err := auth.NewSupabaseVerifier(cfg.Supabase.URL, key)
	if err != nil {
		return nil, err
	}
	return auth.NewChainVerifier(local, remote), nil
}

func provideHandlers(cfg *config.Config, svc *transcription.Service, repo repository.Repository, logger *zap.Logger) Handlers {
	fallback := cfg.Classification.FallbackFolder
	return Handlers{
		Transcribe: handlers.NewTranscribeHandler(svc, repo, fallback, cfg.Server.MaxUploadBytes, logger),
		Memos:      handlers.NewMemoHandler(repo, fallback, logger),
		Onboarding: handlers.NewOnboardingHandler(repo, fallback, logger),
		Prompt:     handlers.NewPromptHandler(svc, logger),
	}
}

func provideRouterConfig(cfg *config.Config) RouterConfig {
	cb := cfg.CircuitBreaker
	return RouterConfig{
		Environment:    string(cfg.Environment),
		RequestTimeout: cfg.Server.RequestTimeout,
		MetricsEnabled: cfg.Metrics.Enabled,
		MetricsPath:    cfg.Metrics.Path,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AIBreaker: middleware.CircuitBreakerConfig{
			Name:             "ai-routes",
			MaxRequests:      cb.MaxRequests,
			Interval:         cb.Interval,
			Timeout:          cb.Timeout,
			FailureThreshold: cb.FailureThreshold,
			MinRequests:      cb.MinRequests,
		},
	}
}

func provideRouter(
	rc RouterConfig,
	h Handlers,
	verifier auth.Verifier,
	metrics *observability.Collector,
	svc *transcription.Service,
	logger *zap.Logger,
) *chi.Mux {
	return NewRouter(rc, h, verifier, metrics, svc.IsAvailable, logger)
}
