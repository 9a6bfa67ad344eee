package di

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/Tzuyuchae/QuickThoughts/internal/handlers"
	"github.com/Tzuyuchae/QuickThoughts/internal/middleware"
	"github.com/Tzuyuchae/QuickThoughts/internal/observability"
	"github.com/Tzuyuchae/QuickThoughts/pkg/auth"
)

// RouterConfig holds the HTTP settings the router needs.
type RouterConfig struct {
	Environment    string
	RequestTimeout time.Duration
	MetricsEnabled bool
	MetricsPath    string
	AllowedOrigins []string
	AIBreaker      middleware.CircuitBreakerConfig
}

// Handlers groups the API handlers.
type Handlers struct {
	Transcribe *handlers.TranscribeHandler
	Memos      *handlers.MemoHandler
	Onboarding *handlers.OnboardingHandler
	Prompt     *handlers.PromptHandler
}

// NewRouter wires middleware and routes.
func NewRouter(
	cfg RouterConfig,
	h Handlers,
	verifier auth.Verifier,
	metrics *observability.Collector,
	aiAvailable func() bool,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware - applied to all routes
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recovery(logger))
	if cfg.MetricsEnabled {
		r.Use(middleware.Metrics(metrics))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", handlers.Health(cfg.Environment, aiAvailable))
	if cfg.MetricsEnabled && cfg.MetricsPath != "" {
		r.Handle(cfg.MetricsPath, metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(cfg.RequestTimeout, logger))
		r.Use(middleware.Authenticate(verifier, logger))

		// Model-backed routes share one breaker so a failing provider sheds load.
		r.Group(func(r chi.Router) {
			r.Use(middleware.CircuitBreaker(cfg.AIBreaker, logger))
			r.Post("/transcribe", h.Transcribe.Transcribe)
			r.Post("/gemini", h.Prompt.Prompt)
		})

		r.Get("/folders", h.Memos.ListFolders)
		r.Route("/memos", func(r chi.Router) {
			r.Get("/", h.Memos.ListMemos)
			r.Post("/", h.Memos.CreateMemo)
			r.Delete("/{memoId}", h.Memos.DeleteMemo)
		})
		r.Get("/profile", h.Onboarding.Profile)
		r.Post("/onboarding", h.Onboarding.Complete)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	return r
}
