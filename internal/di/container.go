// Package di assembles the server's dependency graph.
package di

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Tzuyuchae/QuickThoughts/internal/config"
	"github.com/Tzuyuchae/QuickThoughts/internal/observability"
	"github.com/Tzuyuchae/QuickThoughts/internal/repository"
	"github.com/Tzuyuchae/QuickThoughts/internal/service/llm"
	"github.com/Tzuyuchae/QuickThoughts/internal/service/transcription"
	"github.com/Tzuyuchae/QuickThoughts/pkg/auth"
)

// Container holds all application dependencies
type Container struct {
	Config        *config.Config
	Logger        *zap.Logger
	Level         zap.AtomicLevel
	Metrics       *observability.Collector
	Tracer        *observability.TracerProvider
	Provider      llm.Provider
	Transcription *transcription.Service
	Repository    repository.Repository
	Verifier      auth.Verifier
	Router        *chi.Mux
}

// ApplyConfig applies the settings that may change while running.
func (c *Container) ApplyConfig(cfg *config.Config) {
	next := observability.ParseLevel(cfg.Logging.Level)
	if c.Level.Level() != next {
		c.Logger.Info("log level changed",
			zap.String("from", c.Level.Level().String()),
			zap.String("to", next.String()))
		c.Level.SetLevel(next)
	}
}
