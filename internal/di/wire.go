//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"github.com/Tzuyuchae/QuickThoughts/internal/config"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	provideLevel,
	provideLogger,
	provideMetrics,
	provideTracer,
	provideLLMProvider,
	provideTranscriptionService,
	provideRepository,
	provideVerifier,
	provideHandlers,
	provideRouterConfig,
	provideRouter,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer builds the container for cfg.
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, func(), error) {
	wire.Build(SuperSet)
	return nil, nil, nil
}
