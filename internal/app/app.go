package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/chrissnell/stormtide/internal/archive"
	"github.com/chrissnell/stormtide/internal/metrics"
	"github.com/chrissnell/stormtide/internal/pipeline"
	"github.com/chrissnell/stormtide/pkg/config"
)

// App represents one storm run
type App struct {
	configProvider config.ConfigProvider
	logger         *zap.SugaredLogger
}

// New creates a new application instance
func New(configProvider config.ConfigProvider, logger *zap.SugaredLogger) *App {
	return &App{
		configProvider: configProvider,
		logger:         logger,
	}
}

// Run loads the configuration and executes the pipeline. An interrupt cancels
// the run; sub-runs still in flight report an unexpected failure.
func (a *App) Run(ctx context.Context) (pipeline.RunResult, error) {
	cfg, err := a.configProvider.LoadConfig()
	if err != nil {
		return pipeline.RunResult{}, fmt.Errorf("error reading config: %w", err)
	}
	defer a.configProvider.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := archive.NewStore(archive.Options{
		Compression: archive.ParseCompressionType(cfg.Archive.Compression),
	})
	runner := pipeline.NewRunner(a.logger, store, metrics.New())

	res := runner.Run(ctx, cfg)
	if ctx.Err() != nil {
		a.logger.Warn("run interrupted")
	}
	return res, nil
}
