package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"retailpulse/internal/config"
	apierrors "retailpulse/internal/errors"
	"retailpulse/internal/exporter"
	"retailpulse/internal/infrastructure"
	"retailpulse/internal/pipeline"
	"retailpulse/internal/services"
	transport "retailpulse/internal/transport/http"
	"retailpulse/internal/websocket"
)

// Version is overridden at build time via -ldflags.
var Version = "dev"

// Options tweaks construction for entrypoints and tests.
type Options struct {
	// Version reported on /api/health. Defaults to the package Version.
	Version string
	// BaseDir overrides the executable-relative data root. Tests use it;
	// the binaries leave it empty.
	BaseDir string
}

// Application is the composed dashboard server.
type Application struct {
	Config   *config.Config
	Paths    *config.Paths
	Logger   *slog.Logger
	Hub      *websocket.Hub
	Data     *services.DataService
	Pipeline *services.PipelineService
	Server   *http.Server

	version string
}

// New loads configuration, prepares the data directories and wires
// every service into a ready-to-run application.
func New(opts Options) (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}

	version := opts.Version
	if version == "" {
		version = Version
	}

	paths, err := resolvePaths(opts)
	if err != nil {
		return nil, err
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure data directories: %w", err)
	}

	logger.Info("application starting",
		slog.String("version", version),
		slog.Int("port", cfg.Server.Port),
		slog.String("data_dir", paths.DataDir))

	app := &Application{
		Config:  cfg,
		Paths:   paths,
		Logger:  logger,
		version: version,
	}
	app.initServices()
	app.createServer()
	return app, nil
}

func resolvePaths(opts Options) (*config.Paths, error) {
	if opts.BaseDir != "" {
		return config.PathsFrom(opts.BaseDir), nil
	}
	paths, err := config.GetPaths()
	if err != nil {
		return nil, fmt.Errorf("resolve application paths: %w", err)
	}
	return paths, nil
}

// initServices wires the hub, the pipeline and the data service.
func (a *Application) initServices() {
	a.Hub = websocket.NewHub(a.Logger)

	// Forcing the sample dataset hides the workbook from the ingest step
	// and the processed output from the data service.
	ingestPaths := *a.Paths
	dataPaths := *a.Paths
	if a.Config.Data.UseSample {
		ingestPaths.RawWorkbook = ""
		dataPaths.CleanedCSV = ""
	}

	a.Data = services.NewDataService(&dataPaths, a.Logger)

	steps := []pipeline.Step{
		pipeline.NewIngestStep(ingestPaths, a.Logger),
		pipeline.NewCleanStep(a.Config.Data.OutlierPercentile, a.Logger),
		pipeline.NewExportStep(*a.Paths, exporter.NewCSVWriter(a.Logger), a.Logger),
	}
	runner := pipeline.NewRunner(steps, a.Hub, a.Logger)
	a.Pipeline = services.NewPipelineService(runner, a.Data, a.Logger)
}

// createServer builds the HTTP server over the full router.
func (a *Application) createServer() {
	router := transport.NewRouter(transport.RouterDeps{
		Config:       a.Config,
		Logger:       a.Logger,
		ErrorHandler: apierrors.NewErrorHandler(a.Logger, false),
		Data:         a.Data,
		Pipeline:     a.Pipeline,
		Hub:          a.Hub,
		Version:      a.version,
	})

	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// Run starts the hub and the HTTP server and blocks until the context
// is cancelled or an interrupt arrives, then shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.Hub.Start()
	defer a.Hub.Stop()

	// A missing dataset is not fatal: the dashboard serves a degraded
	// health status until a pipeline run produces one.
	if err := a.Data.Load(ctx); err != nil {
		if !errors.Is(err, services.ErrDatasetNotFound) {
			return fmt.Errorf("load dataset: %w", err)
		}
		a.Logger.Warn("starting without a dataset, run the pipeline to create one")
	}

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		a.Logger.Info("http server listening", slog.String("addr", a.Server.Addr))
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		<-ctx.Done()
		a.Logger.Info("shutting down",
			slog.Duration("timeout", a.Config.Server.ShutdownTimeout))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
		defer cancel()
		if err := a.Server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})

	err := group.Wait()
	a.Logger.Info("application stopped")
	return err
}

// RunPipelineOnce executes a single pipeline run with a bounded
// timeout. Used by the preprocessing CLI and by warm-up flows.
func (a *Application) RunPipelineOnce(ctx context.Context) (*pipeline.RunState, error) {
	runCtx, cancel := context.WithTimeout(ctx, a.Config.Server.PipelineTimeout)
	defer cancel()

	start := time.Now()
	state, err := a.Pipeline.Run(runCtx)
	if err != nil {
		return state, err
	}
	a.Logger.Info("pipeline run finished",
		slog.String("run_id", state.ID),
		slog.Duration("took", time.Since(start)))
	return state, nil
}
