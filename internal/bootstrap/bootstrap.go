package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"glamai-server-go/internal/domain/analysis"
	domainauth "glamai-server-go/internal/domain/auth"
	"glamai-server-go/internal/domain/eventbus"
	"glamai-server-go/internal/domain/history"
	domainimage "glamai-server-go/internal/domain/image"
	platformconfig "glamai-server-go/internal/platform/config"
	platformerrors "glamai-server-go/internal/platform/errors"
	platformlogging "glamai-server-go/internal/platform/logging"
	platformstorage "glamai-server-go/internal/platform/storage"
	httptransport "glamai-server-go/internal/transport/http"
	httpanalysis "glamai-server-go/internal/transport/http/analysisapi"
	httpwebapi "glamai-server-go/internal/transport/http/webapi"
)

const logRetention = 7 * 24 * time.Hour

type stepFn func(context.Context, *appState) error

type initStep struct {
	ID        string
	Title     string
	DependsOn []string
	Kind      platformerrors.Kind
	Execute   stepFn
}

type appState struct {
	config     *platformconfig.Config
	configPath string
	logger     *platformlogging.Logger
	bus        *eventbus.Bus
	history    *history.Store
	backend    *domainauth.Backend
	sessions   *domainauth.Store
	analyzer   *analysis.Analyzer
}

// Run drives the whole service lifecycle: configuration, dependency
// initialisation, the HTTP server and graceful shutdown.
func Run(ctx context.Context) error {
	state := &appState{}

	steps := InitGraph()
	if err := executeInitSteps(ctx, steps, state); err != nil {
		return err
	}

	config := state.config
	logger := state.logger
	if config == nil || logger == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"bootstrap state validation",
			"config/logger not initialised",
		)
	}
	if state.analyzer == nil || state.backend == nil || state.sessions == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"bootstrap state validation",
			"domain services not initialised",
		)
	}

	logBootstrapGraph(steps, logger)

	if config.Log.Dir != "" {
		if err := platformlogging.CleanupOldLogs(config.Log.Dir, logRetention); err != nil {
			logger.WarnTag("BOOT", "log cleanup failed: %v", err)
		}
	}

	rootCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	signalCtx, stop := signal.NotifyContext(rootCtx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(rootCtx)

	server, err := buildServer(groupCtx, state)
	if err != nil {
		cancel()
		return err
	}

	group.Go(func() error {
		logger.InfoTag("BOOT", "http server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return platformerrors.Wrap(platformerrors.KindTransport, "http:serve", "http server failed", err)
		}
		return nil
	})

	group.Go(func() error {
		select {
		case <-signalCtx.Done():
			logger.InfoTag("BOOT", "shutdown signal received")
		case <-groupCtx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return server.Shutdown(shutdownCtx)
	})

	err = group.Wait()
	logger.InfoTag("BOOT", "server stopped")
	logger.Close()
	return err
}

// buildServer wires the HTTP services onto the router and returns a
// ready-to-listen server.
func buildServer(ctx context.Context, state *appState) (*http.Server, error) {
	router, err := httptransport.Build(httptransport.Options{
		Config:         state.config,
		Logger:         state.logger,
		AuthMiddleware: httptransport.SessionMiddleware(state.sessions),
	})
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindBootstrap, "http:build-router", "failed to build router", err)
	}

	webapiService, err := httpwebapi.NewService(state.config, state.logger, state.backend, state.sessions, state.history)
	if err != nil {
		return nil, err
	}
	if err := webapiService.Register(ctx, router.API, router.Secured); err != nil {
		return nil, err
	}

	analysisService, err := httpanalysis.NewService(state.config, state.logger, state.analyzer)
	if err != nil {
		return nil, err
	}
	if err := analysisService.Register(ctx, router.Secured); err != nil {
		return nil, err
	}

	addr := fmt.Sprintf("%s:%d", state.config.Server.IP, state.config.Server.Port)
	return &http.Server{
		Addr:              addr,
		Handler:           router.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}, nil
}

func logBootstrapGraph(steps []initStep, logger *platformlogging.Logger) {
	if logger == nil {
		return
	}
	logger.InfoTag("BOOT", "initialisation order")
	for _, step := range steps {
		logger.InfoTag("BOOT", "  %s (%s)", step.ID, step.Title)
	}
}

func executeInitSteps(ctx context.Context, steps []initStep, state *appState) error {
	if state == nil {
		return platformerrors.New(platformerrors.KindBootstrap, "execute init steps", "nil bootstrap state")
	}

	completed := make(map[string]struct{}, len(steps))
	for _, step := range steps {
		for _, dep := range step.DependsOn {
			if _, ok := completed[dep]; !ok {
				return platformerrors.New(
					platformerrors.KindBootstrap,
					step.ID,
					fmt.Sprintf("dependency %s not satisfied", dep),
				)
			}
		}
		if step.Execute == nil {
			return platformerrors.New(platformerrors.KindBootstrap, step.ID, "missing execute function")
		}
		if err := step.Execute(ctx, state); err != nil {
			var typed *platformerrors.Error
			if errors.As(err, &typed) {
				return err
			}

			kind := step.Kind
			if kind == "" {
				kind = platformerrors.KindBootstrap
			}
			return platformerrors.Wrap(kind, step.ID, "bootstrap step failed", err)
		}
		completed[step.ID] = struct{}{}
	}
	return nil
}

// InitGraph lists the initialisation steps in dependency order.
func InitGraph() []initStep {
	return []initStep{
		{
			ID:      "config:load",
			Title:   "Load configuration",
			Kind:    platformerrors.KindConfig,
			Execute: loadConfigStep,
		},
		{
			ID:        "logging:init",
			Title:     "Initialise logging",
			DependsOn: []string{"config:load"},
			Kind:      platformerrors.KindBootstrap,
			Execute:   initLoggingStep,
		},
		{
			ID:        "eventbus:init",
			Title:     "Initialise event bus",
			DependsOn: []string{"logging:init"},
			Kind:      platformerrors.KindBootstrap,
			Execute:   initEventBusStep,
		},
		{
			ID:        "storage:open-history",
			Title:     "Open history store",
			DependsOn: []string{"logging:init"},
			Kind:      platformerrors.KindStorage,
			Execute:   openHistoryStep,
		},
		{
			ID:        "auth:init",
			Title:     "Initialise auth backend and sessions",
			DependsOn: []string{"eventbus:init"},
			Kind:      platformerrors.KindBootstrap,
			Execute:   initAuthStep,
		},
		{
			ID:        "analysis:init",
			Title:     "Initialise analysis pipeline",
			DependsOn: []string{"eventbus:init", "storage:open-history"},
			Kind:      platformerrors.KindBootstrap,
			Execute:   initAnalysisStep,
		},
	}
}

func loadConfigStep(_ context.Context, state *appState) error {
	result, err := platformconfig.NewLoader().Load()
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindConfig, "config:load", "failed to load configuration", err)
	}
	state.config = result.Config
	state.configPath = result.Path
	return nil
}

func initLoggingStep(_ context.Context, state *appState) error {
	if state.config == nil {
		return platformerrors.New(platformerrors.KindBootstrap, "logging:init", "config not loaded")
	}

	logger, err := platformlogging.New(platformlogging.Config{
		Level:    state.config.Log.Level,
		Dir:      state.config.Log.Dir,
		Filename: state.config.Log.File,
	})
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindBootstrap, "logging:init", "failed to initialise logging", err)
	}
	state.logger = logger

	source := state.configPath
	if source == "" {
		source = "defaults"
	}
	logger.InfoTag("BOOT", "logging ready [%s] config=%s", state.config.Log.Level, source)

	if state.config.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	return nil
}

func initEventBusStep(_ context.Context, state *appState) error {
	state.bus = eventbus.New()
	return nil
}

// openHistoryStep is a no-op unless history persistence is enabled.
func openHistoryStep(_ context.Context, state *appState) error {
	if state.config == nil || state.logger == nil {
		return platformerrors.New(platformerrors.KindBootstrap, "storage:open-history", "missing config/logger")
	}
	if !state.config.History.Enabled {
		state.logger.DebugTag("BOOT", "history store disabled")
		return nil
	}

	db, err := platformstorage.Open(state.config.History.DSN)
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindStorage, "storage:open-history", "failed to open history database", err)
	}

	store, err := history.NewStore(db, state.logger)
	if err != nil {
		return err
	}
	state.history = store
	state.logger.InfoTag("BOOT", "history store ready at %s", state.config.History.DSN)
	return nil
}

func initAuthStep(_ context.Context, state *appState) error {
	if state.config == nil || state.logger == nil {
		return platformerrors.New(platformerrors.KindBootstrap, "auth:init", "missing config/logger")
	}

	backend, err := domainauth.NewBackend(&state.config.Auth, state.logger)
	if err != nil {
		return err
	}
	state.backend = backend
	state.sessions = domainauth.NewStore(state.bus, state.logger)
	return nil
}

func initAnalysisStep(_ context.Context, state *appState) error {
	if state.config == nil || state.logger == nil {
		return platformerrors.New(platformerrors.KindBootstrap, "analysis:init", "missing config/logger")
	}

	adapter, err := domainimage.NewAdapter(&state.config.Image, state.logger)
	if err != nil {
		return err
	}

	client, err := analysis.NewClient(&state.config.Analysis, state.logger)
	if err != nil {
		return err
	}

	opts := analysis.AnalyzerOptions{
		Adapter: adapter,
		Builder: analysis.NewBuilder(&state.config.Analysis),
		Client:  client,
		Bus:     state.bus,
		Logger:  state.logger,
	}
	if state.history != nil {
		opts.Recorder = state.history
	}

	analyzer, err := analysis.NewAnalyzer(opts)
	if err != nil {
		return err
	}
	state.analyzer = analyzer
	return nil
}
