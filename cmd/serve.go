package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"cardiopredict/config"
	"cardiopredict/db"
	qhttp "cardiopredict/http"
	"cardiopredict/logging"
	"cardiopredict/ml"
	"cardiopredict/monitoring"
	"cardiopredict/predict"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Load the artifacts and serve the prediction API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

// app holds everything a running server owns. close releases it in reverse
// order of acquisition.
type app struct {
	cfg       *config.Config
	logger    *logging.Logger
	artifacts *ml.Artifacts
	handler   *predict.Handler
	store     *db.PredictionStore
	server    *qhttp.Server
}

// newApp loads the artifacts once and builds the handler and server around
// them. Failing to load either artifact is fatal.
func newApp(cfg *config.Config, logger *logging.Logger) (*app, error) {
	artifacts, err := ml.LoadArtifacts(cfg.ModelPath(), cfg.ScalerPath())
	if err != nil {
		return nil, err
	}
	info := artifacts.Info()
	monitoring.ArtifactInfo.WithLabelValues(info.Classifier, info.Scaler, strconv.Itoa(info.Features)).Set(1)
	logger.Info("artifacts loaded",
		zap.String("model", cfg.ModelPath()),
		zap.String("scaler", cfg.ScalerPath()),
		zap.String("classifier", info.Classifier),
		zap.Int("n_features", info.Features),
		zap.Bool("probabilities", info.Probabilities),
	)

	cache, err := predict.NewCache(cfg.Cache.Size)
	if err != nil {
		return nil, fmt.Errorf("create cache: %w", err)
	}

	a := &app{
		cfg:       cfg,
		logger:    logger,
		artifacts: artifacts,
		handler:   predict.NewHandler(artifacts, predict.WithCache(cache)),
	}

	deps := qhttp.Deps{
		Handler:   a.handler,
		Artifacts: artifacts,
		Logger:    logger.Logger,
	}
	if cfg.Store.Path != "" {
		store, err := db.OpenPredictionStore(cfg.Store.Path)
		if err != nil {
			return nil, fmt.Errorf("open prediction log: %w", err)
		}
		a.store = store
		deps.Recorder = store
		logger.Info("prediction log enabled", zap.String("path", cfg.Store.Path))
	}

	serverCfg := qhttp.ServerConfig{
		Port:           cfg.HTTP.Port,
		Timeout:        cfg.HTTP.Timeout,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		MaxBodyBytes:   cfg.HTTP.MaxBodyBytes,
	}
	if cfg.Metrics.Enabled {
		serverCfg.MetricsPath = cfg.Metrics.Path
	}
	a.server = qhttp.NewServer(serverCfg, deps)
	return a, nil
}

func (a *app) close() error {
	var err error
	if a.store != nil {
		err = multierr.Append(err, a.store.Close())
	}
	// Sync on a console sink reports EINVAL on some platforms; ignore it.
	_ = a.logger.Sync()
	return err
}

func runServe(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := logging.New(logging.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	})
	if err != nil {
		return err
	}
	zap.ReplaceGlobals(logger.Logger)

	a, err := newApp(cfg, logger)
	if err != nil {
		logger.Error("startup failed", zap.Error(err))
		_ = logger.Sync()
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Source != "" {
		watcher, err := config.NewWatcher(cfg.Source, logger.Logger, a.applyReload)
		if err != nil {
			logger.Warn("config watcher disabled", zap.Error(err))
		} else {
			defer watcher.Close()
			go func() {
				if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					logger.Warn("config watcher stopped", zap.Error(err))
				}
			}()
		}
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.server.Start()
	}()

	var serveErr error
	select {
	case serveErr = <-errCh:
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		serveErr = a.server.Stop()
	}

	err = multierr.Combine(serveErr, a.close())
	if err != nil {
		logger.Error("exited with errors", zap.Error(err))
	} else {
		logger.Info("exiting")
	}
	return err
}

// applyReload takes the parts of a reloaded config that can change while
// running. Artifacts are loaded once, so path changes only take effect after
// a restart.
func (a *app) applyReload(next *config.Config) {
	if next.Log.Level != a.cfg.Log.Level {
		if err := a.logger.SetLevel(next.Log.Level); err != nil {
			a.logger.Warn("log level not changed", zap.Error(err))
		} else {
			a.logger.Info("log level changed", zap.String("level", a.logger.Level()))
		}
	}
	if next.ModelPath() != a.cfg.ModelPath() || next.ScalerPath() != a.cfg.ScalerPath() {
		a.logger.Warn("artifact paths changed; restart to load them",
			zap.String("model", next.ModelPath()),
			zap.String("scaler", next.ScalerPath()),
		)
	}
	if next.HTTP.Port != a.cfg.HTTP.Port {
		a.logger.Warn("http.port changed; restart to apply", zap.Int("port", next.HTTP.Port))
	}
	a.cfg = next
}
