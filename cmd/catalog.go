package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/kasuboski/catalogz/config"
	"github.com/kasuboski/catalogz/pkg/guide"
	mhttp "github.com/kasuboski/catalogz/pkg/http"
	"github.com/kasuboski/catalogz/pkg/library"
	"github.com/kasuboski/catalogz/pkg/logger"
	"github.com/kasuboski/catalogz/pkg/manager"
	"github.com/kasuboski/catalogz/pkg/metrics"
	"github.com/kasuboski/catalogz/pkg/storage/sqlite"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// setup reads the configuration and builds a catalog manager over the configured
// database. Failures are fatal.
func setup(ctx context.Context, opts ...manager.Option) (config.Config, manager.CatalogManager) {
	log := logger.FromCtx(ctx)

	cfg, err := config.New(viper.GetViper())
	if err != nil {
		log.Fatal("failed to read configurations", zap.Error(err))
	}

	store, err := sqlite.New(ctx, cfg.Storage.FilePath)
	if err != nil {
		log.Fatal("failed to create storage connection", zap.Error(err))
	}

	err = store.RunMigrations(ctx)
	if err != nil {
		log.Fatal("failed to migrate database", zap.Error(err))
	}

	var provider guide.Provider
	if cfg.Guide.Host != "" {
		retryClient := mhttp.NewRetryClient(
			mhttp.WithMaxRetries(cfg.Guide.MaxRetries),
			mhttp.WithBaseBackoff(cfg.Guide.BaseBackoff),
			mhttp.WithHTTPClient(&http.Client{Timeout: cfg.Guide.Timeout}),
		)

		provider, err = guide.New(cfg.Guide.Scheme, cfg.Guide.Host, cfg.Guide.APIKey, retryClient)
		if err != nil {
			log.Fatal("failed to create guide client", zap.Error(err))
		}
	} else {
		log.Warn("no guide host configured, series cannot be reconciled")
		provider = unconfiguredGuide{}
	}

	if cfg.Library.RecordingsDir != "" {
		root, err := filepath.Abs(cfg.Library.RecordingsDir)
		if err != nil {
			log.Fatal("failed to resolve recordings directory", zap.Error(err))
		}
		opts = append(opts, manager.WithLibrary(library.New(os.DirFS(root), root)))
	}

	return cfg, manager.New(store, provider, cfg.Manager, opts...)
}

// setupWithMetrics is setup with counters registered on the default registry
func setupWithMetrics(ctx context.Context) (config.Config, manager.CatalogManager) {
	return setup(ctx, manager.WithMetrics(metrics.New(prometheus.DefaultRegisterer)))
}

var errNoGuide = errors.New("no guide host configured")

type unconfiguredGuide struct{}

func (unconfiguredGuide) FetchEpisodeGuide(context.Context, string) ([]guide.Episode, error) {
	return nil, errNoGuide
}
