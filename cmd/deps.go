package cmd

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/viper"

	"github.com/gaurav-prasanna/recipepipe/core/config"
	"github.com/gaurav-prasanna/recipepipe/core/extract"
	"github.com/gaurav-prasanna/recipepipe/core/fetch"
	"github.com/gaurav-prasanna/recipepipe/core/importer"
	"github.com/gaurav-prasanna/recipepipe/core/logger"
	"github.com/gaurav-prasanna/recipepipe/core/metrics"
	"github.com/gaurav-prasanna/recipepipe/core/store"
)

// deps holds the wired pipeline shared by the commands.
type deps struct {
	cfg       *config.Config
	log       logger.Logger
	db        *sqlx.DB
	repo      *store.Repository
	fetcher   *fetch.HTTPFetcher
	extractor *extract.Extractor
	importer  *importer.Importer
	registry  *prometheus.Registry
}

// newDeps loads config and opens the database.
func newDeps(ctx context.Context) (*deps, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	db, err := store.Open(ctx, cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	fetcher := fetch.New(
		fetch.WithTimeout(cfg.Fetch.Timeout),
		fetch.WithRetries(cfg.Fetch.Retries),
		fetch.WithUserAgent(cfg.Fetch.UserAgent),
		fetch.WithMaxBodyBytes(cfg.Fetch.MaxBodyBytes),
		fetch.WithLogger(log.With(logger.String("component", "fetch"))),
		fetch.WithObserver(m.ObserveFetch),
	)
	extractor := extract.New(
		extract.WithLogger(log.With(logger.String("component", "extract"))),
		extract.WithMetrics(m),
	)
	repo := store.NewRepository(db)

	return &deps{
		cfg:       cfg,
		log:       log,
		db:        db,
		repo:      repo,
		fetcher:   fetcher,
		extractor: extractor,
		importer: importer.New(fetcher, extractor, repo,
			importer.WithLogger(log.With(logger.String("component", "import"))),
			importer.WithMetrics(m),
			importer.WithConcurrency(cfg.Import.Concurrency),
			importer.WithRate(cfg.Import.RatePerSecond),
		),
		registry: registry,
	}, nil
}

func (d *deps) Close() {
	_ = d.db.Close()
	_ = d.log.Sync()
}

func (d *deps) owner() string {
	return d.cfg.Owner.ID
}
