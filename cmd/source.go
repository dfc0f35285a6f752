package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"api-monitor/application"
	"api-monitor/domain"
	"api-monitor/infrastructure/clickhouse"
	"api-monitor/infrastructure/config"
	"api-monitor/infrastructure/console"
	"api-monitor/infrastructure/fixture"
	"api-monitor/infrastructure/httpsource"
)

// openSource builds the configured collection source. The returned close
// function is always safe to call.
func openSource(ctx context.Context, cfg config.Config) (application.Source, func(), error) {
	noop := func() {}

	switch cfg.Source {
	case "fixture":
		if cfg.FixtureFile != "" {
			analyzer := domain.NewAnalyzer(cfg.SlowThresholdMS, 10*time.Second, 20)
			store, err := fixture.LoadFile(cfg.FixtureFile, time.Now(), analyzer)
			if err != nil {
				return nil, noop, err
			}
			return store, noop, nil
		}
		g := fixture.NewGenerator(cfg.FixtureSeed, nil)
		log.Info().Int("requests", cfg.FixtureSize).Msg("using generated demo data")
		return fixture.Generate(g, cfg.FixtureSize), noop, nil

	case "http":
		c, err := httpsource.New(cfg.BackendURL,
			httpsource.WithTimeout(cfg.BackendTimeout),
			httpsource.WithPageSize(cfg.FetchPageSize),
		)
		if err != nil {
			return nil, noop, err
		}
		if h, err := c.Health(ctx); err != nil {
			log.Warn().Err(err).Str("url", cfg.BackendURL).Msg("backend health check failed")
		} else {
			log.Info().Str("url", cfg.BackendURL).Str("status", h.Status).Msg("backend reachable")
		}
		return c, noop, nil

	case "clickhouse":
		db, err := clickhouse.Open(ctx, cfg.ClickHouse.DSN())
		if err != nil {
			return nil, noop, fmt.Errorf("could not connect to ClickHouse: %w", err)
		}
		repo := clickhouse.NewMonitorRepository(db)
		loader := clickhouse.NewLoader(repo, console.NewProgressBar(os.Stderr), cfg.ClickHouse.BatchSize)
		return loader, func() { db.Close() }, nil
	}
	return nil, noop, fmt.Errorf("unknown source %q (want fixture, http or clickhouse)", cfg.Source)
}
