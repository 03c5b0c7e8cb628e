// Package source picks the measurement source named by the configuration.
package source

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/rainfall-dry-periods/internal/adapter/jsonfile"
	"github.com/couchcryptid/rainfall-dry-periods/internal/adapter/kafka"
	"github.com/couchcryptid/rainfall-dry-periods/internal/adapter/sqlite"
	"github.com/couchcryptid/rainfall-dry-periods/internal/analysis"
	"github.com/couchcryptid/rainfall-dry-periods/internal/config"
)

// Open returns the configured source and a function that releases it.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (analysis.Source, func() error, error) {
	noop := func() error { return nil }

	switch cfg.DataSource {
	case config.SourceJSON:
		logger.Info("using json source", "path", cfg.DataFile)
		return jsonfile.NewSource(cfg.DataFile), noop, nil
	case config.SourceSQLite:
		store, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using sqlite source", "path", cfg.SQLitePath)
		return store, store.Close, nil
	case config.SourceKafka:
		logger.Info("using kafka source", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
		return kafka.NewReader(cfg, logger), noop, nil
	default:
		return nil, nil, fmt.Errorf("unknown data source %q", cfg.DataSource)
	}
}

// LoadAttempts is the number of load attempts suited to the source kind.
// Network sources are retried; local files are not.
func LoadAttempts(cfg *config.Config) int {
	if cfg.DataSource == config.SourceKafka {
		return 3
	}
	return 1
}
