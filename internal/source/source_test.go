package source

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/rainfall-dry-periods/internal/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		cfg      config.Config
		wantName string
		attempts int
	}{
		{"json", config.Config{DataSource: config.SourceJSON, DataFile: "rain.json"}, "json", 1},
		{"sqlite", config.Config{DataSource: config.SourceSQLite, SQLitePath: filepath.Join(t.TempDir(), "rain.db")}, "sqlite", 1},
		{"kafka", config.Config{DataSource: config.SourceKafka, KafkaBrokers: []string{"localhost:9092"}, KafkaTopic: "t"}, "kafka", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, closeFn, err := Open(ctx, &tt.cfg, discardLogger())
			require.NoError(t, err)
			defer func() { assert.NoError(t, closeFn()) }()

			assert.Equal(t, tt.wantName, src.Name())
			assert.Equal(t, tt.attempts, LoadAttempts(&tt.cfg))
		})
	}

	t.Run("unknown", func(t *testing.T) {
		_, _, err := Open(ctx, &config.Config{DataSource: "csv"}, discardLogger())
		require.Error(t, err)
		assert.Contains(t, err.Error(), `"csv"`)
	})
}
