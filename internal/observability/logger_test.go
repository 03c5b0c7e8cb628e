package observability

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLevel(tt.input))
		})
	}
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, "info", "json")

	logger.Debug("hidden")
	logger.Info("analysis complete", "dry_periods", 3)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "analysis complete", line["msg"])
	assert.Equal(t, float64(3), line["dry_periods"])
}

func TestNewLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, "debug", "text")

	logger.Debug("loading", "source", "json")
	assert.Contains(t, buf.String(), "msg=loading")
	assert.Contains(t, buf.String(), "source=json")
}

func TestMetricsForTesting(t *testing.T) {
	m := NewMetricsForTesting()
	m.AnalysesRun.WithLabelValues("a").Inc()
	m.MeasurementsLoaded.WithLabelValues("json").Add(12)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.AnalysesRun.WithLabelValues("a")))
	assert.Equal(t, 12.0, testutil.ToFloat64(m.MeasurementsLoaded.WithLabelValues("json")))
}

func TestNewUnregisteredMetrics(t *testing.T) {
	m := NewUnregisteredMetrics()
	_ = NewUnregisteredMetrics()

	// Nothing claimed the names in the default registry.
	require.NoError(t, prometheus.DefaultRegisterer.Register(m.AnalysesRun))
	t.Cleanup(func() { prometheus.DefaultRegisterer.Unregister(m.AnalysesRun) })
}
