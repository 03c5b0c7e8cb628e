package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in        string
		wantName  string
		threshold float64
		desc      string
	}{
		{"a", "a", 0, "all rain days"},
		{"all", "a", 0, "all rain days"},
		{"l", "l", 2.0, "days with >= 2mm rainfall"},
		{"limited", "l", 2.0, "days with >= 2mm rainfall"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			mode, err := ParseMode(tt.in, 2.0)
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, mode.Name)
			assert.Equal(t, tt.threshold, mode.Threshold)
			assert.Equal(t, tt.desc, mode.Description)
		})
	}

	t.Run("custom limited threshold", func(t *testing.T) {
		mode, err := ParseMode("l", 0.5)
		require.NoError(t, err)
		assert.Equal(t, "days with >= 0.5mm rainfall", mode.Description)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := ParseMode("x", 2.0)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `"x"`)
	})
}
