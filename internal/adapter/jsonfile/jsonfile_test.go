package jsonfile

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/rainfall-dry-periods/internal/domain"
)

const sampleDoc = `{
  "2023": [],
  "2024": [
    {"date": "2024-01-10", "rainfall_mm": 1.0},
    {"date": "2024-01-01", "rainfall_mm": 5.0}
  ]
}`

func TestDecode(t *testing.T) {
	t.Run("year keyed document", func(t *testing.T) {
		rs, err := Decode(strings.NewReader(sampleDoc))
		require.NoError(t, err)

		assert.Equal(t, []string{"2023", "2024"}, rs.Keys())
		assert.Empty(t, rs["2023"])
		require.Len(t, rs["2024"], 2)
		assert.Equal(t, "2024-01-10", domain.FormatDate(rs["2024"][0].Date))
		assert.Equal(t, 1.0, rs["2024"][0].RainfallMM)
	})

	t.Run("zero rainfall is kept", func(t *testing.T) {
		rs, err := Decode(strings.NewReader(`{"2024":[{"date":"2024-02-01","rainfall_mm":0}]}`))
		require.NoError(t, err)
		require.Len(t, rs["2024"], 1)
		assert.Equal(t, 0.0, rs["2024"][0].RainfallMM)
	})

	t.Run("empty document", func(t *testing.T) {
		rs, err := Decode(strings.NewReader(`{}`))
		require.NoError(t, err)
		assert.Equal(t, 0, rs.Len())
	})

	tests := []struct {
		name    string
		doc     string
		wantErr error
		wantMsg string
	}{
		{"missing date", `{"2024":[{"rainfall_mm":1}]}`, ErrMissingField, "date"},
		{"missing rainfall", `{"2024":[{"date":"2024-01-01"}]}`, ErrMissingField, "rainfall_mm"},
		{"bad date", `{"2024":[{"date":"01/02/2024","rainfall_mm":1}]}`, ErrInvalidDate, `"01/02/2024"`},
		{"impossible date", `{"2024":[{"date":"2024-02-30","rainfall_mm":1}]}`, ErrInvalidDate, "2024-02-30"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Contains(t, err.Error(), tt.wantMsg)
			assert.Contains(t, err.Error(), `group "2024" record 0`)
		})
	}

	t.Run("invalid json", func(t *testing.T) {
		_, err := Decode(strings.NewReader(`{"2024": [`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse rainfall json")
	})
}

func TestParseRecord(t *testing.T) {
	date, mm := "2024-03-01", 0.0

	m, err := ParseRecord(Record{Date: &date, RainfallMM: &mm})
	require.NoError(t, err)
	assert.Equal(t, date, domain.FormatDate(m.Date))

	_, err = ParseRecord(Record{RainfallMM: &mm})
	assert.ErrorIs(t, err, ErrMissingField)

	bad := "2024-13-01"
	_, err = ParseRecord(Record{Date: &bad, RainfallMM: &mm})
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestEncodeRoundTrip(t *testing.T) {
	rs, err := Decode(strings.NewReader(sampleDoc))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, rs))
	assert.Contains(t, buf.String(), `"date": "2024-01-01"`)
	assert.Less(t, strings.Index(buf.String(), "2024-01-01"), strings.Index(buf.String(), "2024-01-10"))

	again, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, rs.Flatten(), again.Flatten())
	assert.Equal(t, rs.Keys(), again.Keys())
}

func TestSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rainfall_data.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleDoc), 0o600))

	src := NewSource(path)
	assert.Equal(t, "json", src.Name())

	rs, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, rs.Len())

	_, err = NewSource(filepath.Join(t.TempDir(), "missing.json")).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open rainfall data")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = src.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
