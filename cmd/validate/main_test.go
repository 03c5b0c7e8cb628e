package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/rainfall-dry-periods/internal/adapter/jsonfile"
)

func validateDoc(t *testing.T, doc string) (int, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rainfall_data.json")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	var out bytes.Buffer
	clock := clockwork.NewFakeClockAt(time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC))
	code := run(&out, path, 2.0, clock)
	return code, out.String()
}

func TestRun_Valid(t *testing.T) {
	code, out := validateDoc(t, `{
		"2023": [],
		"2024": [
			{"date": "2024-01-01", "rainfall_mm": 5.0},
			{"date": "2024-01-01", "rainfall_mm": 0.0},
			{"date": "2024-01-10", "rainfall_mm": 1.0}
		]
	}`)

	assert.Equal(t, 0, code, out)
	assert.Contains(t, out, "All validations passed.")
	assert.Contains(t, out, "Records: 2 groups, 3 measurements")
	assert.Contains(t, out, `group "2023" is empty`)
	assert.Contains(t, out, "2024-01-01 appears 2 times")
}

func TestRun_Failures(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{"missing date", `{"2024":[{"rainfall_mm":1}]}`, `group "2024" record 0: missing field: date`},
		{"missing amount", `{"2024":[{"date":"2024-01-01"}]}`, "missing field: rainfall_mm"},
		{"bad date", `{"2024":[{"date":"2024-02-30","rainfall_mm":1}]}`, `invalid date "2024-02-30"`},
		{"negative", `{"2024":[{"date":"2024-01-01","rainfall_mm":-1}]}`, "negative rainfall_mm -1"},
		{"wrong year", `{"2024":[{"date":"2023-12-31","rainfall_mm":1}]}`, "date 2023-12-31 belongs to 2023"},
		{"non-year key", `{"wet":[{"date":"2023-12-31","rainfall_mm":1}]}`, `group "wet": key is not a year`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, out := validateDoc(t, tt.doc)
			assert.Equal(t, 1, code)
			assert.Contains(t, out, "Validation FAILED.")
			assert.Contains(t, out, tt.wantErr)
		})
	}
}

func TestRun_SchemaErrorsMatchLoader(t *testing.T) {
	docs := []string{
		`{"2024":[{"rainfall_mm":1}]}`,
		`{"2024":[{"date":"2024-01-01"}]}`,
		`{"2024":[{"date":"01/02/2024","rainfall_mm":1}]}`,
	}
	for _, doc := range docs {
		_, loadErr := jsonfile.Decode(strings.NewReader(doc))
		require.Error(t, loadErr)

		code, out := validateDoc(t, doc)
		assert.Equal(t, 1, code)
		assert.Contains(t, out, loadErr.Error(), "validate reports what the loader rejects")
	}
}

func TestRun_Unreadable(t *testing.T) {
	code, out := validateDoc(t, `{"2024": [`)
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "FATAL: parse")

	var buf bytes.Buffer
	assert.Equal(t, 1, run(&buf, filepath.Join(t.TempDir(), "nope.json"), 2.0, clockwork.NewRealClock()))
	assert.Contains(t, buf.String(), "FATAL: read")
}
