package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/rainfall-dry-periods/internal/domain"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := domain.ParseDate(s)
	require.NoError(t, err)
	return d
}

func period(t *testing.T, start, end string, days int) domain.DryPeriod {
	t.Helper()
	return domain.DryPeriod{Start: day(t, start), End: day(t, end), Days: days}
}

func samplePeriods(t *testing.T) []domain.DryPeriod {
	return []domain.DryPeriod{
		period(t, "2023-01-02", "2023-01-04", 3),
		period(t, "2023-02-01", "2023-02-20", 20),
		period(t, "2023-06-01", "2023-06-03", 3),
		period(t, "2024-03-02", "2024-03-11", 9),
	}
}

func TestRank(t *testing.T) {
	periods := samplePeriods(t)
	ranked := Rank(periods)

	require.Len(t, ranked, 4)
	assert.Equal(t, 20, ranked[0].Days)
	assert.Equal(t, 9, ranked[1].Days)
	assert.Equal(t, "2023-01-02", domain.FormatDate(ranked[2].Start), "ties keep chronological order")
	assert.Equal(t, "2023-06-01", domain.FormatDate(ranked[3].Start))

	assert.Equal(t, 3, periods[0].Days, "input is not reordered")
}

func TestTop(t *testing.T) {
	periods := samplePeriods(t)

	assert.Len(t, Top(periods, 2), 2)
	assert.Len(t, Top(periods, 25), 4)
	assert.Len(t, Top(periods, 0), 4)
	assert.Empty(t, Top(nil, 5))
}

func TestTrailingWindow(t *testing.T) {
	from, to := TrailingWindow(time.Date(2024, 3, 15, 13, 0, 0, 0, time.UTC), 365)
	assert.Equal(t, "2023-03-16", domain.FormatDate(from))
	assert.Equal(t, "2024-03-15", domain.FormatDate(to))
}

func TestOverlapping(t *testing.T) {
	from, to := TrailingWindow(day(t, "2024-03-15"), 365)
	got := Overlapping(Rank(samplePeriods(t)), from, to)

	require.Len(t, got, 2)
	assert.Equal(t, 9, got[0].Days)
	assert.Equal(t, "2023-06-01", domain.FormatDate(got[1].Start))
}

func TestSummarize(t *testing.T) {
	records := domain.RecordSet{
		"2024": {
			{Date: day(t, "2024-01-01"), RainfallMM: 5},
			{Date: day(t, "2024-01-10"), RainfallMM: 1},
			{Date: day(t, "2024-01-10"), RainfallMM: 0.5},
			{Date: day(t, "2024-01-20"), RainfallMM: 3},
		},
		"2023": {},
	}
	today := day(t, "2024-01-31")

	t.Run("all rain days", func(t *testing.T) {
		periods := domain.FindDryPeriods(records, 0, true, today)
		s := Summarize(records, periods, 0, today)

		assert.True(t, s.HasData)
		assert.Equal(t, "2024-01-01", s.FirstRainDate)
		assert.Equal(t, 31, s.TotalDays)
		assert.Equal(t, 4, s.RainDays)
		assert.Equal(t, 3, s.DryPeriods)
		assert.Equal(t, 8+9+10, s.DryDays)
		assert.Equal(t, 10, s.LongestDays)
		assert.InDelta(t, 9.0, s.MeanDays, 1e-9)
		assert.InDelta(t, 9.0, s.MedianDays, 1e-9)
		assert.InDelta(t, 1.0, s.StdDevDays, 1e-9)
		assert.Equal(t, 4, s.Measurements)
	})

	t.Run("limited threshold", func(t *testing.T) {
		periods := domain.FindDryPeriods(records, 2, false, today)
		s := Summarize(records, periods, 2, today)

		assert.Equal(t, 2, s.RainDays)
		assert.Equal(t, 1, s.DryPeriods)
		assert.Equal(t, 18, s.DryDays)
		assert.Zero(t, s.StdDevDays)
	})

	t.Run("no qualifying data", func(t *testing.T) {
		s := Summarize(domain.RecordSet{}, nil, 0, today)
		assert.False(t, s.HasData)
		assert.Zero(t, s.TotalDays)
	})
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, "Top 2", Top(Rank(samplePeriods(t)), 2)))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, "Top 2", lines[0])
	assert.Equal(t, strings.Repeat("=", 70), lines[1])
	assert.Equal(t, "Rank   Start Date   End Date     Days  ", lines[2])
	assert.Equal(t, "1      2023-02-01   2023-02-20   20    ", lines[4])
	assert.Equal(t, "2      2024-03-02   2024-03-11   9     ", lines[5])
}

func TestWriteSummary(t *testing.T) {
	var buf bytes.Buffer
	s := Summary{HasData: true, TotalDays: 31, RainDays: 4, DryDays: 27, DryPeriods: 3, LongestDays: 10, MeanDays: 9, MedianDays: 9, StdDevDays: 1}
	require.NoError(t, WriteSummary(&buf, s))

	out := buf.String()
	assert.Contains(t, out, "Total days: 31")
	assert.Contains(t, out, "Total days with rain: 4")
	assert.Contains(t, out, "Total days without rain: 27")
	assert.Contains(t, out, "Total dry periods found: 3")
	assert.Contains(t, out, "longest 10, mean 9.0")

	buf.Reset()
	require.NoError(t, WriteSummary(&buf, Summary{}))
	assert.Empty(t, buf.String())
}

func TestRenderChart(t *testing.T) {
	assert.Equal(t, "No dry periods to chart", RenderChart(nil, 60, 10))

	chart := RenderChart(samplePeriods(t), 40, 5)
	assert.Contains(t, chart, "2023-01-02 to 2024-03-11")
	assert.Greater(t, strings.Count(chart, "\n"), 4)
}
