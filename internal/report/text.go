package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/couchcryptid/rainfall-dry-periods/internal/domain"
)

const ruleWidth = 70

var (
	heavyRule = strings.Repeat("=", ruleWidth)
	lightRule = strings.Repeat("-", ruleWidth)
)

// WriteTable prints a ranked table of periods under title.
func WriteTable(w io.Writer, title string, periods []domain.DryPeriod) error {
	var b strings.Builder
	fmt.Fprintln(&b, title)
	fmt.Fprintln(&b, heavyRule)
	fmt.Fprintf(&b, "%-6s %-12s %-12s %-6s\n", "Rank", "Start Date", "End Date", "Days")
	fmt.Fprintln(&b, lightRule)
	for i, p := range periods {
		fmt.Fprintf(&b, "%-6d %-12s %-12s %-6d\n", i+1, domain.FormatDate(p.Start), domain.FormatDate(p.End), p.Days)
	}
	fmt.Fprintln(&b, lightRule)

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteSummary prints the dataset totals. Nothing is written when the dataset
// has no qualifying measurements.
func WriteSummary(w io.Writer, s Summary) error {
	if !s.HasData {
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\nTotal days: %d\n", s.TotalDays)
	fmt.Fprintf(&b, "Total days with rain: %d\n", s.RainDays)
	if s.DryPeriods > 0 {
		fmt.Fprintf(&b, "Total days without rain: %d\n", s.DryDays)
	}
	fmt.Fprintf(&b, "Total dry periods found: %d\n", s.DryPeriods)
	if s.DryPeriods > 0 {
		fmt.Fprintf(&b, "Dry period length: longest %d, mean %.1f, median %.1f, stddev %.1f days\n",
			s.LongestDays, s.MeanDays, s.MedianDays, s.StdDevDays)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// RenderChart plots period lengths in chronological order as an ASCII line chart.
func RenderChart(periods []domain.DryPeriod, width, height int) string {
	if len(periods) == 0 {
		return "No dry periods to chart"
	}
	if width < 20 {
		width = 20
	}
	if height < 3 {
		height = 3
	}

	data := make([]float64, len(periods))
	for i, p := range periods {
		data[i] = float64(p.Days)
	}

	caption := fmt.Sprintf("dry period length (days), %s to %s",
		domain.FormatDate(periods[0].Start), domain.FormatDate(periods[len(periods)-1].End))
	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}
