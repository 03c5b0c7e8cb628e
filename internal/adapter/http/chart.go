package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/gorilla/mux"

	"github.com/couchcryptid/rainfall-dry-periods/internal/aggregate"
	"github.com/couchcryptid/rainfall-dry-periods/internal/analysis"
	"github.com/couchcryptid/rainfall-dry-periods/internal/domain"
)

type renderer interface {
	Render(w io.Writer) error
}

func (s *Server) renderChart(w http.ResponseWriter, chart renderer) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := chart.Render(w); err != nil {
		s.logger.Error("render chart failed", "error", err)
	}
}

// handleDryPeriodChart renders the longest dry periods as an HTML bar chart.
// It accepts the same query parameters as the JSON endpoint.
func (s *Server) handleDryPeriodChart(w http.ResponseWriter, r *http.Request) {
	q, err := s.parseQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	res, err := s.analyzer.Analyze(r.Context(), q)
	if err != nil {
		s.logger.Error("analysis failed", "error", err)
		writeError(w, http.StatusInternalServerError, errors.New("rainfall data unavailable"))
		return
	}

	s.renderChart(w, dryPeriodBar(res))
}

func (s *Server) handleTotalsChart(w http.ResponseWriter, r *http.Request) {
	g, err := aggregate.ParseGranularity(mux.Vars(r)["granularity"])
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	records, ok := s.loadRecords(w, r)
	if !ok {
		return
	}
	s.renderChart(w, totalsBar(g, aggregate.Totals(records, g, s.analyzer.Today())))
}

func (s *Server) handleAveragesChart(w http.ResponseWriter, r *http.Request) {
	g, err := aggregate.ParseGranularity(mux.Vars(r)["granularity"])
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	records, ok := s.loadRecords(w, r)
	if !ok {
		return
	}
	s.renderChart(w, averagesBar(g, aggregate.Averages(records, g, s.analyzer.Today())))
}

func (s *Server) handleProgressChart(w http.ResponseWriter, r *http.Request) {
	records, ok := s.loadRecords(w, r)
	if !ok {
		return
	}
	today := s.analyzer.Today()
	s.renderChart(w, progressLine(today, aggregate.Progress(records, today)))
}

func baseOptions(pageTitle, title, subtitle, xName, yName string) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: pageTitle,
			Width:     "1200px",
			Height:    "600px",
		}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: xName, AxisLabel: &opts.AxisLabel{Rotate: 45}}),
		charts.WithYAxisOpts(opts.YAxis{Name: yName}),
	}
}

func dryPeriodBar(res analysis.Result) *charts.Bar {
	labels := make([]string, 0, len(res.Longest))
	items := make([]opts.BarData, 0, len(res.Longest))
	for _, p := range res.Longest {
		labels = append(labels, domain.FormatDate(p.Start)+" to "+domain.FormatDate(p.End))
		items = append(items, opts.BarData{Value: p.Days})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(baseOptions(
		"Dry periods",
		fmt.Sprintf("Longest dry periods (%s)", res.Mode.Description),
		"as of "+domain.FormatDate(res.Today),
		"Period", "Days",
	)...)
	bar.SetXAxis(labels).AddSeries("Dry days", items)
	return bar
}

// totalsBar plots period totals driest first, as Totals orders them.
func totalsBar(g aggregate.Granularity, totals []aggregate.PeriodTotal) *charts.Bar {
	labels := make([]string, 0, len(totals))
	items := make([]opts.BarData, 0, len(totals))
	for _, t := range totals {
		labels = append(labels, t.Period)
		items = append(items, opts.BarData{Value: t.TotalMM})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(baseOptions(
		"Rainfall totals",
		fmt.Sprintf("Rainfall per %s", g),
		"driest first",
		"Period", "Rainfall (mm)",
	)...)
	bar.SetXAxis(labels).AddSeries("Total", items)
	return bar
}

func averagesBar(g aggregate.Granularity, comparisons []aggregate.Comparison) *charts.Bar {
	labels := make([]string, 0, len(comparisons))
	avg := make([]opts.BarData, 0, len(comparisons))
	recent := make([]opts.BarData, 0, len(comparisons))
	for _, c := range comparisons {
		labels = append(labels, c.Period)
		avg = append(avg, opts.BarData{Value: c.AverageMM})
		recent = append(recent, opts.BarData{Value: c.RecentMM})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(baseOptions(
		"Rainfall averages",
		fmt.Sprintf("Average rainfall per %s", g),
		"compared with the most recent totals",
		"Period", "Rainfall (mm)",
	)...)
	bar.SetXAxis(labels).
		AddSeries("Average", avg).
		AddSeries("Recent", recent)
	return bar
}

// progressLine draws one running-total line per year over a shared
// month-day axis taken from the longest year.
func progressLine(today time.Time, years []aggregate.YearProgress) *charts.Line {
	var axis []string
	for _, y := range years {
		if len(y.Totals) > len(axis) {
			axis = axis[:0]
			for _, t := range y.Totals {
				axis = append(axis, t.Period)
			}
		}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(baseOptions(
		"Year progress",
		"Rainfall year to date",
		"through "+today.Format("January 2"),
		"Day", "Rainfall (mm)",
	)...)
	line.SetXAxis(axis)
	for _, y := range years {
		items := make([]opts.LineData, 0, len(y.Totals))
		for _, t := range y.Totals {
			items = append(items, opts.LineData{Value: t.TotalMM})
		}
		line.AddSeries(strconv.Itoa(y.Year), items)
	}
	return line
}
