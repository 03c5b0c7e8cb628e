// Command dryperiods prints the longest stretches without rain from a rainfall
// history.
//
// Usage:
//
//	go run ./cmd/dryperiods -m l -file rainfall_data.json
//
// Settings not given as flags come from the environment (see internal/config).
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/rainfall-dry-periods/internal/analysis"
	"github.com/couchcryptid/rainfall-dry-periods/internal/config"
	"github.com/couchcryptid/rainfall-dry-periods/internal/domain"
	"github.com/couchcryptid/rainfall-dry-periods/internal/observability"
	"github.com/couchcryptid/rainfall-dry-periods/internal/report"
	"github.com/couchcryptid/rainfall-dry-periods/internal/source"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], clockwork.NewRealClock(), os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type options struct {
	mode       string
	file       string
	db         string
	source     string
	top        int
	windowTop  int
	windowDays int
	noToday    bool
	chart      bool
}

func parseFlags(args []string, cfg *config.Config, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("dryperiods", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.mode, "m", "a", `mode: "a" for all rain days, "l" for days at or above LIMITED_THRESHOLD_MM`)
	fs.StringVar(&o.file, "file", cfg.DataFile, "rainfall JSON file (json source)")
	fs.StringVar(&o.db, "db", cfg.SQLitePath, "SQLite database (sqlite source)")
	fs.StringVar(&o.source, "source", cfg.DataSource, "data source: json, sqlite or kafka")
	fs.IntVar(&o.top, "top", cfg.TopN, "number of periods in the overall ranking")
	fs.IntVar(&o.windowTop, "window-top", cfg.WindowTopN, "number of periods in the trailing-window ranking")
	fs.IntVar(&o.windowDays, "window-days", cfg.WindowDays, "length of the trailing window in days")
	fs.BoolVar(&o.noToday, "no-today", false, "omit the dry period running from the last rain day to today")
	fs.BoolVar(&o.chart, "chart", false, "append an ASCII chart of period lengths")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if o.top <= 0 || o.windowTop <= 0 || o.windowDays <= 0 {
		return options{}, errors.New("-top, -window-top and -window-days must be positive")
	}
	return o, nil
}

func run(ctx context.Context, args []string, clock clockwork.Clock, stdout, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return 1
	}

	opts, err := parseFlags(args, cfg, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "%v\n", err)
		return 2
	}
	cfg.DataFile = opts.file
	cfg.SQLitePath = opts.db
	cfg.DataSource = opts.source
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return 1
	}

	mode, err := analysis.ParseMode(opts.mode, cfg.LimitedThresholdMM)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 2
	}

	logger := observability.NewLoggerTo(stderr, cfg.LogLevel, cfg.LogFormat)

	src, closeSource, err := source.Open(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(stderr, "open %s source: %v\n", cfg.DataSource, err)
		return 1
	}
	defer closeSource() //nolint:errcheck // read-only use

	svc := analysis.NewService(src, clock, logger, observability.NewUnregisteredMetrics(), cfg.LoadTimeout)
	svc.SetLoadAttempts(source.LoadAttempts(cfg))

	res, err := svc.Analyze(ctx, analysis.Query{
		Mode:           mode,
		IncludeToToday: !opts.noToday,
		TopN:           opts.top,
		WindowTopN:     opts.windowTop,
		WindowDays:     opts.windowDays,
	})
	if err != nil {
		fmt.Fprintf(stderr, "load rainfall data: %v\n", err)
		return 1
	}

	if err := writeReport(stdout, res, opts); err != nil {
		fmt.Fprintf(stderr, "write report: %v\n", err)
		return 1
	}
	return 0
}

func writeReport(w io.Writer, res analysis.Result, opts options) error {
	title := fmt.Sprintf("Top %d Longest Periods with No Rain (Mode: %s)", opts.top, res.Mode.Description)
	if err := report.WriteTable(w, title, res.Longest); err != nil {
		return err
	}

	span := fmt.Sprintf("%d Days", opts.windowDays)
	if opts.windowDays == 365 {
		span = "Year"
	}
	windowTitle := fmt.Sprintf("\n\nTop %d Longest Dry Periods for the Past %s (%s to %s)",
		opts.windowTop, span, domain.FormatDate(res.WindowFrom), domain.FormatDate(res.WindowTo))
	if err := report.WriteTable(w, windowTitle, res.Window); err != nil {
		return err
	}

	if err := report.WriteSummary(w, res.Summary); err != nil {
		return err
	}

	if opts.chart {
		if _, err := fmt.Fprintf(w, "\n%s\n", report.RenderChart(res.Periods, 70, 12)); err != nil {
			return err
		}
	}
	return nil
}
