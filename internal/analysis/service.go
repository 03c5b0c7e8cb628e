// Package analysis loads measurements from a data source and turns them into
// ranked dry-period reports.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/rainfall-dry-periods/internal/domain"
	"github.com/couchcryptid/rainfall-dry-periods/internal/observability"
	"github.com/couchcryptid/rainfall-dry-periods/internal/report"
)

// Source loads the full measurement history.
type Source interface {
	Load(ctx context.Context) (domain.RecordSet, error)
	Name() string
}

// Query describes one report request.
type Query struct {
	Mode           Mode
	IncludeToToday bool
	TopN           int
	WindowTopN     int
	WindowDays     int
}

// Result is the analysis output plus the derived rankings.
type Result struct {
	Mode  Mode      `json:"mode"`
	Today time.Time `json:"-"`

	// Periods is the chronological analyzer output.
	Periods []domain.DryPeriod `json:"periods"`
	// Longest is Periods ranked longest first, cut to TopN.
	Longest []domain.DryPeriod `json:"longest"`

	WindowFrom time.Time          `json:"-"`
	WindowTo   time.Time          `json:"-"`
	Window     []domain.DryPeriod `json:"window"`

	Summary report.Summary `json:"summary"`
}

// Service runs analyses against a single source.
type Service struct {
	source      Source
	clock       clockwork.Clock
	logger      *slog.Logger
	metrics     *observability.Metrics
	loadTimeout time.Duration
	attempts    int
	ready       atomic.Bool
}

// NewService creates a Service. A zero loadTimeout disables the per-load deadline.
func NewService(source Source, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics, loadTimeout time.Duration) *Service {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Service{
		source:      source,
		clock:       clock,
		logger:      logger,
		metrics:     metrics,
		loadTimeout: loadTimeout,
		attempts:    1,
	}
}

// SetLoadAttempts sets how many times a failed load is tried before giving
// up. Values below one are treated as one.
func (s *Service) SetLoadAttempts(n int) {
	s.attempts = max(n, 1)
}

// Today returns the current calendar day according to the service clock.
func (s *Service) Today() time.Time {
	return domain.Today(s.clock)
}

// CheckReadiness returns nil once the source has been loaded successfully.
// Before that it attempts a load itself.
func (s *Service) CheckReadiness(ctx context.Context) error {
	if s.ready.Load() {
		return nil
	}
	if _, err := s.Load(ctx); err != nil {
		return fmt.Errorf("%s source not loadable: %w", s.source.Name(), err)
	}
	return nil
}

// Load reads the source. Failed loads are retried with exponential backoff
// when more than one attempt is configured.
func (s *Service) Load(ctx context.Context) (domain.RecordSet, error) {
	name := s.source.Name()
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	var lastErr error
	for attempt := 1; attempt <= s.attempts; attempt++ {
		records, err := s.loadOnce(ctx)
		if err == nil {
			s.ready.Store(true)
			return records, nil
		}
		lastErr = err
		s.metrics.LoadErrors.WithLabelValues(name).Inc()
		if attempt == s.attempts || ctx.Err() != nil || !retryable(err) {
			break
		}
		s.logger.Warn("load failed, retrying", "source", name, "attempt", attempt, "error", err)
		if !s.sleep(ctx, backoff) {
			break
		}
		backoff = retry.NextBackoff(backoff, maxBackoff)
	}
	s.logger.Error("load failed", "source", name, "error", lastErr)
	return nil, lastErr
}

func (s *Service) loadOnce(ctx context.Context) (domain.RecordSet, error) {
	if s.loadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.loadTimeout)
		defer cancel()
	}

	name := s.source.Name()
	start := s.clock.Now()
	records, err := s.source.Load(ctx)
	s.metrics.LoadDuration.WithLabelValues(name).Observe(s.clock.Since(start).Seconds())
	if err != nil {
		return nil, err
	}
	s.metrics.MeasurementsLoaded.WithLabelValues(name).Add(float64(records.Len()))
	s.logger.Debug("measurements loaded", "source", name, "groups", len(records), "measurements", records.Len())
	return records, nil
}

// Analyze loads the source and builds a Result for q.
func (s *Service) Analyze(ctx context.Context, q Query) (Result, error) {
	records, err := s.Load(ctx)
	if err != nil {
		return Result{}, err
	}
	return s.AnalyzeRecords(records, q), nil
}

// AnalyzeRecords builds a Result from records already in memory.
func (s *Service) AnalyzeRecords(records domain.RecordSet, q Query) Result {
	start := s.clock.Now()
	today := s.Today()

	periods := domain.FindDryPeriods(records, q.Mode.Threshold, q.IncludeToToday, today)
	ranked := report.Rank(periods)
	from, to := report.TrailingWindow(today, q.WindowDays)

	res := Result{
		Mode:       q.Mode,
		Today:      today,
		Periods:    periods,
		Longest:    report.Top(ranked, q.TopN),
		WindowFrom: from,
		WindowTo:   to,
		Window:     report.Top(report.Overlapping(ranked, from, to), q.WindowTopN),
		Summary:    report.Summarize(records, periods, q.Mode.Threshold, today),
	}

	s.metrics.AnalysesRun.WithLabelValues(q.Mode.Name).Inc()
	s.metrics.DryPeriodsFound.Observe(float64(len(periods)))
	s.metrics.LongestDryPeriod.Set(float64(res.Summary.LongestDays))
	s.metrics.AnalysisDuration.Observe(s.clock.Since(start).Seconds())

	s.logger.Info("analysis complete",
		"mode", q.Mode.Name,
		"threshold_mm", q.Mode.Threshold,
		"include_to_today", q.IncludeToToday,
		"dry_periods", len(periods),
		"longest_days", res.Summary.LongestDays,
	)
	return res
}

// retryable reports whether a load error may succeed on another attempt.
// Cancellation and deadline errors are final.
func retryable(err error) bool {
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// sleep waits on the service clock so tests can drive the backoff.
func (s *Service) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := s.clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}
