package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/gorilla/mux"

	"github.com/couchcryptid/rainfall-dry-periods/internal/aggregate"
	"github.com/couchcryptid/rainfall-dry-periods/internal/analysis"
	"github.com/couchcryptid/rainfall-dry-periods/internal/domain"
	"github.com/couchcryptid/rainfall-dry-periods/internal/report"
)

type windowResponse struct {
	From    string             `json:"from"`
	To      string             `json:"to"`
	Days    int                `json:"days"`
	Periods []domain.DryPeriod `json:"periods"`
}

type dryPeriodsResponse struct {
	Mode           analysis.Mode      `json:"mode"`
	Today          string             `json:"today"`
	IncludeToToday bool               `json:"include_to_today"`
	Periods        []domain.DryPeriod `json:"periods"`
	Longest        []domain.DryPeriod `json:"longest"`
	Window         windowResponse     `json:"window"`
	Summary        report.Summary     `json:"summary"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleDryPeriods(w http.ResponseWriter, r *http.Request) {
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

	sharedobs.WriteJSON(w, http.StatusOK, dryPeriodsResponse{
		Mode:           res.Mode,
		Today:          domain.FormatDate(res.Today),
		IncludeToToday: q.IncludeToToday,
		Periods:        res.Periods,
		Longest:        res.Longest,
		Window: windowResponse{
			From:    domain.FormatDate(res.WindowFrom),
			To:      domain.FormatDate(res.WindowTo),
			Days:    q.WindowDays,
			Periods: res.Window,
		},
		Summary: res.Summary,
	})
}

func (s *Server) handleTotals(w http.ResponseWriter, r *http.Request) {
	g, err := aggregate.ParseGranularity(mux.Vars(r)["granularity"])
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	records, ok := s.loadRecords(w, r)
	if !ok {
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, aggregate.Totals(records, g, s.analyzer.Today()))
}

func (s *Server) handleAverages(w http.ResponseWriter, r *http.Request) {
	g, err := aggregate.ParseGranularity(mux.Vars(r)["granularity"])
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	records, ok := s.loadRecords(w, r)
	if !ok {
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, aggregate.Averages(records, g, s.analyzer.Today()))
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	records, ok := s.loadRecords(w, r)
	if !ok {
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, aggregate.Progress(records, s.analyzer.Today()))
}

func (s *Server) loadRecords(w http.ResponseWriter, r *http.Request) (domain.RecordSet, bool) {
	records, err := s.analyzer.Load(r.Context())
	if err != nil {
		s.logger.Error("load failed", "error", err)
		writeError(w, http.StatusInternalServerError, errors.New("rainfall data unavailable"))
		return nil, false
	}
	return records, true
}

// parseQuery reads mode, include_to_today, top, window_top and window_days,
// falling back to the server defaults.
func (s *Server) parseQuery(r *http.Request) (analysis.Query, error) {
	values := r.URL.Query()

	modeName := values.Get("mode")
	if modeName == "" {
		modeName = "a"
	}
	mode, err := analysis.ParseMode(modeName, s.defaults.LimitedThresholdMM)
	if err != nil {
		return analysis.Query{}, err
	}

	q := analysis.Query{
		Mode:           mode,
		IncludeToToday: true,
		TopN:           s.defaults.TopN,
		WindowTopN:     s.defaults.WindowTopN,
		WindowDays:     s.defaults.WindowDays,
	}

	if v := values.Get("include_to_today"); v != "" {
		q.IncludeToToday, err = strconv.ParseBool(v)
		if err != nil {
			return analysis.Query{}, fmt.Errorf("invalid include_to_today %q", v)
		}
	}
	for _, p := range []struct {
		name string
		dst  *int
	}{
		{"top", &q.TopN},
		{"window_top", &q.WindowTopN},
		{"window_days", &q.WindowDays},
	} {
		v := values.Get(p.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return analysis.Query{}, fmt.Errorf("invalid %s %q: must be a positive integer", p.name, v)
		}
		*p.dst = n
	}
	return q, nil
}

func writeError(w http.ResponseWriter, status int, err error) {
	sharedobs.WriteJSON(w, status, errorResponse{Error: err.Error()})
}
