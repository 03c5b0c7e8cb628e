// Command validate checks a year-keyed rainfall JSON file for integrity
// problems before it is used as a data source: unparseable records, negative
// amounts, records filed under the wrong year, and duplicate dates. It then
// runs the dry-period analysis in both modes and checks the output invariants.
//
// Usage:
//
//	go run ./cmd/validate -file data/rainfall_data.json
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/rainfall-dry-periods/internal/adapter/jsonfile"
	"github.com/couchcryptid/rainfall-dry-periods/internal/domain"
)

// phase tracks pass/fail for a validation phase. Notes are informational and
// do not fail the phase.
type phase struct {
	name   string
	errors []string
	notes  []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) notef(format string, args ...any) {
	p.notes = append(p.notes, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	file := flag.String("file", "rainfall_data.json", "path to the year-keyed rainfall JSON file")
	limited := flag.Float64("limited", 2.0, "threshold in mm for the limited mode")
	flag.Parse()

	os.Exit(run(os.Stdout, *file, *limited, clockwork.NewRealClock()))
}

type entry struct {
	group string
	index int
	m     domain.Measurement
}

func run(w io.Writer, path string, limited float64, clock clockwork.Clock) int {
	fmt.Fprintln(w, "=== Rainfall Data Integrity Validation ===")
	fmt.Fprintln(w)

	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(w, "FATAL: read %s: %v\n", path, err)
		return 1
	}
	doc, err := jsonfile.DecodeRecords(f)
	_ = f.Close()
	if err != nil {
		fmt.Fprintf(w, "FATAL: parse %s: %v\n", path, err)
		return 1
	}

	records := domain.RecordSet{}
	for key := range doc {
		records[key] = []domain.Measurement{}
	}
	schema, entries := validateSchema(doc, records)

	phases := []*phase{
		schema,
		validateAmounts(entries),
		validateGroupKeys(entries),
		validateDuplicates(entries),
		validateAnalysis(records, limited, domain.Today(clock)),
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(w, "  %-42s %s\n", p.name, status)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Records: %d groups, %d measurements\n", len(doc), len(entries))

	for _, p := range phases {
		if len(p.notes) > 0 {
			fmt.Fprintf(w, "\n--- %s (notes) ---\n", p.name)
			for _, n := range p.notes {
				fmt.Fprintf(w, "  %s\n", n)
			}
		}
		if p.passed() {
			continue
		}
		fmt.Fprintf(w, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(w, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(w, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(w, "\nValidation FAILED.")
	return 1
}

// ── Phase 1: Schema ──

func validateSchema(doc map[string][]jsonfile.Record, records domain.RecordSet) (*phase, []entry) {
	p := &phase{name: "Phase 1: Schema (fields and dates)"}
	var entries []entry

	for _, key := range records.Keys() {
		for i, raw := range doc[key] {
			m, err := jsonfile.ParseRecord(raw)
			if err != nil {
				p.errorf("group %q record %d: %v", key, i, err)
				continue
			}
			records[key] = append(records[key], m)
			entries = append(entries, entry{group: key, index: i, m: m})
		}
		if len(doc[key]) == 0 {
			p.notef("group %q is empty", key)
		}
	}
	return p, entries
}

// ── Phase 2: Amounts ──

func validateAmounts(entries []entry) *phase {
	p := &phase{name: "Phase 2: Amounts (non-negative)"}
	for _, e := range entries {
		if e.m.RainfallMM < 0 {
			p.errorf("group %q record %d (%s): negative rainfall_mm %g",
				e.group, e.index, domain.FormatDate(e.m.Date), e.m.RainfallMM)
		}
	}
	return p
}

// ── Phase 3: Group keys ──

func validateGroupKeys(entries []entry) *phase {
	p := &phase{name: "Phase 3: Group Keys (date year)"}
	for _, e := range entries {
		year, err := strconv.Atoi(e.group)
		if err != nil {
			p.errorf("group %q: key is not a year", e.group)
			continue
		}
		if e.m.Date.Year() != year {
			p.errorf("group %q record %d: date %s belongs to %d",
				e.group, e.index, domain.FormatDate(e.m.Date), e.m.Date.Year())
		}
	}
	return p
}

// ── Phase 4: Duplicates ──
// Duplicate dates are legal input; they are reported but do not fail.

func validateDuplicates(entries []entry) *phase {
	p := &phase{name: "Phase 4: Duplicate Dates"}
	seen := map[string][]string{}
	var order []string
	for _, e := range entries {
		date := domain.FormatDate(e.m.Date)
		if _, ok := seen[date]; !ok {
			order = append(order, date)
		}
		seen[date] = append(seen[date], fmt.Sprintf("%s[%d]", e.group, e.index))
	}
	for _, date := range order {
		if refs := seen[date]; len(refs) > 1 {
			p.notef("%s appears %d times: %v", date, len(refs), refs)
		}
	}
	return p
}

// ── Phase 5: Analysis invariants ──

func validateAnalysis(records domain.RecordSet, limited float64, today time.Time) *phase {
	p := &phase{name: "Phase 5: Analysis (dry period invariants)"}
	for _, threshold := range []float64{0, limited} {
		periods := domain.FindDryPeriods(records, threshold, true, today)
		checkPeriods(p, threshold, periods)
	}
	return p
}

func checkPeriods(p *phase, threshold float64, periods []domain.DryPeriod) {
	for i, dp := range periods {
		if dp.Days < 1 {
			p.errorf("threshold %g: period %s has length %d", threshold, dp, dp.Days)
		}
		if dp.End.Before(dp.Start) {
			p.errorf("threshold %g: period %s ends before it starts", threshold, dp)
		}
		if i > 0 && !periods[i-1].End.Before(dp.Start) {
			p.errorf("threshold %g: period %s overlaps %s", threshold, periods[i-1], dp)
		}
	}
}
