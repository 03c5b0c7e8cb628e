package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// DryPeriod is a closed run of calendar days with no qualifying rainfall.
type DryPeriod struct {
	Start time.Time
	End   time.Time
	Days  int
}

type dryPeriodJSON struct {
	Start string `json:"start_date"`
	End   string `json:"end_date"`
	Days  int    `json:"length_days"`
}

// MarshalJSON renders the period as YYYY-MM-DD bounds plus its length.
func (p DryPeriod) MarshalJSON() ([]byte, error) {
	return json.Marshal(dryPeriodJSON{
		Start: FormatDate(p.Start),
		End:   FormatDate(p.End),
		Days:  p.Days,
	})
}

// UnmarshalJSON accepts the form written by MarshalJSON.
func (p *DryPeriod) UnmarshalJSON(data []byte) error {
	var raw dryPeriodJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	start, err := ParseDate(raw.Start)
	if err != nil {
		return fmt.Errorf("parse start_date: %w", err)
	}
	end, err := ParseDate(raw.End)
	if err != nil {
		return fmt.Errorf("parse end_date: %w", err)
	}
	*p = DryPeriod{Start: start, End: end, Days: raw.Days}
	return nil
}

// Overlaps reports whether the period shares at least one day with [from, to].
func (p DryPeriod) Overlaps(from, to time.Time) bool {
	return !p.Start.After(to) && !p.End.Before(from)
}

func (p DryPeriod) String() string {
	return fmt.Sprintf("%s..%s (%d days)", FormatDate(p.Start), FormatDate(p.End), p.Days)
}
