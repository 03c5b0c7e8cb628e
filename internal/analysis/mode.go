package analysis

import "fmt"

// Mode selects which measurements count as rain days.
type Mode struct {
	Name        string  `json:"name"`
	Threshold   float64 `json:"threshold_mm"`
	Description string  `json:"description"`
}

// ModeAll counts every recorded day, including 0.0 mm readings.
var ModeAll = Mode{Name: "a", Threshold: 0, Description: "all rain days"}

// LimitedMode counts only days with at least threshold millimetres.
func LimitedMode(threshold float64) Mode {
	return Mode{
		Name:        "l",
		Threshold:   threshold,
		Description: fmt.Sprintf("days with >= %gmm rainfall", threshold),
	}
}

// ParseMode maps the "a" and "l" selectors to a Mode. limited is the
// threshold used by "l".
func ParseMode(s string, limited float64) (Mode, error) {
	switch s {
	case "a", "all":
		return ModeAll, nil
	case "l", "limited":
		return LimitedMode(limited), nil
	default:
		return Mode{}, fmt.Errorf("unknown mode %q: want \"a\" or \"l\"", s)
	}
}
