// Package domain models daily rainfall measurements and the dry periods
// derived from them.
//
// # Data Source
//
// Measurements come from a rain gauge log exported as year-keyed JSON:
//
//	{
//	  "2023": [],
//	  "2024": [{"date": "2024-01-01", "rainfall_mm": 5.0}, ...]
//	}
//
// The year key is a loading convenience. Years with no recorded rain map to an
// empty list. Dates are calendar days in YYYY-MM-DD form and carry no time of
// day or timezone. Amounts are millimetres and may be 0.0: a 0.0 entry means
// the gauge was read that day.
//
// # Calendar Days
//
// Every date in this package is normalized to midnight UTC by [CalendarDay], so
// day arithmetic is plain duration division with no DST edges. "Today" is never
// read from a global clock: callers pass it in, usually via [Today] on a
// clockwork.Clock.
//
// # Qualifying Measurements
//
// A measurement qualifies as a rain day when RainfallMM >= threshold. The
// comparison is inclusive, so with the default threshold of 0.0 every recorded
// entry qualifies, including 0.0 mm readings. The limited mode used by the CLI
// raises the threshold to 2.0 mm.
//
// # Dry Periods
//
// A dry period is the closed run of days strictly between two consecutive
// qualifying dates. [FindDryPeriods] optionally appends a trailing period from
// the day after the last qualifying date through today. The trailing period's
// length does not count today itself:
//
//	last rain 2024-03-01, today 2024-03-11
//	→ start 2024-03-02, end 2024-03-11, length 9
package domain
