// Package dateutil provides timezone-naive calendar arithmetic for the
// workspace: date-key encoding, month grid generation and wall-clock time
// math. All functions are pure and operate on local calendar components,
// never on UTC instants, so a date key renders the same day everywhere.
package dateutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MatrixCells is the fixed size of a month grid: 6 weeks of 7 days.
// The grid never reflows vertically regardless of the month shape.
const MatrixCells = 42

// Cell is one day slot in a month matrix.
type Cell struct {
	Date           time.Time
	Key            string
	InCurrentMonth bool
}

// FormatDateKey renders the local calendar date of t as YYYY-MM-DD.
func FormatDateKey(t time.Time) string {
	return fmt.Sprintf("%04d-%02d-%02d", t.Year(), int(t.Month()), t.Day())
}

// ParseDateKey parses a YYYY-MM-DD key into a local midnight time.
// Returns an error for anything that is not three dash-separated numbers.
func ParseDateKey(key string) (time.Time, error) {
	parts := strings.Split(key, "-")
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("invalid date key %q", key)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid year in date key %q", key)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month in date key %q", key)
	}
	day, err := strconv.Atoi(parts[2])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day in date key %q", key)
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("date key %q out of range", key)
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local), nil
}

// AddMonths shifts t by delta months, clamping the day-of-month to the last
// valid day of the target month. Jan 31 + 1 month is Feb 28/29, never Mar 3.
func AddMonths(t time.Time, delta int) time.Time {
	year, month, day := t.Date()
	first := time.Date(year, month, 1, 0, 0, 0, 0, t.Location())
	shifted := first.AddDate(0, delta, 0)
	if last := daysIn(shifted.Year(), shifted.Month()); day > last {
		day = last
	}
	return time.Date(shifted.Year(), shifted.Month(), day, 0, 0, 0, 0, t.Location())
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.Local).Day()
}

// MonthMatrix returns the fixed 42-cell Monday-first grid covering the month
// of ref. Leading and trailing cells from adjacent months carry
// InCurrentMonth=false.
func MonthMatrix(ref time.Time) []Cell {
	first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())

	// Monday-first offset: Sunday counts as 6 days after Monday.
	offset := (int(first.Weekday()) + 6) % 7
	start := first.AddDate(0, 0, -offset)

	cells := make([]Cell, 0, MatrixCells)
	for i := 0; i < MatrixCells; i++ {
		d := start.AddDate(0, 0, i)
		cells = append(cells, Cell{
			Date:           d,
			Key:            FormatDateKey(d),
			InCurrentMonth: d.Month() == ref.Month() && d.Year() == ref.Year(),
		})
	}
	return cells
}

// AddMinutesToTime adds minutes to an HH:MM wall-clock time, wrapping
// silently past midnight. No day rollover is tracked.
func AddMinutesToTime(clock string, minutes int) string {
	h, m := splitClock(clock)
	total := (h*60 + m + minutes) % (24 * 60)
	if total < 0 {
		total += 24 * 60
	}
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

func splitClock(clock string) (hour, minute int) {
	parts := strings.SplitN(clock, ":", 2)
	if len(parts) == 2 {
		hour, _ = strconv.Atoi(parts[0])
		minute, _ = strconv.Atoi(parts[1])
	}
	return hour, minute
}
