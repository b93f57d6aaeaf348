package dateutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDateKey(t *testing.T) {
	d := time.Date(2025, time.June, 3, 15, 4, 5, 0, time.Local)
	assert.Equal(t, "2025-06-03", FormatDateKey(d))
}

func TestParseDateKey_RoundTrip(t *testing.T) {
	d, err := ParseDateKey("2025-06-03")
	require.NoError(t, err)
	assert.Equal(t, 2025, d.Year())
	assert.Equal(t, time.June, d.Month())
	assert.Equal(t, 3, d.Day())
	assert.Equal(t, "2025-06-03", FormatDateKey(d))
}

func TestParseDateKey_Invalid(t *testing.T) {
	for _, key := range []string{"", "2025-06", "abcd-ef-gh", "2025-13-01", "2025-00-10", "2025-01-32"} {
		_, err := ParseDateKey(key)
		assert.Error(t, err, "key %q", key)
	}
}

func TestAddMonths_ClampsDay(t *testing.T) {
	jan31 := time.Date(2025, time.January, 31, 0, 0, 0, 0, time.Local)
	feb := AddMonths(jan31, 1)
	assert.Equal(t, time.February, feb.Month())
	assert.Equal(t, 28, feb.Day())

	// Leap year keeps the 29th.
	jan31leap := time.Date(2024, time.January, 31, 0, 0, 0, 0, time.Local)
	assert.Equal(t, 29, AddMonths(jan31leap, 1).Day())

	// Backwards across a year boundary.
	mar := time.Date(2025, time.March, 31, 0, 0, 0, 0, time.Local)
	prev := AddMonths(mar, -1)
	assert.Equal(t, time.February, prev.Month())
	assert.Equal(t, 28, prev.Day())
}

func TestMonthMatrix_Shape(t *testing.T) {
	for month := time.January; month <= time.December; month++ {
		ref := time.Date(2025, month, 15, 0, 0, 0, 0, time.Local)
		cells := MonthMatrix(ref)
		require.Len(t, cells, MatrixCells)

		// Monday-first.
		assert.Equal(t, time.Monday, cells[0].Date.Weekday())

		// Consecutive cells are exactly one day apart.
		for i := 1; i < len(cells); i++ {
			assert.Equal(t, cells[i-1].Date.AddDate(0, 0, 1), cells[i].Date)
		}

		// The 1st of the month is inside the grid and flagged in-month.
		found := false
		for _, c := range cells {
			if c.InCurrentMonth && c.Date.Day() == 1 {
				found = true
				break
			}
		}
		assert.True(t, found, "month %s missing its 1st", month)
	}
}

func TestMonthMatrix_InCurrentMonthRun(t *testing.T) {
	ref := time.Date(2025, time.June, 10, 0, 0, 0, 0, time.Local)
	cells := MonthMatrix(ref)

	inMonth := 0
	for _, c := range cells {
		if c.InCurrentMonth {
			inMonth++
		}
	}
	assert.Equal(t, 30, inMonth)
}

func TestAddMinutesToTime(t *testing.T) {
	tests := []struct {
		clock   string
		minutes int
		want    string
	}{
		{"09:00", 90, "10:30"},
		{"23:30", 60, "00:30"},
		{"00:00", 0, "00:00"},
		{"12:15", 480, "20:15"},
		{"01:00", -90, "23:30"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AddMinutesToTime(tt.clock, tt.minutes), "%s + %d", tt.clock, tt.minutes)
	}
}

func TestDurationMinutes(t *testing.T) {
	assert.Equal(t, 30, DurationMinutes("30 min"))
	assert.Equal(t, 120, DurationMinutes("2h"))
	assert.Equal(t, 480, DurationMinutes("Journée entière"))
	assert.Equal(t, 240, DurationMinutes("Après-midi"))
	assert.Equal(t, DefaultDurationMinutes, DurationMinutes("nope"))
	assert.Equal(t, DefaultDurationMinutes, DurationMinutes(""))
}

func TestDurationTable_EndTime(t *testing.T) {
	table := NewDurationTable()
	assert.Equal(t, "10:30", table.EndTime("09:00", "1h30"))
	assert.Equal(t, "00:30", table.EndTime("23:30", "1h"))
	// Unknown label falls back to one hour.
	assert.Equal(t, "10:00", table.EndTime("09:00", "mystery"))
}

func TestLoadDurationTable_Overlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "durations.yaml")
	require.NoError(t, os.WriteFile(path, []byte("Half hour: 30\n1h: 75\n"), 0o644))

	table, err := LoadDurationTable(path)
	require.NoError(t, err)
	assert.Equal(t, 30, table.Minutes("Half hour"))
	assert.Equal(t, 75, table.Minutes("1h"))
	// Untouched builtin survives.
	assert.Equal(t, 120, table.Minutes("2h"))
}

func TestLoadDurationTable_Missing(t *testing.T) {
	_, err := LoadDurationTable(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
