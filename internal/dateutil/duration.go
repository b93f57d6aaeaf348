package dateutil

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultDurationMinutes is the fallback for labels the table does not know.
const DefaultDurationMinutes = 60

// builtinDurations maps the display duration labels to minutes. The labels
// are the French strings the UI ships with.
var builtinDurations = map[string]int{
	"30 min":          30,
	"1h":              60,
	"1h30":            90,
	"2h":              120,
	"3h":              180,
	"4h":              240,
	"Matinée":         180,
	"Après-midi":      240,
	"Soirée":          240,
	"Journée entière": 480,
}

// DurationTable resolves duration labels to minutes.
type DurationTable struct {
	entries map[string]int
}

// NewDurationTable returns a table seeded with the builtin labels.
func NewDurationTable() *DurationTable {
	entries := make(map[string]int, len(builtinDurations))
	for k, v := range builtinDurations {
		entries[k] = v
	}
	return &DurationTable{entries: entries}
}

// LoadDurationTable reads a YAML label→minutes mapping and overlays it on
// the builtin table. Labels in the file replace builtin labels of the same
// name; builtins not mentioned are kept.
func LoadDurationTable(path string) (*DurationTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading duration table: %w", err)
	}
	var overrides map[string]int
	if err := yaml.Unmarshal(raw, &overrides); err != nil {
		return nil, fmt.Errorf("parsing duration table: %w", err)
	}
	t := NewDurationTable()
	for label, minutes := range overrides {
		if minutes > 0 {
			t.entries[label] = minutes
		}
	}
	return t, nil
}

// Minutes resolves a duration label. Unknown or empty labels resolve to
// DefaultDurationMinutes.
func (t *DurationTable) Minutes(label string) int {
	if m, ok := t.entries[label]; ok {
		return m
	}
	return DefaultDurationMinutes
}

// EndTime computes the wall-clock end of an event starting at start (HH:MM)
// with the given duration label, wrapped modulo 24h.
func (t *DurationTable) EndTime(start, label string) string {
	return AddMinutesToTime(start, t.Minutes(label))
}

// DurationMinutes resolves a label against the builtin table.
func DurationMinutes(label string) int {
	if m, ok := builtinDurations[label]; ok {
		return m
	}
	return DefaultDurationMinutes
}
