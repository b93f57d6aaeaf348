package calendar

import (
	"fmt"
	"sort"
	"time"

	"github.com/infinity-apps/workspace/internal/dateutil"
	"github.com/infinity-apps/workspace/lru"
)

// DefaultPinnedLimit caps the dashboard pinned list.
const DefaultPinnedLimit = 10

// DefaultGridVisibleCap caps the items rendered per grid cell; the true
// total is still reported for the "+N more" affordance.
const DefaultGridVisibleCap = 3

// GridCell is one day slot of a populated month grid.
type GridCell struct {
	Key            string `json:"key"`
	InCurrentMonth bool   `json:"inCurrentMonth"`
	Items          []Item `json:"items"`
	Total          int    `json:"total"`
}

// DayAgenda returns the items scheduled on the given date key, events before
// tasks, then by time ascending.
func DayAgenda(snap Snapshot, dateKey string) []Item {
	var out []Item
	for _, item := range snap.Items {
		if item.Date == dateKey {
			out = append(out, item)
		}
	}
	sortAgenda(out)
	return out
}

// MonthGrid populates the fixed 42-cell grid for the month of ref. Each cell
// carries at most visibleCap items (sorted like a day agenda) plus the true
// total count.
func MonthGrid(snap Snapshot, ref time.Time, visibleCap int) []GridCell {
	if visibleCap <= 0 {
		visibleCap = DefaultGridVisibleCap
	}

	byDate := make(map[string][]Item)
	for _, item := range snap.Items {
		byDate[item.Date] = append(byDate[item.Date], item)
	}

	cells := dateutil.MonthMatrix(ref)
	out := make([]GridCell, 0, len(cells))
	for _, cell := range cells {
		day := byDate[cell.Key]
		sortAgenda(day)
		visible := day
		if len(visible) > visibleCap {
			visible = visible[:visibleCap]
		}
		out = append(out, GridCell{
			Key:            cell.Key,
			InCurrentMonth: cell.InCurrentMonth,
			Items:          visible,
			Total:          len(day),
		})
	}
	return out
}

// Pinned returns pinned items in chronological order, capped at limit
// (DefaultPinnedLimit when limit <= 0). Items without a time sort at the
// start of their day.
func Pinned(snap Snapshot, limit int) []Item {
	if limit <= 0 {
		limit = DefaultPinnedLimit
	}
	var out []Item
	for _, item := range snap.Items {
		if item.Pinned {
			out = append(out, item)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return chronoKey(out[i]) < chronoKey(out[j])
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Upcoming returns items whose date-time is at or after now, optionally
// filtered by type, ascending. Items with unparseable dates are skipped.
func Upcoming(snap Snapshot, now time.Time, filter ItemType) []Item {
	var out []Item
	for _, item := range snap.Items {
		if filter != "" && item.Type != filter {
			continue
		}
		at, ok := itemTime(item)
		if !ok || at.Before(now) {
			continue
		}
		out = append(out, item)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return chronoKey(out[i]) < chronoKey(out[j])
	})
	return out
}

// TagName resolves the tag referenced by an item. A blank or dangling tagId
// yields ok=false — never an error.
func TagName(snap Snapshot, item Item) (string, bool) {
	if item.TagID == "" {
		return "", false
	}
	for _, tag := range snap.Tags {
		if tag.ID == item.TagID {
			return tag.Name, true
		}
	}
	return "", false
}

// sortAgenda orders items in place: events before tasks, then by time
// ascending. Lexicographic comparison is correct for zero-padded HH:MM.
func sortAgenda(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Type != items[j].Type {
			return items[i].Type == TypeEvent
		}
		return items[i].Time < items[j].Time
	})
}

// chronoKey combines date and time into a single sortable key. A missing
// time defaults to midnight.
func chronoKey(item Item) string {
	t := item.Time
	if t == "" {
		t = "00:00"
	}
	return item.Date + " " + t
}

// itemTime resolves an item to a local time.Time instant.
func itemTime(item Item) (time.Time, bool) {
	day, err := dateutil.ParseDateKey(item.Date)
	if err != nil {
		return time.Time{}, false
	}
	clock := item.Time
	if clock == "" {
		clock = "00:00"
	}
	var h, m int
	if _, err := fmt.Sscanf(clock, "%d:%d", &h, &m); err != nil {
		return day, true
	}
	return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute), true
}

// GridCache memoizes MonthGrid projections keyed by snapshot revision,
// month and cap. Any mutation changes the revision, so stale grids simply
// stop being requested and age out of the cache.
type GridCache struct {
	cache *lru.Cache[string, []GridCell]
}

// NewGridCache creates a cache holding up to capacity populated grids.
func NewGridCache(capacity int) *GridCache {
	return &GridCache{cache: lru.New[string, []GridCell](capacity)}
}

// Get returns the populated grid for the month of ref, computing and
// memoizing it on first request per (revision, month, cap).
func (g *GridCache) Get(snap Snapshot, ref time.Time, visibleCap int) []GridCell {
	key := fmt.Sprintf("%d|%04d-%02d|%d", snap.Revision, ref.Year(), int(ref.Month()), visibleCap)
	if cells, ok := g.cache.Get(key); ok {
		return cells
	}
	cells := MonthGrid(snap, ref, visibleCap)
	g.cache.Put(key, cells)
	return cells
}
