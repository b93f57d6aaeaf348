package calendar

// ItemType discriminates scheduled entries.
type ItemType string

const (
	TypeEvent ItemType = "event"
	TypeTask  ItemType = "task"
)

// Valid reports whether t is a known item type.
func (t ItemType) Valid() bool {
	return t == TypeEvent || t == TypeTask
}

// Item is a single scheduled entry. For events the time/duration/end/location
// fields are the active ones; for tasks only Done carries meaning and Time is
// a fixed "00:00" placeholder. The store enforces that partition on every
// mutation so serialized state never mixes the two shapes.
type Item struct {
	ID            string   `json:"id"`
	Date          string   `json:"date"` // YYYY-MM-DD
	Time          string   `json:"time"` // HH:MM, 24h wall clock
	Type          ItemType `json:"type"`
	Title         string   `json:"title"`
	Description   string   `json:"description,omitempty"`
	Location      string   `json:"location,omitempty"`
	DurationLabel string   `json:"durationLabel,omitempty"`
	EndTime       string   `json:"endTime,omitempty"`
	Pinned        bool     `json:"pinned"`
	TagID         string   `json:"tagId,omitempty"` // weak reference, may dangle
	Done          *bool    `json:"done,omitempty"`  // tasks only
}

// Tag is a flat label referenced by id from Item.TagID.
type Tag struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// ItemPatch is a partial update. Nil fields are left untouched.
type ItemPatch struct {
	Date          *string   `json:"date,omitempty"`
	Time          *string   `json:"time,omitempty"`
	Type          *ItemType `json:"type,omitempty"`
	Title         *string   `json:"title,omitempty"`
	Description   *string   `json:"description,omitempty"`
	Location      *string   `json:"location,omitempty"`
	DurationLabel *string   `json:"durationLabel,omitempty"`
	Pinned        *bool     `json:"pinned,omitempty"`
	TagID         *string   `json:"tagId,omitempty"`
	Done          *bool     `json:"done,omitempty"`
}

// TagPatch is a partial tag update.
type TagPatch struct {
	Name  *string `json:"name,omitempty"`
	Color *string `json:"color,omitempty"`
}

// Snapshot is an immutable copy of the store state at one revision.
// Projections are computed from snapshots, never from live store internals.
type Snapshot struct {
	Items    []Item
	Tags     []Tag
	Revision uint64
}

// persistedState is the JSON shape written under the calendar blob key.
type persistedState struct {
	Items []Item `json:"items"`
	Tags  []Tag  `json:"tags"`
}

// Change is emitted to subscribers after every successful mutation.
type Change struct {
	Revision uint64
}
