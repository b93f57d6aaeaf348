// Package calendar holds the authoritative collection of calendar items and
// tags, its mutation operations, write-through persistence, and the pure
// projections (agenda, grids, pinned, upcoming) computed from snapshots.
package calendar

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/infinity-apps/workspace/internal/blob"
	"github.com/infinity-apps/workspace/internal/dateutil"
	"github.com/infinity-apps/workspace/internal/metrics"
)

// ErrEmptyTitle rejects items with no display title at the mutation boundary.
var ErrEmptyTitle = errors.New("calendar: item title must not be empty")

// ErrInvalidType rejects unknown item types.
var ErrInvalidType = errors.New("calendar: item type must be event or task")

// Persister is the durable side of the write-through contract. *blob.Store
// satisfies it; tests may substitute their own.
type Persister interface {
	Get(key string) ([]byte, error)
	Put(key string, value []byte) error
}

// Store owns the items and tags collections. All mutation goes through its
// methods; every successful mutation is mirrored in full to the persister
// and announced to subscribers. A failed persist is logged and counted but
// never fails the mutation — in-memory state stays authoritative.
type Store struct {
	mu        sync.RWMutex
	items     []Item
	tags      []Tag
	revision  uint64
	durations *dateutil.DurationTable

	persister Persister
	metrics   *metrics.Metrics
	logger    zerolog.Logger

	subMu   sync.Mutex
	subs    map[int]chan Change
	nextSub int
}

// NewStore creates an empty calendar store. persister and m may be nil.
func NewStore(persister Persister, durations *dateutil.DurationTable, m *metrics.Metrics, logger zerolog.Logger) *Store {
	if durations == nil {
		durations = dateutil.NewDurationTable()
	}
	return &Store{
		durations: durations,
		persister: persister,
		metrics:   m,
		logger:    logger.With().Str("component", "calendar.store").Logger(),
		subs:      make(map[int]chan Change),
	}
}

// Load rehydrates the store from the persisted blob. A missing, malformed or
// shape-mismatched blob leaves the store empty and never returns an error.
func (s *Store) Load() {
	if s.persister == nil {
		return
	}
	raw, err := s.persister.Get(blob.KeyCalendar)
	if err != nil {
		if !errors.Is(err, blob.ErrNotFound) {
			s.logger.Warn().Err(err).Msg("calendar blob unreadable, starting empty")
		}
		return
	}
	var state persistedState
	if err := json.Unmarshal(raw, &state); err != nil {
		s.logger.Warn().Err(err).Msg("calendar blob malformed, starting empty")
		return
	}
	s.mu.Lock()
	s.items = state.Items
	s.tags = state.Tags
	s.mu.Unlock()
	s.logger.Info().Int("items", len(state.Items)).Int("tags", len(state.Tags)).Msg("calendar state loaded")
}

// AddItem validates and inserts an item at the end of the collection.
// A blank id is replaced with a fresh uuid. Item id uniqueness is the
// caller's responsibility; the store does not deduplicate.
func (s *Store) AddItem(item Item) (Item, error) {
	if err := normalizeItem(&item, s.durations); err != nil {
		return Item{}, err
	}
	if item.ID == "" {
		item.ID = uuid.New().String()
	}

	s.mu.Lock()
	s.items = append(s.items, item)
	s.mu.Unlock()

	s.metrics.RecordMutation("calendar", "add_item")
	s.afterMutation()
	return item, nil
}

// UpdateItem merges patch into the item with the given id. Unset patch
// fields are left untouched. A missing id is a silent no-op; the returned
// bool reports whether anything matched.
func (s *Store) UpdateItem(id string, patch ItemPatch) (Item, bool) {
	s.mu.Lock()
	idx := s.indexOfItem(id)
	if idx < 0 {
		s.mu.Unlock()
		return Item{}, false
	}

	item := s.items[idx]
	applyItemPatch(&item, patch)
	if err := normalizeItem(&item, s.durations); err != nil {
		// A patch that would blank the title is dropped rather than stored.
		s.mu.Unlock()
		s.logger.Debug().Str("id", id).Err(err).Msg("rejecting item patch")
		return Item{}, false
	}
	s.items[idx] = item
	s.mu.Unlock()

	s.metrics.RecordMutation("calendar", "update_item")
	s.afterMutation()
	return item, true
}

// DeleteItem removes the item with the given id. Missing ids are a no-op.
func (s *Store) DeleteItem(id string) bool {
	s.mu.Lock()
	idx := s.indexOfItem(id)
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	s.items = append(s.items[:idx], s.items[idx+1:]...)
	s.mu.Unlock()

	s.metrics.RecordMutation("calendar", "delete_item")
	s.afterMutation()
	return true
}

// AddTag inserts a tag at the end of the tag collection.
func (s *Store) AddTag(tag Tag) Tag {
	if tag.ID == "" {
		tag.ID = uuid.New().String()
	}
	s.mu.Lock()
	s.tags = append(s.tags, tag)
	s.mu.Unlock()

	s.metrics.RecordMutation("calendar", "add_tag")
	s.afterMutation()
	return tag
}

// UpdateTag merges patch into the tag with the given id. Missing ids are a
// silent no-op.
func (s *Store) UpdateTag(id string, patch TagPatch) (Tag, bool) {
	s.mu.Lock()
	idx := s.indexOfTag(id)
	if idx < 0 {
		s.mu.Unlock()
		return Tag{}, false
	}
	if patch.Name != nil {
		s.tags[idx].Name = *patch.Name
	}
	if patch.Color != nil {
		s.tags[idx].Color = *patch.Color
	}
	tag := s.tags[idx]
	s.mu.Unlock()

	s.metrics.RecordMutation("calendar", "update_tag")
	s.afterMutation()
	return tag, true
}

// DeleteTag removes the tag with the given id. Items referencing the tag
// keep their tagId; the dangling reference resolves to "no tag" in views.
func (s *Store) DeleteTag(id string) bool {
	s.mu.Lock()
	idx := s.indexOfTag(id)
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	s.tags = append(s.tags[:idx], s.tags[idx+1:]...)
	s.mu.Unlock()

	s.metrics.RecordMutation("calendar", "delete_tag")
	s.afterMutation()
	return true
}

// SetItems wholesale-replaces the item collection.
func (s *Store) SetItems(items []Item) {
	s.mu.Lock()
	s.items = append([]Item(nil), items...)
	s.mu.Unlock()

	s.metrics.RecordMutation("calendar", "set_items")
	s.afterMutation()
}

// SetTags wholesale-replaces the tag collection.
func (s *Store) SetTags(tags []Tag) {
	s.mu.Lock()
	s.tags = append([]Tag(nil), tags...)
	s.mu.Unlock()

	s.metrics.RecordMutation("calendar", "set_tags")
	s.afterMutation()
}

// Snapshot returns a deep copy of the current state. Projections and HTTP
// responses are built from snapshots so nothing aliases store internals.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Items:    make([]Item, len(s.items)),
		Tags:     make([]Tag, len(s.tags)),
		Revision: s.revision,
	}
	for i, item := range s.items {
		if item.Done != nil {
			done := *item.Done
			item.Done = &done
		}
		snap.Items[i] = item
	}
	copy(snap.Tags, s.tags)
	return snap
}

// Subscribe registers a change listener. Sends never block: a subscriber
// that cannot keep up misses intermediate revisions and catches up from the
// next snapshot. The returned func cancels the subscription.
func (s *Store) Subscribe() (<-chan Change, func()) {
	ch := make(chan Change, 8)

	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.subMu.Unlock()

	cancel := func() {
		s.subMu.Lock()
		if _, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(ch)
		}
		s.subMu.Unlock()
	}
	return ch, cancel
}

// afterMutation bumps the revision, persists the whole state and notifies
// subscribers. Runs outside the state lock.
func (s *Store) afterMutation() {
	s.mu.Lock()
	s.revision++
	rev := s.revision
	state := persistedState{Items: s.items, Tags: s.tags}
	raw, err := json.Marshal(state)
	s.mu.Unlock()

	if err == nil && s.persister != nil {
		if perr := s.persister.Put(blob.KeyCalendar, raw); perr != nil {
			s.metrics.RecordPersistFailure("calendar")
			s.logger.Error().Err(perr).Msg("calendar persist failed, in-memory state remains authoritative")
		}
	}

	s.subMu.Lock()
	for _, ch := range s.subs {
		select {
		case ch <- Change{Revision: rev}:
		default:
		}
	}
	s.subMu.Unlock()
}

func (s *Store) indexOfItem(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) indexOfTag(id string) int {
	for i := range s.tags {
		if s.tags[i].ID == id {
			return i
		}
	}
	return -1
}

// normalizeItem validates the item and enforces the event/task field
// partition, recomputing EndTime for events.
func normalizeItem(item *Item, durations *dateutil.DurationTable) error {
	item.Title = strings.TrimSpace(item.Title)
	if item.Title == "" {
		return ErrEmptyTitle
	}
	if !item.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, item.Type)
	}

	switch item.Type {
	case TypeTask:
		item.Time = "00:00"
		item.Location = ""
		item.DurationLabel = ""
		item.EndTime = ""
		if item.Done != nil {
			done := *item.Done
			item.Done = &done
		}
	case TypeEvent:
		if item.Time == "" {
			item.Time = "00:00"
		}
		item.Done = nil
		if item.DurationLabel != "" {
			item.EndTime = durations.EndTime(item.Time, item.DurationLabel)
		} else {
			item.EndTime = ""
		}
	}
	return nil
}

func applyItemPatch(item *Item, patch ItemPatch) {
	if patch.Date != nil {
		item.Date = *patch.Date
	}
	if patch.Time != nil {
		item.Time = *patch.Time
	}
	if patch.Type != nil {
		item.Type = *patch.Type
	}
	if patch.Title != nil {
		item.Title = *patch.Title
	}
	if patch.Description != nil {
		item.Description = *patch.Description
	}
	if patch.Location != nil {
		item.Location = *patch.Location
	}
	if patch.DurationLabel != nil {
		item.DurationLabel = *patch.DurationLabel
	}
	if patch.Pinned != nil {
		item.Pinned = *patch.Pinned
	}
	if patch.TagID != nil {
		item.TagID = *patch.TagID
	}
	if patch.Done != nil {
		done := *patch.Done
		item.Done = &done
	}
}
