// Package dashboard persists the pinned-widget layout: one position slot per
// widget id, kept in display order.
package dashboard

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/infinity-apps/workspace/internal/blob"
	"github.com/infinity-apps/workspace/internal/metrics"
)

// Scale bounds for a widget. Drag handlers clamp on the client too; the
// store clamps again so a hand-edited blob cannot produce absurd layouts.
const (
	MinScale = 0.5
	MaxScale = 2.0
)

// Slot is the stored position of one pinned widget.
type Slot struct {
	ID    string  `json:"id"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Scale float64 `json:"scale"`
}

// Persister is the durable side of the write-through contract.
type Persister interface {
	Get(key string) ([]byte, error)
	Put(key string, value []byte) error
}

// Store holds the widget layout slots.
type Store struct {
	mu    sync.RWMutex
	slots []Slot

	persister Persister
	metrics   *metrics.Metrics
	logger    zerolog.Logger
}

// NewStore creates an empty layout store. persister and m may be nil.
func NewStore(persister Persister, m *metrics.Metrics, logger zerolog.Logger) *Store {
	return &Store{
		persister: persister,
		metrics:   m,
		logger:    logger.With().Str("component", "dashboard.layout").Logger(),
	}
}

// Load rehydrates slots from the persisted blob; malformed blobs default to
// an empty layout.
func (s *Store) Load() {
	if s.persister == nil {
		return
	}
	raw, err := s.persister.Get(blob.KeyDashboardLayout)
	if err != nil {
		if !errors.Is(err, blob.ErrNotFound) {
			s.logger.Warn().Err(err).Msg("layout blob unreadable, starting empty")
		}
		return
	}
	var slots []Slot
	if err := json.Unmarshal(raw, &slots); err != nil {
		s.logger.Warn().Err(err).Msg("layout blob malformed, starting empty")
		return
	}
	for i := range slots {
		slots[i].Scale = clampScale(slots[i].Scale)
	}
	s.mu.Lock()
	s.slots = slots
	s.mu.Unlock()
}

// SetSlot upserts the slot for a widget id, clamping scale.
func (s *Store) SetSlot(slot Slot) Slot {
	slot.Scale = clampScale(slot.Scale)

	s.mu.Lock()
	replaced := false
	for i := range s.slots {
		if s.slots[i].ID == slot.ID {
			s.slots[i] = slot
			replaced = true
			break
		}
	}
	if !replaced {
		s.slots = append(s.slots, slot)
	}
	s.mu.Unlock()

	s.metrics.RecordMutation("dashboard", "set_slot")
	s.persist()
	return slot
}

// RemoveSlot deletes the slot for a widget id. Missing ids are a no-op.
func (s *Store) RemoveSlot(id string) bool {
	s.mu.Lock()
	idx := -1
	for i := range s.slots {
		if s.slots[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	s.slots = append(s.slots[:idx], s.slots[idx+1:]...)
	s.mu.Unlock()

	s.metrics.RecordMutation("dashboard", "remove_slot")
	s.persist()
	return true
}

// Slots returns a copy of the current layout.
func (s *Store) Slots() []Slot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Slot(nil), s.slots...)
}

func (s *Store) persist() {
	if s.persister == nil {
		return
	}
	s.mu.RLock()
	raw, err := json.Marshal(s.slots)
	s.mu.RUnlock()
	if err != nil {
		return
	}
	if perr := s.persister.Put(blob.KeyDashboardLayout, raw); perr != nil {
		s.metrics.RecordPersistFailure("dashboard")
		s.logger.Error().Err(perr).Msg("layout persist failed, in-memory state remains authoritative")
	}
}

func clampScale(scale float64) float64 {
	switch {
	case scale == 0:
		return 1.0
	case scale < MinScale:
		return MinScale
	case scale > MaxScale:
		return MaxScale
	}
	return scale
}
