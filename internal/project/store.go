// Package project owns the projects collection. Unlike the calendar store it
// enforces id hygiene at every mutation boundary: ids must be non-empty,
// unique, and not a JS-serialization sentinel ("undefined"/"null") — legacy
// persisted blobs contain all three corruptions.
package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/infinity-apps/workspace/internal/blob"
	"github.com/infinity-apps/workspace/internal/metrics"
)

// Persister is the durable side of the write-through contract.
type Persister interface {
	Get(key string) ([]byte, error)
	Put(key string, value []byte) error
}

// sentinelIDs are string renderings of absent ids that older persisted
// state may carry. They are never usable project ids.
var sentinelIDs = map[string]bool{
	"undefined": true,
	"null":      true,
}

// Store owns the projects collection, newest first.
type Store struct {
	mu       sync.RWMutex
	projects []Project
	revision uint64

	persister Persister
	metrics   *metrics.Metrics
	logger    zerolog.Logger
}

// NewStore creates an empty project store. persister and m may be nil.
func NewStore(persister Persister, m *metrics.Metrics, logger zerolog.Logger) *Store {
	return &Store{
		persister: persister,
		metrics:   m,
		logger:    logger.With().Str("component", "project.store").Logger(),
	}
}

// Load rehydrates from the persisted blob, normalizing ids. If normalization
// changed anything the repaired collection is re-persisted immediately.
func (s *Store) Load() {
	if s.persister == nil {
		return
	}
	raw, err := s.persister.Get(blob.KeyProjects)
	if err != nil {
		if !errors.Is(err, blob.ErrNotFound) {
			s.logger.Warn().Err(err).Msg("projects blob unreadable, starting empty")
		}
		return
	}
	var state persistedState
	if err := json.Unmarshal(raw, &state); err != nil {
		s.logger.Warn().Err(err).Msg("projects blob malformed, starting empty")
		return
	}

	projects, changed := Normalize(state.Projects)
	s.mu.Lock()
	s.projects = projects
	s.mu.Unlock()

	if changed {
		s.logger.Info().Msg("project ids repaired during load, re-persisting")
		s.persist()
	}
	s.logger.Info().Int("projects", len(projects)).Msg("project state loaded")
}

// SetProjects wholesale-replaces the collection, normalizing ids.
func (s *Store) SetProjects(projects []Project) {
	normalized, _ := Normalize(append([]Project(nil), projects...))
	s.mu.Lock()
	s.projects = normalized
	s.mu.Unlock()

	s.metrics.RecordMutation("project", "set_projects")
	s.afterMutation()
}

// AddProject prepends a project and normalizes the whole collection.
func (s *Store) AddProject(p Project) Project {
	if p.CreatedAt == 0 {
		p.CreatedAt = time.Now().UnixMilli()
	}

	s.mu.Lock()
	next := append([]Project{p}, s.projects...)
	next, _ = Normalize(next)
	s.projects = next
	added := next[0]
	s.mu.Unlock()

	s.metrics.RecordMutation("project", "add_project")
	s.afterMutation()
	return added
}

// UpdateProject merges patch into the project with the given id.
// Missing ids are a silent no-op.
func (s *Store) UpdateProject(id string, patch Patch) (Project, bool) {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return Project{}, false
	}
	p := s.projects[idx]
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Pages != nil {
		p.Pages = *patch.Pages
	}
	if patch.SummarySections != nil {
		p.SummarySections = *patch.SummarySections
	}
	if patch.Blocks != nil {
		p.Blocks = *patch.Blocks
	}
	s.projects[idx] = p
	s.mu.Unlock()

	s.metrics.RecordMutation("project", "update_project")
	s.afterMutation()
	return p, true
}

// DeleteProject removes the project with the given id. Missing ids are a
// no-op.
func (s *Store) DeleteProject(id string) bool {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	s.projects = append(s.projects[:idx], s.projects[idx+1:]...)
	s.mu.Unlock()

	s.metrics.RecordMutation("project", "delete_project")
	s.afterMutation()
	return true
}

// Projects returns a copy of the current collection.
func (s *Store) Projects() []Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Project(nil), s.projects...)
}

// Get returns the project with the given id.
func (s *Store) Get(id string) (Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if idx := s.indexOf(id); idx >= 0 {
		return s.projects[idx], true
	}
	return Project{}, false
}

func (s *Store) indexOf(id string) int {
	for i := range s.projects {
		if s.projects[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) afterMutation() {
	s.mu.Lock()
	s.revision++
	s.mu.Unlock()
	s.persist()
}

func (s *Store) persist() {
	if s.persister == nil {
		return
	}
	s.mu.RLock()
	raw, err := json.Marshal(persistedState{Projects: s.projects})
	s.mu.RUnlock()
	if err != nil {
		return
	}
	if perr := s.persister.Put(blob.KeyProjects, raw); perr != nil {
		s.metrics.RecordPersistFailure("project")
		s.logger.Error().Err(perr).Msg("project persist failed, in-memory state remains authoritative")
	}
}

// Normalize validates and deduplicates project ids in insertion order.
// Invalid ids (empty after trimming, or a sentinel string) and ids already
// seen in the pass get a freshly generated fallback id, re-checked against
// ids assigned earlier in the same pass. Reports whether anything changed
// so the caller can decide to re-persist. Idempotent on a clean collection.
func Normalize(projects []Project) ([]Project, bool) {
	changed := false
	seen := make(map[string]bool, len(projects))

	for i := range projects {
		id := strings.TrimSpace(projects[i].ID)
		if id != projects[i].ID {
			changed = true
		}
		if !validID(id) || seen[id] {
			id = fallbackID(i, seen)
			changed = true
		}
		projects[i].ID = id
		seen[id] = true
	}
	return projects, changed
}

// UsableID is the consumer-side defensive check for routing/display:
// an id is unusable if empty, a sentinel, or not unique within the list.
// Consumers apply this even to normalized collections, because a read may
// precede the first normalization pass.
func UsableID(id string, projects []Project) bool {
	if !validID(strings.TrimSpace(id)) {
		return false
	}
	count := 0
	for i := range projects {
		if projects[i].ID == id {
			count++
		}
	}
	return count == 1
}

func validID(id string) bool {
	return id != "" && !sentinelIDs[id]
}

// fallbackID mints a replacement id: timestamp, position, random suffix.
func fallbackID(index int, seen map[string]bool) string {
	for {
		id := fmt.Sprintf("proj-%d-%d-%s", time.Now().UnixMilli(), index, uuid.NewString()[:8])
		if !seen[id] {
			return id
		}
	}
}
