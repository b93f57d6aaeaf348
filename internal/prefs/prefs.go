// Package prefs stores small user preferences, currently the UI theme.
package prefs

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/infinity-apps/workspace/internal/blob"
)

// Theme is a UI color scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
	ThemeNeon  Theme = "neon"
)

// DefaultTheme is used when nothing valid is stored.
const DefaultTheme = ThemeLight

// Valid reports whether t is a known theme.
func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark || t == ThemeNeon
}

// Persister is the durable side of the write-through contract.
type Persister interface {
	Get(key string) ([]byte, error)
	Put(key string, value []byte) error
}

// Store holds the theme preference.
type Store struct {
	mu    sync.RWMutex
	theme Theme

	persister Persister
	logger    zerolog.Logger
}

// NewStore creates a store with the default theme. persister may be nil.
func NewStore(persister Persister, logger zerolog.Logger) *Store {
	return &Store{
		theme:     DefaultTheme,
		persister: persister,
		logger:    logger.With().Str("component", "prefs").Logger(),
	}
}

// Load rehydrates the theme. Unknown stored values degrade to the default.
func (s *Store) Load() {
	if s.persister == nil {
		return
	}
	raw, err := s.persister.Get(blob.KeyTheme)
	if err != nil {
		if !errors.Is(err, blob.ErrNotFound) {
			s.logger.Warn().Err(err).Msg("theme unreadable, using default")
		}
		return
	}
	theme := Theme(raw)
	if !theme.Valid() {
		s.logger.Warn().Str("value", string(raw)).Msg("unknown stored theme, using default")
		return
	}
	s.mu.Lock()
	s.theme = theme
	s.mu.Unlock()
}

// Theme returns the current theme.
func (s *Store) Theme() Theme {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.theme
}

// SetTheme stores a theme. Unknown themes are rejected.
func (s *Store) SetTheme(theme Theme) bool {
	if !theme.Valid() {
		return false
	}
	s.mu.Lock()
	s.theme = theme
	s.mu.Unlock()

	if s.persister != nil {
		if err := s.persister.Put(blob.KeyTheme, []byte(theme)); err != nil {
			s.logger.Error().Err(err).Msg("theme persist failed")
		}
	}
	return true
}
