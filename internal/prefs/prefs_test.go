package prefs

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infinity-apps/workspace/internal/blob"
)

func setupTestStore(t *testing.T) (*Store, *blob.Store) {
	t.Helper()
	bs, err := blob.Open(":memory:", zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { bs.Close() })
	return NewStore(bs, zerolog.Nop()), bs
}

func TestDefaultTheme(t *testing.T) {
	s, _ := setupTestStore(t)
	assert.Equal(t, ThemeLight, s.Theme())
}

func TestSetTheme_RoundTrip(t *testing.T) {
	s, bs := setupTestStore(t)

	require.True(t, s.SetTheme(ThemeNeon))
	assert.Equal(t, ThemeNeon, s.Theme())

	fresh := NewStore(bs, zerolog.Nop())
	fresh.Load()
	assert.Equal(t, ThemeNeon, fresh.Theme())
}

func TestSetTheme_RejectsUnknown(t *testing.T) {
	s, _ := setupTestStore(t)
	assert.False(t, s.SetTheme("sepia"))
	assert.Equal(t, ThemeLight, s.Theme())
}

func TestLoad_UnknownStoredValueDefaults(t *testing.T) {
	s, bs := setupTestStore(t)
	require.NoError(t, bs.Put(blob.KeyTheme, []byte("hotdog-stand")))
	s.Load()
	assert.Equal(t, DefaultTheme, s.Theme())
}
