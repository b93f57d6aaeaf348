package dashboard

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
	return NewStore(bs, nil, zerolog.Nop()), bs
}

func TestSetSlot_UpsertAndOrder(t *testing.T) {
	s, _ := setupTestStore(t)

	s.SetSlot(Slot{ID: "a", X: 10, Y: 20, Scale: 1})
	s.SetSlot(Slot{ID: "b", X: 30, Y: 40, Scale: 1})
	s.SetSlot(Slot{ID: "a", X: 99, Y: 20, Scale: 1})

	slots := s.Slots()
	require.Len(t, slots, 2)
	assert.Equal(t, "a", slots[0].ID)
	assert.Equal(t, float64(99), slots[0].X)
	assert.Equal(t, "b", slots[1].ID)
}

func TestSetSlot_ClampsScale(t *testing.T) {
	s, _ := setupTestStore(t)

	assert.Equal(t, MaxScale, s.SetSlot(Slot{ID: "a", Scale: 5}).Scale)
	assert.Equal(t, MinScale, s.SetSlot(Slot{ID: "b", Scale: 0.1}).Scale)
	assert.Equal(t, 1.0, s.SetSlot(Slot{ID: "c"}).Scale, "zero scale defaults to 1")
}

func TestRemoveSlot(t *testing.T) {
	s, _ := setupTestStore(t)

	s.SetSlot(Slot{ID: "a", Scale: 1})
	assert.False(t, s.RemoveSlot("missing"))
	assert.True(t, s.RemoveSlot("a"))
	assert.Empty(t, s.Slots())
}

func TestLoad_RoundTripAndClamp(t *testing.T) {
	s, bs := setupTestStore(t)

	s.SetSlot(Slot{ID: "a", X: 1, Y: 2, Scale: 1.5})

	fresh := NewStore(bs, nil, zerolog.Nop())
	fresh.Load()
	assert.Equal(t, s.Slots(), fresh.Slots())

	// Hand-edited blob with a wild scale gets clamped on load.
	require.NoError(t, bs.Put(blob.KeyDashboardLayout, []byte(`[{"id":"x","x":0,"y":0,"scale":42}]`)))
	fresh2 := NewStore(bs, nil, zerolog.Nop())
	fresh2.Load()
	require.Len(t, fresh2.Slots(), 1)
	assert.Equal(t, MaxScale, fresh2.Slots()[0].Scale)
}

func TestLoad_MalformedDefaultsEmpty(t *testing.T) {
	s, bs := setupTestStore(t)
	require.NoError(t, bs.Put(blob.KeyDashboardLayout, []byte(`{{{`)))
	s.Load()
	assert.Empty(t, s.Slots())
}
