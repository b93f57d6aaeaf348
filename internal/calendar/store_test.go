package calendar

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
	return NewStore(bs, nil, nil, zerolog.Nop()), bs
}

func TestAddItem_Event(t *testing.T) {
	s, _ := setupTestStore(t)

	item, err := s.AddItem(Item{
		Date:          "2025-06-01",
		Time:          "09:00",
		Type:          TypeEvent,
		Title:         "Standup",
		DurationLabel: "1h30",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, item.ID)
	assert.Equal(t, "10:30", item.EndTime)

	snap := s.Snapshot()
	require.Len(t, snap.Items, 1)
	assert.Equal(t, item, snap.Items[0])
}

func TestAddItem_TaskPartition(t *testing.T) {
	s, _ := setupTestStore(t)

	done := true
	item, err := s.AddItem(Item{
		Date:          "2025-06-01",
		Time:          "14:30",
		Type:          TypeTask,
		Title:         "Buy milk",
		Location:      "Store",
		DurationLabel: "2h",
		Done:          &done,
	})
	require.NoError(t, err)

	// Task fields: time is a placeholder, event-only fields are cleared.
	assert.Equal(t, "00:00", item.Time)
	assert.Empty(t, item.Location)
	assert.Empty(t, item.DurationLabel)
	assert.Empty(t, item.EndTime)
	require.NotNil(t, item.Done)
	assert.True(t, *item.Done)
}

func TestAddItem_EmptyTitle(t *testing.T) {
	s, _ := setupTestStore(t)

	_, err := s.AddItem(Item{Date: "2025-06-01", Type: TypeEvent})
	assert.ErrorIs(t, err, ErrEmptyTitle)
	assert.Empty(t, s.Snapshot().Items)
}

func TestAddItem_InvalidType(t *testing.T) {
	s, _ := setupTestStore(t)

	_, err := s.AddItem(Item{Date: "2025-06-01", Title: "x", Type: "meeting"})
	assert.ErrorIs(t, err, ErrInvalidType)
}

func TestUpdateItem_PartialMerge(t *testing.T) {
	s, _ := setupTestStore(t)

	item, err := s.AddItem(Item{
		Date:        "2025-06-01",
		Time:        "09:00",
		Type:        TypeEvent,
		Title:       "Standup",
		Description: "daily",
	})
	require.NoError(t, err)

	title := "Weekly sync"
	updated, ok := s.UpdateItem(item.ID, ItemPatch{Title: &title})
	require.True(t, ok)
	assert.Equal(t, "Weekly sync", updated.Title)
	// Unspecified fields survive the merge.
	assert.Equal(t, "daily", updated.Description)
	assert.Equal(t, "09:00", updated.Time)
}

func TestUpdateItem_RecomputesEndTime(t *testing.T) {
	s, _ := setupTestStore(t)

	item, err := s.AddItem(Item{
		Date: "2025-06-01", Time: "09:00", Type: TypeEvent,
		Title: "Standup", DurationLabel: "1h",
	})
	require.NoError(t, err)
	assert.Equal(t, "10:00", item.EndTime)

	label := "2h"
	updated, ok := s.UpdateItem(item.ID, ItemPatch{DurationLabel: &label})
	require.True(t, ok)
	assert.Equal(t, "11:00", updated.EndTime)
}

func TestUpdateItem_MissingIDNoOp(t *testing.T) {
	s, _ := setupTestStore(t)

	item, err := s.AddItem(Item{Date: "2025-06-01", Time: "09:00", Type: TypeEvent, Title: "A"})
	require.NoError(t, err)
	before := s.Snapshot()

	title := "B"
	_, ok := s.UpdateItem("nope", ItemPatch{Title: &title})
	assert.False(t, ok)
	assert.Equal(t, before.Items, s.Snapshot().Items)

	_ = item
}

func TestDeleteItem_MissingIDNoOp(t *testing.T) {
	s, _ := setupTestStore(t)

	_, err := s.AddItem(Item{Date: "2025-06-01", Time: "09:00", Type: TypeEvent, Title: "A"})
	require.NoError(t, err)

	assert.False(t, s.DeleteItem("nope"))
	assert.Len(t, s.Snapshot().Items, 1)
}

func TestDeleteItem(t *testing.T) {
	s, _ := setupTestStore(t)

	a, _ := s.AddItem(Item{Date: "2025-06-01", Time: "09:00", Type: TypeEvent, Title: "A"})
	b, _ := s.AddItem(Item{Date: "2025-06-02", Time: "09:00", Type: TypeEvent, Title: "B"})

	assert.True(t, s.DeleteItem(a.ID))
	snap := s.Snapshot()
	require.Len(t, snap.Items, 1)
	assert.Equal(t, b.ID, snap.Items[0].ID)
}

func TestDeleteTag_DanglingReferenceTolerated(t *testing.T) {
	s, _ := setupTestStore(t)

	tag := s.AddTag(Tag{Name: "Work", Color: "#ff0000"})
	item, err := s.AddItem(Item{
		Date: "2025-06-01", Time: "09:00", Type: TypeEvent,
		Title: "Standup", TagID: tag.ID,
	})
	require.NoError(t, err)

	require.True(t, s.DeleteTag(tag.ID))

	snap := s.Snapshot()
	require.Len(t, snap.Items, 1)
	// The item keeps its tagId; lookup resolves to "no tag".
	assert.Equal(t, tag.ID, snap.Items[0].TagID)
	name, ok := TagName(snap, item)
	assert.False(t, ok)
	assert.Empty(t, name)
}

func TestUpdateTag(t *testing.T) {
	s, _ := setupTestStore(t)

	tag := s.AddTag(Tag{Name: "Work", Color: "#ff0000"})
	color := "#00ff00"
	updated, ok := s.UpdateTag(tag.ID, TagPatch{Color: &color})
	require.True(t, ok)
	assert.Equal(t, "Work", updated.Name)
	assert.Equal(t, "#00ff00", updated.Color)

	_, ok = s.UpdateTag("nope", TagPatch{Color: &color})
	assert.False(t, ok)
}

func TestPersistenceRoundTrip(t *testing.T) {
	s, bs := setupTestStore(t)

	tag := s.AddTag(Tag{Name: "Work", Color: "#f00"})
	_, err := s.AddItem(Item{Date: "2025-06-01", Time: "09:00", Type: TypeEvent, Title: "A", TagID: tag.ID})
	require.NoError(t, err)
	_, err = s.AddItem(Item{Date: "2025-06-02", Type: TypeTask, Title: "B"})
	require.NoError(t, err)

	// A fresh store over the same blob store sees identical state, in order.
	reloaded := NewStore(bs, nil, nil, zerolog.Nop())
	reloaded.Load()

	want := s.Snapshot()
	got := reloaded.Snapshot()
	assert.Equal(t, want.Items, got.Items)
	assert.Equal(t, want.Tags, got.Tags)
}

func TestLoad_MalformedBlobDefaultsEmpty(t *testing.T) {
	s, bs := setupTestStore(t)

	require.NoError(t, bs.Put(blob.KeyCalendar, []byte(`{not json`)))
	s.Load()
	assert.Empty(t, s.Snapshot().Items)
	assert.Empty(t, s.Snapshot().Tags)
}

func TestLoad_MissingBlobDefaultsEmpty(t *testing.T) {
	s, _ := setupTestStore(t)
	s.Load()
	assert.Empty(t, s.Snapshot().Items)
}

func TestSetItems_Rehydration(t *testing.T) {
	s, _ := setupTestStore(t)

	items := []Item{
		{ID: "1", Date: "2025-06-01", Time: "09:00", Type: TypeEvent, Title: "A"},
		{ID: "2", Date: "2025-06-02", Time: "00:00", Type: TypeTask, Title: "B"},
	}
	s.SetItems(items)
	assert.Equal(t, items, s.Snapshot().Items)

	// Mutating the caller's slice does not affect the store.
	items[0].Title = "mutated"
	assert.Equal(t, "A", s.Snapshot().Items[0].Title)
}

func TestSubscribe_NotifiesOnMutation(t *testing.T) {
	s, _ := setupTestStore(t)

	ch, cancel := s.Subscribe()
	defer cancel()

	_, err := s.AddItem(Item{Date: "2025-06-01", Time: "09:00", Type: TypeEvent, Title: "A"})
	require.NoError(t, err)

	change := <-ch
	assert.Equal(t, uint64(1), change.Revision)

	cancel()
	_, open := <-ch
	assert.False(t, open)
}

func TestSnapshot_DeepCopiesDone(t *testing.T) {
	s, _ := setupTestStore(t)

	done := false
	item, err := s.AddItem(Item{Date: "2025-06-01", Type: TypeTask, Title: "A", Done: &done})
	require.NoError(t, err)

	snap := s.Snapshot()
	*snap.Items[0].Done = true

	again := s.Snapshot()
	require.NotNil(t, again.Items[0].Done)
	assert.False(t, *again.Items[0].Done, "snapshot must not alias store state")
	_ = item
}
