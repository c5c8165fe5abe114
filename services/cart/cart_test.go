package cart

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"campflow/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// failingStore simulates a durable slot whose reads or writes fail.
type failingStore struct {
	loadErr error
	saveErr error
	saved   [][]byte
}

func (s *failingStore) Load(context.Context, string) ([]byte, error) {
	return nil, s.loadErr
}

func (s *failingStore) Save(_ context.Context, _ string, data []byte) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = append(s.saved, data)
	return nil
}

func (s *failingStore) Delete(context.Context, string) error { return nil }

func sampleItem() models.CartItem {
	return models.CartItem{
		GeoZoneName:  "Garibaldi Park",
		ActivityID:   "activity-101",
		ActivityName: "Backcountry Camping",
		CollectionID: "col-9",
		ActivityType: "backcountry",
		StartDate:    "2025-06-09",
		EndDate:      "2025-06-14",
		Occupants:    models.Occupants{TotalAdult: 2, TotalYouth: 1},
		TotalPrice:   60,
	}
}

func TestAddAssignsIDAndPersists(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	q := NewQueue(ctx, store, "cart:test", zap.NewNop())

	stored := q.Add(ctx, sampleItem())
	require.NotEmpty(t, stored.ID)
	assert.Equal(t, 1, q.Len())

	// The durable slot holds the full serialized collection.
	data, err := store.Load(ctx, "cart:test")
	require.NoError(t, err)
	var items []models.CartItem
	require.NoError(t, json.Unmarshal(data, &items))
	require.Len(t, items, 1)
	assert.Equal(t, stored.ID, items[0].ID)
}

func TestRehydrateOnConstruction(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	q := NewQueue(ctx, store, "cart:test", zap.NewNop())
	a := q.Add(ctx, sampleItem())
	b := q.Add(ctx, sampleItem())

	reloaded := NewQueue(ctx, store, "cart:test", zap.NewNop())
	require.Equal(t, 2, reloaded.Len())
	items := reloaded.Items()
	assert.Equal(t, a.ID, items[0].ID)
	assert.Equal(t, b.ID, items[1].ID)
}

func TestCorruptSlotStartsEmpty(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Save(ctx, "cart:test", []byte("{not json")))

	q := NewQueue(ctx, store, "cart:test", zap.NewNop())
	assert.Equal(t, 0, q.Len())
}

func TestFailedReadTreatedAsEmptyCart(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{loadErr: errors.New("connection refused")}

	q := NewQueue(ctx, store, "cart:test", zap.NewNop())
	assert.Equal(t, 0, q.Len())
}

func TestFailedWriteKeepsInMemoryState(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{saveErr: errors.New("connection refused")}
	q := NewQueue(ctx, store, "cart:test", zap.NewNop())

	stored := q.Add(ctx, sampleItem())
	assert.Equal(t, 1, q.Len(), "in-memory state stays authoritative")
	got, ok := q.Item(stored.ID)
	require.True(t, ok)
	assert.Equal(t, stored.ID, got.ID)
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	q := NewQueue(ctx, NewMemoryStore(), "cart:test", zap.NewNop())

	a := q.Add(ctx, sampleItem())
	b := q.Add(ctx, sampleItem())

	assert.True(t, q.Remove(ctx, a.ID))
	assert.False(t, q.Remove(ctx, a.ID))
	require.Equal(t, 1, q.Len())
	item, ok := q.ItemAt(0)
	require.True(t, ok)
	assert.Equal(t, b.ID, item.ID)
}

func TestUpdateShallowMerge(t *testing.T) {
	ctx := context.Background()
	q := NewQueue(ctx, NewMemoryStore(), "cart:test", zap.NewNop())
	stored := q.Add(ctx, sampleItem())

	newName := "Joffre Lakes"
	newOccupants := models.Occupants{TotalAdult: 4}
	updated, err := q.Update(ctx, stored.ID, models.CartItemPatch{
		GeoZoneName: &newName,
		Occupants:   &newOccupants,
	})
	require.NoError(t, err)

	assert.Equal(t, "Joffre Lakes", updated.GeoZoneName)
	assert.Equal(t, newOccupants, updated.Occupants, "nested structures replace whole")
	assert.Equal(t, stored.StartDate, updated.StartDate, "untouched fields survive")

	_, err = q.Update(ctx, "missing", models.CartItemPatch{GeoZoneName: &newName})
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestDerivedFlagNeverStoredIndependently(t *testing.T) {
	ctx := context.Background()
	q := NewQueue(ctx, NewMemoryStore(), "cart:test", zap.NewNop())
	stored := q.Add(ctx, sampleItem())

	flag := true
	for step := 0; step < 4; step++ {
		require.NoError(t, q.SetStepCompleted(ctx, stored.ID, step, true))
		item, ok := q.Item(stored.ID)
		require.True(t, ok)
		want := item.Step1Completed && item.Step2Completed &&
			item.Step3Completed && item.Step4Completed
		assert.Equal(t, want, item.AreAllStepsCompleted, "after step %d", step)
	}

	item, _ := q.Item(stored.ID)
	assert.True(t, item.AreAllStepsCompleted)

	// Updates through the patch path recompute the derived flag too.
	flag = false
	updated, err := q.Update(ctx, stored.ID, models.CartItemPatch{Step3Completed: &flag})
	require.NoError(t, err)
	assert.False(t, updated.AreAllStepsCompleted)
}

func TestClearEmptiesQueueAndSlot(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	q := NewQueue(ctx, store, "cart:test", zap.NewNop())
	q.Add(ctx, sampleItem())

	q.Clear(ctx)
	assert.Equal(t, 0, q.Len())

	data, err := store.Load(ctx, "cart:test")
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestOccupantsTotal(t *testing.T) {
	cases := []struct {
		occ  models.Occupants
		want int
	}{
		{models.Occupants{}, 0},
		{models.Occupants{TotalAdult: 2}, 2},
		{models.Occupants{TotalAdult: 1, TotalSenior: 2, TotalYouth: 3, TotalChild: 4}, 10},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.occ.Total())
	}
}
