package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"campflow/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrItemNotFound is returned when no cart item matches the given id.
var ErrItemNotFound = errors.New("cart item not found")

// Queue owns the ordered cart item collection for one checkout session. The
// full collection is written to the durable slot on every mutation and
// rehydrated from it on construction; the in-memory collection stays
// authoritative when a write fails.
type Queue struct {
	store  Store
	key    string
	items  []models.CartItem
	logger *zap.Logger
}

// NewQueue rehydrates the collection from the durable slot. A missing or
// corrupt payload starts an empty queue rather than failing.
func NewQueue(ctx context.Context, store Store, key string, logger *zap.Logger) *Queue {
	q := &Queue{store: store, key: key, logger: logger}

	data, err := store.Load(ctx, key)
	if err != nil {
		logger.Warn("failed to load cart slot, starting empty",
			zap.String("key", key), zap.Error(err))
		return q
	}
	if len(data) == 0 {
		return q
	}
	var items []models.CartItem
	if err := json.Unmarshal(data, &items); err != nil {
		logger.Warn("corrupt cart slot, starting empty",
			zap.String("key", key), zap.Error(err))
		return q
	}
	q.items = items
	return q
}

// Add assigns a fresh id, appends the item, persists, and returns the stored
// item.
func (q *Queue) Add(ctx context.Context, item models.CartItem) models.CartItem {
	item.ID = uuid.New().String()
	item.RecomputeAllStepsCompleted()
	q.items = append(q.items, item)
	q.persist(ctx)
	return item
}

// Remove deletes the item with the given id and persists the collection.
// Returns false when no item matched.
func (q *Queue) Remove(ctx context.Context, id string) bool {
	for i, item := range q.items {
		if item.ID == id {
			q.items = append(q.items[:i], q.items[i+1:]...)
			q.persist(ctx)
			return true
		}
	}
	return false
}

// Update shallow-merges the patch into the matching item. Nested structures
// named in the patch replace the stored value whole. The derived
// areAllStepsCompleted flag is recomputed and persisted atomically with the
// merge.
func (q *Queue) Update(ctx context.Context, id string, patch models.CartItemPatch) (models.CartItem, error) {
	for i := range q.items {
		if q.items[i].ID != id {
			continue
		}
		applyPatch(&q.items[i], patch)
		q.items[i].RecomputeAllStepsCompleted()
		q.persist(ctx)
		return q.items[i], nil
	}
	return models.CartItem{}, fmt.Errorf("update %s: %w", id, ErrItemNotFound)
}

// SetStepCompleted flips one of the item's four step flags, recomputing the
// derived flag in the same persisted write.
func (q *Queue) SetStepCompleted(ctx context.Context, id string, stepIndex int, completed bool) error {
	for i := range q.items {
		if q.items[i].ID != id {
			continue
		}
		q.items[i].SetStepCompleted(stepIndex, completed)
		q.persist(ctx)
		return nil
	}
	return fmt.Errorf("set step completed %s: %w", id, ErrItemNotFound)
}

// Items returns a copy of the ordered collection.
func (q *Queue) Items() []models.CartItem {
	out := make([]models.CartItem, len(q.items))
	copy(out, q.items)
	return out
}

// ItemAt returns the item at the given position.
func (q *Queue) ItemAt(index int) (models.CartItem, bool) {
	if index < 0 || index >= len(q.items) {
		return models.CartItem{}, false
	}
	return q.items[index], true
}

// Item returns the item with the given id.
func (q *Queue) Item(id string) (models.CartItem, bool) {
	for _, item := range q.items {
		if item.ID == id {
			return item, true
		}
	}
	return models.CartItem{}, false
}

// Len returns the number of items in the queue.
func (q *Queue) Len() int {
	return len(q.items)
}

// Clear empties the queue and the durable slot. Called only after every
// item's booking has been confirmed.
func (q *Queue) Clear(ctx context.Context) {
	q.items = nil
	if err := q.store.Delete(ctx, q.key); err != nil {
		q.logger.Warn("failed to clear cart slot",
			zap.String("key", q.key), zap.Error(err))
	}
}

// persist serializes the full collection into the durable slot. A failed
// write is logged and does not roll back the in-memory mutation.
func (q *Queue) persist(ctx context.Context) {
	data, err := json.Marshal(q.items)
	if err != nil {
		q.logger.Error("failed to marshal cart collection", zap.Error(err))
		return
	}
	if err := q.store.Save(ctx, q.key, data); err != nil {
		q.logger.Warn("failed to persist cart slot, in-memory state kept",
			zap.String("key", q.key), zap.Error(err))
	}
}

func applyPatch(item *models.CartItem, patch models.CartItemPatch) {
	if patch.GeoZoneName != nil {
		item.GeoZoneName = *patch.GeoZoneName
	}
	if patch.ActivityID != nil {
		item.ActivityID = *patch.ActivityID
	}
	if patch.ActivityName != nil {
		item.ActivityName = *patch.ActivityName
	}
	if patch.CollectionID != nil {
		item.CollectionID = *patch.CollectionID
	}
	if patch.ActivityType != nil {
		item.ActivityType = *patch.ActivityType
	}
	if patch.StartDate != nil {
		item.StartDate = *patch.StartDate
	}
	if patch.EndDate != nil {
		item.EndDate = *patch.EndDate
	}
	if patch.Occupants != nil {
		item.Occupants = *patch.Occupants
	}
	if patch.TotalPrice != nil {
		item.TotalPrice = *patch.TotalPrice
	}
	if patch.Step1Completed != nil {
		item.Step1Completed = *patch.Step1Completed
	}
	if patch.Step2Completed != nil {
		item.Step2Completed = *patch.Step2Completed
	}
	if patch.Step3Completed != nil {
		item.Step3Completed = *patch.Step3Completed
	}
	if patch.Step4Completed != nil {
		item.Step4Completed = *patch.Step4Completed
	}
}
