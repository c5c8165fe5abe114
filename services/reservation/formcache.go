package reservation

import (
	"sync"

	"campflow/models"
)

// FormStateCache keeps the last raw form snapshot per cart item so a user
// can abandon an item mid-walk and resume it later without losing input.
// Writes are last-write-wins per item id. Entries live as long as the queue
// session: they are purged when the matching item is removed and dropped
// wholesale when the cart is cleared.
type FormStateCache struct {
	mu        sync.RWMutex
	snapshots map[string]models.FormSnapshot
}

// NewFormStateCache returns an empty cache.
func NewFormStateCache() *FormStateCache {
	return &FormStateCache{snapshots: make(map[string]models.FormSnapshot)}
}

// Save overwrites any prior snapshot for the item with the full raw capture,
// including values from disabled fields.
func (c *FormStateCache) Save(itemID string, snapshot models.FormSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshots[itemID] = snapshot
}

// Load returns the last saved snapshot. The second return distinguishes "no
// snapshot" (first visit) from a snapshot holding default or cleared values.
func (c *FormStateCache) Load(itemID string) (models.FormSnapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	snapshot, ok := c.snapshots[itemID]
	return snapshot, ok
}

// Purge drops the snapshot for a removed cart item.
func (c *FormStateCache) Purge(itemID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.snapshots, itemID)
}

// Clear drops every snapshot; called when the cart is cleared.
func (c *FormStateCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshots = make(map[string]models.FormSnapshot)
}

// Len returns the number of cached snapshots.
func (c *FormStateCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.snapshots)
}
