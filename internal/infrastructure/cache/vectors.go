package cache

import (
	"sync"
	"time"
)

// VectorStore is an in-memory embedding cache with expiration. Keyed by a
// content hash, it lets repeated extractions of similar transcripts skip the
// embedding call.
type VectorStore struct {
	mu    sync.RWMutex
	items map[string]*vectorItem
}

type vectorItem struct {
	vector     []float32
	expireTime time.Time
}

// NewVectorStore creates a new in-memory vector cache
func NewVectorStore() *VectorStore {
	store := &VectorStore{
		items: make(map[string]*vectorItem),
	}

	// Start cleanup goroutine to remove expired items
	go store.cleanupExpired()

	return store
}

// Set stores a vector with expiration
func (vs *VectorStore) Set(key string, vector []float32, expiration time.Duration) {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	vs.items[key] = &vectorItem{
		vector:     vector,
		expireTime: time.Now().Add(expiration),
	}
}

// Get retrieves a vector by key (returns nil if not found or expired)
func (vs *VectorStore) Get(key string) ([]float32, bool) {
	vs.mu.RLock()
	defer vs.mu.RUnlock()

	item, exists := vs.items[key]
	if !exists {
		return nil, false
	}

	// Check if expired
	if time.Now().After(item.expireTime) {
		return nil, false
	}

	return item.vector, true
}

// Delete removes a key
func (vs *VectorStore) Delete(key string) {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	delete(vs.items, key)
}

// cleanupExpired periodically removes expired items
func (vs *VectorStore) cleanupExpired() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		vs.mu.Lock()
		now := time.Now()
		for key, item := range vs.items {
			if now.After(item.expireTime) {
				delete(vs.items, key)
			}
		}
		vs.mu.Unlock()
	}
}
