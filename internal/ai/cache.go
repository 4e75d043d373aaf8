package ai

import (
	"sync"
	"time"
)

type cacheEntry struct {
	question *GeneratedQuestion
	storedAt time.Time
}

// QuestionCache is an in-memory cache of generated questions with lazy TTL
// eviction: expired entries are dropped when read, not by a background
// sweeper.
type QuestionCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cacheEntry
	now     func() time.Time
}

// NewQuestionCache creates a cache whose entries expire after ttl.
func NewQuestionCache(ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// Get returns the cached question for the key if it hasn't expired.
func (c *QuestionCache) Get(key string) (*GeneratedQuestion, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.storedAt) >= c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return entry.question, true
}

// Set stores a question under the key.
func (c *QuestionCache) Set(key string, question *GeneratedQuestion) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{question: question, storedAt: c.now()}
}

// Len returns the number of entries, expired ones included.
func (c *QuestionCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear drops every entry.
func (c *QuestionCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}
