package server

import "sync"

// ResultCache caches request results per document version. Entries of an older version are
// dropped when a newer version is stored.
type ResultCache[V any] struct {
	// Per-document caches
	documentCaches map[string]*documentResults[V]

	mu sync.RWMutex
}

type documentResults[V any] struct {
	results map[string]V

	// Document version the results were computed for
	version int32
}

// NewResultCache creates an empty cache.
func NewResultCache[V any]() *ResultCache[V] {
	return &ResultCache[V]{
		documentCaches: make(map[string]*documentResults[V]),
	}
}

// Get returns the result stored under key for the given document version.
func (c *ResultCache[V]) Get(uri string, version int32, key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var zero V

	docCache, exists := c.documentCaches[uri]
	if !exists || docCache.version != version {
		return zero, false
	}

	v, ok := docCache.results[key]
	if !ok {
		return zero, false
	}

	return v, true
}

// Set stores a result for a document version.
func (c *ResultCache[V]) Set(uri string, version int32, key string, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	docCache, exists := c.documentCaches[uri]
	if !exists || docCache.version != version {
		docCache = &documentResults[V]{results: make(map[string]V), version: version}
		c.documentCaches[uri] = docCache
	}

	docCache.results[key] = v
}

// InvalidateDocument drops the results of one document.
func (c *ResultCache[V]) InvalidateDocument(uri string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.documentCaches, uri)
}

// Clear drops every cached result.
func (c *ResultCache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.documentCaches = make(map[string]*documentResults[V])
}

// Size returns the number of cached results across all documents.
func (c *ResultCache[V]) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	n := 0
	for _, docCache := range c.documentCaches {
		n += len(docCache.results)
	}

	return n
}
