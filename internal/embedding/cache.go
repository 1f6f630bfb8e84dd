package embedding

import (
	"container/list"
	"context"
	"sync"
)

// lruCache is an LRU cache for embeddings keyed by text.
type lruCache struct {
	capacity int
	cache    map[string]*list.Element
	lru      *list.List
	mu       sync.Mutex
}

type cacheEntry struct {
	key   string
	value []float32
}

func newLRUCache(capacity int) *lruCache {
	return &lruCache{
		capacity: capacity,
		cache:    make(map[string]*list.Element),
		lru:      list.New(),
	}
}

func (c *lruCache) get(key string) ([]float32, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.cache[key]; ok {
		c.lru.MoveToFront(elem)
		return elem.Value.(*cacheEntry).value, true
	}
	return nil, false
}

func (c *lruCache) set(key string, value []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.cache[key]; ok {
		c.lru.MoveToFront(elem)
		elem.Value.(*cacheEntry).value = value
		return
	}
	if c.lru.Len() >= c.capacity {
		oldest := c.lru.Back()
		if oldest != nil {
			c.lru.Remove(oldest)
			delete(c.cache, oldest.Value.(*cacheEntry).key)
		}
	}
	c.cache[key] = c.lru.PushFront(&cacheEntry{key: key, value: value})
}

// CachingEmbedder wraps an Embedder with an LRU cache keyed by text.
// Repeated questions and re-embedded chunks skip the capability call.
type CachingEmbedder struct {
	inner Embedder
	cache *lruCache
}

// NewCachingEmbedder wraps inner with a cache of the given capacity.
func NewCachingEmbedder(inner Embedder, capacity int) *CachingEmbedder {
	if capacity <= 0 {
		capacity = 10000
	}
	return &CachingEmbedder{inner: inner, cache: newLRUCache(capacity)}
}

// Embed returns the cached vector when present, otherwise delegates.
func (e *CachingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if v, ok := e.cache.get(text); ok {
		return v, nil
	}
	v, err := e.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	e.cache.set(text, v)
	return v, nil
}

// EmbedBatch embeds only the texts missing from the cache, in one inner call.
func (e *CachingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, len(texts))
	var missing []string
	var missingIdx []int
	for i, text := range texts {
		if v, ok := e.cache.get(text); ok {
			result[i] = v
			continue
		}
		missing = append(missing, text)
		missingIdx = append(missingIdx, i)
	}
	if len(missing) == 0 {
		return result, nil
	}
	vecs, err := e.inner.EmbedBatch(ctx, missing)
	if err != nil {
		return nil, err
	}
	for j, v := range vecs {
		e.cache.set(missing[j], v)
		result[missingIdx[j]] = v
	}
	return result, nil
}

// Dimensions returns the wrapped embedder's dimension.
func (e *CachingEmbedder) Dimensions() int {
	return e.inner.Dimensions()
}

// Close closes the wrapped embedder.
func (e *CachingEmbedder) Close() error {
	return e.inner.Close()
}
