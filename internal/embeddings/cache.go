package embeddings

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// cacheKey creates a cache key from model and text
func cacheKey(model, text string) string {
	h := sha256.New()
	h.Write([]byte(model + ":" + text))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// MemoryCache is an in-process embedding cache. Evidence chunks repeat
// across re-uploads of amended documents, so caching by content avoids
// re-embedding identical text.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string][]float32
}

// NewMemoryCache creates an empty in-memory cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string][]float32)}
}

func (m *MemoryCache) get(key string) ([]float32, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	emb, ok := m.entries[key]
	return emb, ok
}

func (m *MemoryCache) set(key string, embedding []float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = embedding
}

// CachedClient wraps a Client with caching
type CachedClient struct {
	client *Client
	cache  *MemoryCache
}

// NewCachedClient creates a new cached embedding client
func NewCachedClient(client *Client, cache *MemoryCache) *CachedClient {
	if cache == nil {
		cache = NewMemoryCache()
	}
	return &CachedClient{client: client, cache: cache}
}

// Dimension returns the embedding dimension
func (c *CachedClient) Dimension() int {
	return c.client.Dimension()
}

// EmbedTexts generates embeddings with caching, preserving order
func (c *CachedClient) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	keys := make([]string, len(texts))
	results := make([][]float32, len(texts))

	var uncachedTexts []string
	var uncachedIndices []int
	for i, text := range texts {
		keys[i] = cacheKey(c.client.model, text)
		if emb, ok := c.cache.get(keys[i]); ok {
			results[i] = emb
		} else {
			uncachedTexts = append(uncachedTexts, text)
			uncachedIndices = append(uncachedIndices, i)
		}
	}

	if len(uncachedTexts) > 0 {
		embeddings, err := c.client.EmbedTexts(ctx, uncachedTexts)
		if err != nil {
			return nil, err
		}
		for i, idx := range uncachedIndices {
			results[idx] = embeddings[i]
			c.cache.set(keys[idx], embeddings[i])
		}
	}

	return results, nil
}
