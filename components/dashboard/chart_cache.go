package dashboard

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"
)

// RenderCache memoizes rendered chart markup keyed by kind, scale and data.
type RenderCache interface {
	GetOrRender(key string, render func() (string, error)) (string, error)
}

// ChartCache is an in-memory TTL cache for rendered charts. A zero TTL
// disables caching.
type ChartCache struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]renderedChart
}

type renderedChart struct {
	markup  string
	expires time.Time
}

// NewChartCache builds a cache whose entries live for ttl.
func NewChartCache(ttl time.Duration) *ChartCache {
	return &ChartCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]renderedChart),
	}
}

// GetOrRender returns the live entry for key, or renders and stores a new
// one. Render errors are not cached.
func (c *ChartCache) GetOrRender(key string, render func() (string, error)) (string, error) {
	if c == nil || c.ttl <= 0 {
		return render()
	}
	now := c.now()
	c.mu.Lock()
	entry, ok := c.entries[key]
	c.mu.Unlock()
	if ok && now.Before(entry.expires) {
		return entry.markup, nil
	}

	markup, err := render()
	if err != nil {
		return "", err
	}
	c.mu.Lock()
	c.entries[key] = renderedChart{markup: markup, expires: now.Add(c.ttl)}
	c.mu.Unlock()
	return markup, nil
}

// Purge drops expired entries and returns how many remain.
func (c *ChartCache) Purge() int {
	if c == nil {
		return 0
	}
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, entry := range c.entries {
		if !now.Before(entry.expires) {
			delete(c.entries, key)
		}
	}
	return len(c.entries)
}

// datasetHash fingerprints a titled dataset for cache keys.
func datasetHash(title string, dataset ChartDataset) string {
	b, err := json.Marshal(struct {
		Title   string       `json:"title"`
		Dataset ChartDataset `json:"dataset"`
	}{title, dataset})
	if err != nil {
		return "invalid"
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:16])
}
