// Package assets handles brush texture loading and caching.
package assets

import (
	"fmt"
	"image"
	"path/filepath"
	"sync"

	"github.com/Faultbox/dynpaint/internal/material"
)

// Manager loads textures relative to a base directory. Every file is
// decoded once.
type Manager struct {
	dir   string
	cache *Cache
}

// NewManager creates a texture manager resolving relative paths against dir.
func NewManager(dir string) *Manager {
	return &Manager{
		dir:   dir,
		cache: NewCache(),
	}
}

// Resolve returns the absolute-or-base-relative path of a texture.
func (m *Manager) Resolve(path string) string {
	if filepath.IsAbs(path) || m.dir == "" {
		return filepath.Clean(path)
	}
	return filepath.Join(m.dir, path)
}

// Load returns the decoded texture at path.
func (m *Manager) Load(path string) (image.Image, error) {
	key := m.Resolve(path)
	if img, ok := m.cache.Get(key); ok {
		return img, nil
	}

	img, err := material.LoadImage(key)
	if err != nil {
		return nil, fmt.Errorf("loading texture %s: %w", path, err)
	}
	m.cache.Set(key, img)
	return img, nil
}

// Stats returns cache statistics.
func (m *Manager) Stats() (hits, misses int) { return m.cache.Stats() }

// Cache is an in-memory image cache safe for concurrent use.
type Cache struct {
	data map[string]image.Image
	mu   sync.Mutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string]image.Image),
	}
}

// Get retrieves an item from cache.
func (c *Cache) Get(key string) (image.Image, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	img, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return img, ok
}

// Set stores an item in cache.
func (c *Cache) Set(key string, img image.Image) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = img
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string]image.Image)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
