package store

import (
	"sync"

	"go.ngs.io/fieldmap/internal/domain"
)

// CachedReader keeps every variable read through it in memory. Raw fields
// are immutable, so cached fields are shared between callers.
type CachedReader struct {
	DatasetReader

	cache map[string]*domain.RawField // Cache loaded variables.
	mu    sync.RWMutex                // Protect cache.
}

// NewCachedReader wraps r with a variable cache.
func NewCachedReader(r DatasetReader) *CachedReader {
	return &CachedReader{
		DatasetReader: r,
		cache:         make(map[string]*domain.RawField),
	}
}

// ReadValues returns the cached field for variable, reading it on first use.
// Errors are not cached.
func (c *CachedReader) ReadValues(variable string) (*domain.RawField, error) {
	// Check cache first.
	c.mu.RLock()
	if field, ok := c.cache[variable]; ok {
		c.mu.RUnlock()
		return field, nil
	}
	c.mu.RUnlock()

	field, err := c.DatasetReader.ReadValues(variable)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.cache[variable] = field
	c.mu.Unlock()

	return field, nil
}

// Len returns the number of cached variables.
func (c *CachedReader) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}
