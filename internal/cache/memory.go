package cache

import (
	"context"
	"sync"

	"github.com/andresuchdata/procurement-dashboard/internal/charts"
)

// memoryCache keeps prepared results for the life of the process.
type memoryCache struct {
	entries sync.Map
}

func NewMemory() PreparedCache {
	return &memoryCache{}
}

func (c *memoryCache) Get(ctx context.Context, key string) (*charts.Prepared, bool, error) {
	v, ok := c.entries.Load(key)
	if !ok {
		return nil, false, nil
	}
	return v.(*charts.Prepared), true, nil
}

func (c *memoryCache) Set(ctx context.Context, key string, p *charts.Prepared) error {
	if p == nil {
		return nil
	}
	c.entries.Store(key, p)
	return nil
}

func (c *memoryCache) InvalidateAll(ctx context.Context) error {
	c.entries.Clear()
	return nil
}
