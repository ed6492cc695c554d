package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/andresuchdata/procurement-dashboard/internal/charts"
	"github.com/andresuchdata/procurement-dashboard/internal/config"
)

const preparedKeyPrefix = "prepared"

// PreparedCache stores the UI-independent half of a chart computation.
// Entries are keyed by the dataset version, so a reload never serves stale
// aggregates even before InvalidateAll runs.
type PreparedCache interface {
	Get(ctx context.Context, key string) (*charts.Prepared, bool, error)
	Set(ctx context.Context, key string, p *charts.Prepared) error
	InvalidateAll(ctx context.Context) error
}

// New picks the backend from cfg. A disabled cache never stores anything.
func New(cfg config.CacheConfig) (PreparedCache, error) {
	if !cfg.Enabled {
		return NewNoop(), nil
	}

	switch cfg.Backend {
	case "", "memory":
		return NewMemory(), nil
	case "redis":
		return NewRedis(cfg)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// Key identifies one prepared computation: the function that produced it,
// the dataset version it ran on and any further arguments.
func Key(function, version string, args ...string) string {
	parts := append([]string{function, version}, args...)
	hash := sha1.Sum([]byte(strings.Join(parts, "|")))
	return fmt.Sprintf("%s:%s", preparedKeyPrefix, hex.EncodeToString(hash[:]))
}

type noopCache struct{}

func NewNoop() PreparedCache {
	return &noopCache{}
}

func (n *noopCache) Get(ctx context.Context, key string) (*charts.Prepared, bool, error) {
	return nil, false, nil
}

func (n *noopCache) Set(ctx context.Context, key string, p *charts.Prepared) error {
	return nil
}

func (n *noopCache) InvalidateAll(ctx context.Context) error {
	return nil
}
