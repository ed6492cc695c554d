package filter

import (
	"sync"

	"github.com/andresuchdata/procurement-dashboard/internal/domain"
)

type memoKey struct {
	version  string
	criteria domain.FilterCriteria
}

// Memo caches filter results by (table version, criteria). Concurrent
// misses may compute the same result twice; the first stored value wins and
// both are identical.
type Memo struct {
	tables     sync.Map
	aggregates sync.Map
}

func NewMemo() *Memo {
	return &Memo{}
}

// Apply is a memoized Apply.
func (m *Memo) Apply(t *domain.Table, c domain.FilterCriteria) *domain.Table {
	c = Normalize(c)
	if t == nil || c.IsEmpty() {
		return Apply(t, c)
	}
	key := memoKey{version: t.Version, criteria: c}
	if v, ok := m.tables.Load(key); ok {
		return v.(*domain.Table)
	}
	v, _ := m.tables.LoadOrStore(key, Apply(t, c))
	return v.(*domain.Table)
}

// ApplyAggregate is a memoized ApplyAggregate. Aggregates without a version
// are filtered without caching.
func (m *Memo) ApplyAggregate(a *domain.AggregateTable, c domain.FilterCriteria) *domain.AggregateTable {
	c = Normalize(c)
	if a == nil || a.Version == "" || c.IsEmpty() {
		return ApplyAggregate(a, c)
	}
	key := memoKey{version: a.Version, criteria: c}
	if v, ok := m.aggregates.Load(key); ok {
		return v.(*domain.AggregateTable)
	}
	v, _ := m.aggregates.LoadOrStore(key, ApplyAggregate(a, c))
	return v.(*domain.AggregateTable)
}

// Reset drops every cached result.
func (m *Memo) Reset() {
	m.tables.Range(func(k, _ any) bool {
		m.tables.Delete(k)
		return true
	})
	m.aggregates.Range(func(k, _ any) bool {
		m.aggregates.Delete(k)
		return true
	})
}
