// Package aggregate groups order tables into chart-ready aggregates. Every
// function here is pure: inputs are never modified and equal inputs give
// equal outputs.
package aggregate

import (
	"crypto/sha1"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/andresuchdata/procurement-dashboard/internal/domain"
	"github.com/shopspring/decimal"
)

// CountMode selects how the order count of a group is computed.
type CountMode int

const (
	// CountRows counts order lines.
	CountRows CountMode = iota
	// CountDistinctDocuments counts unique purchasing documents.
	CountDistinctDocuments
)

func (c CountMode) String() string {
	if c == CountDistinctDocuments {
		return "distinct_documents"
	}
	return "rows"
}

// WithFilterDimensions appends the four filter dimensions to keys, so the
// result can still be filtered after grouping.
func WithFilterDimensions(keys ...domain.Dimension) []domain.Dimension {
	out := make([]domain.Dimension, 0, len(keys)+len(domain.FilterDimensions))
	out = append(out, keys...)
	return append(out, domain.FilterDimensions...)
}

type accumulator struct {
	orders int64
	spend  decimal.Decimal
	docs   map[string]struct{}
}

// GroupOrders collapses orders along keys, summing net value into spend
// and counting orders per count mode. Rows are ordered by key.
func GroupOrders(orders []domain.Order, keys []domain.Dimension, count CountMode) *domain.AggregateTable {
	groups := make(map[domain.GroupKey]*accumulator)
	for _, o := range orders {
		k := o.Key().Project(keys)
		acc, ok := groups[k]
		if !ok {
			acc = &accumulator{spend: decimal.Zero}
			if count == CountDistinctDocuments {
				acc.docs = make(map[string]struct{})
			}
			groups[k] = acc
		}
		acc.spend = acc.spend.Add(o.NetValue)
		if count == CountDistinctDocuments {
			acc.docs[o.PurchasingDoc] = struct{}{}
		} else {
			acc.orders++
		}
	}

	rows := make([]domain.AggregateRow, 0, len(groups))
	for k, acc := range groups {
		n := acc.orders
		if count == CountDistinctDocuments {
			n = int64(len(acc.docs))
		}
		rows = append(rows, domain.AggregateRow{Key: k, Orders: n, Spend: acc.spend})
	}
	sortRows(rows, keys)

	return &domain.AggregateTable{Keys: copyKeys(keys), Rows: rows}
}

// Rollup re-aggregates a by a coarser set of keys by summing both measures.
func Rollup(a *domain.AggregateTable, keys []domain.Dimension) *domain.AggregateTable {
	groups := make(map[domain.GroupKey]*domain.AggregateRow)
	if a != nil {
		for _, r := range a.Rows {
			k := r.Key.Project(keys)
			acc, ok := groups[k]
			if !ok {
				acc = &domain.AggregateRow{Key: k, Spend: decimal.Zero}
				groups[k] = acc
			}
			acc.Orders += r.Orders
			acc.Spend = acc.Spend.Add(r.Spend)
		}
	}

	rows := make([]domain.AggregateRow, 0, len(groups))
	for _, r := range groups {
		rows = append(rows, *r)
	}
	sortRows(rows, keys)

	out := &domain.AggregateTable{Keys: copyKeys(keys), Rows: rows}
	if a != nil && a.Version != "" {
		out.Version = DeriveVersion(a.Version, "rollup", keysString(keys))
	}
	return out
}

// Where keeps the rows of a accepted by keep.
func Where(a *domain.AggregateTable, keep func(domain.AggregateRow) bool) *domain.AggregateTable {
	if a == nil {
		return &domain.AggregateTable{Rows: []domain.AggregateRow{}}
	}
	rows := make([]domain.AggregateRow, 0, len(a.Rows))
	for _, r := range a.Rows {
		if keep(r) {
			rows = append(rows, r)
		}
	}
	return &domain.AggregateTable{Keys: a.Keys, Rows: rows}
}

// ForYear keeps the rows of a single year.
func ForYear(a *domain.AggregateTable, year int) *domain.AggregateTable {
	return Where(a, func(r domain.AggregateRow) bool { return r.Key.Year == year })
}

// DeriveVersion hashes a parent version with the parameters of a derived
// table.
func DeriveVersion(version string, parts ...string) string {
	sum := sha1.Sum([]byte(version + "|" + strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

func sortRows(rows []domain.AggregateRow, keys []domain.Dimension) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Key.Compare(rows[j].Key, keys) < 0
	})
}

func copyKeys(keys []domain.Dimension) []domain.Dimension {
	return append([]domain.Dimension(nil), keys...)
}

func keysString(keys []domain.Dimension) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = string(k)
	}
	return strings.Join(parts, ",")
}
