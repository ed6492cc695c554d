// Package filter restricts order tables and aggregates to the dashboard's
// four filter dimensions.
package filter

import (
	"crypto/sha1"
	"encoding/hex"
	"sort"

	"github.com/andresuchdata/procurement-dashboard/internal/domain"
	"github.com/samber/lo"
)

// Row is anything that exposes its value on a dimension.
type Row interface {
	Dim(d domain.Dimension) string
}

// Normalize trims each constraint and applies the same numeric coercion the
// loader applies to table values.
func Normalize(c domain.FilterCriteria) domain.FilterCriteria {
	for _, d := range domain.FilterDimensions {
		c = c.With(d, domain.NormalizeValue(c.Get(d)))
	}
	return c
}

// Match reports whether row satisfies every non-empty constraint. The
// criteria are expected to be normalized.
func Match[R Row](row R, c domain.FilterCriteria) bool {
	for _, d := range domain.FilterDimensions {
		want := c.Get(d)
		if want == "" {
			continue
		}
		if row.Dim(d) != want {
			return false
		}
	}
	return true
}

// Rows returns the rows matching c in their original order. The input is
// never modified.
func Rows[R Row](rows []R, c domain.FilterCriteria) []R {
	c = Normalize(c)
	if c.IsEmpty() {
		return rows
	}
	return lo.Filter(rows, func(r R, _ int) bool {
		return Match(r, c)
	})
}

// Apply returns the orders of t matching c. An empty criteria tuple returns
// t itself; otherwise the result is a new table with a version derived from
// t's version and the criteria.
func Apply(t *domain.Table, c domain.FilterCriteria) *domain.Table {
	c = Normalize(c)
	if t == nil {
		return domain.NewTable("", nil)
	}
	if c.IsEmpty() {
		return t
	}
	return domain.NewTable(DerivedVersion(t.Version, c), Rows(t.Orders, c))
}

// ApplyAggregate filters aggregate rows. Criteria on a dimension the table is
// not grouped by match nothing, since such rows carry an empty value there.
func ApplyAggregate(a *domain.AggregateTable, c domain.FilterCriteria) *domain.AggregateTable {
	c = Normalize(c)
	if a == nil {
		return &domain.AggregateTable{}
	}
	if c.IsEmpty() {
		return a
	}
	rows := Rows(a.Rows, c)
	if rows == nil {
		rows = []domain.AggregateRow{}
	}
	return &domain.AggregateTable{
		Version: DerivedVersion(a.Version, c),
		Keys:    a.Keys,
		Rows:    rows,
	}
}

// DerivedVersion identifies a filtered view of a versioned table.
func DerivedVersion(version string, c domain.FilterCriteria) string {
	sum := sha1.Sum([]byte(version + "?" + c.String()))
	return hex.EncodeToString(sum[:])
}

// Options lists the selectable values of each filter dimension. Each list
// comes from t filtered by the other three constraints, so pickers narrow
// each other without hiding the current selection's alternatives.
func Options(t *domain.Table, c domain.FilterCriteria) domain.FilterOptions {
	c = Normalize(c)
	return domain.FilterOptions{
		CompanyCodes:   OptionsFor(t, c, domain.DimCompanyCode),
		PurchasingOrgs: OptionsFor(t, c, domain.DimPurchasingOrg),
		Plants:         OptionsFor(t, c, domain.DimPlant),
		MaterialGroups: OptionsFor(t, c, domain.DimMaterialGroup),
	}
}

// OptionsFor is the sorted distinct values of d in t filtered by every
// constraint except the one on d.
func OptionsFor(t *domain.Table, c domain.FilterCriteria, d domain.Dimension) []string {
	if t == nil {
		return []string{}
	}
	others := Normalize(c).Without(d)
	values := make([]string, 0)
	for _, o := range t.Orders {
		if !Match(o, others) {
			continue
		}
		if v := o.Dim(d); v != "" {
			values = append(values, v)
		}
	}
	values = lo.Uniq(values)
	sort.Strings(values)
	return values
}
