package aggregate

import (
	"sort"

	"github.com/andresuchdata/procurement-dashboard/internal/domain"
	"github.com/samber/lo"
)

// Ranked is an entity with its measure total.
type Ranked struct {
	Entity string
	Value  float64
}

// Rank orders the entities of a by descending total of m. Equal totals are
// ordered lexically by entity name so the ranking never depends on row
// order.
func Rank(a *domain.AggregateTable, entity domain.Dimension, m domain.Measure) []Ranked {
	totals := Rollup(a, []domain.Dimension{entity})
	ranked := make([]Ranked, 0, totals.Len())
	for _, r := range totals.Rows {
		ranked = append(ranked, Ranked{Entity: r.Dim(entity), Value: r.Value(m)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Value != ranked[j].Value {
			return ranked[i].Value > ranked[j].Value
		}
		return ranked[i].Entity < ranked[j].Entity
	})
	return ranked
}

// TopN returns at most n entities of a ranked by m within the current year.
// Entities absent from the current year are never selected.
func TopN(a *domain.AggregateTable, entity domain.Dimension, m domain.Measure, current, n int) []string {
	ranked := Rank(ForYear(a, current), entity, m)
	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return lo.Map(ranked, func(r Ranked, _ int) string { return r.Entity })
}

// RestrictTo keeps the rows of a whose value on d is one of keys, so every
// period shows the same entities.
func RestrictTo(a *domain.AggregateTable, d domain.Dimension, keys []string) *domain.AggregateTable {
	set := lo.SliceToMap(keys, func(k string) (string, struct{}) { return k, struct{}{} })
	return Where(a, func(r domain.AggregateRow) bool {
		_, ok := set[r.Dim(d)]
		return ok
	})
}

// SortForDisplay returns the category order of a horizontal bar chart.
// Rows are sorted ascending by (Year, m) and duplicate categories keep
// their last position, which places the current year's largest value last.
func SortForDisplay(a *domain.AggregateTable, category domain.Dimension, m domain.Measure) []string {
	if a == nil {
		return []string{}
	}
	rows := append([]domain.AggregateRow(nil), a.Rows...)
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Key.Year != rows[j].Key.Year {
			return rows[i].Key.Year < rows[j].Key.Year
		}
		return rows[i].Value(m) < rows[j].Value(m)
	})

	seen := make(map[string]struct{}, len(rows))
	reversed := make([]string, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		c := rows[i].Dim(category)
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		reversed = append(reversed, c)
	}
	return lo.Reverse(reversed)
}
