package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Measure selects which aggregate column a chart shows.
type Measure int

const (
	MeasureSpend Measure = iota
	MeasureOrderCount
)

const (
	OrderedSpendLabel   = "Ordered Spend"
	NumberOfOrdersLabel = "Number of Orders"
)

func (m Measure) String() string {
	if m == MeasureOrderCount {
		return NumberOfOrdersLabel
	}
	return OrderedSpendLabel
}

func (m Measure) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Measure) UnmarshalText(text []byte) error {
	switch string(text) {
	case OrderedSpendLabel:
		*m = MeasureSpend
	case NumberOfOrdersLabel:
		*m = MeasureOrderCount
	default:
		return fmt.Errorf("unknown measure %q", string(text))
	}
	return nil
}

// AggregateRow carries both measures for one group.
type AggregateRow struct {
	Key    GroupKey        `json:"key"`
	Orders int64           `json:"orders"`
	Spend  decimal.Decimal `json:"spend"`
}

// Value returns the row's measure as a float for ranking and display.
func (r AggregateRow) Value(m Measure) float64 {
	if m == MeasureOrderCount {
		return float64(r.Orders)
	}
	return r.Spend.InexactFloat64()
}

// Dim returns the string form of the row key on d.
func (r AggregateRow) Dim(d Dimension) string {
	return r.Key.Value(d)
}

// AggregateTable is a grouped view of orders. Rows are ordered by Keys and
// the table is never mutated after construction.
type AggregateTable struct {
	Version string         `json:"version"`
	Keys    []Dimension    `json:"keys"`
	Rows    []AggregateRow `json:"rows"`
}

func (a *AggregateTable) Len() int {
	if a == nil {
		return 0
	}
	return len(a.Rows)
}

func (a *AggregateTable) IsEmpty() bool {
	return a.Len() == 0
}

// Has reports whether the table is grouped by d.
func (a *AggregateTable) Has(d Dimension) bool {
	if a == nil {
		return false
	}
	for _, k := range a.Keys {
		if k == d {
			return true
		}
	}
	return false
}

func (a *AggregateTable) TotalSpend() decimal.Decimal {
	total := decimal.Zero
	if a == nil {
		return total
	}
	for _, r := range a.Rows {
		total = total.Add(r.Spend)
	}
	return total
}

func (a *AggregateTable) TotalOrders() int64 {
	var total int64
	if a == nil {
		return total
	}
	for _, r := range a.Rows {
		total += r.Orders
	}
	return total
}

// Total returns the sum of measure m over all rows.
func (a *AggregateTable) Total(m Measure) float64 {
	if m == MeasureOrderCount {
		return float64(a.TotalOrders())
	}
	return a.TotalSpend().InexactFloat64()
}
