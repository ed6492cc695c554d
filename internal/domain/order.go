package domain

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// DeviationIndicator classifies how late an order was delivered.
type DeviationIndicator string

const (
	IndicatorInTime     DeviationIndicator = "in time"
	IndicatorLateShort  DeviationIndicator = "late: < 5 days"
	IndicatorLateMedium DeviationIndicator = "late: 5 to 10 days"
	IndicatorLateLong   DeviationIndicator = "late: > 10 days"
)

// NoDeviationCause is the cause code of orders delivered without deviation.
const NoDeviationCause = 0

// Order is one normalized purchase order line. Derived fields are computed
// once at load time and never change afterwards.
type Order struct {
	PurchasingDoc        string          `json:"purchasing_doc"`
	DocumentDate         time.Time       `json:"document_date"`
	SupplierName         string          `json:"supplier_name"`
	SupplierCountry      string          `json:"supplier_country,omitempty"`
	PostalCode           string          `json:"postal_code,omitempty"`
	CompanyCode          string          `json:"company_code"`
	PurchasingOrg        string          `json:"purchasing_org"`
	Plant                string          `json:"plant"`
	MaterialGroup        string          `json:"material_group"`
	NetPrice             decimal.Decimal `json:"net_price"`
	NetValue             decimal.Decimal `json:"net_value"`
	OrderedQuantity      float64         `json:"ordered_quantity"`
	DeliveredQuantity    float64         `json:"delivered_quantity"`
	OpenQuantity         float64         `json:"open_quantity"`
	SupplierDeliveryDate *time.Time      `json:"supplier_delivery_date,omitempty"`
	DeliveryDate         *time.Time      `json:"delivery_date,omitempty"`
	DeviationCause       int             `json:"deviation_cause"`
	DeviationCauseText   string          `json:"deviation_cause_text,omitempty"`

	Year               int                `json:"year"`
	Month              int                `json:"month"`
	YearMonth          string             `json:"year_month"`
	DeviationDays      *int               `json:"deviation_days,omitempty"`
	DeviationIndicator DeviationIndicator `json:"deviation_indicator,omitempty"`
}

// Deviated reports whether the order carries a deviation cause.
func (o Order) Deviated() bool {
	return o.DeviationCause != NoDeviationCause
}

// Key returns the order's position along every groupable dimension.
func (o Order) Key() GroupKey {
	return GroupKey{
		Year:               o.Year,
		Month:              o.Month,
		CompanyCode:        o.CompanyCode,
		PurchasingOrg:      o.PurchasingOrg,
		Plant:              o.Plant,
		MaterialGroup:      o.MaterialGroup,
		Supplier:           o.SupplierName,
		DeviationCause:     o.DeviationCauseText,
		DeviationIndicator: o.DeviationIndicator,
	}
}

// Dim returns the string form of the order's value on d.
func (o Order) Dim(d Dimension) string {
	return o.Key().Value(d)
}

// YearMonthLabel formats a calendar period as "YYYY-MM".
func YearMonthLabel(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

// Table is an immutable set of orders. Version identifies its content and
// is what caches key on.
type Table struct {
	Version string  `json:"version"`
	Orders  []Order `json:"orders"`
}

func NewTable(version string, orders []Order) *Table {
	if orders == nil {
		orders = []Order{}
	}
	return &Table{Version: version, Orders: orders}
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Orders)
}

func (t *Table) IsEmpty() bool {
	return t.Len() == 0
}

// MaxYear returns the most recent document year, or 0 for an empty table.
func (t *Table) MaxYear() int {
	latest := 0
	if t == nil {
		return latest
	}
	for _, o := range t.Orders {
		if o.Year > latest {
			latest = o.Year
		}
	}
	return latest
}

// TotalNetValue sums net value over every order.
func (t *Table) TotalNetValue() decimal.Decimal {
	total := decimal.Zero
	if t == nil {
		return total
	}
	for _, o := range t.Orders {
		total = total.Add(o.NetValue)
	}
	return total
}

// Period is a pair of reporting years compared by the dashboard.
type Period struct {
	Current int `json:"current"`
	Prior   int `json:"prior"`
}

func NewPeriod(current int) Period {
	return Period{Current: current, Prior: current - 1}
}

func (p Period) String() string {
	return strconv.Itoa(p.Current) + "/" + strconv.Itoa(p.Prior)
}
