package domain

import (
	"strconv"
	"strings"
)

// Dimension names a column orders and aggregates can be grouped or
// filtered by.
type Dimension string

const (
	DimYear               Dimension = "year"
	DimMonth              Dimension = "month"
	DimYearMonth          Dimension = "year_month"
	DimCompanyCode        Dimension = "company_code"
	DimPurchasingOrg      Dimension = "purchasing_org"
	DimPlant              Dimension = "plant"
	DimMaterialGroup      Dimension = "material_group"
	DimSupplier           Dimension = "supplier"
	DimDeviationCause     Dimension = "deviation_cause"
	DimDeviationIndicator Dimension = "deviation_indicator"
)

// FilterDimensions are the four dimensions exposed as dashboard filters, in
// picker order.
var FilterDimensions = []Dimension{
	DimCompanyCode,
	DimPurchasingOrg,
	DimPlant,
	DimMaterialGroup,
}

// GroupKey is the position of an order or aggregate row along the
// groupable dimensions. Dimensions a row is not grouped by stay zero.
type GroupKey struct {
	Year               int                `json:"year,omitempty"`
	Month              int                `json:"month,omitempty"`
	CompanyCode        string             `json:"company_code,omitempty"`
	PurchasingOrg      string             `json:"purchasing_org,omitempty"`
	Plant              string             `json:"plant,omitempty"`
	MaterialGroup      string             `json:"material_group,omitempty"`
	Supplier           string             `json:"supplier,omitempty"`
	DeviationCause     string             `json:"deviation_cause,omitempty"`
	DeviationIndicator DeviationIndicator `json:"deviation_indicator,omitempty"`
}

// Value returns the string form of the key on d.
func (k GroupKey) Value(d Dimension) string {
	switch d {
	case DimYear:
		return strconv.Itoa(k.Year)
	case DimMonth:
		return strconv.Itoa(k.Month)
	case DimYearMonth:
		return YearMonthLabel(k.Year, k.Month)
	case DimCompanyCode:
		return k.CompanyCode
	case DimPurchasingOrg:
		return k.PurchasingOrg
	case DimPlant:
		return k.Plant
	case DimMaterialGroup:
		return k.MaterialGroup
	case DimSupplier:
		return k.Supplier
	case DimDeviationCause:
		return k.DeviationCause
	case DimDeviationIndicator:
		return string(k.DeviationIndicator)
	default:
		return ""
	}
}

// Project keeps only the given dimensions and zeroes the rest.
func (k GroupKey) Project(dims []Dimension) GroupKey {
	var out GroupKey
	for _, d := range dims {
		switch d {
		case DimYear:
			out.Year = k.Year
		case DimMonth:
			out.Month = k.Month
		case DimYearMonth:
			out.Year = k.Year
			out.Month = k.Month
		case DimCompanyCode:
			out.CompanyCode = k.CompanyCode
		case DimPurchasingOrg:
			out.PurchasingOrg = k.PurchasingOrg
		case DimPlant:
			out.Plant = k.Plant
		case DimMaterialGroup:
			out.MaterialGroup = k.MaterialGroup
		case DimSupplier:
			out.Supplier = k.Supplier
		case DimDeviationCause:
			out.DeviationCause = k.DeviationCause
		case DimDeviationIndicator:
			out.DeviationIndicator = k.DeviationIndicator
		}
	}
	return out
}

// Compare orders two keys along dims. Calendar dimensions compare
// numerically and everything else compares lexically.
func (k GroupKey) Compare(other GroupKey, dims []Dimension) int {
	for _, d := range dims {
		var c int
		switch d {
		case DimYear:
			c = compareInt(k.Year, other.Year)
		case DimMonth:
			c = compareInt(k.Month, other.Month)
		case DimYearMonth:
			c = compareInt(k.Year, other.Year)
			if c == 0 {
				c = compareInt(k.Month, other.Month)
			}
		default:
			c = strings.Compare(k.Value(d), other.Value(d))
		}
		if c != 0 {
			return c
		}
	}
	return 0
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// FilterCriteria restricts orders to exact matches on up to four
// dimensions. Empty fields are not constrained.
type FilterCriteria struct {
	CompanyCode   string `json:"company_code,omitempty" form:"company_code"`
	PurchasingOrg string `json:"purchasing_org,omitempty" form:"purchasing_org"`
	Plant         string `json:"plant,omitempty" form:"plant"`
	MaterialGroup string `json:"material_group,omitempty" form:"material_group"`
}

func (f FilterCriteria) IsEmpty() bool {
	return f == FilterCriteria{}
}

// Get returns the constraint on d, or "" when d is not a filter dimension.
func (f FilterCriteria) Get(d Dimension) string {
	switch d {
	case DimCompanyCode:
		return f.CompanyCode
	case DimPurchasingOrg:
		return f.PurchasingOrg
	case DimPlant:
		return f.Plant
	case DimMaterialGroup:
		return f.MaterialGroup
	default:
		return ""
	}
}

// With returns a copy with the constraint on d replaced by value.
func (f FilterCriteria) With(d Dimension, value string) FilterCriteria {
	switch d {
	case DimCompanyCode:
		f.CompanyCode = value
	case DimPurchasingOrg:
		f.PurchasingOrg = value
	case DimPlant:
		f.Plant = value
	case DimMaterialGroup:
		f.MaterialGroup = value
	}
	return f
}

// Without returns a copy with the constraint on d cleared.
func (f FilterCriteria) Without(d Dimension) FilterCriteria {
	return f.With(d, "")
}

// String renders the criteria in a stable "k=v|k=v" form, used in cache keys.
func (f FilterCriteria) String() string {
	parts := make([]string, 0, len(FilterDimensions))
	for _, d := range FilterDimensions {
		if v := f.Get(d); v != "" {
			parts = append(parts, string(d)+"="+v)
		}
	}
	return strings.Join(parts, "|")
}

// FilterOptions are the selectable values of each filter picker.
type FilterOptions struct {
	CompanyCodes   []string `json:"company_codes"`
	PurchasingOrgs []string `json:"purchasing_orgs"`
	Plants         []string `json:"plants"`
	MaterialGroups []string `json:"material_groups"`
}

// For returns the option list of d.
func (o FilterOptions) For(d Dimension) []string {
	switch d {
	case DimCompanyCode:
		return o.CompanyCodes
	case DimPurchasingOrg:
		return o.PurchasingOrgs
	case DimPlant:
		return o.Plants
	case DimMaterialGroup:
		return o.MaterialGroups
	default:
		return nil
	}
}
