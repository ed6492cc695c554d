package loader

import "strings"

// Canonical column names of the order table.
const (
	ColPurchasingDoc        = "Purchasing Doc."
	ColDocumentDate         = "Document Date"
	ColSupplierName         = "Supplier Name"
	ColSupplierCountry      = "Supplier Country"
	ColPostalCode           = "Postal Code"
	ColCompanyCode          = "Company Code"
	ColPurchasingOrg        = "Purchasing Org."
	ColPlant                = "Plant"
	ColMaterialGroup        = "Material Group"
	ColNetPrice             = "Net Price"
	ColNetValue             = "Net Value"
	ColOrderedQuantity      = "Ordered Quantity"
	ColDeliveredQuantity    = "Delivered Quantity"
	ColOpenQuantity         = "Open Quantity"
	ColSupplierDeliveryDate = "Supplier Delivery Date"
	ColDeliveryDate         = "Delivery Date"
	ColDeviationDays        = "Delivery Deviation (Days)"
	ColDeviationIndicator   = "Deviation Indicator"
	ColDeviationCause       = "Deviation Cause"
	ColDeviationCauseText   = "Deviation Cause Text"
)

// renames maps raw export headers to canonical names.
var renames = map[string]string{
	"supplier delivery date":      ColSupplierDeliveryDate,
	"delivery date":               ColDeliveryDate,
	"Supplier name":               ColSupplierName,
	"Postal code":                 ColPostalCode,
	"Supplier\ncountry":           ColSupplierCountry,
	"Net price":                   ColNetPrice,
	"ORDERED Quantity":            ColOrderedQuantity,
	"Delivered QTY":               ColDeliveredQuantity,
	"open quantity":               ColOpenQuantity,
	"Delivery deviation  in days": ColDeviationDays,
	"deviation indicator":         ColDeviationIndicator,
	"deviation cause":             ColDeviationCause,
	"deviation cause text":        ColDeviationCauseText,
}

// retained is the allow-list of canonical columns kept after renaming.
// Deviation days and indicator are recomputed, so the exported values are
// not retained.
var retained = []string{
	ColPurchasingDoc,
	ColDocumentDate,
	ColSupplierName,
	ColSupplierCountry,
	ColPostalCode,
	ColCompanyCode,
	ColPurchasingOrg,
	ColPlant,
	ColMaterialGroup,
	ColNetPrice,
	ColNetValue,
	ColOrderedQuantity,
	ColDeliveredQuantity,
	ColOpenQuantity,
	ColSupplierDeliveryDate,
	ColDeliveryDate,
	ColDeviationCause,
	ColDeviationCauseText,
}

var required = []string{
	ColDocumentDate,
	ColSupplierDeliveryDate,
	ColDeliveryDate,
	ColNetValue,
	ColSupplierName,
}

// lookup resolves headers through a whitespace- and case-insensitive form
// of both the rename map and the canonical names.
var lookup = buildLookup()

func buildLookup() map[string]string {
	m := make(map[string]string, len(renames)+len(retained))
	for _, canonical := range retained {
		m[headerKey(canonical)] = canonical
	}
	for raw, canonical := range renames {
		m[headerKey(raw)] = canonical
	}
	return m
}

func headerKey(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Canonical returns the canonical name of a raw header, or ok=false when
// the column is not renamed into the allow-list.
func Canonical(raw string) (string, bool) {
	if name, ok := renames[raw]; ok {
		return name, isRetained(name)
	}
	name, ok := lookup[headerKey(raw)]
	if !ok {
		return "", false
	}
	return name, isRetained(name)
}

func isRetained(name string) bool {
	for _, col := range retained {
		if col == name {
			return true
		}
	}
	return false
}

// columnIndex maps retained canonical names to their position in header.
// The first occurrence wins when two raw headers share a canonical name.
func columnIndex(header []string) map[string]int {
	colMap := make(map[string]int, len(retained))
	for i, raw := range header {
		name, ok := Canonical(raw)
		if !ok {
			continue
		}
		if _, seen := colMap[name]; seen {
			continue
		}
		colMap[name] = i
	}
	return colMap
}
