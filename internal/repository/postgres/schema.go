package postgres

import (
	"fmt"
	"regexp"

	"github.com/andresuchdata/procurement-dashboard/internal/loader"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// quoteTable validates a possibly schema-qualified table name.
func quoteTable(name string) (string, error) {
	if !identifierPattern.MatchString(name) {
		return "", fmt.Errorf("invalid table name %q", name)
	}
	return name, nil
}

// orderColumns maps table columns to the sheet headers the loader knows.
var orderColumns = []struct {
	Column string
	Header string
	Type   string
}{
	{"purchasing_doc", loader.ColPurchasingDoc, "TEXT NOT NULL"},
	{"document_date", loader.ColDocumentDate, "DATE NOT NULL"},
	{"supplier_name", loader.ColSupplierName, "TEXT NOT NULL"},
	{"supplier_country", loader.ColSupplierCountry, "TEXT"},
	{"postal_code", loader.ColPostalCode, "TEXT"},
	{"company_code", loader.ColCompanyCode, "TEXT"},
	{"purchasing_org", loader.ColPurchasingOrg, "TEXT"},
	{"plant", loader.ColPlant, "TEXT"},
	{"material_group", loader.ColMaterialGroup, "TEXT"},
	{"net_price", loader.ColNetPrice, "NUMERIC(18,4)"},
	{"net_value", loader.ColNetValue, "NUMERIC(18,4) NOT NULL"},
	{"ordered_quantity", loader.ColOrderedQuantity, "DOUBLE PRECISION"},
	{"delivered_quantity", loader.ColDeliveredQuantity, "DOUBLE PRECISION"},
	{"open_quantity", loader.ColOpenQuantity, "DOUBLE PRECISION"},
	{"supplier_delivery_date", loader.ColSupplierDeliveryDate, "DATE"},
	{"delivery_date", loader.ColDeliveryDate, "DATE"},
	{"deviation_cause", loader.ColDeviationCause, "INTEGER NOT NULL DEFAULT 0"},
	{"deviation_cause_text", loader.ColDeviationCauseText, "TEXT"},
}

var headerByColumn = func() map[string]string {
	m := make(map[string]string, len(orderColumns))
	for _, c := range orderColumns {
		m[c.Column] = c.Header
	}
	return m
}()

// sheetHeader translates a table column to a loader header. Unknown
// columns pass through and are dropped by the loader's allow-list.
func sheetHeader(column string) string {
	if h, ok := headerByColumn[column]; ok {
		return h
	}
	return column
}

func createTableSQL(table string) string {
	q := "CREATE TABLE IF NOT EXISTS " + table + " (\n\tid BIGSERIAL PRIMARY KEY"
	for _, c := range orderColumns {
		q += ",\n\t" + c.Column + " " + c.Type
	}
	return q + "\n)"
}
