package loader

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/andresuchdata/procurement-dashboard/internal/domain"
	"github.com/rs/zerolog/log"
)

// ClassifyDeviation maps a delivery deviation in days to its indicator.
func ClassifyDeviation(days int) domain.DeviationIndicator {
	switch {
	case days <= 0:
		return domain.IndicatorInTime
	case days < 5:
		return domain.IndicatorLateShort
	case days > 10:
		return domain.IndicatorLateLong
	default:
		return domain.IndicatorLateMedium
	}
}

// Load reads the order sheet from reader and normalizes it into a table.
func Load(ctx context.Context, reader SheetReader) (*domain.Table, error) {
	sheet, err := reader.ReadSheet(ctx)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			return nil, err
		}
		return nil, &LoadError{Source: reader.Name(), Err: fmt.Errorf("%w: %w", ErrUnreadableSource, err)}
	}

	table, err := Build(sheet)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("source", reader.Name()).
		Int("rows", table.Len()).
		Str("version", table.Version).
		Msg("loader: dataset loaded")
	return table, nil
}

// Build renames the sheet's columns, keeps the allow-listed ones and
// derives calendar and deviation fields for each row.
func Build(sheet *Sheet) (*domain.Table, error) {
	if sheet == nil || len(sheet.Header) == 0 {
		name := ""
		if sheet != nil {
			name = sheet.Name
		}
		return nil, &LoadError{Source: name, Err: ErrEmptySource}
	}

	colMap := columnIndex(sheet.Header)
	for _, col := range required {
		if _, ok := colMap[col]; !ok {
			return nil, &LoadError{Source: sheet.Name, Column: col, Err: ErrMissingColumn}
		}
	}

	orders := make([]domain.Order, 0, len(sheet.Rows))
	for i, record := range sheet.Rows {
		if blank(record) {
			continue
		}
		r := row{colMap: colMap, record: record}
		order, col, err := r.order()
		if err != nil {
			return nil, &LoadError{Source: sheet.Name, Row: i + 2, Column: col, Err: err}
		}
		orders = append(orders, order)
	}

	return domain.NewTable(sheet.Fingerprint(), orders), nil
}

func blank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

type row struct {
	colMap map[string]int
	record []string
}

func (r row) get(col string) string {
	idx, ok := r.colMap[col]
	if !ok || idx >= len(r.record) {
		return ""
	}
	return strings.TrimSpace(r.record[idx])
}

// order parses the row. On failure it also returns the offending column.
func (r row) order() (domain.Order, string, error) {
	o := domain.Order{
		PurchasingDoc:      domain.NormalizeValue(r.get(ColPurchasingDoc)),
		SupplierName:       r.get(ColSupplierName),
		SupplierCountry:    r.get(ColSupplierCountry),
		PostalCode:         r.get(ColPostalCode),
		CompanyCode:        domain.NormalizeValue(r.get(ColCompanyCode)),
		PurchasingOrg:      domain.NormalizeValue(r.get(ColPurchasingOrg)),
		Plant:              domain.NormalizeValue(r.get(ColPlant)),
		MaterialGroup:      domain.NormalizeValue(r.get(ColMaterialGroup)),
		DeviationCauseText: r.get(ColDeviationCauseText),
	}

	docDate, ok, err := parseDate(r.get(ColDocumentDate))
	if err != nil {
		return o, ColDocumentDate, err
	}
	if !ok {
		return o, ColDocumentDate, fmt.Errorf("%w: document date is empty", ErrInvalidValue)
	}
	o.DocumentDate = docDate
	o.Year = docDate.Year()
	o.Month = int(docDate.Month())
	o.YearMonth = domain.YearMonthLabel(o.Year, o.Month)

	if o.NetValue, err = parseDecimal(r.get(ColNetValue)); err != nil {
		return o, ColNetValue, err
	}
	if o.NetPrice, err = parseDecimal(r.get(ColNetPrice)); err != nil {
		return o, ColNetPrice, err
	}
	if o.OrderedQuantity, err = parseFloat(r.get(ColOrderedQuantity)); err != nil {
		return o, ColOrderedQuantity, err
	}
	if o.DeliveredQuantity, err = parseFloat(r.get(ColDeliveredQuantity)); err != nil {
		return o, ColDeliveredQuantity, err
	}
	if o.OpenQuantity, err = parseFloat(r.get(ColOpenQuantity)); err != nil {
		return o, ColOpenQuantity, err
	}
	if o.DeviationCause, err = parseCause(r.get(ColDeviationCause)); err != nil {
		return o, ColDeviationCause, err
	}

	promised, hasPromised, err := parseDate(r.get(ColSupplierDeliveryDate))
	if err != nil {
		return o, ColSupplierDeliveryDate, err
	}
	actual, hasActual, err := parseDate(r.get(ColDeliveryDate))
	if err != nil {
		return o, ColDeliveryDate, err
	}
	if hasPromised {
		o.SupplierDeliveryDate = &promised
	}
	if hasActual {
		o.DeliveryDate = &actual
	}
	// Deviation is undefined for orders not yet delivered.
	if hasPromised && hasActual {
		days := daysBetween(promised, actual)
		o.DeviationDays = &days
		o.DeviationIndicator = ClassifyDeviation(days)
	}

	return o, "", nil
}
