package loader

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Excel serials run from 1900-01-01 to 9999-12-31.
const (
	minDateSerial = 1
	maxDateSerial = 2958465
)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"02.01.2006",
	"2.1.2006",
	"01/02/2006",
	"1/2/2006",
	"01-02-06",
	"2006/01/02",
}

// parseDate accepts Excel serial dates as well as common text layouts.
// An empty cell is reported as ok=false without an error.
func parseDate(raw string) (time.Time, bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false, nil
	}

	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		if !finite(serial) || serial < minDateSerial || serial >= maxDateSerial+1 {
			return time.Time{}, false, fmt.Errorf("%w: date serial %q out of range", ErrInvalidValue, raw)
		}
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, false, fmt.Errorf("%w: date serial %q: %v", ErrInvalidValue, raw, err)
		}
		return truncateDay(t), true, nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return truncateDay(t), true, nil
		}
	}
	return time.Time{}, false, fmt.Errorf("%w: date %q", ErrInvalidValue, raw)
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func parseDecimal(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: number %q", ErrInvalidValue, raw)
	}
	return d, nil
}

func parseFloat(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || !finite(f) {
		return 0, fmt.Errorf("%w: number %q", ErrInvalidValue, raw)
	}
	return f, nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// parseCause reads a deviation cause code; blank means no deviation.
func parseCause(raw string) (int, error) {
	f, err := parseFloat(raw)
	if err != nil {
		return 0, err
	}
	if f < math.MinInt32 || f > math.MaxInt32 {
		return 0, fmt.Errorf("%w: deviation cause %q", ErrInvalidValue, raw)
	}
	return int(f), nil
}

// daysBetween counts calendar days from promised to actual.
func daysBetween(promised, actual time.Time) int {
	return int(actual.Sub(promised).Hours() / 24)
}
