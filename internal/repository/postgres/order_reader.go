package postgres

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/andresuchdata/procurement-dashboard/internal/loader"
	"github.com/rs/zerolog/log"
)

// OrderReader serves a purchase order table as a loader sheet.
type OrderReader struct {
	db    *DB
	table string
}

func NewOrderReader(db *DB, table string) *OrderReader {
	return &OrderReader{db: db, table: table}
}

func (r *OrderReader) Name() string { return "postgres:" + r.table }

func (r *OrderReader) ReadSheet(ctx context.Context) (*loader.Sheet, error) {
	table, err := quoteTable(r.table)
	if err != nil {
		return nil, err
	}

	release, err := r.db.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	start := time.Now()
	rows, err := r.db.QueryxContext(ctx, "SELECT * FROM "+table+" ORDER BY 1")
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns of %s: %w", table, err)
	}
	header := make([]string, len(columns))
	for i, c := range columns {
		header[i] = sheetHeader(c)
	}

	sheet := &loader.Sheet{Name: r.Name(), Header: header}
	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		record := make([]string, len(values))
		for i, v := range values {
			record[i] = cellString(v)
		}
		sheet.Rows = append(sheet.Rows, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", table, err)
	}

	log.Debug().
		Str("table", table).
		Int("rows", len(sheet.Rows)).
		Dur("elapsed", time.Since(start)).
		Msg("postgres: order sheet read")
	return sheet, nil
}

// cellString renders a scanned value in a form the loader parses.
func cellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case time.Time:
		return x.UTC().Format("2006-01-02")
	case int64:
		return strconv.FormatInt(x, 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(x)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
