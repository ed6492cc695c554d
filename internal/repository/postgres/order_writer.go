package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/andresuchdata/procurement-dashboard/internal/domain"
	"github.com/rs/zerolog/log"
)

// OrderWriter replaces the content of a purchase order table.
type OrderWriter struct {
	db    *DB
	table string
}

func NewOrderWriter(db *DB, table string) *OrderWriter {
	return &OrderWriter{db: db, table: table}
}

// EnsureSchema creates the order table when it does not exist.
func (w *OrderWriter) EnsureSchema(ctx context.Context) error {
	table, err := quoteTable(w.table)
	if err != nil {
		return err
	}
	if _, err := w.db.ExecContext(ctx, createTableSQL(table)); err != nil {
		return fmt.Errorf("create %s: %w", table, err)
	}
	return nil
}

// ReplaceOrders truncates the table and inserts every order in one
// transaction.
func (w *OrderWriter) ReplaceOrders(ctx context.Context, t *domain.Table) error {
	table, err := quoteTable(w.table)
	if err != nil {
		return err
	}

	start := time.Now()
	err = w.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "TRUNCATE "+table); err != nil {
			return fmt.Errorf("truncate %s: %w", table, err)
		}

		stmt, err := tx.PrepareContext(ctx, insertSQL(table))
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer stmt.Close()

		for i, o := range t.Orders {
			if _, err := stmt.ExecContext(ctx, orderArgs(o)...); err != nil {
				return fmt.Errorf("insert order %d (%s): %w", i, o.PurchasingDoc, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Info().
		Str("table", table).
		Int("rows", t.Len()).
		Dur("elapsed", time.Since(start)).
		Msg("postgres: orders replaced")
	return nil
}

func insertSQL(table string) string {
	cols := make([]string, len(orderColumns))
	params := make([]string, len(orderColumns))
	for i, c := range orderColumns {
		cols[i] = c.Column
		params[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(cols, ", "), strings.Join(params, ", "))
}

// orderArgs lists the insert parameters in orderColumns order.
func orderArgs(o domain.Order) []any {
	return []any{
		o.PurchasingDoc,
		o.DocumentDate,
		o.SupplierName,
		nullString(o.SupplierCountry),
		nullString(o.PostalCode),
		nullString(o.CompanyCode),
		nullString(o.PurchasingOrg),
		nullString(o.Plant),
		nullString(o.MaterialGroup),
		o.NetPrice.String(),
		o.NetValue.String(),
		o.OrderedQuantity,
		o.DeliveredQuantity,
		o.OpenQuantity,
		nullTime(o.SupplierDeliveryDate),
		nullTime(o.DeliveryDate),
		o.DeviationCause,
		nullString(o.DeviationCauseText),
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
