// Package db provides shared Postgres helpers for bulk row writes.
package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
)

// Copier is satisfied by Pool and pgx.Tx.
type Copier interface {
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// CopyFrom bulk-inserts rows into a table using the PostgreSQL COPY protocol.
// A schema-qualified name such as "gap.audit_keywords" is split on the dot.
func CopyFrom(ctx context.Context, c Copier, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	n, err := c.CopyFrom(ctx, identifier(table), columns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, eris.Wrapf(err, "db: COPY INTO %s", table)
	}

	return n, nil
}

// ReplaceConfig identifies the rows owned by a single composite key.
type ReplaceConfig struct {
	Table   string   // target table
	KeyCols []string // columns holding the owner key, in key order
	Columns []string // columns written by COPY, including KeyCols
}

// ReplaceRows deletes every row whose KeyCols equal key and copies rows in
// their place, inside one transaction. An empty rows slice clears the key.
func ReplaceRows(ctx context.Context, pool Pool, cfg ReplaceConfig, key []any, rows [][]any) (int64, error) {
	if cfg.Table == "" || len(cfg.KeyCols) == 0 {
		return 0, eris.New("db: replace: table and key columns are required")
	}
	if len(key) != len(cfg.KeyCols) {
		return 0, eris.Errorf("db: replace: got %d key values for %d key columns", len(key), len(cfg.KeyCols))
	}
	if len(cfg.Columns) == 0 {
		return 0, eris.New("db: replace: no columns specified")
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "db: replace: begin tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, deleteSQL(cfg), key...); err != nil {
		return 0, eris.Wrapf(err, "db: replace: delete from %s", cfg.Table)
	}

	n, err := CopyFrom(ctx, tx, cfg.Table, cfg.Columns, rows)
	if err != nil {
		return 0, eris.Wrap(err, "db: replace")
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, eris.Wrap(err, "db: replace: commit tx")
	}

	return n, nil
}

func deleteSQL(cfg ReplaceConfig) string {
	conds := make([]string, len(cfg.KeyCols))
	for i, col := range cfg.KeyCols {
		conds[i] = fmt.Sprintf("%s = $%d", pgx.Identifier{col}.Sanitize(), i+1)
	}
	return fmt.Sprintf("DELETE FROM %s WHERE %s",
		identifier(cfg.Table).Sanitize(), strings.Join(conds, " AND "))
}

func identifier(table string) pgx.Identifier {
	if schema, name, ok := strings.Cut(table, "."); ok {
		return pgx.Identifier{schema, name}
	}
	return pgx.Identifier{table}
}
