// Package schema owns the warehouse DDL. The full schema is embedded and
// applied idempotently; Verify checks the live database against the set of
// tables the DDL declares.
package schema

import (
	"context"
	_ "embed"
	"fmt"
	"regexp"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed ddl.sql
var ddl string

var createTableRe = regexp.MustCompile(`(?i)CREATE TABLE IF NOT EXISTS\s+([a-z_]+)`)

// Tables returns the sorted list of table names declared in the embedded DDL.
func Tables() []string {
	matches := createTableRe.FindAllStringSubmatch(ddl, -1)
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m[1])
	}
	sort.Strings(names)
	return names
}

// Apply creates all warehouse tables and indexes. Safe to run repeatedly —
// every statement is IF NOT EXISTS.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Verify checks that every table the DDL declares exists in the connected
// database. Returns the missing table names, if any, in the error.
func Verify(ctx context.Context, pool *pgxpool.Pool) error {
	rows, err := pool.Query(ctx, `
		SELECT table_name FROM information_schema.tables
		WHERE table_schema = 'public' AND table_type = 'BASE TABLE'`)
	if err != nil {
		return fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	present := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return fmt.Errorf("scan table name: %w", err)
		}
		present[name] = true
	}
	if err := rows.Err(); err != nil {
		return err
	}

	var missing []string
	for _, want := range Tables() {
		if !present[want] {
			missing = append(missing, want)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing tables: %v", missing)
	}
	return nil
}
