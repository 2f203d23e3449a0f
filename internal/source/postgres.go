package source

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/airsat/internal/core"
)

// Querier is the subset of *pgxpool.Pool used to read a table.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresTable loads the survey from a database table whose columns use the
// snake_case names in core.Schema (FieldSpec.DBColumn).
type PostgresTable struct {
	URL      string
	Table    string // optionally schema-qualified: "public.survey"
	MaxConns int32  // pool size while loading; 0 keeps the pgx default
	OrderBy  string // column giving the row order; empty keeps the table's order
}

// Load connects, reads the table once, and closes the pool.
func (s PostgresTable) Load(ctx context.Context) (*core.Dataset, error) {
	poolConfig, err := pgxpool.ParseConfig(s.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	if s.MaxConns > 0 {
		poolConfig.MaxConns = s.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return ReadTable(ctx, pool, s.Table, s.OrderBy)
}

func (s PostgresTable) String() string {
	return "postgres:" + s.Table
}

// ReadTable selects every survey column from table, sorted by orderBy when it
// is set. Without orderBy rows arrive in whatever order the database returns.
// NULL delays load as missing values; NULL categorical values load as empty
// strings.
func ReadTable(ctx context.Context, q Querier, table, orderBy string) (*core.Dataset, error) {
	columns, err := tableColumns(ctx, q, table)
	if err != nil {
		return nil, err
	}
	if _, err := core.ValidateHeaders(columns, dbSchema()); err != nil {
		return nil, err
	}
	if orderBy != "" && !slices.Contains(columns, orderBy) {
		return nil, fmt.Errorf("order column %q not found in %s", orderBy, table)
	}

	rows, err := q.Query(ctx, selectQuery(table, orderBy))
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	var records []core.Record
	for rows.Next() {
		var rec core.Record
		if err := rows.Scan(scanTargets(&rec)...); err != nil {
			return nil, fmt.Errorf("row %d: invalid number: %w", len(records)+1, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", table, err)
	}
	return core.NewDataset(core.SchemaHeader(), records), nil
}

// tableColumns returns the column names of table without reading any rows.
func tableColumns(ctx context.Context, q Querier, table string) ([]string, error) {
	rows, err := q.Query(ctx, "SELECT * FROM "+tableIdent(table)+" LIMIT 0")
	if err != nil {
		return nil, fmt.Errorf("describe %s: %w", table, err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	names := make([]string, len(fields))
	for i, fd := range fields {
		names[i] = fd.Name
	}
	return names, rows.Err()
}

// dbSchema returns core.Schema with Name replaced by the database column name.
func dbSchema() []core.FieldSpec {
	specs := make([]core.FieldSpec, len(core.Schema))
	for i, spec := range core.Schema {
		spec.Name = spec.DBColumn
		specs[i] = spec
	}
	return specs
}

func selectQuery(table, orderBy string) string {
	exprs := make([]string, 0, len(core.Schema))
	for _, spec := range core.Schema {
		col := pgx.Identifier{spec.DBColumn}.Sanitize()
		switch spec.Type {
		case core.FieldCategorical:
			exprs = append(exprs, fmt.Sprintf("COALESCE(%s::text, '')", col))
		case core.FieldInteger:
			exprs = append(exprs, col+"::integer")
		case core.FieldFloat:
			exprs = append(exprs, col+"::double precision")
		}
	}
	q := fmt.Sprintf("SELECT %s FROM %s", strings.Join(exprs, ", "), tableIdent(table))
	if orderBy != "" {
		q += " ORDER BY " + pgx.Identifier{orderBy}.Sanitize()
	}
	return q
}

func tableIdent(table string) string {
	return pgx.Identifier(strings.Split(table, ".")).Sanitize()
}

func scanTargets(rec *core.Record) []any {
	targets := make([]any, len(core.Schema))
	for i, spec := range core.Schema {
		targets[i] = rec.FieldPtr(spec.Column)
	}
	return targets
}
