package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Akul0725/sqlchat/pkg/adapters/datasource"
	"github.com/Akul0725/sqlchat/pkg/logging"
)

// DefaultSampleRows is the number of example rows rendered under each table.
const DefaultSampleRows = 3

const systemSchemaFilter = `NOT IN ('pg_catalog', 'information_schema', 'pg_toast')
		  AND %s NOT LIKE 'pg_temp%%'
		  AND %s NOT LIKE 'pg_toast_temp%%'`

var (
	tablesQuery = `
		SELECT table_schema, table_name
		FROM information_schema.tables
		WHERE table_type = 'BASE TABLE'
		  AND table_schema ` + fmt.Sprintf(systemSchemaFilter, "table_schema", "table_schema") + `
		ORDER BY table_schema, table_name`

	// format_type renders declared types the way DDL spells them, e.g. character varying(100).
	columnsQuery = `
		SELECT n.nspname, c.relname, a.attname, format_type(a.atttypid, a.atttypmod), a.attnotnull
		FROM pg_attribute a
		JOIN pg_class c ON c.oid = a.attrelid
		JOIN pg_namespace n ON n.oid = c.relnamespace
		WHERE c.relkind IN ('r', 'p')
		  AND a.attnum > 0
		  AND NOT a.attisdropped
		  AND n.nspname ` + fmt.Sprintf(systemSchemaFilter, "n.nspname", "n.nspname") + `
		ORDER BY n.nspname, c.relname, a.attnum`

	// contype 'p' sorts after 'f', so DESC puts the primary key first.
	constraintsQuery = `
		SELECT n.nspname, c.relname, pg_get_constraintdef(con.oid)
		FROM pg_constraint con
		JOIN pg_class c ON c.oid = con.conrelid
		JOIN pg_namespace n ON n.oid = c.relnamespace
		WHERE con.contype IN ('p', 'f')
		  AND n.nspname ` + fmt.Sprintf(systemSchemaFilter, "n.nspname", "n.nspname") + `
		ORDER BY n.nspname, c.relname, con.contype DESC, con.conname`
)

type tableKey struct {
	schema string
	name   string
}

type columnDef struct {
	name    string
	typ     string
	notNull bool
}

type tableDef struct {
	key         tableKey
	columns     []columnDef
	constraints []string
}

// SchemaInspector describes PostgreSQL databases for prompt construction.
type SchemaInspector struct {
	connector
	sampleRows int
}

// NewSchemaInspector creates an inspector that renders up to sampleRows example
// rows per table. Zero disables samples; a negative value means DefaultSampleRows.
// If logger is nil, a no-op logger is used.
func NewSchemaInspector(sampleRows int, logger *zap.Logger, opts ...Option) *SchemaInspector {
	if sampleRows < 0 {
		sampleRows = DefaultSampleRows
	}
	c := newConnector(logger, opts)
	c.logger = c.logger.Named("postgres.schema")
	return &SchemaInspector{connector: c, sampleRows: sampleRows}
}

// DescribeSchema returns, for every user table, a CREATE TABLE rendering with
// column types, NOT NULL, primary and foreign keys, followed by a comment block
// of sample rows. Tables are separated by a blank line; a database without user
// tables yields an empty string.
func (s *SchemaInspector) DescribeSchema(ctx context.Context, descriptor string) (string, error) {
	start := time.Now()

	db, err := s.connect(ctx, descriptor)
	if err != nil {
		return "", err
	}
	defer s.close(db)

	tables, err := s.loadTables(ctx, db)
	if err != nil {
		return "", err
	}

	var blocks []string
	for _, t := range tables {
		var block strings.Builder
		writeCreateTable(&block, t)

		if s.sampleRows > 0 {
			sample, err := s.sampleTable(ctx, db, t)
			if err != nil {
				// A table the role cannot read still contributes its DDL.
				s.logger.Warn("Failed to sample table",
					zap.String("table", displayName(t.key)),
					zap.String("error", logging.SanitizeError(err)))
			} else {
				block.WriteString("\n\n")
				block.WriteString(sample)
			}
		}
		blocks = append(blocks, block.String())
	}

	s.logger.Debug("Schema described",
		zap.Int("tables", len(tables)),
		zap.Duration("elapsed", time.Since(start)))

	return strings.Join(blocks, "\n\n"), nil
}

func (s *SchemaInspector) loadTables(ctx context.Context, db *sql.DB) ([]*tableDef, error) {
	rows, err := db.QueryContext(ctx, tablesQuery)
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	defer rows.Close()

	var tables []*tableDef
	byKey := make(map[tableKey]*tableDef)
	for rows.Next() {
		var k tableKey
		if err := rows.Scan(&k.schema, &k.name); err != nil {
			return nil, fmt.Errorf("scan table: %w", err)
		}
		t := &tableDef{key: k}
		tables = append(tables, t)
		byKey[k] = t
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tables: %w", err)
	}
	if len(tables) == 0 {
		return nil, nil
	}

	if err := loadColumns(ctx, db, byKey); err != nil {
		return nil, err
	}
	if err := loadConstraints(ctx, db, byKey); err != nil {
		return nil, err
	}
	return tables, nil
}

func loadColumns(ctx context.Context, db *sql.DB, byKey map[tableKey]*tableDef) error {
	rows, err := db.QueryContext(ctx, columnsQuery)
	if err != nil {
		return fmt.Errorf("query columns: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			k tableKey
			c columnDef
		)
		if err := rows.Scan(&k.schema, &k.name, &c.name, &c.typ, &c.notNull); err != nil {
			return fmt.Errorf("scan column: %w", err)
		}
		// Partitions and views are not in the table list.
		if t, ok := byKey[k]; ok {
			t.columns = append(t.columns, c)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate columns: %w", err)
	}
	return nil
}

func loadConstraints(ctx context.Context, db *sql.DB, byKey map[tableKey]*tableDef) error {
	rows, err := db.QueryContext(ctx, constraintsQuery)
	if err != nil {
		return fmt.Errorf("query constraints: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			k   tableKey
			def string
		)
		if err := rows.Scan(&k.schema, &k.name, &def); err != nil {
			return fmt.Errorf("scan constraint: %w", err)
		}
		if t, ok := byKey[k]; ok {
			t.constraints = append(t.constraints, def)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate constraints: %w", err)
	}
	return nil
}

// sampleTable renders the first rows of a table as a tab separated comment block.
func (s *SchemaInspector) sampleTable(ctx context.Context, db *sql.DB, t *tableDef) (string, error) {
	query := fmt.Sprintf("SELECT * FROM %s LIMIT %d", qualifiedTableName(t.key.schema, t.key.name), s.sampleRows)

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return "", fmt.Errorf("sample %s: %w", displayName(t.key), err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return "", fmt.Errorf("sample columns: %w", err)
	}

	var lines []string
	for rows.Next() {
		values, err := scanRow(rows, len(columns))
		if err != nil {
			return "", fmt.Errorf("scan sample row: %w", err)
		}
		cells := make([]string, len(values))
		for i, v := range values {
			cells[i] = datasource.FormatSampleValue(v)
		}
		lines = append(lines, strings.Join(cells, "\t"))
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("iterate sample rows: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "/*\n%d rows from %s table:\n", s.sampleRows, displayName(t.key))
	b.WriteString(strings.Join(columns, "\t"))
	for _, line := range lines {
		b.WriteByte('\n')
		b.WriteString(line)
	}
	b.WriteString("\n*/")
	return b.String(), nil
}

func writeCreateTable(b *strings.Builder, t *tableDef) {
	fmt.Fprintf(b, "CREATE TABLE %s (", displayName(t.key))

	lines := make([]string, 0, len(t.columns)+len(t.constraints))
	for _, c := range t.columns {
		line := c.name + " " + c.typ
		if c.notNull {
			line += " NOT NULL"
		}
		lines = append(lines, line)
	}
	lines = append(lines, t.constraints...)

	for i, line := range lines {
		b.WriteString("\n\t")
		b.WriteString(line)
		if i < len(lines)-1 {
			b.WriteByte(',')
		}
	}
	b.WriteString("\n)")
}

// displayName leaves public tables unqualified, matching how generated SQL refers to them.
func displayName(k tableKey) string {
	if k.schema == "public" || k.schema == "" {
		return k.name
	}
	return k.schema + "." + k.name
}

// scanRow reads one row into driver values.
func scanRow(rows *sql.Rows, n int) ([]any, error) {
	values := make([]any, n)
	ptrs := make([]any, n)
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, err
	}
	return values, nil
}

// Ensure SchemaInspector implements datasource.SchemaInspector at compile time.
var _ datasource.SchemaInspector = (*SchemaInspector)(nil)
