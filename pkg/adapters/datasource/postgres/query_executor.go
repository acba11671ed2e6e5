package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Akul0725/sqlchat/pkg/adapters/datasource"
	"github.com/Akul0725/sqlchat/pkg/logging"
	sqlpkg "github.com/Akul0725/sqlchat/pkg/sql"
)

// DefaultMaxResultRows caps the rows kept from a row-returning statement.
const DefaultMaxResultRows = 100

// QueryRunner executes generated statements against PostgreSQL.
type QueryRunner struct {
	connector
	maxRows int
}

// NewQueryRunner creates a runner keeping at most maxRows rows per result.
// A non-positive maxRows means DefaultMaxResultRows.
// If logger is nil, a no-op logger is used.
func NewQueryRunner(maxRows int, logger *zap.Logger, opts ...Option) *QueryRunner {
	if maxRows <= 0 {
		maxRows = DefaultMaxResultRows
	}
	c := newConnector(logger, opts)
	c.logger = c.logger.Named("postgres.query")
	return &QueryRunner{connector: c, maxRows: maxRows}
}

// RunQuery normalizes the statement, executes it on a fresh connection and
// closes the connection before returning. Rows past the cap are counted but
// not kept. Statements other than queries report their affected row count.
func (r *QueryRunner) RunQuery(ctx context.Context, descriptor string, query string) (*datasource.QueryResult, error) {
	normalized, err := sqlpkg.ValidateAndNormalize(query)
	if err != nil {
		return nil, err
	}

	db, err := r.connect(ctx, descriptor)
	if err != nil {
		return nil, err
	}
	defer r.close(db)

	start := time.Now()
	var result *datasource.QueryResult
	if sqlpkg.ReturnsRows(normalized) {
		result, err = r.query(ctx, db, normalized)
	} else {
		result, err = r.exec(ctx, db, normalized)
	}
	if err != nil {
		r.logger.Warn("Statement failed",
			zap.String("sql", logging.SanitizeQuery(normalized)),
			zap.String("error", logging.SanitizeError(err)))
		return nil, err
	}

	r.logger.Debug("Statement executed",
		zap.String("keyword", sqlpkg.Keyword(normalized)),
		zap.Bool("returns_rows", result.ReturnsRows),
		zap.Int("total_rows", result.TotalRows),
		zap.Int64("rows_affected", result.RowsAffected),
		zap.Duration("elapsed", time.Since(start)))

	return result, nil
}

func (r *QueryRunner) query(ctx context.Context, db *sql.DB, query string) (*datasource.QueryResult, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	result := &datasource.QueryResult{
		Columns:     columns,
		Rows:        make([][]string, 0),
		ReturnsRows: true,
	}

	for rows.Next() {
		result.TotalRows++
		if len(result.Rows) >= r.maxRows {
			result.Truncated = true
			continue
		}

		values, err := scanRow(rows, len(columns))
		if err != nil {
			return nil, fmt.Errorf("read row values: %w", err)
		}
		cells := make([]string, len(values))
		for i, v := range values {
			cells[i] = datasource.FormatValue(v)
		}
		result.Rows = append(result.Rows, cells)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *QueryRunner) exec(ctx context.Context, db *sql.DB, stmt string) (*datasource.QueryResult, error) {
	res, err := db.ExecContext(ctx, stmt)
	if err != nil {
		return nil, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		// DDL reports no count.
		affected = 0
	}

	return &datasource.QueryResult{RowsAffected: affected}, nil
}

// Ensure QueryRunner implements datasource.QueryRunner at compile time.
var _ datasource.QueryRunner = (*QueryRunner)(nil)
