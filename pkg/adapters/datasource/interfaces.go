package datasource

import "context"

// SchemaInspector renders a textual description of a database for prompt construction.
// Each call owns its connection: it opens one, reads, and closes it before returning.
type SchemaInspector interface {
	// DescribeSchema returns CREATE TABLE renderings plus sample rows for every user table.
	DescribeSchema(ctx context.Context, descriptor string) (string, error)
}

// QueryRunner executes a single generated statement against a database.
// Each call owns its connection: it opens one, executes, and closes it before returning.
type QueryRunner interface {
	// RunQuery normalizes and executes the statement and returns its result.
	RunQuery(ctx context.Context, descriptor string, query string) (*QueryResult, error)
}

// QueryResult contains the results of a SQL statement execution.
// Row-returning statements fill Columns and Rows; everything else fills RowsAffected.
type QueryResult struct {
	Columns      []string   `json:"columns"`
	Rows         [][]string `json:"rows"`
	ReturnsRows  bool       `json:"returns_rows"`
	Truncated    bool       `json:"truncated"`
	TotalRows    int        `json:"total_rows"` // rows produced, including any past the cap
	RowsAffected int64      `json:"rows_affected"`
}
