package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"go.uber.org/zap"

	"github.com/Akul0725/sqlchat/pkg/adapters/datasource"
	"github.com/Akul0725/sqlchat/pkg/config"
	"github.com/Akul0725/sqlchat/pkg/logging"
)

// DriverName is the database/sql driver registered by pgx's stdlib package.
const DriverName = "pgx"

// Opener opens and verifies a database handle for a connection string.
// Tests replace it to hand out sqlmock handles.
type Opener func(ctx context.Context, connStr string) (*sql.DB, error)

// Option configures an inspector or runner.
type Option func(*connector)

// WithOpener overrides how database handles are opened.
func WithOpener(open Opener) Option {
	return func(c *connector) {
		c.open = open
	}
}

// OpenPgx opens a single-connection handle through the pgx driver and pings it,
// so that an unreachable server fails here rather than on first use.
func OpenPgx(ctx context.Context, connStr string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, connStr)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// buildConnectionString renders a descriptor as a pgx connection URL with proper escaping.
// When running in Docker, localhost is resolved to host.docker.internal
// to allow connections to databases running on the host machine.
func buildConnectionString(d *datasource.Descriptor) string {
	return d.URL(config.ResolveDatabaseHost(d.Host))
}

// connector holds what inspector and runner share: one handle per call.
type connector struct {
	open   Opener
	logger *zap.Logger
}

func newConnector(logger *zap.Logger, opts []Option) connector {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := connector{open: OpenPgx, logger: logger}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// connect parses the descriptor and opens a handle. The caller must close it.
func (c *connector) connect(ctx context.Context, descriptor string) (*sql.DB, error) {
	d, err := datasource.ParseDescriptor(descriptor)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Opening database connection",
		zap.String("descriptor", d.String()))

	db, err := c.open(ctx, buildConnectionString(d))
	if err != nil {
		c.logger.Warn("Database connection failed",
			zap.String("descriptor", d.String()),
			zap.String("error", logging.SanitizeError(err)))
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	return db, nil
}

func (c *connector) close(db *sql.DB) {
	if err := db.Close(); err != nil {
		c.logger.Warn("Failed to close database connection", zap.Error(err))
	}
}

// qualifiedTableName returns a properly quoted table reference.
// If schemaName is empty, returns just the quoted table name.
// Otherwise returns "schema"."table".
func qualifiedTableName(schemaName, tableName string) string {
	if schemaName == "" {
		return pgx.Identifier{tableName}.Sanitize()
	}
	return pgx.Identifier{schemaName, tableName}.Sanitize()
}
