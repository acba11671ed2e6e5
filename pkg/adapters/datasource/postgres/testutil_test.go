package postgres

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

const testDescriptor = "postgresql://tester:pw@db.example:5432/shop?sslmode=disable"

// mockOpener hands out a single sqlmock handle and records the connection string it was asked for.
type mockOpener struct {
	db      *sql.DB
	err     error
	connStr string
	calls   int
}

func (m *mockOpener) open(ctx context.Context, connStr string) (*sql.DB, error) {
	m.calls++
	m.connStr = connStr
	if m.err != nil {
		return nil, m.err
	}
	return m.db, nil
}

func newMock(t *testing.T) (*mockOpener, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &mockOpener{db: db}, mock
}
