// Package testhelpers provides utilities for testing sqlchat components.
package testhelpers

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// PostgresImage is the image used for integration tests.
const PostgresImage = "postgres:16-alpine"

const (
	TestDatabase   = "sqlchat_test" // database created in the container
	testDBUser     = "sqlchat"
	testDBPassword = "test_password"
)

// SeedSQL creates the fixture schema every integration test can rely on:
// three users and three orders referencing them.
const SeedSQL = `
CREATE TABLE users (
	id         SERIAL PRIMARY KEY,
	name       VARCHAR(100) NOT NULL,
	email      TEXT UNIQUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE orders (
	id      SERIAL PRIMARY KEY,
	user_id INTEGER NOT NULL REFERENCES users (id),
	total   NUMERIC(10, 2) NOT NULL
);

INSERT INTO users (name, email) VALUES
	('Alice', 'alice@example.com'),
	('Bob', 'bob@example.com'),
	('Carol', 'carol@example.com');

INSERT INTO orders (user_id, total) VALUES
	(1, 19.99),
	(1, 5.00),
	(2, 42.50);
`

// TestDB holds a shared test database container and connection pool.
type TestDB struct {
	Container testcontainers.Container
	Pool      *pgxpool.Pool
	// Descriptor is the URI a pipeline run uses to reach the seeded database.
	Descriptor string
}

var (
	sharedTestDB     *TestDB
	sharedTestDBOnce sync.Once
	sharedTestDBErr  error
)

// GetTestDB returns a shared PostgreSQL container for integration tests.
// The container is created and seeded once and reused across all tests in the run.
// Tests that write must clean up after themselves.
func GetTestDB(t *testing.T) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode (requires Docker)")
	}

	sharedTestDBOnce.Do(func() {
		sharedTestDB, sharedTestDBErr = setupTestDB()
	})

	if sharedTestDBErr != nil {
		t.Fatalf("Failed to setup test database: %v", sharedTestDBErr)
	}

	return sharedTestDB
}

func setupTestDB() (*TestDB, error) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        PostgresImage,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       TestDatabase,
			"POSTGRES_USER":     testDBUser,
			"POSTGRES_PASSWORD": testDBPassword,
		},
		// The entrypoint restarts the server once after init scripts run.
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start test container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}

	descriptor := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		testDBUser, testDBPassword, host, port.Port(), TestDatabase)

	pool, err := pgxpool.New(ctx, descriptor)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Verify connection with retry
	var pingErr error
	for i := 0; i < 10; i++ {
		if pingErr = pool.Ping(ctx); pingErr == nil {
			break
		}
		time.Sleep(500 * time.Millisecond)
	}
	if pingErr != nil {
		pool.Close()
		return nil, fmt.Errorf("test database not reachable: %w", pingErr)
	}

	if _, err := pool.Exec(ctx, SeedSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to seed test database: %w", err)
	}

	return &TestDB{
		Container:  container,
		Pool:       pool,
		Descriptor: descriptor,
	}, nil
}
