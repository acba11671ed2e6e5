package pipeline

import (
	"context"
	"sync"

	"github.com/Akul0725/sqlchat/pkg/adapters/datasource"
)

// mockInspector implements datasource.SchemaInspector for tests.
type mockInspector struct {
	DescribeSchemaFunc func(ctx context.Context, descriptor string) (string, error)

	mu          sync.Mutex
	calls       int
	descriptors []string
}

func (m *mockInspector) DescribeSchema(ctx context.Context, descriptor string) (string, error) {
	m.mu.Lock()
	m.calls++
	m.descriptors = append(m.descriptors, descriptor)
	m.mu.Unlock()

	if m.DescribeSchemaFunc != nil {
		return m.DescribeSchemaFunc(ctx, descriptor)
	}
	return "", nil
}

func (m *mockInspector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockRunner implements datasource.QueryRunner for tests.
type mockRunner struct {
	RunQueryFunc func(ctx context.Context, descriptor, query string) (*datasource.QueryResult, error)

	mu      sync.Mutex
	calls   int
	queries []string
}

func (m *mockRunner) RunQuery(ctx context.Context, descriptor, query string) (*datasource.QueryResult, error) {
	m.mu.Lock()
	m.calls++
	m.queries = append(m.queries, query)
	m.mu.Unlock()

	if m.RunQueryFunc != nil {
		return m.RunQueryFunc(ctx, descriptor, query)
	}
	return &datasource.QueryResult{ReturnsRows: true}, nil
}

func (m *mockRunner) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *mockRunner) Queries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.queries...)
}

var (
	_ datasource.SchemaInspector = (*mockInspector)(nil)
	_ datasource.QueryRunner     = (*mockRunner)(nil)
)
