package sql

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReturnsRows(t *testing.T) {
	tests := []struct {
		query    string
		expected bool
	}{
		{"SELECT * FROM users", true},
		{"  select 1", true},
		{"WITH recent AS (SELECT * FROM users) SELECT * FROM recent", true},
		{"(SELECT 1) UNION (SELECT 2)", true},
		{"-- count users\nSELECT COUNT(*) FROM users", true},
		{"/* hint */ SELECT 1", true},
		{"VALUES (1), (2)", true},
		{"TABLE users", true},
		{"SHOW search_path", true},
		{"EXPLAIN SELECT 1", true},
		{"INSERT INTO users (name) VALUES ('a') RETURNING id", true},
		{"INSERT INTO users (name) VALUES ('a')", false},
		{"UPDATE users SET name = 'returning' WHERE id = 1", false},
		{"DELETE FROM users", false},
		{"CREATE TABLE t (id int)", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.expected, ReturnsRows(tt.query))
		})
	}
}

func TestKeyword(t *testing.T) {
	assert.Equal(t, "SELECT", Keyword("select 1"))
	assert.Equal(t, "DELETE", Keyword("-- purge\ndelete from users"))
	assert.Equal(t, "SELECT", Keyword("SELECT/*x*/1"))
	assert.Equal(t, "", Keyword("  "))
}
