package datasource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Akul0725/sqlchat/pkg/apperrors"
)

func TestHostPolicy_Unrestricted(t *testing.T) {
	for _, p := range []*HostPolicy{nil, NewHostPolicy(nil), NewHostPolicy([]string{"", "  "})} {
		assert.False(t, p.Restricted())

		d, err := p.Parse("postgresql://u:pw@anywhere.example/db")
		require.NoError(t, err)
		assert.Equal(t, "anywhere.example", d.Host)
	}
}

func TestHostPolicy_Allowlist(t *testing.T) {
	p := NewHostPolicy([]string{" DB.Internal ", "localhost"})
	require.True(t, p.Restricted())
	assert.Equal(t, []string{"db.internal", "localhost"}, p.Hosts())

	tests := []struct {
		name    string
		raw     string
		allowed bool
	}{
		{"listed host", "postgresql://u@db.internal:5432/shop", true},
		{"case differs", "postgresql://u@DB.INTERNAL/shop", true},
		{"loopback listed", "postgres://u@localhost/shop", true},
		{"other host", "postgresql://u:pw@169.254.169.254/shop", false},
		{"loopback ip not listed", "postgresql://u@127.0.0.1/shop", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Parse(tt.raw)
			if tt.allowed {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, apperrors.ErrHostNotAllowed)
			assert.NotContains(t, err.Error(), "pw")
		})
	}
}

func TestHostPolicy_ParseErrorsComeFirst(t *testing.T) {
	_, err := NewHostPolicy([]string{"db.internal"}).Parse("mysql://u@db.internal/shop")
	assert.ErrorIs(t, err, apperrors.ErrInvalidDescriptor)
}
