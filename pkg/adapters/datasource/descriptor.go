package datasource

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/Akul0725/sqlchat/pkg/apperrors"
)

// DefaultPort is the PostgreSQL port assumed when a descriptor names none.
const DefaultPort = 5432

// Descriptor is a parsed PostgreSQL connection descriptor.
type Descriptor struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	// Params carries query parameters through unchanged (sslmode, connect_timeout, ...).
	Params url.Values
}

// ParseDescriptor parses a URI-style connection descriptor.
//
// Accepted schemes are postgres://, postgresql:// and the driver-qualified
// postgresql+<driver>:// form, whose driver suffix is ignored. A host and a
// database name are required.
func ParseDescriptor(raw string) (*Descriptor, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty descriptor", apperrors.ErrInvalidDescriptor)
	}

	u, err := url.Parse(raw)
	if err != nil {
		// url errors echo the input, which may hold a password.
		return nil, fmt.Errorf("%w: malformed URI", apperrors.ErrInvalidDescriptor)
	}

	scheme := strings.ToLower(u.Scheme)
	if base, _, found := strings.Cut(scheme, "+"); found {
		scheme = base
	}
	if scheme != "postgres" && scheme != "postgresql" {
		return nil, fmt.Errorf("%w: unsupported scheme %q", apperrors.ErrInvalidDescriptor, u.Scheme)
	}

	d := &Descriptor{
		Host:   u.Hostname(),
		Port:   DefaultPort,
		Params: u.Query(),
	}

	if d.Host == "" {
		return nil, fmt.Errorf("%w: host is required", apperrors.ErrInvalidDescriptor)
	}

	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil || port <= 0 || port > 65535 {
			return nil, fmt.Errorf("%w: invalid port %q", apperrors.ErrInvalidDescriptor, p)
		}
		d.Port = port
	}

	if u.User != nil {
		d.User = u.User.Username()
		d.Password, _ = u.User.Password()
	}

	d.Database = strings.TrimPrefix(u.Path, "/")
	if d.Database == "" {
		return nil, fmt.Errorf("%w: database name is required", apperrors.ErrInvalidDescriptor)
	}
	if strings.Contains(d.Database, "/") {
		return nil, fmt.Errorf("%w: invalid database name %q", apperrors.ErrInvalidDescriptor, d.Database)
	}

	return d, nil
}

// URL renders the descriptor back into a postgres:// URL with every field escaped.
// The host is used as given; callers resolve it first when needed.
func (d *Descriptor) URL(host string) string {
	u := &url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(host, strconv.Itoa(d.Port)),
		Path:   "/" + d.Database,
	}
	if d.User != "" {
		if d.Password != "" {
			u.User = url.UserPassword(d.User, d.Password)
		} else {
			u.User = url.User(d.User)
		}
	}
	if len(d.Params) > 0 {
		u.RawQuery = d.Params.Encode()
	}
	return u.String()
}

// String returns the descriptor with the password removed, safe for logs.
func (d *Descriptor) String() string {
	u := &url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:   "/" + d.Database,
	}
	if d.User != "" {
		u.User = url.User(d.User)
	}
	return u.String()
}
