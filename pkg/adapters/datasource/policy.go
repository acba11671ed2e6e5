package datasource

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/Akul0725/sqlchat/pkg/apperrors"
)

// HostPolicy decides which database hosts a remote caller may name in a
// descriptor. A policy without hosts allows every host.
//
// Hosts are compared case-insensitively against the descriptor as given,
// before any loopback rewrite for Docker.
type HostPolicy struct {
	allowed map[string]bool
}

// NewHostPolicy builds a policy from a host list. Blank entries are ignored.
func NewHostPolicy(hosts []string) *HostPolicy {
	p := &HostPolicy{allowed: make(map[string]bool, len(hosts))}
	for _, h := range hosts {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" {
			p.allowed[h] = true
		}
	}
	return p
}

// Restricted reports whether the policy limits hosts at all. A nil policy is unrestricted.
func (p *HostPolicy) Restricted() bool {
	return p != nil && len(p.allowed) > 0
}

// Hosts returns the allowed hosts in sorted order.
func (p *HostPolicy) Hosts() []string {
	if p == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(p.allowed))
}

// Check returns an error wrapping apperrors.ErrHostNotAllowed when d names a
// host outside the policy.
func (p *HostPolicy) Check(d *Descriptor) error {
	if !p.Restricted() || p.allowed[strings.ToLower(d.Host)] {
		return nil
	}
	return fmt.Errorf("%w: %q", apperrors.ErrHostNotAllowed, d.Host)
}

// Parse parses raw and checks its host against the policy.
func (p *HostPolicy) Parse(raw string) (*Descriptor, error) {
	d, err := ParseDescriptor(raw)
	if err != nil {
		return nil, err
	}
	if err := p.Check(d); err != nil {
		return nil, err
	}
	return d, nil
}
