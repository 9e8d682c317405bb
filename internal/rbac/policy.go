package rbac

import "strings"

// Policy maps a role to its grants. A grant is an exact permission such as
// "check:view", a "check:*" wildcard, or "*".
type Policy map[string][]string

// Allows reports whether role holds perm.
func (p Policy) Allows(role, perm string) bool {
	for _, g := range p[role] {
		if grantCovers(g, perm) {
			return true
		}
	}
	return false
}

func (p Policy) AllowsAny(role string, perms ...string) bool {
	for _, perm := range perms {
		if p.Allows(role, perm) {
			return true
		}
	}
	return false
}

// HasRole reports whether role is defined, even with no grants.
func (p Policy) HasRole(role string) bool {
	_, ok := p[role]
	return ok
}

func grantCovers(grant, perm string) bool {
	switch {
	case grant == "*" || grant == perm:
		return true
	case strings.HasSuffix(grant, ":*"):
		return strings.HasPrefix(perm, strings.TrimSuffix(grant, "*"))
	}
	return false
}
