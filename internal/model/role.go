package model

import (
	"strconv"
	"strings"
)

// Role is an opaque numeric role code carried in access-token claims and
// stored on the user record. Membership is a flat set: there is no rank or
// hierarchy between codes, and authorization checks test exact membership.
type Role int

// The closed set of role codes known to the application. New codes require a
// deploy; there is no runtime role registry.
const (
	RoleUser   Role = 2001
	RoleEditor Role = 1984
	RoleAdmin  Role = 5150
)

// ParseRoles converts the comma-separated role column ("2001,1984,5150") into
// a slice of Role codes. Non-numeric fragments are skipped rather than
// treated as errors so a hand-edited row cannot take logins down.
func ParseRoles(s string) []Role {
	parts := strings.Split(s, ",")
	roles := make([]Role, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			continue
		}
		roles = append(roles, Role(n))
	}
	return roles
}

// FormatRoles renders a role slice back into the comma-separated column form.
func FormatRoles(roles []Role) string {
	parts := make([]string, len(roles))
	for i, r := range roles {
		parts[i] = strconv.Itoa(int(r))
	}
	return strings.Join(parts, ",")
}
