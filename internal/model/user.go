package model

import "time"

// User represents an application user record as stored in the `users` table.
// Roles are persisted as a comma-separated string column and exposed here as
// a parsed slice; repositories perform the conversion at the boundary.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Username     – unique login name (matched case-sensitively).
//  PasswordHash – bcrypt hashed password.
//  Roles        – flat set of numeric role codes.
//  CreatedAt    – timestamp of creation.
type User struct {
	ID           uint64    // users.id
	Username     string    // users.username
	PasswordHash string    // users.password_hash
	Roles        []Role    // users.roles (CSV column, parsed)
	CreatedAt    time.Time // users.created_at
}

// HasRole reports whether the user carries the given role code.
func (u User) HasRole(r Role) bool {
	for _, have := range u.Roles {
		if have == r {
			return true
		}
	}
	return false
}
