package model

import (
	"strings"
	"time"
)

// Role names a set of capabilities granted to a user. Roles are stored
// on the user record and re-read on every authenticated request, so a
// role change takes effect without re-issuing tokens.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
	RoleAgent    Role = "agent"
)

// ParseRole normalises a role name. Unknown names return false.
func ParseRole(s string) (Role, bool) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleCustomer, RoleAdmin, RoleAgent:
		return r, true
	}
	return "", false
}

// User represents an application user record as stored in the `users`
// table. The password hash never leaves the process: it carries no json
// tag and handlers only ever render the struct through its json form.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	FullName     – display name, used as the fallback customer name on bookings.
//	Email        – unique, lower-cased email address.
//	PasswordHash – bcrypt hash of the password.
//	Phone        – optional contact phone.
//	Roles        – one or more roles; customer is always present.
//	IsActive     – inactive users cannot authenticate.
//	CreatedAt    – timestamp of creation.
//	UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    `json:"id"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Phone        string    `json:"phoneNo,omitempty"`
	Roles        []Role    `json:"roles"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// HasRole reports whether the user holds role r.
func (u User) HasRole(r Role) bool {
	for _, have := range u.Roles {
		if have == r {
			return true
		}
	}
	return false
}

// JoinRoles renders roles as the comma separated form stored in the
// users.roles column.
func JoinRoles(roles []Role) string {
	parts := make([]string, 0, len(roles))
	for _, r := range roles {
		parts = append(parts, string(r))
	}
	return strings.Join(parts, ",")
}

// SplitRoles is the inverse of JoinRoles. Unknown entries are skipped.
func SplitRoles(s string) []Role {
	var out []Role
	for _, p := range strings.Split(s, ",") {
		if r, ok := ParseRole(p); ok {
			out = append(out, r)
		}
	}
	return out
}
