// Package user manages account holders and their roles.
package user

import "time"

// Role names understood by the authorization layer.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// User is an account holder. Cards reference a user through its ID; the
// password hash never leaves the auth layer.
type User struct {
	ID           int64
	Username     string
	PasswordHash []byte
	FullName     string
	Roles        []string
	Enabled      bool
	CreatedAt    time.Time
}

// HasRole reports whether the user carries the named role.
func (u User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}
