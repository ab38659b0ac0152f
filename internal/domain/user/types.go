// Package user contains the domain types for platform accounts.
package user

import (
	"time"
)

// Role represents an account role for authorization purposes.
type Role string

const (
	// RoleMaster is the blog owner. Exactly one master exists per deployment.
	RoleMaster Role = "master"
	// RoleMember is a regular authenticated account.
	RoleMember Role = "member"
)

// IsValid returns true if the role is a known valid role.
func (r Role) IsValid() bool {
	switch r {
	case RoleMaster, RoleMember:
		return true
	default:
		return false
	}
}

// User is an identity record. The credential hash is Argon2id in PHC format
// and never leaves the user store except for verification.
type User struct {
	// ID is the unique identifier for this account.
	ID string
	// Username is the unique login name.
	Username string
	// Nickname is the display name shown on the blog.
	Nickname string
	// PasswordHash is the Argon2id hash of the password.
	PasswordHash string
	// Role is the account role.
	Role Role
	// CreatedAt is when the account was created (UTC).
	CreatedAt time.Time
	// LastLoginAt is the time of the most recent successful login (zero = never).
	LastLoginAt time.Time
	// LastLoginIP is the client IP of the most recent successful login.
	LastLoginIP string
}

// IsMaster returns true if the account holds the master role.
func (u *User) IsMaster() bool {
	return u.Role == RoleMaster
}
