package user

import (
	"context"
	"errors"
)

// Store provides user persistence.
// This interface is defined in the domain to avoid circular imports.
// Implementations: SQLite (prod), in-memory mock (test).
type Store interface {
	// Create inserts a new user.
	// Returns ErrDuplicateUsername if the username is taken and
	// ErrMasterExists when a second master would be created.
	Create(ctx context.Context, u *User) error

	// GetByID retrieves a user by ID.
	// Returns ErrUserNotFound if no such user exists.
	GetByID(ctx context.Context, id string) (*User, error)

	// GetByUsername retrieves a user by login name.
	// Returns ErrUserNotFound if no such user exists.
	GetByUsername(ctx context.Context, username string) (*User, error)

	// GetMaster retrieves the deployment's master user.
	// Returns ErrUserNotFound while no master has registered.
	GetMaster(ctx context.Context) (*User, error)

	// RecordLogin stores the time and client IP of a successful login.
	RecordLogin(ctx context.Context, id string, ip string) error
}

// Store errors.
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrDuplicateUsername = errors.New("username already exists")
	ErrMasterExists      = errors.New("master user already exists")
)
