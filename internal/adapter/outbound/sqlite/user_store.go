// Package sqlite provides the durable user store backed by SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/wispcms/wispgate/internal/domain/user"
)

// schema creates the users table. The partial unique index enforces the
// one-master-per-deployment invariant at the database level.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	username      TEXT NOT NULL UNIQUE,
	nickname      TEXT NOT NULL DEFAULT '',
	password_hash TEXT NOT NULL,
	role          TEXT NOT NULL,
	created_at    TIMESTAMP NOT NULL,
	last_login_at TIMESTAMP,
	last_login_ip TEXT NOT NULL DEFAULT ''
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_single_master ON users(role) WHERE role = 'master';
`

// UserStore implements user.Store on a SQLite database.
type UserStore struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and initializes the schema.
// WAL mode keeps concurrent gateway reads from blocking on writes.
func Open(path string) (*UserStore, error) {
	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &UserStore{db: db}, nil
}

// Close closes the underlying database.
func (s *UserStore) Close() error {
	return s.db.Close()
}

// Create inserts a new user.
func (s *UserStore) Create(ctx context.Context, u *user.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, username, nickname, password_hash, role, created_at, last_login_ip)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.Nickname, u.PasswordHash, string(u.Role), u.CreatedAt, u.LastLoginIP,
	)
	if err != nil {
		switch {
		case strings.Contains(err.Error(), "idx_users_single_master"):
			return user.ErrMasterExists
		case strings.Contains(err.Error(), "users.username"):
			return user.ErrDuplicateUsername
		default:
			return fmt.Errorf("insert user: %w", err)
		}
	}
	return nil
}

// GetByID retrieves a user by ID.
func (s *UserStore) GetByID(ctx context.Context, id string) (*user.User, error) {
	return s.scanOne(s.db.QueryRowContext(ctx,
		selectColumns+` FROM users WHERE id = ?`, id))
}

// GetByUsername retrieves a user by login name.
func (s *UserStore) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	return s.scanOne(s.db.QueryRowContext(ctx,
		selectColumns+` FROM users WHERE username = ?`, username))
}

// GetMaster retrieves the deployment's master user.
func (s *UserStore) GetMaster(ctx context.Context) (*user.User, error) {
	return s.scanOne(s.db.QueryRowContext(ctx,
		selectColumns+` FROM users WHERE role = ?`, string(user.RoleMaster)))
}

// RecordLogin stores the time and client IP of a successful login.
func (s *UserStore) RecordLogin(ctx context.Context, id string, ip string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET last_login_at = ?, last_login_ip = ? WHERE id = ?`,
		time.Now().UTC(), ip, id,
	)
	if err != nil {
		return fmt.Errorf("record login: %w", err)
	}
	return nil
}

const selectColumns = `SELECT id, username, nickname, password_hash, role, created_at, last_login_at, last_login_ip`

// scanOne maps a single row into a user, translating sql.ErrNoRows.
func (s *UserStore) scanOne(row *sql.Row) (*user.User, error) {
	var u user.User
	var role string
	var lastLogin sql.NullTime
	err := row.Scan(&u.ID, &u.Username, &u.Nickname, &u.PasswordHash, &role, &u.CreatedAt, &lastLogin, &u.LastLoginIP)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, user.ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.Role = user.Role(role)
	if lastLogin.Valid {
		u.LastLoginAt = lastLogin.Time
	}
	return &u, nil
}

// Compile-time interface verification.
var _ user.Store = (*UserStore)(nil)
