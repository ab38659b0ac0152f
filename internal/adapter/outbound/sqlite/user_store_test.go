package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/wispcms/wispgate/internal/domain/user"
)

func openTestStore(t *testing.T) *UserStore {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "users.db"))
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func masterUser(id, username string) *user.User {
	return &user.User{
		ID:           id,
		Username:     username,
		Nickname:     username,
		PasswordHash: "$argon2id$fake",
		Role:         user.RoleMaster,
		CreatedAt:    time.Now().UTC(),
	}
}

func TestUserStore_CreateAndGet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := openTestStore(t)

	u := masterUser("id-1", "alice")
	if err := store.Create(ctx, u); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	byID, err := store.GetByID(ctx, "id-1")
	if err != nil {
		t.Fatalf("GetByID() error: %v", err)
	}
	if byID.Username != "alice" || byID.Role != user.RoleMaster {
		t.Errorf("GetByID() = %+v, want alice/master", byID)
	}
	if !byID.LastLoginAt.IsZero() {
		t.Errorf("LastLoginAt = %v before any login, want zero", byID.LastLoginAt)
	}

	byName, err := store.GetByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("GetByUsername() error: %v", err)
	}
	if byName.ID != "id-1" {
		t.Errorf("GetByUsername().ID = %q, want id-1", byName.ID)
	}
}

func TestUserStore_NotFound(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := openTestStore(t)

	if _, err := store.GetByID(ctx, "missing"); !errors.Is(err, user.ErrUserNotFound) {
		t.Errorf("GetByID() error = %v, want ErrUserNotFound", err)
	}
	if _, err := store.GetByUsername(ctx, "missing"); !errors.Is(err, user.ErrUserNotFound) {
		t.Errorf("GetByUsername() error = %v, want ErrUserNotFound", err)
	}
	if _, err := store.GetMaster(ctx); !errors.Is(err, user.ErrUserNotFound) {
		t.Errorf("GetMaster() error = %v, want ErrUserNotFound", err)
	}
}

func TestUserStore_DuplicateUsername(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := openTestStore(t)

	if err := store.Create(ctx, masterUser("id-1", "alice")); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	dup := masterUser("id-2", "alice")
	dup.Role = user.RoleMember
	if err := store.Create(ctx, dup); !errors.Is(err, user.ErrDuplicateUsername) {
		t.Errorf("Create() error = %v, want ErrDuplicateUsername", err)
	}
}

func TestUserStore_SingleMaster(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := openTestStore(t)

	if err := store.Create(ctx, masterUser("id-1", "alice")); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if err := store.Create(ctx, masterUser("id-2", "bob")); !errors.Is(err, user.ErrMasterExists) {
		t.Errorf("Create() second master error = %v, want ErrMasterExists", err)
	}

	// Members are not constrained by the master index.
	member := masterUser("id-3", "carol")
	member.Role = user.RoleMember
	if err := store.Create(ctx, member); err != nil {
		t.Errorf("Create() member error: %v", err)
	}

	got, err := store.GetMaster(ctx)
	if err != nil {
		t.Fatalf("GetMaster() error: %v", err)
	}
	if got.Username != "alice" {
		t.Errorf("GetMaster().Username = %q, want alice", got.Username)
	}
}

func TestUserStore_RecordLogin(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := openTestStore(t)

	if err := store.Create(ctx, masterUser("id-1", "alice")); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if err := store.RecordLogin(ctx, "id-1", "203.0.113.9"); err != nil {
		t.Fatalf("RecordLogin() error: %v", err)
	}

	got, err := store.GetByID(ctx, "id-1")
	if err != nil {
		t.Fatalf("GetByID() error: %v", err)
	}
	if got.LastLoginAt.IsZero() {
		t.Error("LastLoginAt still zero after RecordLogin")
	}
	if got.LastLoginIP != "203.0.113.9" {
		t.Errorf("LastLoginIP = %q, want 203.0.113.9", got.LastLoginIP)
	}
}
