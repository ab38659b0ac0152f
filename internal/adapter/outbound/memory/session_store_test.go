package memory

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/wispcms/wispgate/internal/domain/session"
	"github.com/wispcms/wispgate/internal/domain/token"
)

func TestSessionStore_CreateAndGet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewSessionStore(nil)

	sess, err := store.Create(ctx, "user-1", session.ClientMeta{IP: "10.0.0.1", UserAgent: "test-agent"})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if !token.WellFormed(sess.TokenID) {
		t.Errorf("Create() token = %q, not well formed", sess.TokenID)
	}

	got, err := store.Get(ctx, sess.TokenID)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.UserID != "user-1" {
		t.Errorf("UserID = %q, want %q", got.UserID, "user-1")
	}
	if got.Client.IP != "10.0.0.1" {
		t.Errorf("Client.IP = %q, want %q", got.Client.IP, "10.0.0.1")
	}
	if got.IssuedAt.IsZero() || got.LastSeenAt.IsZero() {
		t.Error("IssuedAt/LastSeenAt not set")
	}
}

func TestSessionStore_GetNonExistent(t *testing.T) {
	t.Parallel()

	store := NewSessionStore(nil)
	_, err := store.Get(context.Background(), "wt_nonexistent")
	if !errors.Is(err, session.ErrSessionNotFound) {
		t.Errorf("Get() error = %v, want ErrSessionNotFound", err)
	}
}

func TestSessionStore_GetReturnsCopy(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewSessionStore(nil)

	sess, _ := store.Create(ctx, "user-1", session.ClientMeta{})
	got, _ := store.Get(ctx, sess.TokenID)
	got.UserID = "mutated"

	again, _ := store.Get(ctx, sess.TokenID)
	if again.UserID != "user-1" {
		t.Errorf("store mutated through returned copy: UserID = %q", again.UserID)
	}
}

func TestSessionStore_Touch(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewSessionStore(nil)

	sess, _ := store.Create(ctx, "user-1", session.ClientMeta{})
	before, _ := store.Get(ctx, sess.TokenID)

	time.Sleep(5 * time.Millisecond)
	store.Touch(ctx, sess.TokenID)

	after, _ := store.Get(ctx, sess.TokenID)
	if !after.LastSeenAt.After(before.LastSeenAt) {
		t.Errorf("Touch() did not advance LastSeenAt: before=%v after=%v", before.LastSeenAt, after.LastSeenAt)
	}
	if !after.IssuedAt.Equal(before.IssuedAt) {
		t.Error("Touch() must not change IssuedAt")
	}
}

func TestSessionStore_TouchAfterRevoke(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewSessionStore(nil)

	sess, _ := store.Create(ctx, "user-1", session.ClientMeta{})
	if err := store.Revoke(ctx, sess.TokenID); err != nil {
		t.Fatalf("Revoke() error: %v", err)
	}

	// Touch on a revoked token must not resurrect it.
	store.Touch(ctx, sess.TokenID)

	if _, err := store.Get(ctx, sess.TokenID); !errors.Is(err, session.ErrSessionNotFound) {
		t.Errorf("Get() after revoke+touch error = %v, want ErrSessionNotFound", err)
	}
	if store.Count() != 0 {
		t.Errorf("Count() = %d, want 0", store.Count())
	}
}

func TestSessionStore_RevokeIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewSessionStore(nil)

	sess, _ := store.Create(ctx, "user-1", session.ClientMeta{})
	if err := store.Revoke(ctx, sess.TokenID); err != nil {
		t.Fatalf("first Revoke() error: %v", err)
	}
	if err := store.Revoke(ctx, sess.TokenID); err != nil {
		t.Fatalf("second Revoke() error: %v", err)
	}
	if err := store.Revoke(ctx, "wt_never_existed"); err != nil {
		t.Fatalf("Revoke() of unknown token error: %v", err)
	}
}

func TestSessionStore_RevokeAll(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewSessionStore(nil)

	for i := 0; i < 3; i++ {
		if _, err := store.Create(ctx, "user-1", session.ClientMeta{}); err != nil {
			t.Fatalf("Create() error: %v", err)
		}
	}
	other, _ := store.Create(ctx, "user-2", session.ClientMeta{})

	count, err := store.RevokeAll(ctx, "user-1")
	if err != nil {
		t.Fatalf("RevokeAll() error: %v", err)
	}
	if count != 3 {
		t.Errorf("RevokeAll() count = %d, want 3", count)
	}

	list, _ := store.List(ctx, "user-1")
	if len(list) != 0 {
		t.Errorf("List() after RevokeAll = %d sessions, want 0", len(list))
	}

	// Other users are untouched.
	if _, err := store.Get(ctx, other.TokenID); err != nil {
		t.Errorf("Get() for other user error: %v", err)
	}

	// Revoking again finds nothing.
	count, err = store.RevokeAll(ctx, "user-1")
	if err != nil || count != 0 {
		t.Errorf("second RevokeAll() = (%d, %v), want (0, nil)", count, err)
	}
}

func TestSessionStore_ListOrder(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewSessionStore(nil)

	var created []string
	for i := 0; i < 5; i++ {
		sess, err := store.Create(ctx, "user-1", session.ClientMeta{})
		if err != nil {
			t.Fatalf("Create() error: %v", err)
		}
		created = append(created, sess.TokenID)
		time.Sleep(2 * time.Millisecond)
	}

	list, err := store.List(ctx, "user-1")
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(list) != 5 {
		t.Fatalf("List() = %d sessions, want 5", len(list))
	}
	for i := 1; i < len(list); i++ {
		if list[i].IssuedAt.Before(list[i-1].IssuedAt) {
			t.Errorf("List() not ordered by IssuedAt at index %d", i)
		}
	}
}

func TestSessionStore_ListUnknownUser(t *testing.T) {
	t.Parallel()

	store := NewSessionStore(nil)
	list, err := store.List(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("List() = %d sessions, want 0", len(list))
	}
}

// TestSessionStore_IndexConsistency hammers the store with randomized
// concurrent mutations and then verifies the per-user index and the primary
// token map describe exactly the same set of sessions.
func TestSessionStore_IndexConsistency(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewSessionStore(nil)
	users := []string{"u1", "u2", "u3"}

	var (
		mu     sync.Mutex
		tokens []string
	)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for i := 0; i < 200; i++ {
				user := users[rng.Intn(len(users))]
				switch rng.Intn(4) {
				case 0, 1:
					sess, err := store.Create(ctx, user, session.ClientMeta{})
					if err != nil {
						t.Errorf("Create() error: %v", err)
						return
					}
					mu.Lock()
					tokens = append(tokens, sess.TokenID)
					mu.Unlock()
				case 2:
					mu.Lock()
					var tok string
					if len(tokens) > 0 {
						tok = tokens[rng.Intn(len(tokens))]
					}
					mu.Unlock()
					if tok != "" {
						if err := store.Revoke(ctx, tok); err != nil {
							t.Errorf("Revoke() error: %v", err)
							return
						}
					}
				case 3:
					if _, err := store.RevokeAll(ctx, user); err != nil {
						t.Errorf("RevokeAll() error: %v", err)
						return
					}
				}
			}
		}(int64(g))
	}
	wg.Wait()

	// Every session reachable through List must resolve through Get, and the
	// total across users must equal Count.
	total := 0
	for _, user := range users {
		list, err := store.List(ctx, user)
		if err != nil {
			t.Fatalf("List(%s) error: %v", user, err)
		}
		total += len(list)
		for _, sess := range list {
			got, err := store.Get(ctx, sess.TokenID)
			if err != nil {
				t.Errorf("index lists token %s but Get() failed: %v", sess.TokenID, err)
				continue
			}
			if got.UserID != user {
				t.Errorf("index drift: token %s indexed under %s but owned by %s", sess.TokenID, user, got.UserID)
			}
		}
	}
	if total != store.Count() {
		t.Errorf("index total = %d, Count() = %d", total, store.Count())
	}
}

// TestSessionStore_RevokeAllVsCreate checks the atomicity contract: a session
// created concurrently with RevokeAll either dies with the sweep or survives
// it whole. Either way the store must end in a consistent state.
func TestSessionStore_RevokeAllVsCreate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	for i := 0; i < 50; i++ {
		store := NewSessionStore(nil)
		if _, err := store.Create(ctx, "user-1", session.ClientMeta{}); err != nil {
			t.Fatalf("Create() error: %v", err)
		}

		var wg sync.WaitGroup
		var racer *session.Session
		wg.Add(2)
		go func() {
			defer wg.Done()
			racer, _ = store.Create(ctx, "user-1", session.ClientMeta{})
		}()
		go func() {
			defer wg.Done()
			_, _ = store.RevokeAll(ctx, "user-1")
		}()
		wg.Wait()

		list, err := store.List(ctx, "user-1")
		if err != nil {
			t.Fatalf("List() error: %v", err)
		}

		_, getErr := store.Get(ctx, racer.TokenID)
		switch {
		case getErr == nil:
			// Racer survived: it must be the only session and be listed.
			if len(list) != 1 || list[0].TokenID != racer.TokenID {
				t.Fatalf("surviving session not listed correctly: %d listed", len(list))
			}
		case errors.Is(getErr, session.ErrSessionNotFound):
			// Racer was swept: nothing may remain.
			if len(list) != 0 {
				t.Fatalf("swept user still has %d listed sessions", len(list))
			}
		default:
			t.Fatalf("Get() error: %v", getErr)
		}
		if store.Count() != len(list) {
			t.Fatalf("Count() = %d, listed = %d", store.Count(), len(list))
		}
	}
}
