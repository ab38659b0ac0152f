package ratelimit

import (
	"strings"
	"testing"
)

func TestLoginKey(t *testing.T) {
	t.Parallel()

	base := LoginKey("10.0.0.1", "alice")

	if !strings.HasPrefix(base, "login:") {
		t.Errorf("LoginKey() = %q, want login: prefix", base)
	}
	if base != LoginKey("10.0.0.1", "alice") {
		t.Error("LoginKey() not deterministic")
	}
	if strings.Contains(base, "alice") {
		t.Error("LoginKey() leaks the raw username")
	}

	distinct := []string{
		LoginKey("10.0.0.2", "alice"),
		LoginKey("10.0.0.1", "bob"),
		// The separator keeps (ip, username) boundaries unambiguous.
		LoginKey("10.0.0.1a", "lice"),
	}
	for i, other := range distinct {
		if other == base {
			t.Errorf("case %d: key collides with base", i)
		}
	}
}
