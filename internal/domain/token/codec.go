// Package token issues opaque session tokens.
//
// A token is a handle, not a claim: it carries no user data and cannot be
// decoded. Whether a token is valid is decided solely by its presence in the
// session store, which makes revocation a plain store deletion.
package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// Prefix marks wisp tokens so they are recognizable in logs and bug reports
// without revealing anything about the session they name.
const Prefix = "wt_"

// rawLen is the number of random bytes behind each token.
const rawLen = 32

// Len is the total length of an issued token: prefix + 64 hex characters.
const Len = len(Prefix) + rawLen*2

// Issue creates a cryptographically random token ID.
// The result has no derivable relationship to any user or prior token.
func Issue() (string, error) {
	b := make([]byte, rawLen)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return Prefix + hex.EncodeToString(b), nil
}

// WellFormed reports whether s has the shape of an issued token.
// It says nothing about validity; only the session store can decide that.
func WellFormed(s string) bool {
	if len(s) != Len || !strings.HasPrefix(s, Prefix) {
		return false
	}
	_, err := hex.DecodeString(s[len(Prefix):])
	return err == nil
}
