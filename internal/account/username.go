// Package account carries the host side of account handling: the username
// canonicalization rules new accounts must satisfy.
package account

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// maxUsernameBytes matches the account_name column budget.
const maxUsernameBytes = 255

// reservedChars may not appear in usernames; they collide with wiki title
// syntax or URL handling in the host.
const reservedChars = "#<>[]|{}/@:"

// Canonicalizer validates and canonicalizes candidate usernames the way the
// wiki host does for creatable accounts: underscores become spaces, outer
// whitespace is trimmed, the first letter is uppercased.
type Canonicalizer struct{}

// NewCanonicalizer returns the host username canonicalizer.
func NewCanonicalizer() *Canonicalizer {
	return &Canonicalizer{}
}

// Canonical returns the canonical form of username and whether it is a valid
// creatable name.
func (c *Canonicalizer) Canonical(username string) (string, bool) {
	name := strings.ReplaceAll(username, "_", " ")
	name = strings.TrimSpace(name)
	if name == "" || len(name) > maxUsernameBytes {
		return "", false
	}
	if strings.Contains(name, "  ") {
		return "", false
	}
	if strings.ContainsAny(name, reservedChars) {
		return "", false
	}
	for _, r := range name {
		if unicode.IsControl(r) || r == utf8.RuneError {
			return "", false
		}
	}

	r, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(r)) + name[size:], true
}
