// Package equivalence maps usernames to canonical forms so that
// visually-confusable names (e.g. Cyrillic "а" vs Latin "a") land in the
// same equivalence class and cannot be used for impersonation.
package equivalence

import (
	"github.com/mtibben/confusables"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Normalizer reduces a username to its canonical comparable form.
// It holds no mutable state and is safe for concurrent use.
type Normalizer struct {
	fold cases.Caser
}

// NewNormalizer returns a Normalizer. Construct once and inject; there is no
// package-level instance.
func NewNormalizer() *Normalizer {
	return &Normalizer{fold: cases.Fold()}
}

// Normalize returns the canonical form of username: NFKC normalization,
// Unicode TR39 confusable skeleton, then case folding. Total over any string
// input, including empty.
func (n *Normalizer) Normalize(username string) string {
	s := norm.NFKC.String(username)
	s = confusables.Skeleton(s)
	return n.fold.String(s)
}
