// Package idgen allocates the short identifiers used in share links.
//
// Identifiers are 10 symbols drawn uniformly from the 64-symbol URL-safe
// alphabet, which gives 60 bits of entropy. Generation does not consult the
// store; uniqueness is enforced by the store's create-only write.
package idgen

import (
	"fmt"
	"regexp"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Length is the number of symbols in a share identifier.
const Length = 10

// Alphabet is the URL-safe symbol set identifiers are drawn from.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_-"

var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{10}$`)

// Generator produces fresh share identifiers.
type Generator interface {
	NewID() (string, error)
}

// NanoID generates identifiers with a cryptographically secure source.
type NanoID struct{}

// NewID returns a new random identifier.
func (NanoID) NewID() (string, error) {
	id, err := gonanoid.Generate(Alphabet, Length)
	if err != nil {
		return "", fmt.Errorf("failed to generate id: %w", err)
	}
	return id, nil
}

// Valid reports whether id has the shape of a generated identifier.
func Valid(id string) bool {
	return idPattern.MatchString(id)
}
