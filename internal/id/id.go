// Package id generates prefixed unique identifiers for domain entities.
// The prefix makes IDs self-describing in logs and API payloads:
// "book-…" is a book, "rev-…" a review, "ses-…" a session.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// URL-safe alphabet and length matching NanoID defaults. 21 characters
// over 64 symbols gives collision odds comparable to a UUIDv4 at roughly
// half the string length.
const (
	alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_-"
	length   = 21
)

// Generate creates an ID of the form "prefix-nanoid".
// Returns an error only if the system cannot supply secure randomness.
func Generate(prefix string) (string, error) {
	suffix, err := gonanoid.Generate(alphabet, length)
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + suffix, nil
}
