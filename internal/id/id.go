package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Prefixes for the id spaces used across the store.
const (
	PrefixItem    = "itm"
	PrefixSection = "sec"
)

// Generate creates a prefixed unique ID using NanoID
// (e.g. "sec-V1StGXR8_Z5jdHi6B-myT"). NanoIDs are URL-friendly and
// compact, which matters because section ids end up inside serialized
// items and category artifacts.
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustGenerate is like Generate but panics when the system entropy
// source fails. Id generation sits on the hot merge path where an error
// return would force every caller to thread a failure that in practice
// cannot happen outside a broken host.
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}
