// Package idgen provides short, URL-safe unique ID generation backed by nanoid.
package idgen

import (
	"fmt"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// Alphabet defines the character set used for the random portion of the ID.
var Alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Length is the number of random characters generated (excluding the prefix).
var Length = 10

// Prefixes per collection. Every ID in the system is prefix + random suffix,
// so a bare ID is enough to tell what it refers to.
const (
	PrefixPipeline = "pl-"
	PrefixStage    = "st-"
	PrefixLead     = "ld-"
	PrefixProject  = "pj-"
	PrefixProposal = "pp-"
	PrefixFilter   = "ft-"
)

// Generate returns a new unique ID with the given prefix.
func Generate(prefix string) (string, error) {
	id, err := nanoid.Generate(Alphabet, Length)
	if err != nil {
		return "", fmt.Errorf("idgen: %w", err)
	}
	return prefix + id, nil
}
