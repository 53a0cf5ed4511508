// Package service implements link creation, resolution, click recording and
// the analytics overview on top of a storage backend.
package service

import (
	"crypto/rand"
	"math/big"
	"strings"
)

// CodeGenerator produces random short codes over the Base62 alphabet
// (0-9, a-z, A-Z).
type CodeGenerator struct {
	numCharsShortLink int
	elements          string
}

// NewCodeGenerator creates a generator producing codes of the given length.
func NewCodeGenerator(numChars int) *CodeGenerator {
	return &CodeGenerator{
		numCharsShortLink: numChars,
		elements:          "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ",
	}
}

// Generate returns a new random code. Uniqueness is not checked here; a
// collision surfaces as a conflict from the store on insert.
func (g *CodeGenerator) Generate() (string, error) {
	var sb strings.Builder
	max := big.NewInt(int64(len(g.elements)))

	for i := 0; i < g.numCharsShortLink; i++ {
		j, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		sb.WriteByte(g.elements[j.Int64()])
	}

	return sb.String(), nil
}

// IsValidAlias reports whether a custom alias is acceptable: at least 3 and
// at most 32 characters, limited to letters, digits, '-' and '_'.
func IsValidAlias(alias string) bool {
	if len(alias) < 3 || len(alias) > 32 {
		return false
	}
	for _, c := range alias {
		if !(c >= 'a' && c <= 'z') &&
			!(c >= 'A' && c <= 'Z') &&
			!(c >= '0' && c <= '9') &&
			c != '-' && c != '_' {
			return false
		}
	}
	return true
}
