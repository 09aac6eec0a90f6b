package rooms

import (
	"crypto/rand"
	"strings"
)

const (
	// CodeAlphabet leaves out characters that are easy to confuse when read aloud (0/O, 1/I).
	CodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	// DefaultCodeLength is the length of generated room codes.
	DefaultCodeLength = 6
)

// CodeGenerator produces short, upper-case room codes. Uniqueness is only
// probable; the Registry rejects collisions.
type CodeGenerator struct {
	length int
	read   func([]byte) (int, error)
}

// NewCodeGenerator returns a generator for codes of the given length.
func NewCodeGenerator(length int) *CodeGenerator {
	if length <= 0 {
		length = DefaultCodeLength
	}
	return &CodeGenerator{length: length, read: rand.Read}
}

// Next returns a fresh code.
func (g *CodeGenerator) Next() (string, error) {
	b := make([]byte, g.length)
	if _, err := g.read(b); err != nil {
		return "", err
	}
	code := make([]byte, g.length)
	for i := range code {
		// 256 is a multiple of len(CodeAlphabet), so the modulo keeps the distribution uniform.
		code[i] = CodeAlphabet[int(b[i])%len(CodeAlphabet)]
	}
	return string(code), nil
}

// NormalizeCode trims and upper-cases a code typed by a user.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
