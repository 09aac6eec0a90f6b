package rooms

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeGenerator_Next(t *testing.T) {
	gen := NewCodeGenerator(DefaultCodeLength)

	seen := make(map[string]struct{})
	for i := 0; i < 200; i++ {
		code, err := gen.Next()
		require.NoError(t, err)
		require.Len(t, code, DefaultCodeLength)
		for _, c := range code {
			assert.True(t, strings.ContainsRune(CodeAlphabet, c), "unexpected rune %q in %s", c, code)
		}
		seen[code] = struct{}{}
	}
	// 32^6 codes; 200 draws colliding more than once would point to a broken source.
	assert.GreaterOrEqual(t, len(seen), 199)
}

func TestCodeGenerator_DeterministicSource(t *testing.T) {
	gen := NewCodeGenerator(4)
	gen.read = func(b []byte) (int, error) {
		for i := range b {
			b[i] = byte(i + 32) // wraps to alphabet index i
		}
		return len(b), nil
	}

	code, err := gen.Next()
	require.NoError(t, err)
	assert.Equal(t, "ABCD", code)
}

func TestCodeGenerator_ReadError(t *testing.T) {
	gen := NewCodeGenerator(0)
	gen.read = func([]byte) (int, error) { return 0, errors.New("entropy exhausted") }

	_, err := gen.Next()
	assert.Error(t, err)
	assert.Equal(t, DefaultCodeLength, gen.length)
}

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "AB12CD", NormalizeCode("  ab12cd "))
	assert.Equal(t, "", NormalizeCode("   "))
}
