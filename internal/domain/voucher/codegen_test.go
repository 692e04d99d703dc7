package voucher

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Format(t *testing.T) {
	gen := NewCodeGenerator(newRepo())

	code, err := gen.Generate(context.Background())
	require.NoError(t, err)
	require.Len(t, code, CodeLength)
	for _, c := range code {
		assert.Contains(t, codeChars, string(c))
	}
}

func TestGenerate_AvoidsStoredCodes(t *testing.T) {
	// An unwarmed filter does not know about pre-existing codes; the
	// repository check must still reject them.
	repo := newRepo()
	for _, c := range []string{"AAAAAA", "BBBBBB"} {
		repo.byCode[c] = &Voucher{Code: c}
	}
	gen := NewCodeGenerator(repo)

	for range 50 {
		code, err := gen.Generate(context.Background())
		require.NoError(t, err)
		assert.NotEqual(t, "AAAAAA", code)
		assert.NotEqual(t, "BBBBBB", code)
	}
}

func TestGenerate_NoRepeatsAcrossCalls(t *testing.T) {
	repo := newRepo()
	gen := NewCodeGenerator(repo)

	seen := make(map[string]struct{})
	for range 200 {
		code, err := gen.Generate(context.Background())
		require.NoError(t, err)
		_, dup := seen[code]
		require.False(t, dup, "generator repeated %s", code)
		seen[code] = struct{}{}
		// Simulate the service persisting each issued code.
		repo.byCode[code] = &Voucher{Code: code}
	}
}

func TestWarm_SeedsFilter(t *testing.T) {
	repo := newRepo()
	gen := NewCodeGenerator(repo)
	gen.Warm([]string{"CCCCCC"})

	assert.True(t, gen.filter.TestString("CCCCCC"))
}
