package idgen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNanoID_Shape(t *testing.T) {
	var gen NanoID
	for i := 0; i < 200; i++ {
		id, err := gen.NewID()
		require.NoError(t, err)
		assert.Len(t, id, Length)
		for _, r := range id {
			assert.True(t, strings.ContainsRune(Alphabet, r), "unexpected symbol %q in %s", r, id)
		}
		assert.True(t, Valid(id))
	}
}

func TestNanoID_Independent(t *testing.T) {
	var gen NanoID
	seen := make(map[string]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		id, err := gen.NewID()
		require.NoError(t, err)
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s after %d draws", id, i)
		seen[id] = struct{}{}
	}
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("Ab3x9KT2cQ"))
	assert.True(t, Valid("a_b-c_d-e_"))
	assert.False(t, Valid("doesNotExist"), "too long")
	assert.False(t, Valid("short"))
	assert.False(t, Valid("../../etc/"))
	assert.False(t, Valid(""))
}

func TestAlphabet(t *testing.T) {
	assert.Len(t, Alphabet, 64)
}
