package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_HasPrefix(t *testing.T) {
	id, err := Generate("book")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(id, "book-"))
}

func TestGenerate_Length(t *testing.T) {
	id, err := Generate("usr")
	require.NoError(t, err)
	// prefix + "-" + 21-char nanoid
	assert.Len(t, id, len("usr")+1+21)
}

func TestGenerate_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for range 1000 {
		id, err := Generate("rev")
		require.NoError(t, err)
		require.False(t, seen[id], "duplicate ID generated: %s", id)
		seen[id] = true
	}
}
