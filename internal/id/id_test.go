package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	got, err := Generate("bk")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(got, "bk-"))
	assert.Len(t, got, len("bk-")+21)
}

func TestGenerate_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		got, err := Generate("usr")
		require.NoError(t, err)
		assert.False(t, seen[got], "duplicate ID %s", got)
		seen[got] = true
	}
}

func TestMustGenerate(t *testing.T) {
	assert.True(t, strings.HasPrefix(MustGenerate("cat"), "cat-"))
}
