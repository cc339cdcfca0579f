package id

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPrefix(t *testing.T) {
	t.Parallel()

	got := New("method")
	assert.True(t, strings.HasPrefix(got, "method_"))
	assert.Len(t, got, len("method_")+26)
	assert.Equal(t, strings.ToLower(got), got)
}

func TestNewBare(t *testing.T) {
	t.Parallel()

	got := New("")
	assert.Len(t, got, 26)
	assert.NotContains(t, got, "_")
}

func TestNewUniqueAndSorted(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)
	prev := ""
	for i := 0; i < 1000; i++ {
		v := New("m")
		require.False(t, seen[v], "duplicate id %s", v)
		seen[v] = true
		assert.Greater(t, v, prev)
		prev = v
	}
}

func TestTime(t *testing.T) {
	t.Parallel()

	before := time.Now().Add(-time.Second)
	ts, ok := Time(New("method"))
	require.True(t, ok)
	assert.True(t, ts.After(before))

	_, ok = Time("method_not-a-ulid")
	assert.False(t, ok)
}
