package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	s := New()

	var out map[string]int
	found, err := s.Get("missing", &out)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Set("k", map[string]int{"a": 1}, 0))
	found, err = s.Get("k", &out)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 1, out["a"])

	require.NoError(t, s.Invalidate("k"))
	found, err = s.Get("k", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStore_Expiration(t *testing.T) {
	s := New()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	require.NoError(t, s.Set("k", "v", time.Minute))

	var out string
	found, err := s.Get("k", &out)
	require.NoError(t, err)
	assert.True(t, found)

	now = now.Add(time.Minute)
	found, err = s.Get("k", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStore_Errors(t *testing.T) {
	s := New()
	require.Error(t, s.Set("k", make(chan int), 0))

	require.NoError(t, s.Set("k", "text", 0))
	var out int
	_, err := s.Get("k", &out)
	require.Error(t, err)
}
