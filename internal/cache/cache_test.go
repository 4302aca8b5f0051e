package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Names []string `json:"names"`
}

func TestMemoryCache_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()

	var got payload
	found, err := c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Set(ctx, "k", payload{Names: []string{"rice", "pasta"}}, time.Minute))

	found, err = c.Get(ctx, "k", &got)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []string{"rice", "pasta"}, got.Names)

	require.NoError(t, c.Delete(ctx, "k", "missing"))
	found, err = c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "k", payload{Names: []string{"a"}}, time.Minute))

	var got payload
	found, _ := c.Get(ctx, "k", &got)
	assert.True(t, found)

	now = now.Add(time.Minute)
	found, _ = c.Get(ctx, "k", &got)
	assert.False(t, found, "entry must expire at ttl")
}

func TestNewRedis_InvalidURL(t *testing.T) {
	_, err := NewRedis(context.Background(), "not-a-redis-url")
	assert.Error(t, err)
}
