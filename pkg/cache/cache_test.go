package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	Name  string `json:"name"`
	Stock int    `json:"stock"`
}

func TestMemoryRoundTripAndExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "product:1", item{Name: "Widget", Stock: 5}, time.Minute))

	var got item
	require.True(t, m.Get(ctx, "product:1", &got))
	assert.Equal(t, item{Name: "Widget", Stock: 5}, got)

	now = now.Add(2 * time.Minute)
	assert.False(t, m.Get(ctx, "product:1", &got))
}

func TestMemoryDel(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Set(ctx, "a", 1, 0))
	require.NoError(t, m.Set(ctx, "b", 2, 0))
	require.NoError(t, m.Del(ctx, "a", "b"))

	var v int
	assert.False(t, m.Get(ctx, "a", &v))
	assert.False(t, m.Get(ctx, "b", &v))
}

func TestNopAlwaysMisses(t *testing.T) {
	var s Store = Nop{}
	require.NoError(t, s.Set(context.Background(), "k", 1, time.Second))
	var v int
	assert.False(t, s.Get(context.Background(), "k", &v))
}
