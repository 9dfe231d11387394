package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestMemoryCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()

	hit, err := c.Get(ctx, "missing", &payload{})
	assert.NoError(t, err)
	assert.False(t, hit)

	assert.NoError(t, c.Set(ctx, "key", payload{Name: "go", Count: 3}, 0))

	var got payload
	hit, err = c.Get(ctx, "key", &got)
	assert.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, payload{Name: "go", Count: 3}, got)
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()

	assert.NoError(t, c.Set(ctx, "key", payload{Name: "short"}, time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	hit, err := c.Get(ctx, "key", &payload{})
	assert.NoError(t, err)
	assert.False(t, hit)
}

func TestMemoryCacheDelete(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()

	assert.NoError(t, c.Set(ctx, "a", payload{}, 0))
	assert.NoError(t, c.Set(ctx, "b", payload{}, 0))
	assert.NoError(t, c.Delete(ctx, "a", "b"))

	hit, err := c.Get(ctx, "a", &payload{})
	assert.NoError(t, err)
	assert.False(t, hit)
}
