package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKeys(t *testing.T) {
	assert.Equal(t, "session:abc", SessionKey("abc"))
	assert.Equal(t, "session:abc:stats", SessionStatsKey("abc"))
}

func TestNoopCache(t *testing.T) {
	c := NewNoopCache()
	ctx := context.Background()

	assert.NoError(t, c.Set(ctx, "k", map[string]int{"a": 1}, time.Minute))

	var dest map[string]int
	assert.ErrorIs(t, c.Get(ctx, "k", &dest), ErrCacheMiss)
	assert.Nil(t, dest)

	assert.NoError(t, c.Delete(ctx, "k"))
	assert.NoError(t, c.DeletePattern(ctx, "session:*"))
}
