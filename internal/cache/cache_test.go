package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavelanni/autograder/internal/questionbank"
)

const sheet = "Q1. Define X. (2 marks)\nAns: X is Y"

func TestKeyStable(t *testing.T) {
	assert.Equal(t, Key(sheet), Key(sheet))
	assert.NotEqual(t, Key(sheet), Key(sheet+" "))
	assert.Len(t, Key(""), len("v"+questionbank.ParserVersion+":")+64)
	assert.True(t, strings.HasPrefix(Key(sheet), "v"+questionbank.ParserVersion+":"))
}

func TestMemoryEvictsOldest(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(2)
	b := questionbank.NewBank()

	m.Set(ctx, "a", b)
	m.Set(ctx, "b", b)
	m.Set(ctx, "a", b) // overwrite keeps position
	m.Set(ctx, "c", b)

	assert.Equal(t, 2, m.Len())
	_, ok := m.Get(ctx, "a")
	assert.False(t, ok, "oldest entry should be evicted")
	_, ok = m.Get(ctx, "b")
	assert.True(t, ok)
	_, ok = m.Get(ctx, "c")
	assert.True(t, ok)
}

func TestMemoryConcurrent(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(8)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ParseCached(ctx, m, sheet)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 1, m.Len())
}

func TestParseCached(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(0)

	first := ParseCached(ctx, m, sheet)
	second := ParseCached(ctx, m, sheet)
	require.Equal(t, 1, first.Len())
	assert.Same(t, first, second, "second parse should be served from cache")

	uncached := ParseCached(ctx, Nop{}, sheet)
	assert.True(t, uncached.Equal(first))
	assert.NotSame(t, first, uncached)

	assert.True(t, ParseCached(ctx, nil, sheet).Equal(first))
}

func TestNewRedisBadURL(t *testing.T) {
	_, err := NewRedis(context.Background(), "not-a-url", time.Minute)
	assert.Error(t, err)
}

func TestNewRedisUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := NewRedis(ctx, "redis://127.0.0.1:1/0", time.Minute)
	assert.Error(t, err)
}

func TestIsMiss(t *testing.T) {
	assert.True(t, isMiss(redis.Nil))
	assert.True(t, isMiss(fmt.Errorf("get bank: %w", redis.Nil)))
	assert.False(t, isMiss(errors.New("connection refused")))
}
