// Package cache memoizes parsed question banks keyed by their source text.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"github.com/pavelanni/autograder/internal/questionbank"
)

// BankCache stores parsed banks. Implementations must be safe for concurrent use.
type BankCache interface {
	Get(ctx context.Context, key string) (*questionbank.Bank, bool)
	Set(ctx context.Context, key string, bank *questionbank.Bank)
}

// Key derives a cache key from raw sheet text and the parser version, so
// banks cached by an older parser are never served.
func Key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return "v" + questionbank.ParserVersion + ":" + hex.EncodeToString(sum[:])
}

// Nop never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, string) (*questionbank.Bank, bool) { return nil, false }
func (Nop) Set(context.Context, string, *questionbank.Bank)         {}

// Memory is a bounded in-process cache. When full, the oldest entry is evicted.
type Memory struct {
	mu    sync.Mutex
	max   int
	order []string
	items map[string]*questionbank.Bank
}

// NewMemory returns a Memory holding at most max banks (default 256).
func NewMemory(max int) *Memory {
	if max <= 0 {
		max = 256
	}
	return &Memory{max: max, items: make(map[string]*questionbank.Bank)}
}

func (m *Memory) Get(_ context.Context, key string) (*questionbank.Bank, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.items[key]
	return b, ok
}

func (m *Memory) Set(_ context.Context, key string, bank *questionbank.Bank) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[key]; ok {
		m.items[key] = bank
		return
	}
	for len(m.order) >= m.max {
		oldest := m.order[0]
		m.order = m.order[1:]
		delete(m.items, oldest)
	}
	m.order = append(m.order, key)
	m.items[key] = bank
}

// Len returns the number of cached banks.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// ParseCached parses text through c, storing the result on a miss.
func ParseCached(ctx context.Context, c BankCache, text string) *questionbank.Bank {
	if c == nil {
		return questionbank.Parse(text)
	}
	key := Key(text)
	if b, ok := c.Get(ctx, key); ok {
		return b
	}
	b := questionbank.Parse(text)
	c.Set(ctx, key, b)
	return b
}
