package cache

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultSize is the entry limit of NewMemory when size <= 0.
const DefaultSize = 1024

// Memory is an in-process LRU cache.
type Memory struct {
	entries *lru.Cache[string, string]
}

// NewMemory creates a cache holding at most size replies.
func NewMemory(size int) (*Memory, error) {
	if size <= 0 {
		size = DefaultSize
	}
	entries, err := lru.New[string, string](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create lru cache: %w", err)
	}
	return &Memory{entries: entries}, nil
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := m.entries.Get(key)
	return v, ok, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.entries.Add(key, value)
	return nil
}

// Len returns the number of cached replies.
func (m *Memory) Len() int { return m.entries.Len() }
