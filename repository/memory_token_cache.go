package repository

import (
	"context"
	"sync"

	"rcmulti/domain"
)

// MemoryTokenCache é a implementação em memória de TokenCache.
type MemoryTokenCache struct {
	mu     sync.RWMutex
	tokens map[string]domain.Token
}

func NewMemoryTokenCache() *MemoryTokenCache {
	return &MemoryTokenCache{
		tokens: make(map[string]domain.Token),
	}
}

func (m *MemoryTokenCache) Get(_ context.Context, carrier string) (domain.Token, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tok, ok := m.tokens[carrier]
	return tok, ok
}

func (m *MemoryTokenCache) Set(_ context.Context, carrier string, token domain.Token) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[carrier] = token
	return nil
}
