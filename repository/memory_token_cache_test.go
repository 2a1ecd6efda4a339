package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rcmulti/domain"
)

func TestMemoryTokenCacheRoundTrip(t *testing.T) {
	cache := NewMemoryTokenCache()
	ctx := context.Background()

	_, ok := cache.Get(ctx, "akad")
	assert.False(t, ok)

	tok := domain.Token{AccessToken: "tok-123", ExpiresAt: time.Now().Add(30 * time.Minute)}
	require.NoError(t, cache.Set(ctx, "akad", tok))

	got, ok := cache.Get(ctx, "akad")
	require.True(t, ok)
	assert.Equal(t, "tok-123", got.AccessToken)

	// Carriers não compartilham token.
	_, ok = cache.Get(ctx, "fairfax")
	assert.False(t, ok)
}

func TestTokenRemainingFor(t *testing.T) {
	tok := domain.Token{AccessToken: "tok", ExpiresAt: time.Now().Add(2 * time.Minute)}
	assert.True(t, tok.RemainingFor(time.Minute))
	assert.False(t, tok.RemainingFor(5*time.Minute))
	assert.False(t, domain.Token{}.RemainingFor(0))
}
