package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	data map[string][]byte
	ttls map[string]time.Duration
	err  error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memoryStore) Get(_ context.Context, key string) ([]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.data[key], nil
}

func (m *memoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *memoryStore) Delete(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func TestTokenStore_RevokeAndCheck(t *testing.T) {
	store := newMemoryStore()
	ts := NewTokenStore(store)
	ctx := context.Background()

	revoked, err := ts.IsAccessTokenRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, ts.RevokeAccessToken(ctx, "jti-1", 10*time.Minute))

	revoked, err = ts.IsAccessTokenRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)
	assert.Equal(t, 10*time.Minute, store.ttls[revokedAccessTokenKeyPrefix+"jti-1"])
}

func TestTokenStore_SkipsExpiredOrAnonymousTokens(t *testing.T) {
	store := newMemoryStore()
	ts := NewTokenStore(store)
	ctx := context.Background()

	require.NoError(t, ts.RevokeAccessToken(ctx, "jti-1", 0))
	require.NoError(t, ts.RevokeAccessToken(ctx, "", time.Minute))

	assert.Empty(t, store.data)
}

func TestTokenStore_FailsSafeOnStoreError(t *testing.T) {
	store := newMemoryStore()
	store.err = errors.New("redis down")
	ts := NewTokenStore(store)

	revoked, err := ts.IsAccessTokenRevoked(context.Background(), "jti-1")

	assert.NoError(t, err)
	assert.False(t, revoked)
}
