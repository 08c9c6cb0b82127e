package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySessionStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemorySessionStore()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	require.NoError(t, s.Revoke(ctx, "jti-1", now.Add(time.Hour)))
	require.NoError(t, s.Revoke(ctx, "jti-old", now.Add(-time.Minute)))

	revoked, err := s.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, _ = s.IsRevoked(ctx, "jti-old")
	assert.False(t, revoked)
	revoked, _ = s.IsRevoked(ctx, "jti-2")
	assert.False(t, revoked)

	now = now.Add(2 * time.Hour)
	revoked, _ = s.IsRevoked(ctx, "jti-1")
	assert.False(t, revoked)
}
