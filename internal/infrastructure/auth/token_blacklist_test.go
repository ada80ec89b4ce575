package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryTokenBlacklist_JTI(t *testing.T) {
	bl := NewInMemoryTokenBlacklist()
	ctx := context.Background()

	blacklisted, err := bl.IsBlacklisted(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, blacklisted)

	require.NoError(t, bl.AddToBlacklist(ctx, "jti-1", time.Minute))

	blacklisted, err = bl.IsBlacklisted(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, blacklisted)
}

func TestInMemoryTokenBlacklist_ExpiredEntryIsIgnored(t *testing.T) {
	bl := NewInMemoryTokenBlacklist()
	ctx := context.Background()

	require.NoError(t, bl.AddToBlacklist(ctx, "jti-2", -time.Second))

	blacklisted, err := bl.IsBlacklisted(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, blacklisted)
}

func TestInMemoryTokenBlacklist_UserInvalidation(t *testing.T) {
	bl := NewInMemoryTokenBlacklist()
	ctx := context.Background()

	issuedBefore := time.Now().Add(-time.Minute)
	require.NoError(t, bl.AddUserTokensToBlacklist(ctx, "user-1", time.Hour))
	issuedAfter := time.Now().Add(time.Minute)

	invalidated, err := bl.IsUserTokenInvalidated(ctx, "user-1", issuedBefore)
	require.NoError(t, err)
	assert.True(t, invalidated, "tokens issued before invalidation should be rejected")

	invalidated, err = bl.IsUserTokenInvalidated(ctx, "user-1", issuedAfter)
	require.NoError(t, err)
	assert.False(t, invalidated, "tokens issued after invalidation stay valid")

	invalidated, err = bl.IsUserTokenInvalidated(ctx, "other-user", issuedBefore)
	require.NoError(t, err)
	assert.False(t, invalidated)
}
