package auth

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPassword(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)
	assert.True(t, CheckPassword(hash, "s3cret"))
	assert.False(t, CheckPassword(hash, "wrong"))
	assert.False(t, CheckPassword("not-a-hash", "s3cret"))
}

func TestIssuer(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	issuer := NewIssuer("secret", time.Hour, clock)

	token, claims, err := issuer.Issue(7, "alice")
	require.NoError(t, err)
	assert.NotEmpty(t, claims.ID)
	assert.Equal(t, now.Add(time.Hour), claims.ExpiresAt.Time)

	t.Run("round trip", func(t *testing.T) {
		parsed, err := issuer.Parse(token)
		require.NoError(t, err)
		assert.Equal(t, 7, parsed.UserID)
		assert.Equal(t, "alice", parsed.Username)
		assert.Equal(t, claims.ID, parsed.ID)
	})

	t.Run("unique ids", func(t *testing.T) {
		_, other, err := issuer.Issue(7, "alice")
		require.NoError(t, err)
		assert.NotEqual(t, claims.ID, other.ID)
	})

	t.Run("wrong secret", func(t *testing.T) {
		_, err := NewIssuer("other", time.Hour, clock).Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		later := NewIssuer("secret", time.Hour, func() time.Time { return now.Add(2 * time.Hour) })
		_, err := later.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := issuer.Parse("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("other signing method", func(t *testing.T) {
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = issuer.Parse(unsigned)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func testRevoker(t *testing.T, r Revoker) {
	ctx := context.Background()

	revoked, err := r.IsRevoked(ctx, "abc")
	assert.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, r.Revoke(ctx, "abc", time.Now().Add(time.Hour)))
	revoked, err = r.IsRevoked(ctx, "abc")
	assert.NoError(t, err)
	assert.True(t, revoked)

	// already expired tokens need no entry
	require.NoError(t, r.Revoke(ctx, "old", time.Now().Add(-time.Minute)))
	revoked, err = r.IsRevoked(ctx, "old")
	assert.NoError(t, err)
	assert.False(t, revoked)
}

func TestBadgerRevoker(t *testing.T) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	defer db.Close()

	testRevoker(t, NewBadgerRevoker(db))
}

func TestMemoryRevoker(t *testing.T) {
	r := NewMemoryRevoker()
	testRevoker(t, r)

	now := time.Now()
	r.now = func() time.Time { return now.Add(2 * time.Hour) }
	revoked, err := r.IsRevoked(context.Background(), "abc")
	assert.NoError(t, err)
	assert.False(t, revoked)
}

func TestRedisRevoker(t *testing.T) {
	addr := os.Getenv("INKWELL_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("INKWELL_TEST_REDIS_ADDR not set")
	}
	client, err := NewRedisClient(context.Background(), addr, "", 0)
	require.NoError(t, err)
	defer client.Close()

	testRevoker(t, NewRedisRevoker(client))
	client.Del(context.Background(), revokedKeyPrefix+"abc")
}
