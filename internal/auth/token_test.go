package auth

import (
	"context"
	"testing"
	"time"

	"github.com/Abdurahmanit/GroupProject/classifieds/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_IssueAndParse(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)

	token, err := m.Issue(12, "a@b.com", []string{domain.RoleUser, domain.RoleAdmin})
	require.NoError(t, err)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, int64(12), claims.UserID)
	assert.Equal(t, "a@b.com", claims.Email)
	assert.True(t, claims.HasRole(domain.RoleAdmin))
	assert.Equal(t, "12", claims.Subject)
}

func TestTokenManager_Expired(t *testing.T) {
	issuedAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewTokenManager("secret", time.Hour).WithClock(func() time.Time { return issuedAt })
	token, err := m.Issue(12, "a@b.com", nil)
	require.NoError(t, err)

	m.WithClock(func() time.Time { return issuedAt.Add(2 * time.Hour) })
	_, err = m.Parse(token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Contains(t, err.Error(), "expired")
}

func TestTokenManager_Rejects(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	other := NewTokenManager("other-secret", time.Hour)
	foreign, err := other.Issue(12, "a@b.com", nil)
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: 12}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"empty":          "",
		"garbage":        "not-a-token",
		"wrong secret":   foreign,
		"none algorithm": none,
	} {
		_, err := m.Parse(token)
		assert.ErrorIs(t, err, domain.ErrUnauthorized, name)
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", hash)
	assert.True(t, CheckPassword(hash, "secret123"))
	assert.False(t, CheckPassword(hash, "secret124"))
}

func TestClaimsContext(t *testing.T) {
	_, ok := ClaimsFromContext(context.Background())
	assert.False(t, ok)

	ctx := ContextWithClaims(context.Background(), &Claims{UserID: 5})
	c, ok := ClaimsFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, int64(5), c.UserID)
}
