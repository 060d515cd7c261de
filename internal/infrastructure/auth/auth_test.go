package auth

import (
	"testing"
	"time"

	"github.com/DRSN-tech/storefront-backend/internal/cfg"
	"github.com/DRSN-tech/storefront-backend/internal/domain"
	"github.com/DRSN-tech/storefront-backend/pkg/e"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestJWTManager_IssueAndParse(t *testing.T) {
	m := NewJWTManager(&cfg.AuthCfg{JWTSecret: "secret", TokenTTL: time.Hour})
	principal := domain.Principal{UserID: uuid.New(), Role: domain.RoleAdmin}

	token, expiresAt, err := m.Issue(principal)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	got, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, principal, got)
}

func TestJWTManager_Rejects(t *testing.T) {
	m := NewJWTManager(&cfg.AuthCfg{JWTSecret: "secret", TokenTTL: time.Hour})
	principal := domain.Principal{UserID: uuid.New(), Role: domain.RoleCustomer}

	t.Run("expired", func(t *testing.T) {
		token, _, err := m.Issue(principal)
		require.NoError(t, err)

		later := NewJWTManager(&cfg.AuthCfg{JWTSecret: "secret", TokenTTL: time.Hour})
		later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

		_, err = later.Parse(token)
		require.ErrorIs(t, err, e.ErrUnauthorized)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTManager(&cfg.AuthCfg{JWTSecret: "other", TokenTTL: time.Hour})
		token, _, err := other.Issue(principal)
		require.NoError(t, err)

		_, err = m.Parse(token)
		require.ErrorIs(t, err, e.ErrUnauthorized)
	})

	t.Run("unsigned", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": principal.UserID.String()})
		raw, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = m.Parse(raw)
		require.ErrorIs(t, err, e.ErrUnauthorized)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := m.Parse("not-a-token")
		require.ErrorIs(t, err, e.ErrUnauthorized)
	})
}

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("pw")
	require.NoError(t, err)
	assert.NotEqual(t, "pw", hash)

	require.NoError(t, h.Compare(hash, "pw"))
	require.ErrorIs(t, h.Compare(hash, "wrong"), e.ErrInvalidCredentials)
}
