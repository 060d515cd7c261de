package usecase

import (
	"context"
	"testing"

	"github.com/DRSN-tech/storefront-backend/internal/domain"
	"github.com/DRSN-tech/storefront-backend/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	en := newEnv(false)
	ctx := context.Background()

	user, err := en.auth.Register(ctx, &RegisterReq{Username: " alice ", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, domain.RoleCustomer, user.Role)
	assert.NotEqual(t, "pw", user.PasswordHash)

	_, err = en.auth.Register(ctx, &RegisterReq{Username: "alice", Password: "other"})
	require.ErrorIs(t, err, e.ErrUserAlreadyExists)

	res, err := en.auth.Login(ctx, &LoginReq{Username: "alice", Password: "pw"})
	require.NoError(t, err)

	principal, err := en.auth.Authenticate(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, principal.UserID)
	assert.Equal(t, domain.RoleCustomer, principal.Role)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	en := newEnv(false)
	ctx := context.Background()

	_, err := en.auth.Register(ctx, &RegisterReq{Username: "bob", Password: "pw"})
	require.NoError(t, err)

	_, err = en.auth.Login(ctx, &LoginReq{Username: "bob", Password: "wrong"})
	require.ErrorIs(t, err, e.ErrInvalidCredentials)

	_, err = en.auth.Login(ctx, &LoginReq{Username: "nobody", Password: "pw"})
	require.ErrorIs(t, err, e.ErrInvalidCredentials)
}

func TestRegister_MissingFields(t *testing.T) {
	en := newEnv(false)

	_, err := en.auth.Register(context.Background(), &RegisterReq{Username: "carol"})
	require.ErrorIs(t, err, e.ErrMissingFields)
}

func TestAuthenticate_BadToken(t *testing.T) {
	en := newEnv(false)

	_, err := en.auth.Authenticate(context.Background(), "garbage")
	require.ErrorIs(t, err, e.ErrUnauthorized)
}

func TestEnsureAdmin(t *testing.T) {
	en := newEnv(false)
	ctx := context.Background()

	require.NoError(t, en.auth.EnsureAdmin(ctx, "root", "secret"))
	require.NoError(t, en.auth.EnsureAdmin(ctx, "root", "secret"))
	require.NoError(t, en.auth.EnsureAdmin(ctx, "", ""))

	res, err := en.auth.Login(ctx, &LoginReq{Username: "root", Password: "secret"})
	require.NoError(t, err)

	principal, err := en.auth.Authenticate(ctx, res.Token)
	require.NoError(t, err)
	assert.True(t, principal.IsAdmin())
}
