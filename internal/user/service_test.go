package user_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/quickcart/internal/storetest"
	"github.com/MikeMC777/quickcart/internal/user"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc := user.NewService(storetest.New().Users())

	u, err := svc.Register(ctx, " ana ", "s3cret")
	require.NoError(t, err)
	require.Equal(t, "ana", u.Username)
	require.NotEqual(t, "s3cret", u.PasswordHash)

	got, err := svc.Authenticate(ctx, "ana", "s3cret")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)

	_, err = svc.Authenticate(ctx, "ana", "wrong")
	require.ErrorIs(t, err, user.ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "nobody", "s3cret")
	require.ErrorIs(t, err, user.ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "", "")
	require.ErrorIs(t, err, user.ErrInvalidCredentials)
}

func TestRegisterRejects(t *testing.T) {
	ctx := context.Background()
	svc := user.NewService(storetest.New().Users())

	_, err := svc.Register(ctx, "", "pw")
	require.ErrorIs(t, err, user.ErrInvalidInput)
	_, err = svc.Register(ctx, "ana", "")
	require.ErrorIs(t, err, user.ErrInvalidInput)

	_, err = svc.Register(ctx, "ana", "pw")
	require.NoError(t, err)
	_, err = svc.Register(ctx, "ana", "other")
	require.ErrorIs(t, err, user.ErrAlreadyExist)
}

func TestPasswordHash(t *testing.T) {
	h, err := user.HashPassword("pw")
	require.NoError(t, err)
	require.True(t, user.CheckPassword(h, "pw"))
	require.False(t, user.CheckPassword(h, "PW"))
	require.False(t, user.CheckPassword("not-a-hash", "pw"))
}
