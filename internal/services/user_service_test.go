package services

import (
	"context"
	"testing"

	"github.com/nimasrn/reservation-hub/internal/model"
	"github.com/nimasrn/reservation-hub/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newUserService(t *testing.T) *UserService {
	t.Helper()
	svc := NewUserService(repository.NewUserRepository(newTestDB(t)))
	svc.cost = bcrypt.MinCost
	return svc
}

func TestUserService_CreateAndAuthenticate(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()

	user, err := svc.Create(ctx, model.UserCreateRequest{Username: "ani", Email: "ani@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleGuest, user.Role)

	got, err := svc.Authenticate(ctx, "ani", "secret1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = svc.Authenticate(ctx, "ani", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "nobody", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUserService_CreateRejectsDuplicates(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, model.UserCreateRequest{Username: "ani", Email: "ani@example.com", Password: "secret1", Role: model.RoleAdmin})
	require.NoError(t, err)

	_, err = svc.Create(ctx, model.UserCreateRequest{Username: "ani", Email: "other@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrUserExists)
	_, err = svc.Create(ctx, model.UserCreateRequest{Username: "budi", Email: "ani@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrUserExists)

	var verr *model.ValidationError
	_, err = svc.Create(ctx, model.UserCreateRequest{Username: "c", Email: "c@example.com", Password: "123"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "password", verr.Field)
}

func TestUserService_ChangePassword(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()
	user, err := svc.Create(ctx, model.UserCreateRequest{Username: "ani", Email: "ani@example.com", Password: "secret1"})
	require.NoError(t, err)

	var verr *model.ValidationError
	err = svc.ChangePassword(ctx, user.ID, model.PasswordChangeRequest{OldPassword: "nope", NewPassword: "secret2", ConfirmPassword: "secret2"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "old_password", verr.Field)

	err = svc.ChangePassword(ctx, user.ID, model.PasswordChangeRequest{OldPassword: "secret1", NewPassword: "secret2", ConfirmPassword: "secret3"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "confirm_password", verr.Field)

	require.NoError(t, svc.ChangePassword(ctx, user.ID, model.PasswordChangeRequest{OldPassword: "secret1", NewPassword: "secret2", ConfirmPassword: "secret2"}))

	_, err = svc.Authenticate(ctx, "ani", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "ani", "secret2")
	assert.NoError(t, err)
}

func TestUserService_UpdateRole(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()
	user, err := svc.Create(ctx, model.UserCreateRequest{Username: "ani", Email: "ani@example.com", Password: "secret1"})
	require.NoError(t, err)

	updated, err := svc.UpdateRole(ctx, user.ID, model.RoleOperator)
	require.NoError(t, err)
	assert.Equal(t, model.RoleOperator, updated.Role)

	_, err = svc.UpdateRole(ctx, user.ID, "Root")
	var verr *model.ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = svc.UpdateRole(ctx, 999, model.RoleAdmin)
	assert.ErrorIs(t, err, ErrUserNotFound)

	users, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}
