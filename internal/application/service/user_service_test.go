package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/masterstock-api/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureUsersIsIdempotent(t *testing.T) {
	repo, users := seededUsers(t)

	require.NoError(t, users.EnsureUsers(context.Background(), []SeedUser{
		{Username: "admin", Password: "other"},
	}))

	all, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "admin", all[0].Username)
	assert.True(t, all[1].IsSuperAdmin)
	assert.NotEqual(t, "easytech123", all[1].Password)
}

func TestAddUser(t *testing.T) {
	ctx := context.Background()
	_, users := seededUsers(t)

	_, err := users.AddUser(ctx, &AddUserInput{Username: " ", Password: "x"})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	assert.Equal(t, "please fill in all fields", apperror.GetAppError(err).Message)

	_, err = users.AddUser(ctx, &AddUserInput{Username: "admin", Password: "x"})
	assert.Equal(t, 409, apperror.GetAppError(err).Code)

	u, err := users.AddUser(ctx, &AddUserInput{Username: "cashier2", Password: "pw", IsSuperAdmin: false})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, u.ID)

	all, err := users.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestDeleteUser(t *testing.T) {
	ctx := context.Background()
	repo, users := seededUsers(t)

	admin, err := repo.GetByUsername(ctx, "Easytech")
	require.NoError(t, err)
	cashier, err := repo.GetByUsername(ctx, "cashier1")
	require.NoError(t, err)

	err = users.DeleteUser(ctx, admin.ID, admin.ID)
	assert.Equal(t, 400, apperror.GetAppError(err).Code)

	err = users.DeleteUser(ctx, admin.ID, uuid.New())
	assert.Equal(t, 404, apperror.GetAppError(err).Code)

	require.NoError(t, users.DeleteUser(ctx, admin.ID, cashier.ID))
	gone, err := repo.GetByUsername(ctx, "cashier1")
	require.NoError(t, err)
	assert.Nil(t, gone)
}
