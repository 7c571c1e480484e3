package repository

import (
	"context"
	"testing"

	"github.com/squid-app/squid-api/internal/model"
	"github.com/squid-app/squid-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createIdentity() *model.Identity {
	return &model.Identity{
		ID:      "google-id",
		Name:    "name",
		Picture: "picture",
		Email:   "email",
		Gender:  "gender",
	}
}

func strPtr(s string) *string {
	return &s
}

func TestAddUser(t *testing.T) {
	ctx := context.Background()
	users := NewUserRepository(testutil.NewTestDB(t))

	created, err := users.AddUser(ctx, createIdentity())
	require.NoError(t, err)
	assert.True(t, created)

	actual, err := users.GetUser(ctx, "google-id")
	require.NoError(t, err)
	assert.Equal(t, "google-id", actual.UserID)
	assert.Equal(t, "name", actual.Name)
	assert.Equal(t, "picture", actual.Picture)
	assert.Equal(t, strPtr("email"), actual.Email)
	assert.Equal(t, strPtr("gender"), actual.Gender)

	created, err = users.AddUser(ctx, createIdentity())
	require.NoError(t, err)
	assert.False(t, created)
}

func TestAddUserOnlySetsTruthyFields(t *testing.T) {
	ctx := context.Background()
	users := NewUserRepository(testutil.NewTestDB(t))

	// first login without email
	input := createIdentity()
	input.Email = ""
	_, err := users.AddUser(ctx, input)
	require.NoError(t, err)

	actual, err := users.GetUser(ctx, input.ID)
	require.NoError(t, err)
	assert.Nil(t, actual.Email)

	// a later login supplies the email
	_, err = users.AddUser(ctx, createIdentity())
	require.NoError(t, err)

	actual, err = users.GetUser(ctx, input.ID)
	require.NoError(t, err)
	assert.Equal(t, strPtr("email"), actual.Email)

	// omitting it again keeps the stored value
	sparse := &model.Identity{ID: input.ID, Name: "new name"}
	created, err := users.AddUser(ctx, sparse)
	require.NoError(t, err)
	assert.False(t, created)

	actual, err = users.GetUser(ctx, input.ID)
	require.NoError(t, err)
	assert.Equal(t, "new name", actual.Name)
	assert.Equal(t, "picture", actual.Picture)
	assert.Equal(t, strPtr("email"), actual.Email)
	assert.Equal(t, strPtr("gender"), actual.Gender)
}

func TestAddUserMergesRowInsertedElsewhere(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)
	users := NewUserRepository(db)

	// a concurrent first login already wrote the row
	require.NoError(t, db.Create(&model.User{UserID: "google-id", Name: "old name"}).Error)

	created, err := users.AddUser(ctx, createIdentity())
	require.NoError(t, err)
	assert.False(t, created)

	actual, err := users.GetUser(ctx, "google-id")
	require.NoError(t, err)
	assert.Equal(t, "name", actual.Name)
	assert.Equal(t, strPtr("email"), actual.Email)
}

func TestGetUserNotFound(t *testing.T) {
	users := NewUserRepository(testutil.NewTestDB(t))

	_, err := users.GetUser(context.Background(), "google-missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
