package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/task-tracker-api/internal/models"
	"github.com/yukikurage/task-tracker-api/internal/repository"
)

func TestProfileService(t *testing.T) {
	db := newTestDB(t)
	store := &fakeStore{}
	userRepo := repository.NewUserRepository(db)
	auth := NewAuthService(userRepo, NoopAuditRecorder())
	profiles := NewProfileService(userRepo, NewImageNormalizer(store, 0))
	ctx := context.Background()

	alice, err := auth.Signup(ctx, Caller{}, SignupInput{Username: "alice", Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)
	createUser(t, db, "bob", models.RoleUser)
	caller := Caller{UserID: alice.ID, Role: alice.Role}

	t.Run("get", func(t *testing.T) {
		user, err := profiles.GetProfile(ctx, caller)
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)

		_, err = profiles.GetProfile(ctx, Caller{})
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("overlong username", func(t *testing.T) {
		_, err := profiles.UpdateProfile(ctx, caller, UpdateProfileInput{Username: strings.Repeat("a", 51)})
		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "username", validationErr.Field)

		user, err := profiles.GetProfile(ctx, caller)
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
	})

	t.Run("uniqueness", func(t *testing.T) {
		_, err := profiles.UpdateProfile(ctx, caller, UpdateProfileInput{Username: "bob"})
		assert.ErrorIs(t, err, ErrUsernameTaken)

		_, err = profiles.UpdateProfile(ctx, caller, UpdateProfileInput{Email: "bob@example.com"})
		assert.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("profile image is uploaded to profile_pics", func(t *testing.T) {
		user, err := profiles.UpdateProfile(ctx, caller, UpdateProfileInput{Username: "alice2", ProfileImg: inlinePNG})
		require.NoError(t, err)
		assert.Equal(t, "alice2", user.Username)
		require.NotNil(t, user.ProfileImg)
		assert.Equal(t, "https://cdn.example.com/profile_pics/fake.png", *user.ProfileImg)
		assert.Equal(t, []string{"profile_pics"}, store.namespaces)

		_, err = profiles.UpdateProfile(ctx, caller, UpdateProfileInput{ProfileImg: "nope"})
		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "profileImg", validationErr.Field)
	})

	t.Run("change password", func(t *testing.T) {
		err := profiles.ChangePassword(ctx, caller, ChangePasswordInput{CurrentPassword: "wrong", NewPassword: "another1"})
		assert.ErrorIs(t, err, ErrIncorrectPassword)

		err = profiles.ChangePassword(ctx, caller, ChangePasswordInput{CurrentPassword: "secret1", NewPassword: "abc"})
		assert.ErrorIs(t, err, ErrPasswordTooShort)

		require.NoError(t, profiles.ChangePassword(ctx, caller, ChangePasswordInput{CurrentPassword: "secret1", NewPassword: "another1"}))

		_, err = auth.Login(ctx, LoginInput{Username: "alice2", Password: "another1"})
		assert.NoError(t, err)
	})
}
