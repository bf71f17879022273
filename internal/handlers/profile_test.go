package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/task-tracker-api/internal/dto"
	"github.com/yukikurage/task-tracker-api/internal/models"
)

func TestProfileHandler(t *testing.T) {
	env := setupAPITestEnv(t)
	_, cookies := env.signup(t, "alice", models.RoleUser)
	env.signup(t, "bob", models.RoleUser)

	w := env.do(t, http.MethodGet, "/api/profile", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "alice", decode[dto.UserDTO](t, w).Username)

	w = env.do(t, http.MethodPut, "/api/profile", map[string]string{"email": "bob@example.com"}, cookies)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPut, "/api/profile", map[string]string{"profileImg": "data:image/jpeg;base64,/9j/4AAQ"}, cookies)
	require.Equal(t, http.StatusOK, w.Code)
	profile := decode[dto.UserDTO](t, w)
	require.NotNil(t, profile.ProfileImg)
	require.Equal(t, "https://cdn.example.com/profile_pics/stub.png", *profile.ProfileImg)

	w = env.do(t, http.MethodPut, "/api/profile/password", map[string]string{"currentPassword": "nope", "newPassword": "another1"}, cookies)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Current password is incorrect", decode[errorBody](t, w).Error)

	w = env.do(t, http.MethodPut, "/api/profile/password", map[string]string{"currentPassword": "secret1", "newPassword": "another1"}, cookies)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, "/api/auth/login", map[string]string{"username": "alice", "password": "another1"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
}
