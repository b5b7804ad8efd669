package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kameliyaaivanova/BlogAPI/internal/auth"
	"github.com/kameliyaaivanova/BlogAPI/internal/hash"
	"github.com/kameliyaaivanova/BlogAPI/internal/models"
	"github.com/kameliyaaivanova/BlogAPI/internal/seed"
)

func newUserHandler(env *testEnv) *UserHandler {
	return &UserHandler{DB: env.DB, Store: auth.NewStore(env.DB)}
}

func userRole(t *testing.T, env *testEnv) models.Role {
	t.Helper()
	var role models.Role
	require.NoError(t, env.DB.Where("name = ?", seed.UserRoleName).First(&role).Error)
	return role
}

func TestGetUsersSeeded(t *testing.T) {
	env := newTestEnv(t)
	h := newUserHandler(env)

	rec, c := env.doJSONRequest(http.MethodGet, "/users", nil)
	require.NoError(t, h.GetUsers(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data []models.User `json:"data"`
	}
	decodeJSON(t, rec, &envelope)
	require.Len(t, envelope.Data, 1)
	require.Equal(t, "kamkam", envelope.Data[0].Username)
	require.Equal(t, seed.AdminRoleName, envelope.Data[0].Role.Name)
	require.NotEmpty(t, envelope.Data[0].Role.Permissions)
}

func TestCreateUser(t *testing.T) {
	env := newTestEnv(t)
	h := newUserHandler(env)

	rec, c := env.doJSONRequest(http.MethodPost, "/users/add", map[string]interface{}{
		"username": "reader",
		"email":    "reader@example.com",
		"password": "Password1!",
		"role":     userRole(t, env),
	})
	require.NoError(t, h.CreateUser(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var created models.User
	decodeJSON(t, rec, &created)
	require.Equal(t, "reader", created.Username)
	require.Equal(t, seed.UserRoleName, created.Role.Name)
}

func TestCreateUserDuplicate(t *testing.T) {
	env := newTestEnv(t)
	h := newUserHandler(env)

	rec, c := env.doJSONRequest(http.MethodPost, "/users/add", map[string]interface{}{
		"username": "kamkam",
		"email":    "somewhere@example.com",
		"password": "Password1!",
		"role":     userRole(t, env),
	})
	require.NoError(t, h.CreateUser(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateUserRehashesPassword(t *testing.T) {
	env := newTestEnv(t)
	h := newUserHandler(env)

	admin := env.adminUser()
	before := admin.PasswordHash

	rec, c := env.doJSONRequest(http.MethodPut, "/users/1", map[string]interface{}{
		"username": "kamkam",
		"email":    "kamkam@gmail.com",
		"password": "NewPassword1!",
		"role":     admin.Role,
	})
	c.SetParamNames("id")
	c.SetParamValues(itoa(admin.ID))
	require.NoError(t, h.UpdateUser(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var after models.User
	require.NoError(t, env.DB.First(&after, admin.ID).Error)
	require.NotEqual(t, before, after.PasswordHash)
	require.True(t, hash.CheckPassword(after.PasswordHash, "NewPassword1!"))
}

func TestDeleteUserRemovesRefreshSlot(t *testing.T) {
	env := newTestEnv(t)
	h := newUserHandler(env)

	admin := env.adminUser()
	require.NoError(t, env.DB.Create(&models.RefreshToken{
		ID:        admin.ID,
		Token:     "some-refresh-token",
		UserAgent: "test-agent",
		ExpiresAt: time.Now().Add(time.Hour),
	}).Error)

	rec, c := env.doJSONRequest(http.MethodDelete, "/users/1", nil)
	c.SetParamNames("id")
	c.SetParamValues(itoa(admin.ID))
	require.NoError(t, h.DeleteUser(c))
	require.Equal(t, http.StatusNoContent, rec.Code)

	var users, slots int64
	require.NoError(t, env.DB.Model(&models.User{}).Where("id = ?", admin.ID).Count(&users).Error)
	require.NoError(t, env.DB.Model(&models.RefreshToken{}).Where("id = ?", admin.ID).Count(&slots).Error)
	require.Zero(t, users)
	require.Zero(t, slots)
}
