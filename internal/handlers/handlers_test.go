package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kameliyaaivanova/BlogAPI/internal/auth"
	"github.com/kameliyaaivanova/BlogAPI/internal/config"
	"github.com/kameliyaaivanova/BlogAPI/internal/models"
	"github.com/kameliyaaivanova/BlogAPI/internal/seed"
)

type testEnv struct {
	T      *testing.T
	E      *echo.Echo
	DB     *gorm.DB
	Issuer *auth.Issuer
	Auth   *auth.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, config.Migrate(db))
	require.NoError(t, seed.Run(db))

	issuer := &auth.Issuer{
		AccessSecret:  []byte("access-test-secret"),
		RefreshSecret: []byte("refresh-test-secret"),
	}

	return &testEnv{
		T:      t,
		E:      echo.New(),
		DB:     db,
		Issuer: issuer,
		Auth:   auth.NewService(db, issuer),
	}
}

func (env *testEnv) doJSONRequest(method, path string, body interface{}) (*httptest.ResponseRecorder, echo.Context) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)
	return rec, c
}

// asPrincipal attaches an authenticated caller to the request, the way the
// authenticator middleware does for a valid bearer token.
func (env *testEnv) asPrincipal(c echo.Context, id uint, username string, permissions ...string) {
	principal := auth.NewPrincipal(&auth.AccessClaims{
		ID:          id,
		Username:    username,
		Permissions: permissions,
	})
	req := c.Request()
	c.SetRequest(req.WithContext(auth.WithPrincipal(req.Context(), principal)))
}

func (env *testEnv) adminUser() *models.User {
	var user models.User
	require.NoError(env.T, env.DB.Preload("Role.Permissions").
		Where("username = ?", "kamkam").First(&user).Error)
	return &user
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

func requireHTTPError(t *testing.T, err error, code int) {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError, got %v", err)
	require.Equal(t, code, he.Code)
}
