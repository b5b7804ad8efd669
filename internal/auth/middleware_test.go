package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/kameliyaaivanova/BlogAPI/internal/models"
)

func runMiddleware(t *testing.T, issuer *Issuer, authorization string) (*Principal, error) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/posts", nil)
	if authorization != "" {
		req.Header.Set(echo.HeaderAuthorization, authorization)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var principal *Principal
	handler := Middleware(issuer)(func(c echo.Context) error {
		principal = PrincipalFromContext(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})
	return principal, handler(c)
}

func TestMiddlewareNoHeaderProceedsUnauthenticated(t *testing.T) {
	principal, err := runMiddleware(t, newTestIssuer(), "")
	require.NoError(t, err)
	require.Nil(t, principal)
}

func TestMiddlewareNonBearerHeaderProceedsUnauthenticated(t *testing.T) {
	principal, err := runMiddleware(t, newTestIssuer(), "Basic dXNlcjpwYXNz")
	require.NoError(t, err)
	require.Nil(t, principal)
}

func TestMiddlewareValidToken(t *testing.T) {
	issuer := newTestIssuer()
	token, err := issuer.IssueAccessToken(testUser())
	require.NoError(t, err)

	principal, err := runMiddleware(t, issuer, "Bearer "+token)
	require.NoError(t, err)
	require.NotNil(t, principal)
	require.Equal(t, uint(7), principal.ID)
	require.Equal(t, "kamkam", principal.Username)
	require.True(t, principal.HasPermission(models.ReadPosts))
	require.False(t, principal.HasPermission(models.DeletePosts))
}

func TestMiddlewareGarbageTokenRejected(t *testing.T) {
	_, err := runMiddleware(t, newTestIssuer(), "Bearer not-a-token")
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestMiddlewareExpiredTokenRejected(t *testing.T) {
	issuer := newTestIssuer()
	past := time.Now().Add(-time.Hour)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, AccessClaims{
		ID:       1,
		Username: "old",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    TokenIssuer,
			ExpiresAt: jwt.NewNumericDate(past),
		},
	}).SignedString(issuer.AccessSecret)
	require.NoError(t, err)

	_, err = runMiddleware(t, issuer, "Bearer "+signed)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestMiddlewareRefreshTokenNotAcceptedAsAccess(t *testing.T) {
	issuer := newTestIssuer()
	refresh, err := issuer.IssueRefreshToken()
	require.NoError(t, err)

	_, err = runMiddleware(t, issuer, "Bearer "+refresh)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusUnauthorized, he.Code)
}

func requireGuard(t *testing.T, principal *Principal, guard echo.MiddlewareFunc) error {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if principal != nil {
		req = req.WithContext(WithPrincipal(req.Context(), principal))
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	return guard(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})(c)
}

func TestRequirePermission(t *testing.T) {
	guard := RequirePermission(models.ReadPosts)

	err := requireGuard(t, nil, guard)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusUnauthorized, he.Code)

	reader := NewPrincipal(&AccessClaims{ID: 1, Permissions: []string{models.ReadPosts}})
	require.NoError(t, requireGuard(t, reader, guard))

	outsider := NewPrincipal(&AccessClaims{ID: 2, Permissions: []string{models.ReadCategories}})
	err = requireGuard(t, outsider, guard)
	he, ok = err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusForbidden, he.Code)
}

func TestRequirePermissionAnyOf(t *testing.T) {
	guard := RequirePermission(models.CreatePosts, models.UpdatePosts)

	updater := NewPrincipal(&AccessClaims{ID: 1, Permissions: []string{models.UpdatePosts}})
	require.NoError(t, requireGuard(t, updater, guard))

	reader := NewPrincipal(&AccessClaims{ID: 2, Permissions: []string{models.ReadPosts}})
	err := requireGuard(t, reader, guard)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusForbidden, he.Code)
}
