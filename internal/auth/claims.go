package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/kameliyaaivanova/BlogAPI/internal/models"
)

const (
	TokenIssuer = "blog"

	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 24 * time.Hour
)

var ErrTokenInvalid = errors.New("token invalid")

// AccessClaims carries the identity and permission snapshot embedded in an
// access token. The snapshot is fixed at issuance: permission changes take
// effect only when the holder's token is reissued.
type AccessClaims struct {
	ID          uint     `json:"id"`
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
	jwt.RegisteredClaims
}

// RefreshClaims carries only an opaque random identifier. The refresh token's
// meaning lives in the store, not in its claims.
type RefreshClaims struct {
	Data string `json:"data"`
	jwt.RegisteredClaims
}

// Issuer mints and verifies the two token kinds. Access and refresh tokens are
// signed with independently configured secrets.
type Issuer struct {
	AccessSecret  []byte
	RefreshSecret []byte
}

func (i *Issuer) IssueAccessToken(user *models.User) (string, error) {
	now := time.Now().Truncate(time.Second)

	permissions := make([]string, 0, len(user.Role.Permissions))
	for _, p := range user.Role.Permissions {
		permissions = append(permissions, p.Title)
	}

	claims := AccessClaims{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		Role:        user.Role.Name,
		Permissions: permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    TokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(AccessTokenTTL)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(i.AccessSecret)
}

func (i *Issuer) IssueRefreshToken() (string, error) {
	now := time.Now().Truncate(time.Second)

	claims := RefreshClaims{
		Data: uuid.NewString(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    TokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(RefreshTokenTTL)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(i.RefreshSecret)
}

// DecodeAccess verifies signature and structure against the access secret.
// Expiry is checked separately with Expired, so an expired but well-formed
// token can still be inspected.
func (i *Issuer) DecodeAccess(token string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := decode(token, i.AccessSecret, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// DecodeRefresh verifies signature and structure against the refresh secret.
func (i *Issuer) DecodeRefresh(token string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := decode(token, i.RefreshSecret, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func decode(token string, secret []byte, claims jwt.Claims) error {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	t, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil || !t.Valid {
		return ErrTokenInvalid
	}
	return nil
}

// Expired reports whether the claim set's expiry instant has passed. A missing
// expiry counts as expired.
func Expired(claims jwt.Claims) bool {
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	return exp.Before(time.Now())
}
