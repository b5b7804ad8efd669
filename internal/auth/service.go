package auth

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/kameliyaaivanova/BlogAPI/internal/hash"
	"github.com/kameliyaaivanova/BlogAPI/internal/logging"
	"github.com/kameliyaaivanova/BlogAPI/internal/models"
)

// ErrInvalidCredentials is the single failure every credential, token-validity,
// device-mismatch and replay problem converges to. Nothing else may leak to
// the caller.
var ErrInvalidCredentials = errors.New("invalid credentials")

type LoginPayload struct {
	Username     string `json:"username"`
	Password     string `json:"password"`
	RefreshToken string `json:"refreshToken"`
}

type AuthResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

// Service decides password-based vs refresh-based login, performs rotation and
// theft detection, and issues new tokens.
type Service struct {
	DB     *gorm.DB
	Issuer *Issuer
	Store  *Store
}

func NewService(db *gorm.DB, issuer *Issuer) *Service {
	return &Service{DB: db, Issuer: issuer, Store: NewStore(db)}
}

// Authenticate resolves the user from either a refresh token or a
// username/password pair, then issues a fresh access token embedding the
// user's current role and permissions and rotates the refresh slot. userAgent
// is the device identifier the session is bound to.
func (s *Service) Authenticate(ctx context.Context, payload LoginPayload, userAgent string) (*AuthResponse, error) {
	l := logging.FromContext(ctx).With("svc", "auth.authenticate")

	var (
		user *models.User
		slot *models.RefreshToken
	)

	switch {
	case payload.RefreshToken != "":
		unlock, foundUser, foundSlot, err := s.presentRefreshToken(payload.RefreshToken, userAgent)
		if err != nil {
			l.Warn("refresh authentication failed")
			return nil, ErrInvalidCredentials
		}
		defer unlock()
		user, slot = foundUser, foundSlot

	case payload.Username != "" && payload.Password != "":
		found, err := s.findEnabledByUsername(payload.Username)
		if err != nil {
			l.Warn("password authentication failed")
			return nil, ErrInvalidCredentials
		}
		if !hash.CheckPassword(found.PasswordHash, payload.Password) {
			l.Warn("password authentication failed")
			return nil, ErrInvalidCredentials
		}
		unlock := s.Store.LockUser(found.ID)
		defer unlock()
		user = found

	default:
		return nil, ErrInvalidCredentials
	}

	token, err := s.Issuer.IssueAccessToken(user)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.rotate(user, slot, userAgent)
	if err != nil {
		if errors.Is(err, ErrStaleRotation) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	return &AuthResponse{Token: token, RefreshToken: refreshToken}, nil
}

// presentRefreshToken runs the rotation state machine for a presented value R
// and device D:
//
//  1. R equals a slot's prior token: theft. The slot is deleted and the
//     session is irrecoverable.
//  2. R equals a slot's current token, the device matches and the slot has not
//     expired: valid presentation.
//  3. Anything else: generic failure.
//
// On success the user's rotation lock is held; the caller must release it via
// the returned unlock after rotating.
func (s *Service) presentRefreshToken(token, userAgent string) (func(), *models.User, *models.RefreshToken, error) {
	slot, err := s.Store.FindByPresented(token)
	if err != nil {
		return nil, nil, nil, ErrInvalidCredentials
	}

	unlock := s.Store.LockUser(slot.ID)

	// Re-read under the lock: a concurrent caller may have rotated or
	// deleted the slot between lookup and acquisition.
	slot, err = s.Store.FindByPresented(token)
	if err != nil {
		unlock()
		return nil, nil, nil, ErrInvalidCredentials
	}

	if slot.OldToken == token {
		_ = s.Store.DeleteByUser(slot.ID)
		unlock()
		return nil, nil, nil, ErrInvalidCredentials
	}

	if !Live(slot, userAgent, time.Now()) {
		unlock()
		return nil, nil, nil, ErrInvalidCredentials
	}

	user, err := s.findEnabledByID(slot.ID)
	if err != nil {
		unlock()
		return nil, nil, nil, ErrInvalidCredentials
	}

	return unlock, user, slot, nil
}

// rotate writes a fresh refresh value into the user's slot, remembering the
// previous one for a single generation. The caller holds the user's rotation
// lock.
func (s *Service) rotate(user *models.User, slot *models.RefreshToken, userAgent string) (string, error) {
	value, err := s.Issuer.IssueRefreshToken()
	if err != nil {
		return "", err
	}

	if slot == nil {
		existing, err := s.Store.FindByUser(user.ID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return "", err
		}
		slot = existing
	}

	expiresAt := time.Now().Add(RefreshTokenTTL)

	if slot == nil {
		created := &models.RefreshToken{
			ID:        user.ID,
			Token:     value,
			UserAgent: userAgent,
			ExpiresAt: expiresAt,
		}
		if err := s.Store.Create(created); err != nil {
			return "", err
		}
		return value, nil
	}

	previous := slot.Token
	slot.OldToken = previous
	slot.Token = value
	slot.UserAgent = userAgent
	slot.ExpiresAt = expiresAt

	if err := s.Store.Update(slot, previous); err != nil {
		return "", err
	}
	return value, nil
}

func (s *Service) findEnabledByUsername(username string) (*models.User, error) {
	var user models.User
	err := s.DB.Preload("Role.Permissions").Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	if !user.Enabled {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

func (s *Service) findEnabledByID(id uint) (*models.User, error) {
	var user models.User
	err := s.DB.Preload("Role.Permissions").First(&user, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	if !user.Enabled {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}
