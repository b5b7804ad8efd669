package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/kameliyaaivanova/BlogAPI/internal/auth"
	"github.com/kameliyaaivanova/BlogAPI/internal/hash"
	"github.com/kameliyaaivanova/BlogAPI/internal/models"
	"github.com/kameliyaaivanova/BlogAPI/internal/mykafka"
)

type AuthHandler struct {
	DB       *gorm.DB
	Auth     *auth.Service
	Producer *mykafka.Producer
}

// Login authenticates with either username/password or a refresh token. Every
// failure surfaces as the same unauthenticated response.
func (h *AuthHandler) Login(c echo.Context) error {
	var payload auth.LoginPayload
	if err := c.Bind(&payload); err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	}

	userAgent := c.Request().UserAgent()

	resp, err := h.Auth.Authenticate(c.Request().Context(), payload, userAgent)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	}

	claims, decodeErr := h.Auth.Issuer.DecodeAccess(resp.Token)
	if decodeErr == nil {
		publish(c, h.Producer, "user_events", fmt.Sprint(claims.ID), map[string]interface{}{
			"type":     "user_logged_in",
			"userID":   claims.ID,
			"username": claims.Username,
		})
	}

	return c.JSON(http.StatusOK, resp)
}

type registerPayload struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an enabled account with the default User role.
func (h *AuthHandler) Register(c echo.Context) error {
	var payload registerPayload
	if err := c.Bind(&payload); err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid payload")
	}
	if payload.Username == "" || payload.Email == "" || payload.Password == "" {
		return errorResponse(c, http.StatusBadRequest, "username, email and password are required")
	}

	var count int64
	if err := h.DB.Model(&models.User{}).
		Where("username = ? OR email = ?", payload.Username, payload.Email).
		Count(&count).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, "internal error")
	}
	if count > 0 {
		return errorResponse(c, http.StatusBadRequest, "Username or email already exists.")
	}

	var role models.Role
	if err := h.DB.Where("name = ?", "User").First(&role).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, "internal error")
	}

	passwordHash, err := hash.HashPassword(payload.Password)
	if err != nil {
		return errorResponse(c, http.StatusInternalServerError, "internal error")
	}

	user := models.User{
		Username:     payload.Username,
		Email:        payload.Email,
		PasswordHash: passwordHash,
		Enabled:      true,
		CreatedAt:    time.Now(),
		RoleID:       role.ID,
		Role:         role,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, "internal error")
	}

	publish(c, h.Producer, "user_events", fmt.Sprint(user.ID), map[string]interface{}{
		"type":     "user_registered",
		"userID":   user.ID,
		"username": user.Username,
	})

	return c.JSON(http.StatusCreated, user)
}
