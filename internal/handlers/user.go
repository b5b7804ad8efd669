package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/kameliyaaivanova/BlogAPI/internal/auth"
	"github.com/kameliyaaivanova/BlogAPI/internal/hash"
	"github.com/kameliyaaivanova/BlogAPI/internal/models"
	"github.com/kameliyaaivanova/BlogAPI/internal/util"
)

type UserHandler struct {
	DB    *gorm.DB
	Store *auth.Store
}

func (h *UserHandler) GetUsers(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	var total int64
	if err := h.DB.Model(&models.User{}).Count(&total).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, "internal error")
	}

	var users []models.User
	if err := h.DB.Preload("Role.Permissions").
		Order("id ASC").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, listEnvelope(users, page, offset, limit, total))
}

func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid id")
	}

	var user models.User
	if err := h.DB.Preload("Role.Permissions").First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorResponse(c, http.StatusNotFound, "user not found")
		}
		return errorResponse(c, http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, user)
}

type addUserPayload struct {
	Username string      `json:"username"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     models.Role `json:"role"`
}

func (h *UserHandler) CreateUser(c echo.Context) error {
	var payload addUserPayload
	if err := c.Bind(&payload); err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid payload")
	}

	var count int64
	if err := h.DB.Model(&models.User{}).
		Where("username = ? OR email = ?", payload.Username, payload.Email).
		Count(&count).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, "internal error")
	}
	if count > 0 {
		return errorResponse(c, http.StatusBadRequest, "Username or email already exist!")
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
		RoleID:       payload.Role.ID,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		return errorResponse(c, http.StatusBadRequest, "could not create user")
	}

	if err := h.DB.Preload("Role.Permissions").First(&user, "id = ?", user.ID).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, user)
}

type updateUserPayload struct {
	Username string      `json:"username"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     models.Role `json:"role"`
}

func (h *UserHandler) UpdateUser(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid id")
	}

	var payload updateUserPayload
	if err := c.Bind(&payload); err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid payload")
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorResponse(c, http.StatusNotFound, "User not found")
		}
		return errorResponse(c, http.StatusInternalServerError, "internal error")
	}

	user.Username = payload.Username
	user.Email = payload.Email
	user.RoleID = payload.Role.ID

	if payload.Password != "" {
		passwordHash, err := hash.HashPassword(payload.Password)
		if err != nil {
			return errorResponse(c, http.StatusInternalServerError, "internal error")
		}
		user.PasswordHash = passwordHash
	}

	if err := h.DB.Save(&user).Error; err != nil {
		return errorResponse(c, http.StatusBadRequest, "could not update user")
	}

	if err := h.DB.Preload("Role.Permissions").First(&user, "id = ?", user.ID).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, user)
}

// DeleteUser removes the user and its refresh-token slot.
func (h *UserHandler) DeleteUser(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid id")
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorResponse(c, http.StatusNotFound, "user not found")
		}
		return errorResponse(c, http.StatusInternalServerError, "internal error")
	}

	if err := h.Store.DeleteByUser(user.ID); err != nil {
		return errorResponse(c, http.StatusInternalServerError, "internal error")
	}
	if err := h.DB.Delete(&user).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, "internal error")
	}

	return c.NoContent(http.StatusNoContent)
}
