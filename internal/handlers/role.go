package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/kameliyaaivanova/BlogAPI/internal/models"
	"github.com/kameliyaaivanova/BlogAPI/internal/util"
)

type RoleHandler struct {
	DB *gorm.DB
}

func builtinRole(name string) bool {
	return strings.EqualFold(name, "Admin") || strings.EqualFold(name, "User")
}

func (h *RoleHandler) GetRoles(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	var total int64
	if err := h.DB.Model(&models.Role{}).Count(&total).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, "internal error")
	}

	var roles []models.Role
	if err := h.DB.Preload("Permissions").
		Order("id ASC").Offset(offset).Limit(limit).Find(&roles).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, listEnvelope(roles, page, offset, limit, total))
}

func (h *RoleHandler) GetRole(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid id")
	}

	var role models.Role
	if err := h.DB.Preload("Permissions").First(&role, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorResponse(c, http.StatusNotFound, "role not found")
		}
		return errorResponse(c, http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, role)
}

type rolePayload struct {
	Name        string              `json:"name"`
	Permissions []models.Permission `json:"permissions"`
}

func (h *RoleHandler) CreateRole(c echo.Context) error {
	var payload rolePayload
	if err := c.Bind(&payload); err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid payload")
	}

	var count int64
	if err := h.DB.Model(&models.Role{}).Where("name = ?", payload.Name).Count(&count).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, "internal error")
	}
	if count > 0 {
		return errorResponse(c, http.StatusBadRequest, "Role Name already exist!")
	}

	role := models.Role{
		Name:        payload.Name,
		Permissions: payload.Permissions,
		CreatedAt:   time.Now(),
	}
	if err := h.DB.Create(&role).Error; err != nil {
		return errorResponse(c, http.StatusBadRequest, "could not create role")
	}

	return c.JSON(http.StatusOK, role)
}

// UpdateRole rewrites a role's name and permission set. The built-in Admin and
// User roles are immutable.
func (h *RoleHandler) UpdateRole(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid id")
	}

	var payload rolePayload
	if err := c.Bind(&payload); err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid payload")
	}

	var role models.Role
	if err := h.DB.Preload("Permissions").First(&role, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorResponse(c, http.StatusNotFound, "Role not found")
		}
		return errorResponse(c, http.StatusInternalServerError, "internal error")
	}

	if builtinRole(role.Name) {
		return errorResponse(c, http.StatusBadRequest, "Admin and User role cannot be updated")
	}

	role.Name = payload.Name
	if err := h.DB.Model(&role).Association("Permissions").Replace(payload.Permissions); err != nil {
		return errorResponse(c, http.StatusInternalServerError, "internal error")
	}
	if err := h.DB.Save(&role).Error; err != nil {
		return errorResponse(c, http.StatusBadRequest, "could not update role")
	}

	return c.JSON(http.StatusOK, role)
}

func (h *RoleHandler) DeleteRole(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid id")
	}

	var role models.Role
	if err := h.DB.First(&role, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorResponse(c, http.StatusNotFound, "role not found")
		}
		return errorResponse(c, http.StatusInternalServerError, "internal error")
	}

	if builtinRole(role.Name) {
		return errorResponse(c, http.StatusBadRequest, "Admin and User role cannot be deleted")
	}

	if err := h.DB.Model(&role).Association("Permissions").Clear(); err != nil {
		return errorResponse(c, http.StatusInternalServerError, "internal error")
	}
	if err := h.DB.Delete(&role).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, "internal error")
	}

	return c.NoContent(http.StatusNoContent)
}

type PermissionHandler struct {
	DB *gorm.DB
}

func (h *PermissionHandler) GetPermissions(c echo.Context) error {
	var permissions []models.Permission
	if err := h.DB.Order("id ASC").Find(&permissions).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, permissions)
}
