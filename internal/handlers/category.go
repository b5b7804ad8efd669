package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/kameliyaaivanova/BlogAPI/internal/models"
	"github.com/kameliyaaivanova/BlogAPI/internal/util"
)

type CategoryHandler struct {
	DB *gorm.DB
}

func (h *CategoryHandler) GetCategories(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	var total int64
	if err := h.DB.Model(&models.Category{}).Count(&total).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, "internal error")
	}

	var categories []models.Category
	if err := h.DB.Order("id ASC").Offset(offset).Limit(limit).Find(&categories).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, listEnvelope(categories, page, offset, limit, total))
}

func (h *CategoryHandler) GetCategory(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid id")
	}

	var category models.Category
	if err := h.DB.First(&category, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorResponse(c, http.StatusNotFound, "category not found")
		}
		return errorResponse(c, http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, category)
}

type categoryPayload struct {
	Title string `json:"title"`
}

func (h *CategoryHandler) CreateCategory(c echo.Context) error {
	var payload categoryPayload
	if err := c.Bind(&payload); err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid payload")
	}
	if payload.Title == "" {
		return errorResponse(c, http.StatusBadRequest, "title is required")
	}

	var count int64
	if err := h.DB.Model(&models.Category{}).Where("title = ?", payload.Title).Count(&count).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, "internal error")
	}
	if count > 0 {
		return errorResponse(c, http.StatusBadRequest, "Category Title already exist!")
	}

	category := models.Category{Title: payload.Title, CreatedAt: time.Now()}
	if err := h.DB.Create(&category).Error; err != nil {
		return errorResponse(c, http.StatusBadRequest, "could not create category")
	}

	return c.JSON(http.StatusOK, category)
}

func (h *CategoryHandler) UpdateCategory(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid id")
	}

	var payload categoryPayload
	if err := c.Bind(&payload); err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid payload")
	}

	var category models.Category
	if err := h.DB.First(&category, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorResponse(c, http.StatusNotFound, "category not found")
		}
		return errorResponse(c, http.StatusInternalServerError, "internal error")
	}

	category.Title = payload.Title
	if err := h.DB.Save(&category).Error; err != nil {
		return errorResponse(c, http.StatusBadRequest, "could not update category")
	}

	return c.JSON(http.StatusOK, category)
}
