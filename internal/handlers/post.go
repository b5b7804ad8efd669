package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/kameliyaaivanova/BlogAPI/internal/auth"
	"github.com/kameliyaaivanova/BlogAPI/internal/logging"
	"github.com/kameliyaaivanova/BlogAPI/internal/models"
	"github.com/kameliyaaivanova/BlogAPI/internal/mykafka"
	"github.com/kameliyaaivanova/BlogAPI/internal/service/search"
	"github.com/kameliyaaivanova/BlogAPI/internal/util"
)

type PostHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
	ES       *elasticsearch.Client
}

// index mirrors a post into the search index, best effort.
func (h *PostHandler) index(c echo.Context, post *models.Post) {
	if h.ES == nil {
		return
	}
	if err := search.IndexPost(c.Request().Context(), h.ES, post); err != nil {
		logging.FromContext(c.Request().Context()).Warn("post index failed", "post", post.ID, "error", err)
	}
}

func (h *PostHandler) GetPosts(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	query := h.DB.Model(&models.Post{})
	if categoryID := c.QueryParam("categoryId"); categoryID != "" {
		query = query.
			Joins("JOIN posts_categories ON posts_categories.post_id = posts.id").
			Where("posts_categories.category_id = ?", categoryID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, "internal error")
	}

	var posts []models.Post
	if err := query.Preload("Categories").
		Order("posts.id ASC").Offset(offset).Limit(limit).Find(&posts).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, listEnvelope(posts, page, offset, limit, total))
}

func (h *PostHandler) GetPost(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid id")
	}

	var post models.Post
	if err := h.DB.Preload("Categories").First(&post, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorResponse(c, http.StatusNotFound, "post not found")
		}
		return errorResponse(c, http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, post)
}

type postPayload struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Logo        string            `json:"logo"`
	Content     string            `json:"content"`
	Categories  []models.Category `json:"categories"`
}

// CreatePost stores a new post authored by the authenticated principal.
func (h *PostHandler) CreatePost(c echo.Context) error {
	var payload postPayload
	if err := c.Bind(&payload); err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid payload")
	}

	principal := auth.PrincipalFromContext(c.Request().Context())
	if principal == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthenticated")
	}

	var count int64
	if err := h.DB.Model(&models.Post{}).Where("title = ?", payload.Title).Count(&count).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, "internal error")
	}
	if count > 0 {
		return errorResponse(c, http.StatusBadRequest, "Post title already exist!")
	}

	post := models.Post{
		Title:       payload.Title,
		Description: payload.Description,
		Author:      principal.Username,
		Content:     payload.Content,
		CreatedAt:   time.Now(),
		Logo:        payload.Logo,
		Categories:  payload.Categories,
	}
	if err := h.DB.Create(&post).Error; err != nil {
		return errorResponse(c, http.StatusBadRequest, "could not create post")
	}

	h.index(c, &post)
	publish(c, h.Producer, "post_events", fmt.Sprint(post.ID), map[string]interface{}{
		"type":   "post_created",
		"postID": post.ID,
		"title":  post.Title,
		"author": post.Author,
	})

	return c.JSON(http.StatusOK, post)
}

func (h *PostHandler) UpdatePost(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid id")
	}

	var payload postPayload
	if err := c.Bind(&payload); err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid payload")
	}

	var post models.Post
	if err := h.DB.Preload("Categories").First(&post, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorResponse(c, http.StatusNotFound, "post not found")
		}
		return errorResponse(c, http.StatusInternalServerError, "internal error")
	}

	post.Title = payload.Title
	post.Description = payload.Description
	post.Content = payload.Content
	post.Logo = payload.Logo

	if err := h.DB.Model(&post).Association("Categories").Replace(payload.Categories); err != nil {
		return errorResponse(c, http.StatusInternalServerError, "internal error")
	}
	if err := h.DB.Save(&post).Error; err != nil {
		return errorResponse(c, http.StatusBadRequest, "could not update post")
	}

	h.index(c, &post)

	return c.JSON(http.StatusOK, post)
}

func (h *PostHandler) DeletePost(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid id")
	}

	var post models.Post
	if err := h.DB.First(&post, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorResponse(c, http.StatusNotFound, "post not found")
		}
		return errorResponse(c, http.StatusInternalServerError, "internal error")
	}

	if err := h.DB.Model(&post).Association("Categories").Clear(); err != nil {
		return errorResponse(c, http.StatusInternalServerError, "internal error")
	}
	if err := h.DB.Where("post_id = ?", post.ID).Delete(&models.PostLike{}).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, "internal error")
	}
	if err := h.DB.Delete(&post).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, "internal error")
	}

	if h.ES != nil {
		if err := search.DeletePost(c.Request().Context(), h.ES, post.ID); err != nil {
			logging.FromContext(c.Request().Context()).Warn("post deindex failed", "post", post.ID, "error", err)
		}
	}

	return c.NoContent(http.StatusNoContent)
}

// ToggleLike adds or removes the principal's like on a post.
func (h *PostHandler) ToggleLike(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid id")
	}

	principal := auth.PrincipalFromContext(c.Request().Context())
	if principal == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthenticated")
	}

	var post models.Post
	if err := h.DB.First(&post, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorResponse(c, http.StatusNotFound, "post not found")
		}
		return errorResponse(c, http.StatusInternalServerError, "internal error")
	}

	var like models.PostLike
	err = h.DB.Where("user_id = ? AND post_id = ?", principal.ID, post.ID).First(&like).Error
	switch {
	case err == nil:
		if err := h.DB.Delete(&like).Error; err != nil {
			return errorResponse(c, http.StatusInternalServerError, "internal error")
		}
		post.Likes--
	case errors.Is(err, gorm.ErrRecordNotFound):
		like = models.PostLike{UserID: principal.ID, PostID: post.ID}
		if err := h.DB.Create(&like).Error; err != nil {
			return errorResponse(c, http.StatusInternalServerError, "internal error")
		}
		post.Likes++
	default:
		return errorResponse(c, http.StatusInternalServerError, "internal error")
	}

	if err := h.DB.Save(&post).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, post)
}

// SearchPosts answers full-text queries from the search index and resolves the
// hits through the database.
func (h *PostHandler) SearchPosts(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return errorResponse(c, http.StatusBadRequest, "q is required")
	}
	if h.ES == nil {
		return errorResponse(c, http.StatusServiceUnavailable, "search unavailable")
	}

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, ids, err := search.Search(c.Request().Context(), h.ES, query, offset, limit)
	if err != nil {
		return errorResponse(c, http.StatusInternalServerError, "search failed")
	}

	posts := make([]models.Post, 0, len(ids))
	if len(ids) > 0 {
		if err := h.DB.Preload("Categories").Where("id IN ?", ids).Find(&posts).Error; err != nil {
			return errorResponse(c, http.StatusInternalServerError, "internal error")
		}
	}

	return c.JSON(http.StatusOK, listEnvelope(posts, page, offset, limit, total))
}
