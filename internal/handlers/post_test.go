package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kameliyaaivanova/BlogAPI/internal/models"
)

func createPost(t *testing.T, env *testEnv, h *PostHandler, title string, categories ...models.Category) models.Post {
	t.Helper()

	rec, c := env.doJSONRequest(http.MethodPost, "/posts/add", map[string]interface{}{
		"title":       title,
		"description": "about " + title,
		"content":     "body of " + title,
		"categories":  categories,
	})
	env.asPrincipal(c, 1, "kamkam", models.CreatePosts)
	require.NoError(t, h.CreatePost(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var post models.Post
	decodeJSON(t, rec, &post)
	return post
}

func TestCreatePost(t *testing.T) {
	env := newTestEnv(t)
	h := &PostHandler{DB: env.DB}

	var category models.Category
	require.NoError(t, env.DB.Where("title = ?", "Gaming").First(&category).Error)

	post := createPost(t, env, h, "First Post", category)
	require.Equal(t, "First Post", post.Title)
	require.Equal(t, "kamkam", post.Author)
	require.NotZero(t, post.ID)
	require.Len(t, post.Categories, 1)
}

func TestCreatePostRequiresPrincipal(t *testing.T) {
	env := newTestEnv(t)
	h := &PostHandler{DB: env.DB}

	_, c := env.doJSONRequest(http.MethodPost, "/posts/add", map[string]interface{}{
		"title": "Orphan",
	})
	requireHTTPError(t, h.CreatePost(c), http.StatusUnauthorized)
}

func TestCreatePostDuplicateTitle(t *testing.T) {
	env := newTestEnv(t)
	h := &PostHandler{DB: env.DB}

	createPost(t, env, h, "Unique Title")

	rec, c := env.doJSONRequest(http.MethodPost, "/posts/add", map[string]interface{}{
		"title": "Unique Title",
	})
	env.asPrincipal(c, 1, "kamkam", models.CreatePosts)
	require.NoError(t, h.CreatePost(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetPostsFilterByCategory(t *testing.T) {
	env := newTestEnv(t)
	h := &PostHandler{DB: env.DB}

	var gaming, travel models.Category
	require.NoError(t, env.DB.Where("title = ?", "Gaming").First(&gaming).Error)
	require.NoError(t, env.DB.Where("title = ?", "Travel & Adventure").First(&travel).Error)

	createPost(t, env, h, "About Games", gaming)
	createPost(t, env, h, "About Travel", travel)

	rec, c := env.doJSONRequest(http.MethodGet, "/posts?categoryId="+itoa(gaming.ID), nil)
	require.NoError(t, h.GetPosts(c))

	var envelope struct {
		Data []models.Post `json:"data"`
	}
	decodeJSON(t, rec, &envelope)
	require.Len(t, envelope.Data, 1)
	require.Equal(t, "About Games", envelope.Data[0].Title)
}

func TestUpdatePost(t *testing.T) {
	env := newTestEnv(t)
	h := &PostHandler{DB: env.DB}

	var gaming, travel models.Category
	require.NoError(t, env.DB.Where("title = ?", "Gaming").First(&gaming).Error)
	require.NoError(t, env.DB.Where("title = ?", "Travel & Adventure").First(&travel).Error)

	post := createPost(t, env, h, "Before", gaming)

	rec, c := env.doJSONRequest(http.MethodPut, "/posts/1", map[string]interface{}{
		"title":       "After",
		"description": "updated",
		"content":     "updated body",
		"categories":  []models.Category{travel},
	})
	c.SetParamNames("id")
	c.SetParamValues(itoa(post.ID))
	require.NoError(t, h.UpdatePost(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var updated models.Post
	require.NoError(t, env.DB.Preload("Categories").First(&updated, post.ID).Error)
	require.Equal(t, "After", updated.Title)
	require.Len(t, updated.Categories, 1)
	require.Equal(t, travel.ID, updated.Categories[0].ID)
}

func TestDeletePost(t *testing.T) {
	env := newTestEnv(t)
	h := &PostHandler{DB: env.DB}

	post := createPost(t, env, h, "Doomed")

	rec, c := env.doJSONRequest(http.MethodDelete, "/posts/1", nil)
	c.SetParamNames("id")
	c.SetParamValues(itoa(post.ID))
	require.NoError(t, h.DeletePost(c))
	require.Equal(t, http.StatusNoContent, rec.Code)

	var count int64
	require.NoError(t, env.DB.Model(&models.Post{}).Where("id = ?", post.ID).Count(&count).Error)
	require.Zero(t, count)
}

func TestToggleLike(t *testing.T) {
	env := newTestEnv(t)
	h := &PostHandler{DB: env.DB}

	post := createPost(t, env, h, "Likeable")

	like := func(userID uint) *models.Post {
		rec, c := env.doJSONRequest(http.MethodPut, "/posts/1/like", nil)
		c.SetParamNames("id")
		c.SetParamValues(itoa(post.ID))
		env.asPrincipal(c, userID, "reader", models.ReadPosts)
		require.NoError(t, h.ToggleLike(c))
		require.Equal(t, http.StatusOK, rec.Code)

		var out models.Post
		decodeJSON(t, rec, &out)
		return &out
	}

	require.Equal(t, 1, like(10).Likes)
	require.Equal(t, 2, like(11).Likes)

	// A second toggle from the same reader takes the like back.
	require.Equal(t, 1, like(10).Likes)
}

func TestSearchPostsWithoutIndex(t *testing.T) {
	env := newTestEnv(t)
	h := &PostHandler{DB: env.DB}

	rec, c := env.doJSONRequest(http.MethodGet, "/posts/search?q=anything", nil)
	require.NoError(t, h.SearchPosts(c))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec2, c2 := env.doJSONRequest(http.MethodGet, "/posts/search", nil)
	require.NoError(t, h.SearchPosts(c2))
	require.Equal(t, http.StatusBadRequest, rec2.Code)
}
