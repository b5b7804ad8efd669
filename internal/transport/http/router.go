package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/kameliyaaivanova/BlogAPI/internal/auth"
	"github.com/kameliyaaivanova/BlogAPI/internal/handlers"
	"github.com/kameliyaaivanova/BlogAPI/internal/models"
)

type Deps struct {
	Issuer            *auth.Issuer
	AuthHandler       *handlers.AuthHandler
	UserHandler       *handlers.UserHandler
	RoleHandler       *handlers.RoleHandler
	PermissionHandler *handlers.PermissionHandler
	CategoryHandler   *handlers.CategoryHandler
	PostHandler       *handlers.PostHandler
	FileHandler       *handlers.FileHandler
	StatsHandler      *handlers.StatsHandler
}

// Register wires every route behind the request authenticator. Routes without
// a permission guard are open; everything else requires the listed permission
// abbreviation from the caller's token claims.
func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	e.Use(auth.Middleware(d.Issuer))

	e.POST("/register", d.AuthHandler.Register)
	e.POST("/login", d.AuthHandler.Login)
	e.GET("/files/:uuid", d.FileHandler.GetFile)

	categories := e.Group("/categories")
	categories.GET("", d.CategoryHandler.GetCategories, auth.RequirePermission(models.ReadCategories))
	categories.GET("/:id", d.CategoryHandler.GetCategory, auth.RequirePermission(models.ReadCategories))
	categories.POST("/add", d.CategoryHandler.CreateCategory, auth.RequirePermission(models.CreateCategories))
	categories.PUT("/:id", d.CategoryHandler.UpdateCategory, auth.RequirePermission(models.UpdateCategories))

	posts := e.Group("/posts")
	posts.GET("", d.PostHandler.GetPosts, auth.RequirePermission(models.ReadPosts))
	posts.GET("/search", d.PostHandler.SearchPosts, auth.RequirePermission(models.ReadPosts))
	posts.GET("/:id", d.PostHandler.GetPost, auth.RequirePermission(models.ReadPosts))
	posts.PUT("/:id/like", d.PostHandler.ToggleLike, auth.RequirePermission(models.ReadPosts))
	posts.POST("/add", d.PostHandler.CreatePost, auth.RequirePermission(models.CreatePosts))
	posts.PUT("/:id", d.PostHandler.UpdatePost, auth.RequirePermission(models.UpdatePosts))
	posts.DELETE("/:id", d.PostHandler.DeletePost, auth.RequirePermission(models.DeletePosts))

	roles := e.Group("/roles")
	roles.GET("", d.RoleHandler.GetRoles, auth.RequirePermission(models.ReadRoles))
	roles.GET("/:id", d.RoleHandler.GetRole, auth.RequirePermission(models.ReadRoles))
	roles.POST("/add", d.RoleHandler.CreateRole, auth.RequirePermission(models.CreateRoles))
	roles.PUT("/:id", d.RoleHandler.UpdateRole, auth.RequirePermission(models.UpdateRoles))
	roles.DELETE("/:id", d.RoleHandler.DeleteRole, auth.RequirePermission(models.DeleteRoles))

	users := e.Group("/users")
	users.GET("", d.UserHandler.GetUsers, auth.RequirePermission(models.ReadUsers))
	users.GET("/:id", d.UserHandler.GetUser, auth.RequirePermission(models.ReadUsers))
	users.POST("/add", d.UserHandler.CreateUser, auth.RequirePermission(models.CreateUsers))
	users.PUT("/:id", d.UserHandler.UpdateUser, auth.RequirePermission(models.UpdateUsers))
	users.DELETE("/:id", d.UserHandler.DeleteUser, auth.RequirePermission(models.DeleteUsers))

	e.GET("/permissions", d.PermissionHandler.GetPermissions, auth.RequirePermission(models.ReadRoles))

	e.POST("/files/add", d.FileHandler.UploadFile,
		auth.RequirePermission(models.CreatePosts, models.UpdatePosts))

	e.GET("/activity", d.StatsHandler.GetActivity, auth.RequirePermission(models.ReadStatistics))
	e.GET("/deleted-files", d.StatsHandler.GetDeletedFiles, auth.RequirePermission(models.ReadStatistics))
}
