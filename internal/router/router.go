package router

import (
	"net/http"
	"time"

	"blogapi/internal/handlers"
	"blogapi/internal/middleware"
	"blogapi/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Deps struct {
	Auth       *services.AuthService
	Sessions   middleware.SessionVerifier
	Users      *services.UserService
	Posts      *services.PostService
	Comments   *services.CommentService
	Categories *services.CategoryService
	Log        *zap.Logger

	ClientOrigin    string
	UploadMaxBytes  int64
	RateLimitWindow time.Duration
	RateLimitMax    int
}

// New builds the engine with every /api route registered.
func New(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestLogger(d.Log), gin.Recovery())
	r.Use(middleware.CORS(d.ClientOrigin))
	r.MaxMultipartMemory = d.UploadMaxBytes

	RegisterRoutes(r, d)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Not Found - " + c.Request.URL.Path})
	})
	return r
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	// Handlers
	authHandler := handlers.NewAuthHandler(d.Auth, d.Log)
	passwordHandler := handlers.NewPasswordHandler(d.Auth, d.Log)
	userHandler := handlers.NewUserHandler(d.Users, d.UploadMaxBytes, d.Log)
	postHandler := handlers.NewPostHandler(d.Posts, d.UploadMaxBytes, d.Log)
	commentHandler := handlers.NewCommentHandler(d.Comments, d.Log)
	categoryHandler := handlers.NewCategoryHandler(d.Categories, d.Log)

	auth := middleware.VerifyToken(d.Sessions)
	validID := middleware.ValidateID()

	api := r.Group("/api")
	api.Use(middleware.RateLimit(d.RateLimitWindow, d.RateLimitMax))

	// 认证 (Auth)
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.GET("/:userId/verify/:token", authHandler.VerifyEmail)
	}

	// 重置密码 (Password reset)
	password := api.Group("/password")
	{
		password.POST("/reset-password-link", passwordHandler.SendResetLink)
		password.GET("/reset-password/:userId/:token", passwordHandler.ValidateLink)
		password.POST("/reset-password/:userId/:token", passwordHandler.ResetPassword)
	}

	users := api.Group("/users")
	{
		users.GET("/profile", auth, middleware.AdminOnly(), userHandler.List)
		users.GET("/count", auth, middleware.AdminOnly(), userHandler.Count)
		users.POST("/profile/profile-photo-upload", auth, userHandler.UploadPhoto)
		users.GET("/profile/:id", validID, userHandler.Profile)
		users.PUT("/profile/:id", validID, auth, middleware.OnlyUser(), userHandler.Update)
		users.DELETE("/profile/:id", validID, auth, middleware.AdminOrUser(), userHandler.Delete)
	}

	posts := api.Group("/posts")
	{
		posts.GET("", postHandler.List)
		posts.POST("", auth, postHandler.Create)
		posts.GET("/count", postHandler.Count)
		posts.GET("/:id", validID, postHandler.Get)
		posts.DELETE("/:id", validID, auth, postHandler.Delete)
		posts.PUT("/:id", validID, auth, postHandler.Update)
		posts.PUT("/update-image/:id", validID, auth, postHandler.UpdateImage)
		posts.PUT("/like/:id", validID, auth, postHandler.ToggleLike)
	}

	comments := api.Group("/comments")
	{
		comments.POST("", auth, commentHandler.Create)
		comments.GET("", auth, middleware.AdminOnly(), commentHandler.List)
		comments.DELETE("/:id", validID, auth, commentHandler.Delete)
		comments.PUT("/:id", validID, auth, commentHandler.Update)
	}

	categories := api.Group("/categories")
	{
		categories.POST("", auth, middleware.AdminOnly(), categoryHandler.Create)
		categories.GET("", categoryHandler.List)
		categories.DELETE("/:id", validID, auth, middleware.AdminOnly(), categoryHandler.Delete)
	}
}
