package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thereayou/blog-api/internal/database"
	"github.com/thereayou/blog-api/internal/handlers"
)

type Endpoints struct {
	RequireAuth gin.HandlerFunc
	RateLimit   gin.HandlerFunc
	Auth        *handlers.AuthHandler
	Users       *handlers.UserHandler
	Posts       *handlers.PostResource
	Comments    *handlers.CommentResource
	Feed        *handlers.FeedHandler
}

func APIEndpoints(r *gin.Engine, e Endpoints) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	users := r.Group("/users")
	{
		users.POST("/", e.RateLimit, e.Auth.Register)
		users.POST("/login", e.RateLimit, e.Auth.Login)
		users.POST("/logout", e.RequireAuth, e.Auth.Logout)
		users.GET("/", e.RequireAuth, e.Users.List)
		users.GET("/me", e.RequireAuth, e.Users.GetMe)
		users.GET("/:id", e.RequireAuth, e.Users.GetUser)
	}

	e.Posts.Register(r.Group("/posts"), e.RequireAuth)
	e.Comments.Register(r.Group("/comments"), e.RequireAuth)
	r.GET("/post-comments/:post_id", e.Comments.ListBy("post_id", database.ForPost))

	r.GET("/ws/feed", e.Feed.HandleWebSocket)
}
