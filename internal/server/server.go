package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/sofiagray/inkwell/backend/internal/config"
	"github.com/sofiagray/inkwell/backend/internal/database"
	"github.com/sofiagray/inkwell/backend/internal/handlers"
	"github.com/sofiagray/inkwell/backend/internal/logging"
	"github.com/sofiagray/inkwell/backend/internal/middleware"
)

type Server struct {
	db      *database.Database
	handler *handlers.Handler
	auth    *middleware.AuthMiddleware
	cfg     *config.Config
}

// New creates and configures the HTTP server.
func New(cfg *config.Config, db *database.Database, handler *handlers.Handler) *http.Server {
	s := &Server{
		db:      db,
		handler: handler,
		auth:    middleware.NewAuthMiddleware(cfg.JWT.Secret),
		cfg:     cfg,
	}

	router := s.RegisterRoutes()

	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// RegisterRoutes sets up all application routes
func (s *Server) RegisterRoutes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logging.GinMiddleware(logging.L()))

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * 3600,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.db.Health(c.Request.Context()))
	})

	// Uploaded post images
	r.Static("/media", s.cfg.Media.Dir)

	api := r.Group("/api")
	{
		// Auth routes (public)
		api.POST("/register", s.handler.Auth.Register)
		api.POST("/login", s.handler.Auth.Login)

		// Feed routes (public reads)
		api.GET("/posts", s.handler.Post.Index)
		api.GET("/posts/:id", s.handler.Post.GetPost)
		api.GET("/posts/:id/comments", s.handler.Comment.GetComments)

		api.GET("/groups", s.handler.Group.GetGroups)
		api.GET("/groups/:slug/posts", s.handler.Group.GetGroupPosts)

		api.GET("/users/:username", s.handler.User.GetProfile)
		api.GET("/users/:username/followers", s.handler.User.GetFollowers)
		api.GET("/users/:username/following", s.handler.User.GetFollowing)

		// Protected routes (authentication required)
		protected := api.Group("")
		protected.Use(s.auth.RequireAuth())
		{
			protected.GET("/me", s.handler.Auth.GetMe)

			protected.POST("/posts", s.handler.Post.CreatePost)
			protected.PUT("/posts/:id", s.handler.Post.UpdatePost)
			protected.POST("/posts/:id/comments", s.handler.Comment.CreateComment)

			protected.POST("/groups", s.handler.Group.CreateGroup)

			protected.POST("/users/:username/follow", s.handler.User.FollowUser)
			protected.DELETE("/users/:username/follow", s.handler.User.UnfollowUser)
			protected.GET("/feed", s.handler.User.GetFollowingFeed)

			protected.DELETE("/cache/index", s.handler.Post.ClearIndexCache)
		}
	}

	return r
}
