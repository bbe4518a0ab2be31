package handlers

import (
	"context"

	"gorm.io/gorm"

	"github.com/sofiagray/inkwell/backend/internal/cache"
	"github.com/sofiagray/inkwell/backend/internal/config"
	"github.com/sofiagray/inkwell/backend/internal/feed"
	"github.com/sofiagray/inkwell/backend/internal/models"
	"github.com/sofiagray/inkwell/backend/internal/repository"
	"github.com/sofiagray/inkwell/backend/internal/upload"
)

// Feed is the slice of the feed service the handlers consume.
type Feed interface {
	Index(ctx context.Context, page int) (*feed.Page, error)
	GroupPosts(ctx context.Context, slug string, page int) (*feed.Page, *models.Group, error)
	ProfilePosts(ctx context.Context, username string, page int) (*feed.Page, *models.User, error)
	FollowingPosts(ctx context.Context, followerID, page int) (*feed.Page, error)
}

// Handler combines all handler types
type Handler struct {
	Auth    *AuthHandler
	Post    *PostHandler
	Group   *GroupHandler
	Comment *CommentHandler
	User    *UserHandler
}

// New creates a unified handler with all sub-handlers
func New(
	db *gorm.DB,
	feedSvc Feed,
	follows repository.FollowRepository,
	users repository.UserRepository,
	pages cache.PageCache,
	images *upload.Store,
	jwtCfg config.JWTConfig,
) *Handler {
	return &Handler{
		Auth:    NewAuthHandler(db, jwtCfg),
		Post:    NewPostHandler(db, feedSvc, pages, images),
		Group:   NewGroupHandler(db, feedSvc),
		Comment: NewCommentHandler(db),
		User:    NewUserHandler(feedSvc, follows, users),
	}
}
