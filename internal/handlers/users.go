package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sofiagray/inkwell/backend/internal/feed"
	"github.com/sofiagray/inkwell/backend/internal/logging"
	"github.com/sofiagray/inkwell/backend/internal/middleware"
	"github.com/sofiagray/inkwell/backend/internal/models"
	"github.com/sofiagray/inkwell/backend/internal/pagination"
	"github.com/sofiagray/inkwell/backend/internal/repository"
)

// ErrSelfFollow rejects a user following themselves.
var ErrSelfFollow = errors.New("cannot follow yourself")

type UserHandler struct {
	feed    Feed
	follows repository.FollowRepository
	users   repository.UserRepository
}

func NewUserHandler(feedSvc Feed, follows repository.FollowRepository, users repository.UserRepository) *UserHandler {
	return &UserHandler{feed: feedSvc, follows: follows, users: users}
}

// GetProfile returns a user's profile with one page of their posts,
// follower counts, and whether the requester follows them.
func (h *UserHandler) GetProfile(c *gin.Context) {
	username := c.Param("username")
	page := pagination.ParsePage(c.Query("page"))
	ctx := c.Request.Context()

	result, user, err := h.feed.ProfilePosts(ctx, username, page)
	if err != nil {
		if errors.Is(err, feed.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch profile"})
		return
	}

	l := logging.Ctx(c)

	followerCount, err := h.follows.FollowerCount(ctx, user.ID)
	if err != nil {
		l.Error().Err(err).Str("username", username).Msg("follower count failed")
	}
	followingCount, err := h.follows.FollowingCount(ctx, user.ID)
	if err != nil {
		l.Error().Err(err).Str("username", username).Msg("following count failed")
	}

	isFollowing := false
	if requesterID, ok := middleware.GetUserID(c); ok {
		isFollowing, err = h.follows.IsFollowing(ctx, requesterID, user.ID)
		if err != nil {
			l.Error().Err(err).Str("username", username).Msg("follow lookup failed")
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"bio":      user.Bio,
		},
		"posts":           result.Posts,
		"meta":            result.Meta,
		"follower_count":  followerCount,
		"following_count": followingCount,
		"is_following":    isFollowing,
	})
}

// FollowUser creates the follow edge (PROTECTED). Following an author you
// already follow is a success, not a conflict.
func (h *UserHandler) FollowUser(c *gin.Context) {
	followerID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	author, err := h.lookupUser(c)
	if err != nil {
		return
	}

	if author.ID == followerID {
		c.JSON(http.StatusBadRequest, gin.H{"error": ErrSelfFollow.Error()})
		return
	}

	if err := h.follows.Follow(c.Request.Context(), followerID, author.ID); err != nil {
		logging.Ctx(c).Error().Err(err).
			Int("follower_id", followerID).
			Int("author_id", author.ID).
			Msg("follow failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to follow user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Successfully followed user"})
}

// UnfollowUser removes the follow edge (PROTECTED). Unfollowing an author
// you never followed is a no-op.
func (h *UserHandler) UnfollowUser(c *gin.Context) {
	followerID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	author, err := h.lookupUser(c)
	if err != nil {
		return
	}

	if err := h.follows.Unfollow(c.Request.Context(), followerID, author.ID); err != nil {
		logging.Ctx(c).Error().Err(err).
			Int("follower_id", followerID).
			Int("author_id", author.ID).
			Msg("unfollow failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unfollow user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Successfully unfollowed user"})
}

// GetFollowers returns a user's followers.
func (h *UserHandler) GetFollowers(c *gin.Context) {
	user, err := h.lookupUser(c)
	if err != nil {
		return
	}

	users, err := h.follows.Followers(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch followers"})
		return
	}

	c.JSON(http.StatusOK, userSummaries(users))
}

// GetFollowing returns the authors a user follows.
func (h *UserHandler) GetFollowing(c *gin.Context) {
	user, err := h.lookupUser(c)
	if err != nil {
		return
	}

	users, err := h.follows.Following(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch following"})
		return
	}

	c.JSON(http.StatusOK, userSummaries(users))
}

// GetFollowingFeed returns one page of posts from followed authors
// (PROTECTED).
func (h *UserHandler) GetFollowingFeed(c *gin.Context) {
	followerID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	page := pagination.ParsePage(c.Query("page"))
	result, err := h.feed.FollowingPosts(c.Request.Context(), followerID, page)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch feed"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// lookupUser resolves :username, writing the 404 itself on a miss.
func (h *UserHandler) lookupUser(c *gin.Context) (*models.User, error) {
	user, err := h.users.ByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user"})
		}
		return nil, err
	}
	return user, nil
}

func userSummaries(users []models.User) []gin.H {
	out := make([]gin.H, 0, len(users))
	for _, u := range users {
		out = append(out, gin.H{
			"id":       u.ID,
			"username": u.Username,
			"bio":      u.Bio,
		})
	}
	return out
}
