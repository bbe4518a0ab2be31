package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/sofiagray/inkwell/backend/internal/cache"
	"github.com/sofiagray/inkwell/backend/internal/logging"
	"github.com/sofiagray/inkwell/backend/internal/middleware"
	"github.com/sofiagray/inkwell/backend/internal/models"
	"github.com/sofiagray/inkwell/backend/internal/pagination"
	"github.com/sofiagray/inkwell/backend/internal/upload"
)

type PostHandler struct {
	db     *gorm.DB
	feed   Feed
	pages  cache.PageCache
	images *upload.Store
}

func NewPostHandler(db *gorm.DB, feedSvc Feed, pages cache.PageCache, images *upload.Store) *PostHandler {
	return &PostHandler{db: db, feed: feedSvc, pages: pages, images: images}
}

// Index returns the home feed, newest first. The rendered body is cached
// per page for the configured window; within that window a request is
// served byte-identical from the cache, so fresh posts only show up once
// the entry expires or is explicitly cleared.
func (h *PostHandler) Index(c *gin.Context) {
	page := pagination.ParsePage(c.Query("page"))
	ctx := c.Request.Context()
	l := logging.Ctx(c)

	if body, err := h.pages.Get(ctx, page); err == nil {
		c.Data(http.StatusOK, "application/json; charset=utf-8", body)
		return
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		l.Warn().Err(err).Msg("page cache get failed, falling back to db")
	}

	result, err := h.feed.Index(ctx, page)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch posts"})
		return
	}

	body, err := json.Marshal(result)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render posts"})
		return
	}

	// Best effort; a cache write failure must not fail the request.
	if err := h.pages.Set(ctx, page, body); err != nil {
		l.Warn().Err(err).Msg("page cache set failed")
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

// GetPost returns a single post with its comments and the author's total
// post count.
func (h *PostHandler) GetPost(c *gin.Context) {
	postID := c.Param("id")

	var post models.Post
	if err := h.db.Preload("Author").Preload("Group").First(&post, postID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	var comments []models.Comment
	h.db.Where("post_id = ?", post.ID).Preload("Author").Order("created_at desc").Find(&comments)
	if comments == nil {
		comments = []models.Comment{}
	}

	var authorPosts int64
	h.db.Model(&models.Post{}).Where("author_id = ?", post.AuthorID).Count(&authorPosts)

	c.JSON(http.StatusOK, gin.H{
		"post":               post,
		"comments":           comments,
		"author_posts_count": authorPosts,
	})
}

// CreatePost creates a new post (PROTECTED - requires authentication).
// Accepts JSON, or multipart/form-data when an image is attached.
func (h *PostHandler) CreatePost(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	text, groupID, image, errs := h.bindPostInput(c, true)
	if errs != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
		return
	}

	post := models.Post{
		Text:     text,
		AuthorID: userID,
		GroupID:  groupID,
		Image:    image,
	}

	if err := h.db.Create(&post).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create post"})
		return
	}

	h.db.Preload("Author").Preload("Group").First(&post, post.ID)

	c.JSON(http.StatusCreated, post)
}

// UpdatePost updates an existing post (PROTECTED - author only).
func (h *PostHandler) UpdatePost(c *gin.Context) {
	postID := c.Param("id")

	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var post models.Post
	if err := h.db.First(&post, postID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	if post.AuthorID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only edit your own posts"})
		return
	}

	text, groupID, image, errs := h.bindPostInput(c, false)
	if errs != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
		return
	}

	// Omitted fields keep their current value; an edit only replaces what
	// the request actually carries.
	if text != "" {
		post.Text = text
	}
	if groupID != nil {
		post.GroupID = groupID
	}
	if image != "" {
		post.Image = image
	}

	if err := h.db.Save(&post).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update post"})
		return
	}

	h.db.Preload("Author").Preload("Group").First(&post, post.ID)

	c.JSON(http.StatusOK, post)
}

// ClearIndexCache drops the cached home feed (administrative).
func (h *PostHandler) ClearIndexCache(c *gin.Context) {
	if err := h.pages.Clear(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear cache"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Index cache cleared"})
}

// bindPostInput reads text, group and image from either a JSON or a
// multipart body. It returns a field→message map on validation failure;
// nothing is persisted when validation fails.
func (h *PostHandler) bindPostInput(c *gin.Context, textRequired bool) (text string, groupID *int, image string, errs gin.H) {
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		text = c.PostForm("text")
		if raw := c.PostForm("group_id"); raw != "" {
			id, err := strconv.Atoi(raw)
			if err != nil {
				return "", nil, "", gin.H{"group_id": "must be a number"}
			}
			groupID = &id
		}

		if fh, err := c.FormFile("image"); err == nil {
			name, err := h.images.Save(fh)
			if err != nil {
				if errors.Is(err, upload.ErrNotImage) {
					return "", nil, "", gin.H{"image": upload.ErrNotImage.Error()}
				}
				logging.Ctx(c).Error().Err(err).Msg("image save failed")
				return "", nil, "", gin.H{"image": "failed to store image"}
			}
			image = name
		}
	} else {
		var input models.CreatePostRequest
		if textRequired {
			if err := c.ShouldBindJSON(&input); err != nil {
				return "", nil, "", gin.H{"text": "text is required"}
			}
		} else {
			var update models.UpdatePostRequest
			if err := c.ShouldBindJSON(&update); err != nil {
				return "", nil, "", gin.H{"body": "invalid request body"}
			}
			input = models.CreatePostRequest{Text: update.Text, GroupID: update.GroupID}
		}
		text = input.Text
		groupID = input.GroupID
	}

	if textRequired && strings.TrimSpace(text) == "" {
		return "", nil, "", gin.H{"text": "text is required"}
	}

	if groupID != nil {
		var group models.Group
		if err := h.db.First(&group, *groupID).Error; err != nil {
			return "", nil, "", gin.H{"group_id": "unknown group"}
		}
	}

	return text, groupID, image, nil
}
