package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/sofiagray/inkwell/backend/internal/feed"
	"github.com/sofiagray/inkwell/backend/internal/models"
	"github.com/sofiagray/inkwell/backend/internal/pagination"
)

type GroupHandler struct {
	db   *gorm.DB
	feed Feed
}

func NewGroupHandler(db *gorm.DB, feedSvc Feed) *GroupHandler {
	return &GroupHandler{db: db, feed: feedSvc}
}

// GetGroups lists all groups.
func (h *GroupHandler) GetGroups(c *gin.Context) {
	var groups []models.Group
	if err := h.db.Order("title").Find(&groups).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch groups"})
		return
	}
	if groups == nil {
		groups = []models.Group{}
	}
	c.JSON(http.StatusOK, groups)
}

// GetGroupPosts returns one page of a group's feed, 404 on unknown slug.
func (h *GroupHandler) GetGroupPosts(c *gin.Context) {
	slug := c.Param("slug")
	page := pagination.ParsePage(c.Query("page"))

	result, group, err := h.feed.GroupPosts(c.Request.Context(), slug, page)
	if err != nil {
		if errors.Is(err, feed.ErrGroupNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch group posts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"group": group,
		"posts": result.Posts,
		"meta":  result.Meta,
	})
}

// CreateGroup creates a new group (PROTECTED, administrative).
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	var input models.CreateGroupRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	group := models.Group{
		Title:       input.Title,
		Slug:        input.Slug,
		Description: input.Description,
	}

	if err := h.db.Create(&group).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"slug": "slug already taken"}})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create group"})
		return
	}

	c.JSON(http.StatusCreated, group)
}
