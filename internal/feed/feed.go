// Package feed builds the ordered, paginated post listings: the home feed,
// group feeds, profile feeds, and the per-user follow feed.
package feed

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/sofiagray/inkwell/backend/internal/models"
	"github.com/sofiagray/inkwell/backend/internal/pagination"
)

var (
	ErrGroupNotFound = errors.New("group not found")
	ErrUserNotFound  = errors.New("user not found")
)

// Page is one window of a feed.
type Page struct {
	Posts []models.Post   `json:"posts"`
	Meta  pagination.Meta `json:"meta"`
}

// Service produces the feed variants. All methods are read-only.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// postOrder is the feed ordering invariant: newest first, with the id
// tiebreak keeping page windows stable for posts created in the same
// instant.
const postOrder = "created_at DESC, id DESC"

// Index returns one page of the all-posts feed.
func (s *Service) Index(ctx context.Context, page int) (*Page, error) {
	return s.paginate(ctx, s.db.WithContext(ctx).Model(&models.Post{}), page)
}

// GroupPosts returns one page of a group's feed, plus the group itself.
func (s *Service) GroupPosts(ctx context.Context, slug string, page int) (*Page, *models.Group, error) {
	var group models.Group
	err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&group).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrGroupNotFound
		}
		return nil, nil, err
	}

	q := s.db.WithContext(ctx).Model(&models.Post{}).Where("group_id = ?", group.ID)
	p, err := s.paginate(ctx, q, page)
	if err != nil {
		return nil, nil, err
	}
	return p, &group, nil
}

// ProfilePosts returns one page of an author's feed, plus the author.
func (s *Service) ProfilePosts(ctx context.Context, username string, page int) (*Page, *models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, err
	}

	q := s.db.WithContext(ctx).Model(&models.Post{}).Where("author_id = ?", user.ID)
	p, err := s.paginate(ctx, q, page)
	if err != nil {
		return nil, nil, err
	}
	return p, &user, nil
}

// FollowingPosts returns one page of posts from the authors followerID
// follows. A user with no subscriptions gets an empty page, not an error.
func (s *Service) FollowingPosts(ctx context.Context, followerID, page int) (*Page, error) {
	followed := s.db.WithContext(ctx).Model(&models.Follow{}).
		Select("author_id").
		Where("user_id = ?", followerID)

	q := s.db.WithContext(ctx).Model(&models.Post{}).Where("author_id IN (?)", followed)
	return s.paginate(ctx, q, page)
}

// paginate counts the filtered set, clamps the requested page, and fetches
// that window with authors and groups preloaded.
func (s *Service) paginate(ctx context.Context, q *gorm.DB, page int) (*Page, error) {
	var count int64
	if err := q.Session(&gorm.Session{}).Count(&count).Error; err != nil {
		return nil, err
	}

	pager := pagination.NewPager(count)
	meta := pager.MetaFor(page)

	var posts []models.Post
	err := q.Session(&gorm.Session{}).
		Preload("Author").
		Preload("Group").
		Order(postOrder).
		Offset(pager.Offset(meta.Page)).
		Limit(pager.PerPage).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}

	if posts == nil {
		posts = []models.Post{}
	}

	return &Page{Posts: posts, Meta: meta}, nil
}
