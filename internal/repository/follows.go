package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/sofiagray/inkwell/backend/internal/models"
)

// FollowRepository defines persistence operations for follow edges.
type FollowRepository interface {
	Follow(ctx context.Context, followerID, authorID int) error
	Unfollow(ctx context.Context, followerID, authorID int) error
	IsFollowing(ctx context.Context, followerID, authorID int) (bool, error)
	FollowerCount(ctx context.Context, authorID int) (int64, error)
	FollowingCount(ctx context.Context, followerID int) (int64, error)
	Followers(ctx context.Context, authorID int) ([]models.User, error)
	Following(ctx context.Context, followerID int) ([]models.User, error)
}

// GormFollowRepository implements FollowRepository using GORM.
type GormFollowRepository struct {
	db *gorm.DB
}

func NewGormFollowRepository(db *gorm.DB) *GormFollowRepository {
	return &GormFollowRepository{db: db}
}

// Follow creates the (follower, author) edge. A duplicate insert trips the
// composite unique index and is treated as success: follow is idempotent,
// and the constraint (not a pre-check) is what de-races concurrent requests.
func (r *GormFollowRepository) Follow(ctx context.Context, followerID, authorID int) error {
	edge := models.Follow{
		UserID:   followerID,
		AuthorID: authorID,
	}
	if err := r.db.WithContext(ctx).Create(&edge).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil
		}
		return err
	}
	return nil
}

// Unfollow removes the edge. Deleting a non-existent edge is a no-op.
func (r *GormFollowRepository) Unfollow(ctx context.Context, followerID, authorID int) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", followerID, authorID).
		Delete(&models.Follow{}).Error
}

// IsFollowing reports whether followerID follows authorID.
func (r *GormFollowRepository) IsFollowing(ctx context.Context, followerID, authorID int) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("user_id = ? AND author_id = ?", followerID, authorID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// FollowerCount returns how many users follow authorID.
func (r *GormFollowRepository) FollowerCount(ctx context.Context, authorID int) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("author_id = ?", authorID).
		Count(&count).Error
	return count, err
}

// FollowingCount returns how many authors followerID follows.
func (r *GormFollowRepository) FollowingCount(ctx context.Context, followerID int) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("user_id = ?", followerID).
		Count(&count).Error
	return count, err
}

// Followers lists the users following authorID.
func (r *GormFollowRepository) Followers(ctx context.Context, authorID int) ([]models.User, error) {
	var edges []models.Follow
	err := r.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Preload("User").
		Find(&edges).Error
	if err != nil {
		return nil, err
	}

	users := make([]models.User, 0, len(edges))
	for _, e := range edges {
		users = append(users, e.User)
	}
	return users, nil
}

// Following lists the authors followerID follows.
func (r *GormFollowRepository) Following(ctx context.Context, followerID int) ([]models.User, error) {
	var edges []models.Follow
	err := r.db.WithContext(ctx).
		Where("user_id = ?", followerID).
		Preload("Author").
		Find(&edges).Error
	if err != nil {
		return nil, err
	}

	users := make([]models.User, 0, len(edges))
	for _, e := range edges {
		users = append(users, e.Author)
	}
	return users, nil
}

var _ FollowRepository = (*GormFollowRepository)(nil)
