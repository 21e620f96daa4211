package repositories

import (
	"context"
	"fmt"

	"github.com/opiquem/blog-app-be/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FollowRepository stores directed follow edges.
type FollowRepository interface {
	Exists(ctx context.Context, followerID, followingID string) (bool, error)
	Create(ctx context.Context, followerID, followingID string) error
	Delete(ctx context.Context, followerID, followingID string) error
	FollowingIDs(ctx context.Context, followerID string) ([]string, error)
}

// GORMFollowRepository is a GORM implementation of FollowRepository.
type GORMFollowRepository struct {
	db *gorm.DB
}

func NewGORMFollowRepository(db *gorm.DB) *GORMFollowRepository {
	return &GORMFollowRepository{db: db}
}

func (r *GORMFollowRepository) Exists(ctx context.Context, followerID, followingID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check follow edge: %w", err)
	}
	return count > 0, nil
}

// Create inserts the edge; an existing edge is left untouched.
func (r *GORMFollowRepository) Create(ctx context.Context, followerID, followingID string) error {
	if followerID == followingID {
		return models.NewBadRequestError("Follower and following should not be equal")
	}
	follow := models.Follow{FollowerID: followerID, FollowingID: followingID}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&follow).Error; err != nil {
		return fmt.Errorf("failed to create follow edge: %w", err)
	}
	return nil
}

func (r *GORMFollowRepository) Delete(ctx context.Context, followerID, followingID string) error {
	if err := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&models.Follow{}).Error; err != nil {
		return fmt.Errorf("failed to delete follow edge: %w", err)
	}
	return nil
}

func (r *GORMFollowRepository) FollowingIDs(ctx context.Context, followerID string) ([]string, error) {
	var ids []string
	if err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ?", followerID).
		Pluck("following_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to list followed users: %w", err)
	}
	return ids, nil
}
