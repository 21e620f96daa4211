package repositories

import (
	"context"
	"fmt"

	"github.com/opiquem/blog-app-be/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TagRepository stores the set of known tag names.
type TagRepository interface {
	Upsert(ctx context.Context, names []string) error
	List(ctx context.Context) ([]string, error)
}

type GORMTagRepository struct {
	db *gorm.DB
}

func NewGORMTagRepository(db *gorm.DB) *GORMTagRepository {
	return &GORMTagRepository{db: db}
}

func (r *GORMTagRepository) Upsert(ctx context.Context, names []string) error {
	if len(names) == 0 {
		return nil
	}
	tags := make([]models.Tag, 0, len(names))
	for _, n := range names {
		tags = append(tags, models.Tag{Name: n})
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&tags).Error; err != nil {
		return fmt.Errorf("failed to upsert tags: %w", err)
	}
	return nil
}

func (r *GORMTagRepository) List(ctx context.Context) ([]string, error) {
	names := []string{}
	if err := r.db.WithContext(ctx).
		Model(&models.Tag{}).
		Order("name ASC").
		Pluck("name", &names).Error; err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return names, nil
}
