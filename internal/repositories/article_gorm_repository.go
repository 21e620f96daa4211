package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/opiquem/blog-app-be/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMArticleRepository is a GORM implementation of ArticleRepository.
type GORMArticleRepository struct {
	db *gorm.DB
}

// NewGORMArticleRepository creates a new instance of GORMArticleRepository.
func NewGORMArticleRepository(db *gorm.DB) *GORMArticleRepository {
	return &GORMArticleRepository{
		db: db,
	}
}

// filter applies the WHERE part of q; every column is qualified so it works with or without the author join.
func (r *GORMArticleRepository) filter(db *gorm.DB, q ArticleQuery) *gorm.DB {
	if q.Tag != "" {
		db = db.Where(containsExpr(r.db, "articles.tag_list"), q.Tag)
	}
	if q.Title != "" {
		db = db.Where(containsExpr(r.db, "articles.title"), q.Title)
	}
	if q.AuthorIDs != nil {
		if len(q.AuthorIDs) == 0 {
			db = db.Where("1 = 0")
		} else {
			db = db.Where("articles.author_id IN ?", q.AuthorIDs)
		}
	}
	if q.ArticleIDs != nil {
		if len(q.ArticleIDs) == 0 {
			db = db.Where("1 = 0")
		} else {
			db = db.Where("articles.id IN ?", q.ArticleIDs)
		}
	}
	return db
}

// Count returns the number of articles matching q, ignoring pagination.
func (r *GORMArticleRepository) Count(ctx context.Context, q ArticleQuery) (int64, error) {
	var count int64
	if err := r.filter(r.db.WithContext(ctx).Model(&models.Article{}), q).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count articles: %w", err)
	}
	return count, nil
}

// Find returns articles matching q with their authors, newest first.
func (r *GORMArticleRepository) Find(ctx context.Context, q ArticleQuery) ([]models.Article, error) {
	db := r.filter(r.db.WithContext(ctx).Joins("Author"), q).
		Order("articles.created_at DESC")
	if q.Limit != nil {
		db = db.Limit(*q.Limit)
	}
	if q.Offset != nil {
		db = db.Offset(*q.Offset)
	}

	articles := []models.Article{}
	if err := db.Find(&articles).Error; err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	return articles, nil
}

// GetBySlug retrieves a single article with its author.
func (r *GORMArticleRepository) GetBySlug(ctx context.Context, slug string) (*models.Article, error) {
	return r.first(ctx, "articles.slug = ?", slug)
}

// GetByID retrieves a single article with its author.
func (r *GORMArticleRepository) GetByID(ctx context.Context, id string) (*models.Article, error) {
	return r.first(ctx, "articles.id = ?", id)
}

func (r *GORMArticleRepository) first(ctx context.Context, cond string, arg string) (*models.Article, error) {
	var article models.Article
	if err := r.db.WithContext(ctx).Joins("Author").First(&article, cond, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Article")
		}
		return nil, fmt.Errorf("failed to get article (%s %s): %w", cond, arg, err)
	}
	return &article, nil
}

// Create inserts a new article. The author must already exist.
func (r *GORMArticleRepository) Create(ctx context.Context, article *models.Article) error {
	if article.ID == "" {
		article.ID = uuid.New().String()
	}
	if article.TagList == nil {
		article.TagList = models.TagList{}
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(article).Error; err != nil {
		return fmt.Errorf("failed to create article: %w", err)
	}
	return nil
}

// Update writes the editable columns only, so favorites_count and author_id are never overwritten.
func (r *GORMArticleRepository) Update(ctx context.Context, article *models.Article) error {
	res := r.db.WithContext(ctx).Model(article).
		Select("slug", "title", "description", "body", "tag_list", "updated_at").
		Updates(article)
	if res.Error != nil {
		return fmt.Errorf("failed to update article: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Article")
	}
	return nil
}

// Delete removes the article together with its favorites and comments.
func (r *GORMArticleRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("article_id = ?", id).Delete(&models.Favorite{}).Error; err != nil {
			return fmt.Errorf("failed to delete favorites: %w", err)
		}
		if err := tx.Where("article_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("failed to delete comments: %w", err)
		}
		res := tx.Delete(&models.Article{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete article: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Article")
		}
		return nil
	})
}

func (r *GORMArticleRepository) FavoriteIDs(ctx context.Context, userID string) ([]string, error) {
	ids := []string{}
	if err := r.db.WithContext(ctx).
		Model(&models.Favorite{}).
		Where("user_id = ?", userID).
		Pluck("article_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	return ids, nil
}

func (r *GORMArticleRepository) IsFavorited(ctx context.Context, userID, articleID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Favorite{}).
		Where("user_id = ? AND article_id = ?", userID, articleID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check favorite: %w", err)
	}
	return count > 0, nil
}

func (r *GORMArticleRepository) AddFavorite(ctx context.Context, userID, articleID string) (bool, error) {
	changed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockArticle(tx, articleID); err != nil {
			return err
		}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.Favorite{UserID: userID, ArticleID: articleID})
		if res.Error != nil {
			return fmt.Errorf("failed to insert favorite: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil
		}
		if err := tx.Model(&models.Article{}).
			Where("id = ?", articleID).
			UpdateColumn("favorites_count", gorm.Expr("favorites_count + ?", 1)).Error; err != nil {
			return fmt.Errorf("failed to increment favorites count: %w", err)
		}
		changed = true
		return nil
	})
	return changed, err
}

func (r *GORMArticleRepository) RemoveFavorite(ctx context.Context, userID, articleID string) (bool, error) {
	changed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockArticle(tx, articleID); err != nil {
			return err
		}
		res := tx.Where("user_id = ? AND article_id = ?", userID, articleID).Delete(&models.Favorite{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete favorite: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil
		}
		if err := tx.Model(&models.Article{}).
			Where("id = ? AND favorites_count > 0", articleID).
			UpdateColumn("favorites_count", gorm.Expr("favorites_count - ?", 1)).Error; err != nil {
			return fmt.Errorf("failed to decrement favorites count: %w", err)
		}
		changed = true
		return nil
	})
	return changed, err
}

// lockArticle takes a row lock on the article for the rest of tx (a no-op on sqlite).
func lockArticle(tx *gorm.DB, articleID string) error {
	var locked models.Article
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		First(&locked, "id = ?", articleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Article")
		}
		return fmt.Errorf("failed to lock article: %w", err)
	}
	return nil
}
