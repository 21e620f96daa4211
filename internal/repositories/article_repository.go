package repositories

import (
	"context"

	"github.com/opiquem/blog-app-be/internal/models"
)

// ArticleQuery describes a filtered article listing.
//
// AuthorIDs and ArticleIDs restrict the result only when non-nil; a non-nil
// empty slice matches nothing. Limit and Offset are applied only when set.
type ArticleQuery struct {
	Tag        string
	Title      string
	AuthorIDs  []string
	ArticleIDs []string
	Limit      *int
	Offset     *int
}

// ArticleRepository defines the interface for article and favorite data access.
type ArticleRepository interface {
	Count(ctx context.Context, q ArticleQuery) (int64, error)
	Find(ctx context.Context, q ArticleQuery) ([]models.Article, error)
	GetBySlug(ctx context.Context, slug string) (*models.Article, error)
	GetByID(ctx context.Context, id string) (*models.Article, error)
	Create(ctx context.Context, article *models.Article) error
	Update(ctx context.Context, article *models.Article) error
	Delete(ctx context.Context, id string) error

	FavoriteIDs(ctx context.Context, userID string) ([]string, error)
	IsFavorited(ctx context.Context, userID, articleID string) (bool, error)
	// AddFavorite inserts the (user, article) edge and bumps favorites_count when
	// the edge is new. It reports whether anything changed.
	AddFavorite(ctx context.Context, userID, articleID string) (bool, error)
	// RemoveFavorite deletes the edge and decrements favorites_count when an edge
	// existed. It reports whether anything changed.
	RemoveFavorite(ctx context.Context, userID, articleID string) (bool, error)
}
