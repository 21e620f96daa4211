package services

import (
	"context"
	"log"

	"github.com/opiquem/blog-app-be/internal/models"
	"github.com/opiquem/blog-app-be/internal/repositories"
)

// Pagination carries optional limit and offset. Nil means "not given".
type Pagination struct {
	Limit  *int
	Offset *int
}

// ArticleFilter holds the listing filters. Empty strings are ignored.
type ArticleFilter struct {
	Tag       string
	Title     string
	Author    string
	Favorited string
	Pagination
}

// ArticleList is one page of articles plus a count.
type ArticleList struct {
	ArticlesCount int64
	Articles      []models.Article
}

// CreateArticleInput is the payload of a new article.
type CreateArticleInput struct {
	Title       string   `json:"title" validate:"required,max=255"`
	Description string   `json:"description" validate:"required"`
	Body        string   `json:"body" validate:"required"`
	TagList     []string `json:"tagList" validate:"omitempty,dive,required,max=100,excludesall=0x2C"`
}

// UpdateArticleInput lists the article fields an author may change. Nil fields are left alone.
type UpdateArticleInput struct {
	Title       *string   `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string   `json:"description"`
	Body        *string   `json:"body"`
	TagList     *[]string `json:"tagList" validate:"omitempty,dive,required,max=100,excludesall=0x2C"`
}

// TagRegistrar records tag names used by articles.
type TagRegistrar interface {
	RegisterTags(ctx context.Context, names []string) error
}

// ArticleService implements article listing, the feed, authoring and favorites.
type ArticleService struct {
	articles repositories.ArticleRepository
	users    repositories.UserRepository
	follows  repositories.FollowRepository
	tags     TagRegistrar
	events   EventPublisher
	locks    *keyedLock
}

// NewArticleService creates a new ArticleService. tags and events may be nil.
func NewArticleService(
	articles repositories.ArticleRepository,
	users repositories.UserRepository,
	follows repositories.FollowRepository,
	tags TagRegistrar,
	events EventPublisher,
) *ArticleService {
	return &ArticleService{
		articles: articles,
		users:    users,
		follows:  follows,
		tags:     tags,
		events:   events,
		locks:    newKeyedLock(),
	}
}

// ListArticles returns filtered articles newest first. ArticlesCount is the total number
// of articles regardless of the filters.
func (s *ArticleService) ListArticles(ctx context.Context, callerID string, filter ArticleFilter) (*ArticleList, error) {
	total, err := s.articles.Count(ctx, repositories.ArticleQuery{})
	if err != nil {
		return nil, err
	}

	q := repositories.ArticleQuery{
		Tag:    filter.Tag,
		Title:  filter.Title,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	if filter.Author != "" {
		author, err := s.users.GetByUsername(ctx, filter.Author)
		if models.IsNotFound(err) {
			return nil, models.NewNotFoundError("Article")
		}
		if err != nil {
			return nil, err
		}
		q.AuthorIDs = []string{author.ID}
	}

	if filter.Favorited != "" {
		fan, err := s.users.GetByUsername(ctx, filter.Favorited)
		if models.IsNotFound(err) {
			return nil, models.NewNotFoundError("Profile")
		}
		if err != nil {
			return nil, err
		}
		ids, err := s.articles.FavoriteIDs(ctx, fan.ID)
		if err != nil {
			return nil, err
		}
		q.ArticleIDs = append([]string{}, ids...)
	}

	articles, err := s.articles.Find(ctx, q)
	if err != nil {
		return nil, err
	}
	if err := s.markFavorited(ctx, callerID, articles); err != nil {
		return nil, err
	}
	return &ArticleList{ArticlesCount: total, Articles: articles}, nil
}

// GetFeed returns articles written by users callerID follows, newest first.
// ArticlesCount counts the whole feed before pagination.
func (s *ArticleService) GetFeed(ctx context.Context, callerID string, page Pagination) (*ArticleList, error) {
	followed, err := s.follows.FollowingIDs(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if len(followed) == 0 {
		return &ArticleList{ArticlesCount: 0, Articles: []models.Article{}}, nil
	}

	q := repositories.ArticleQuery{AuthorIDs: followed}
	count, err := s.articles.Count(ctx, q)
	if err != nil {
		return nil, err
	}

	q.Limit, q.Offset = page.Limit, page.Offset
	articles, err := s.articles.Find(ctx, q)
	if err != nil {
		return nil, err
	}
	if err := s.markFavorited(ctx, callerID, articles); err != nil {
		return nil, err
	}
	return &ArticleList{ArticlesCount: count, Articles: articles}, nil
}

// GetArticle returns one article as seen by callerID ("" when anonymous).
func (s *ArticleService) GetArticle(ctx context.Context, slug, callerID string) (*models.Article, error) {
	article, err := s.articles.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if callerID != "" {
		article.Favorited, err = s.articles.IsFavorited(ctx, callerID, article.ID)
		if err != nil {
			return nil, err
		}
	}
	return article, nil
}

// CreateArticle stores a new article written by callerID.
func (s *ArticleService) CreateArticle(ctx context.Context, callerID string, input CreateArticleInput) (*models.Article, error) {
	author, err := s.users.GetByID(ctx, callerID)
	if err != nil {
		return nil, err
	}

	tags := models.TagList{}
	if input.TagList != nil {
		tags = append(tags, input.TagList...)
	}
	article := &models.Article{
		Slug:        generateSlug(input.Title),
		Title:       input.Title,
		Description: input.Description,
		Body:        input.Body,
		TagList:     tags,
		AuthorID:    author.ID,
	}
	if err := s.articles.Create(ctx, article); err != nil {
		return nil, err
	}
	article.Author = *author

	s.registerTags(ctx, article.TagList)
	publishEvent(s.events, EventArticleCreated, articleEvent(article, callerID))
	return article, nil
}

// UpdateArticle applies input to the article with slug. Only its author may do so.
// The slug is always regenerated from the resulting title.
func (s *ArticleService) UpdateArticle(ctx context.Context, slug, callerID string, input UpdateArticleInput) (*models.Article, error) {
	article, err := s.authoredArticle(ctx, slug, callerID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		article.Title = *input.Title
	}
	if input.Description != nil {
		article.Description = *input.Description
	}
	if input.Body != nil {
		article.Body = *input.Body
	}
	if input.TagList != nil {
		article.TagList = append(models.TagList{}, (*input.TagList)...)
	}
	article.Slug = generateSlug(article.Title)

	if err := s.articles.Update(ctx, article); err != nil {
		return nil, err
	}
	article.Favorited, err = s.articles.IsFavorited(ctx, callerID, article.ID)
	if err != nil {
		return nil, err
	}

	if input.TagList != nil {
		s.registerTags(ctx, article.TagList)
	}
	publishEvent(s.events, EventArticleUpdated, articleEvent(article, callerID))
	return article, nil
}

// DeleteArticle removes the article with slug. Only its author may do so.
func (s *ArticleService) DeleteArticle(ctx context.Context, slug, callerID string) error {
	article, err := s.authoredArticle(ctx, slug, callerID)
	if err != nil {
		return err
	}
	if err := s.articles.Delete(ctx, article.ID); err != nil {
		return err
	}
	publishEvent(s.events, EventArticleDeleted, articleEvent(article, callerID))
	return nil
}

// FavoriteArticle adds the article to callerID's favorites. Repeating it changes nothing.
func (s *ArticleService) FavoriteArticle(ctx context.Context, slug, callerID string) (*models.Article, error) {
	return s.toggleFavorite(ctx, slug, callerID, true)
}

// UnfavoriteArticle removes the article from callerID's favorites. Repeating it changes nothing.
func (s *ArticleService) UnfavoriteArticle(ctx context.Context, slug, callerID string) (*models.Article, error) {
	return s.toggleFavorite(ctx, slug, callerID, false)
}

func (s *ArticleService) toggleFavorite(ctx context.Context, slug, callerID string, favorite bool) (*models.Article, error) {
	article, err := s.articles.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, callerID); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(callerID + ":" + article.ID)
	var changed bool
	if favorite {
		changed, err = s.articles.AddFavorite(ctx, callerID, article.ID)
	} else {
		changed, err = s.articles.RemoveFavorite(ctx, callerID, article.ID)
	}
	unlock()
	if err != nil {
		return nil, err
	}

	article, err = s.articles.GetByID(ctx, article.ID)
	if err != nil {
		return nil, err
	}
	article.Favorited = favorite

	if changed {
		key := EventArticleUnfavorited
		if favorite {
			key = EventArticleFavorited
		}
		publishEvent(s.events, key, articleEvent(article, callerID))
	}
	return article, nil
}

func (s *ArticleService) authoredArticle(ctx context.Context, slug, callerID string) (*models.Article, error) {
	article, err := s.articles.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if article.AuthorID != callerID {
		return nil, models.NewForbiddenError("You are not an author")
	}
	return article, nil
}

// markFavorited sets Favorited on each article callerID has favorited.
func (s *ArticleService) markFavorited(ctx context.Context, callerID string, articles []models.Article) error {
	if callerID == "" || len(articles) == 0 {
		return nil
	}
	ids, err := s.articles.FavoriteIDs(ctx, callerID)
	if err != nil {
		return err
	}
	favorites := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		favorites[id] = struct{}{}
	}
	for i := range articles {
		_, articles[i].Favorited = favorites[articles[i].ID]
	}
	return nil
}

func (s *ArticleService) registerTags(ctx context.Context, tags []string) {
	if s.tags == nil {
		return
	}
	if err := s.tags.RegisterTags(ctx, tags); err != nil {
		log.Printf("Error registering tags %v: %v", tags, err)
	}
}

func articleEvent(a *models.Article, userID string) ArticleEvent {
	return ArticleEvent{
		ArticleID:      a.ID,
		Slug:           a.Slug,
		UserID:         userID,
		FavoritesCount: a.FavoritesCount,
	}
}
