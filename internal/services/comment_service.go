package services

import (
	"context"

	"github.com/opiquem/blog-app-be/internal/models"
	"github.com/opiquem/blog-app-be/internal/repositories"
)

// CreateCommentInput is the payload of a new comment.
type CreateCommentInput struct {
	Body      string `json:"body" validate:"required"`
	ArticleID string `json:"articleId" validate:"required"`
}

// UpdateCommentInput lists the comment fields a caller may change.
type UpdateCommentInput struct {
	Body *string `json:"body" validate:"omitempty,min=1"`
}

// CommentService handles comment CRUD.
type CommentService struct {
	comments repositories.CommentRepository
	articles repositories.ArticleRepository
	users    repositories.UserRepository
	events   EventPublisher
}

// NewCommentService creates a new CommentService. events may be nil.
func NewCommentService(comments repositories.CommentRepository, articles repositories.ArticleRepository, users repositories.UserRepository, events EventPublisher) *CommentService {
	return &CommentService{comments: comments, articles: articles, users: users, events: events}
}

// CreateComment stores a comment by callerID on the article with input.ArticleID.
func (s *CommentService) CreateComment(ctx context.Context, callerID string, input CreateCommentInput) (*models.Comment, error) {
	author, err := s.users.GetByID(ctx, callerID)
	if models.IsNotFound(err) {
		return nil, models.NewNotFoundError("Author")
	}
	if err != nil {
		return nil, err
	}

	article, err := s.articles.GetByID(ctx, input.ArticleID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Body:      input.Body,
		AuthorID:  author.ID,
		ArticleID: article.ID,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	comment.Author = *author

	publishEvent(s.events, EventCommentCreated, CommentEvent{CommentID: comment.ID, ArticleID: article.ID, AuthorID: author.ID})
	return comment, nil
}

// ListComments returns comments newest first, restricted to articleID when it is not empty.
func (s *CommentService) ListComments(ctx context.Context, articleID string) ([]models.Comment, error) {
	return s.comments.List(ctx, articleID)
}

// GetComment returns a single comment.
func (s *CommentService) GetComment(ctx context.Context, id string) (*models.Comment, error) {
	return s.comments.GetByID(ctx, id)
}

// UpdateComment changes the body of a comment owned by callerID.
func (s *CommentService) UpdateComment(ctx context.Context, id, callerID string, input UpdateCommentInput) (*models.Comment, error) {
	comment, err := s.ownedComment(ctx, id, callerID)
	if err != nil {
		return nil, err
	}
	if input.Body == nil {
		return comment, nil
	}

	comment.Body = *input.Body
	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// DeleteComment removes a comment owned by callerID.
func (s *CommentService) DeleteComment(ctx context.Context, id, callerID string) error {
	if _, err := s.ownedComment(ctx, id, callerID); err != nil {
		return err
	}
	return s.comments.Delete(ctx, id)
}

func (s *CommentService) ownedComment(ctx context.Context, id, callerID string) (*models.Comment, error) {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment.AuthorID != callerID {
		return nil, models.NewForbiddenError("You are not an author")
	}
	return comment, nil
}
