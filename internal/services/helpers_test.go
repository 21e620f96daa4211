package services_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/opiquem/blog-app-be/internal/config"
	"github.com/opiquem/blog-app-be/internal/models"
	"github.com/opiquem/blog-app-be/internal/repositories"
	"github.com/opiquem/blog-app-be/internal/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// recordingPublisher keeps every published routing key.
type recordingPublisher struct {
	mu   sync.Mutex
	keys []string
}

func (p *recordingPublisher) Publish(routingKey string, body []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, routingKey)
	return nil
}

func (p *recordingPublisher) Keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.keys...)
}

type testEnv struct {
	users    *repositories.GORMUserRepository
	follows  *repositories.GORMFollowRepository
	articles *repositories.GORMArticleRepository
	comments *repositories.GORMCommentRepository
	tagRepo  *repositories.GORMTagRepository

	events  *recordingPublisher
	tags    *services.TagService
	article *services.ArticleService
	profile *services.ProfileService
	comment *services.CommentService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := repositories.OpenDatabase(&config.Config{
		DatabaseDriver: "sqlite",
		DatabaseDSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	env := &testEnv{
		users:    repositories.NewGORMUserRepository(db),
		follows:  repositories.NewGORMFollowRepository(db),
		articles: repositories.NewGORMArticleRepository(db),
		comments: repositories.NewGORMCommentRepository(db),
		tagRepo:  repositories.NewGORMTagRepository(db),
		events:   &recordingPublisher{},
	}
	env.tags = services.NewTagService(env.tagRepo, nil)
	env.article = services.NewArticleService(env.articles, env.users, env.follows, env.tags, env.events)
	env.profile = services.NewProfileService(env.users, env.follows, env.events)
	env.comment = services.NewCommentService(env.comments, env.articles, env.users, env.events)
	return env
}

func (e *testEnv) user(t *testing.T, name string) *models.User {
	t.Helper()
	u := &models.User{Username: name, Email: name + "@example.com", Password: "hash", Bio: name + " bio"}
	require.NoError(t, e.users.Create(context.Background(), u))
	return u
}

func (e *testEnv) post(t *testing.T, author *models.User, title string, tags ...string) *models.Article {
	t.Helper()
	a, err := e.article.CreateArticle(context.Background(), author.ID, services.CreateArticleInput{
		Title:       title,
		Description: title + " description",
		Body:        title + " body",
		TagList:     tags,
	})
	require.NoError(t, err)
	// keeps created_at strictly increasing between posts
	time.Sleep(2 * time.Millisecond)
	return a
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }
