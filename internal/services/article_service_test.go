package services_test

import (
	"context"
	"sync"
	"testing"

	"github.com/opiquem/blog-app-be/internal/models"
	"github.com/opiquem/blog-app-be/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func slugs(articles []models.Article) []string {
	out := make([]string, 0, len(articles))
	for _, a := range articles {
		out = append(out, a.Slug)
	}
	return out
}

func TestArticleService_CreateArticle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	jake := env.user(t, "jake")

	a := env.post(t, jake, "Hello World")
	assert.Regexp(t, `^[0-9a-z]+-hello-world$`, a.Slug)
	assert.Equal(t, models.TagList{}, a.TagList)
	assert.Equal(t, 0, a.FavoritesCount)
	assert.Equal(t, "jake", a.Author.Username)

	tagged := env.post(t, jake, "Dragons", "dragons", "training", "dragons")
	assert.Equal(t, models.TagList{"dragons", "training", "dragons"}, tagged.TagList)

	tags, err := env.tags.ListTags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"dragons", "training"}, tags)

	_, err = env.article.CreateArticle(ctx, "ghost", services.CreateArticleInput{Title: "x", Description: "x", Body: "x"})
	assert.True(t, models.IsNotFound(err))

	assert.Contains(t, env.events.Keys(), services.EventArticleCreated)
}

func TestArticleService_ListArticles(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	jake := env.user(t, "jake")
	jane := env.user(t, "jane")

	first := env.post(t, jake, "How to train your dragon", "dragons", "go")
	second := env.post(t, jane, "Go concurrency", "go")
	third := env.post(t, jake, "go lowercase title")

	t.Run("newest first with unfiltered count", func(t *testing.T) {
		list, err := env.article.ListArticles(ctx, "", services.ArticleFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(3), list.ArticlesCount)
		assert.Equal(t, []string{third.Slug, second.Slug, first.Slug}, slugs(list.Articles))
		for _, a := range list.Articles {
			assert.False(t, a.Favorited)
			assert.NotEmpty(t, a.Author.Username)
		}
	})

	t.Run("tag filter", func(t *testing.T) {
		list, err := env.article.ListArticles(ctx, "", services.ArticleFilter{Tag: "dragons"})
		require.NoError(t, err)
		assert.Equal(t, []string{first.Slug}, slugs(list.Articles))
		assert.Equal(t, int64(3), list.ArticlesCount)
	})

	t.Run("title filter is case sensitive", func(t *testing.T) {
		list, err := env.article.ListArticles(ctx, "", services.ArticleFilter{Title: "Go"})
		require.NoError(t, err)
		assert.Equal(t, []string{second.Slug}, slugs(list.Articles))
	})

	t.Run("author filter", func(t *testing.T) {
		list, err := env.article.ListArticles(ctx, "", services.ArticleFilter{Author: "jake"})
		require.NoError(t, err)
		assert.Equal(t, []string{third.Slug, first.Slug}, slugs(list.Articles))

		_, err = env.article.ListArticles(ctx, "", services.ArticleFilter{Author: "nobody"})
		assert.True(t, models.IsNotFound(err))
	})

	t.Run("pagination", func(t *testing.T) {
		list, err := env.article.ListArticles(ctx, "", services.ArticleFilter{
			Pagination: services.Pagination{Limit: intPtr(1), Offset: intPtr(1)},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{second.Slug}, slugs(list.Articles))
		assert.Equal(t, int64(3), list.ArticlesCount)
	})

	t.Run("favorited filter and caller annotation", func(t *testing.T) {
		_, err := env.article.FavoriteArticle(ctx, second.Slug, jake.ID)
		require.NoError(t, err)

		list, err := env.article.ListArticles(ctx, jake.ID, services.ArticleFilter{Favorited: "jake"})
		require.NoError(t, err)
		require.Len(t, list.Articles, 1)
		assert.Equal(t, second.Slug, list.Articles[0].Slug)
		assert.True(t, list.Articles[0].Favorited)
		assert.Equal(t, 1, list.Articles[0].FavoritesCount)

		all, err := env.article.ListArticles(ctx, jake.ID, services.ArticleFilter{})
		require.NoError(t, err)
		for _, a := range all.Articles {
			assert.Equal(t, a.ID == second.ID, a.Favorited, a.Slug)
		}

		anon, err := env.article.ListArticles(ctx, "", services.ArticleFilter{})
		require.NoError(t, err)
		for _, a := range anon.Articles {
			assert.False(t, a.Favorited)
		}
	})

	t.Run("favorited by a user with no favorites", func(t *testing.T) {
		list, err := env.article.ListArticles(ctx, "", services.ArticleFilter{Favorited: "jane"})
		require.NoError(t, err)
		assert.Empty(t, list.Articles)
		assert.NotNil(t, list.Articles)
		assert.Equal(t, int64(3), list.ArticlesCount)
	})

	t.Run("favorited by an unknown user", func(t *testing.T) {
		_, err := env.article.ListArticles(ctx, "", services.ArticleFilter{Favorited: "nobody-has-this"})
		assert.True(t, models.IsNotFound(err))
	})
}

func TestArticleService_GetFeed(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	reader := env.user(t, "reader")
	jake := env.user(t, "jake")
	jane := env.user(t, "jane")
	stranger := env.user(t, "stranger")

	feed, err := env.article.GetFeed(ctx, reader.ID, services.Pagination{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), feed.ArticlesCount)
	assert.Empty(t, feed.Articles)
	assert.NotNil(t, feed.Articles)

	a1 := env.post(t, jake, "one")
	env.post(t, stranger, "not in feed")
	a2 := env.post(t, jane, "two")
	a3 := env.post(t, jake, "three")

	_, err = env.profile.FollowProfile(ctx, reader.ID, "jake")
	require.NoError(t, err)
	_, err = env.profile.FollowProfile(ctx, reader.ID, "jane")
	require.NoError(t, err)
	_, err = env.article.FavoriteArticle(ctx, a2.Slug, reader.ID)
	require.NoError(t, err)

	feed, err = env.article.GetFeed(ctx, reader.ID, services.Pagination{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), feed.ArticlesCount)
	assert.Equal(t, []string{a3.Slug, a2.Slug, a1.Slug}, slugs(feed.Articles))
	for _, a := range feed.Articles {
		assert.Equal(t, a.ID == a2.ID, a.Favorited, a.Slug)
	}

	page, err := env.article.GetFeed(ctx, reader.ID, services.Pagination{Limit: intPtr(2), Offset: intPtr(1)})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.ArticlesCount)
	assert.Equal(t, []string{a2.Slug, a1.Slug}, slugs(page.Articles))
}

func TestArticleService_GetArticle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	jake := env.user(t, "jake")
	a := env.post(t, jake, "Hello")

	got, err := env.article.GetArticle(ctx, a.Slug, "")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)
	assert.False(t, got.Favorited)

	_, err = env.article.FavoriteArticle(ctx, a.Slug, jake.ID)
	require.NoError(t, err)
	got, err = env.article.GetArticle(ctx, a.Slug, jake.ID)
	require.NoError(t, err)
	assert.True(t, got.Favorited)

	_, err = env.article.GetArticle(ctx, "missing", "")
	assert.True(t, models.IsNotFound(err))
}

func TestArticleService_UpdateArticle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	jake := env.user(t, "jake")
	jane := env.user(t, "jane")
	a := env.post(t, jake, "Hello World", "greeting")

	_, err := env.article.FavoriteArticle(ctx, a.Slug, jane.ID)
	require.NoError(t, err)

	_, err = env.article.UpdateArticle(ctx, a.Slug, jane.ID, services.UpdateArticleInput{Title: strPtr("Hijacked")})
	require.Error(t, err)
	assert.Equal(t, models.CodeForbidden, models.ErrorCode(err))

	_, err = env.article.UpdateArticle(ctx, "missing", jake.ID, services.UpdateArticleInput{})
	assert.True(t, models.IsNotFound(err))

	updated, err := env.article.UpdateArticle(ctx, a.Slug, jake.ID, services.UpdateArticleInput{
		Title:   strPtr("Goodbye"),
		TagList: &[]string{"farewell"},
	})
	require.NoError(t, err)
	assert.Regexp(t, `^[0-9a-z]+-goodbye$`, updated.Slug)
	assert.Equal(t, "Hello World description", updated.Description)
	assert.Equal(t, models.TagList{"farewell"}, updated.TagList)
	assert.Equal(t, jake.ID, updated.AuthorID)

	reloaded, err := env.article.GetArticle(ctx, updated.Slug, "")
	require.NoError(t, err)
	assert.Equal(t, "Goodbye", reloaded.Title)
	assert.Equal(t, 1, reloaded.FavoritesCount)

	_, err = env.article.GetArticle(ctx, a.Slug, "")
	assert.True(t, models.IsNotFound(err))

	// slug is regenerated even when the title is unchanged
	again, err := env.article.UpdateArticle(ctx, updated.Slug, jake.ID, services.UpdateArticleInput{Body: strPtr("new body")})
	require.NoError(t, err)
	assert.Regexp(t, `^[0-9a-z]+-goodbye$`, again.Slug)
	assert.Equal(t, "new body", again.Body)

	tags, err := env.tags.ListTags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"farewell", "greeting"}, tags)
}

func TestArticleService_DeleteArticle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	jake := env.user(t, "jake")
	jane := env.user(t, "jane")
	a := env.post(t, jake, "Doomed")

	_, err := env.article.FavoriteArticle(ctx, a.Slug, jane.ID)
	require.NoError(t, err)
	_, err = env.comment.CreateComment(ctx, jane.ID, services.CreateCommentInput{Body: "nice", ArticleID: a.ID})
	require.NoError(t, err)

	err = env.article.DeleteArticle(ctx, a.Slug, jane.ID)
	assert.Equal(t, models.CodeForbidden, models.ErrorCode(err))

	require.NoError(t, env.article.DeleteArticle(ctx, a.Slug, jake.ID))
	_, err = env.article.GetArticle(ctx, a.Slug, "")
	assert.True(t, models.IsNotFound(err))

	comments, err := env.comment.ListComments(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)

	err = env.article.DeleteArticle(ctx, a.Slug, jake.ID)
	assert.True(t, models.IsNotFound(err))
	assert.Contains(t, env.events.Keys(), services.EventArticleDeleted)
}

func TestArticleService_FavoriteToggles(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := env.user(t, "author")
	a := env.user(t, "alice")
	b := env.user(t, "bob")
	article := env.post(t, author, "Popular")

	got, err := env.article.FavoriteArticle(ctx, article.Slug, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.FavoritesCount)
	assert.True(t, got.Favorited)

	got, err = env.article.FavoriteArticle(ctx, article.Slug, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.FavoritesCount, "favoriting twice is a no-op")

	got, err = env.article.FavoriteArticle(ctx, article.Slug, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.FavoritesCount)

	got, err = env.article.UnfavoriteArticle(ctx, article.Slug, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.FavoritesCount)
	assert.False(t, got.Favorited)

	got, err = env.article.UnfavoriteArticle(ctx, article.Slug, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.FavoritesCount, "unfavoriting twice is a no-op")

	_, err = env.article.FavoriteArticle(ctx, "missing", a.ID)
	assert.True(t, models.IsNotFound(err))
	_, err = env.article.UnfavoriteArticle(ctx, "missing", a.ID)
	assert.True(t, models.IsNotFound(err))

	var favorited, unfavorited int
	for _, k := range env.events.Keys() {
		switch k {
		case services.EventArticleFavorited:
			favorited++
		case services.EventArticleUnfavorited:
			unfavorited++
		}
	}
	assert.Equal(t, 2, favorited)
	assert.Equal(t, 1, unfavorited)
}

func TestArticleService_ConcurrentFavorites(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := env.user(t, "author")
	article := env.post(t, author, "Contended")

	fans := make([]*models.User, 5)
	for i := range fans {
		fans[i] = env.user(t, "fan"+string(rune('a'+i)))
	}

	var wg sync.WaitGroup
	for _, fan := range fans {
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				_, err := env.article.FavoriteArticle(ctx, article.Slug, id)
				assert.NoError(t, err)
			}(fan.ID)
		}
	}
	wg.Wait()

	got, err := env.article.GetArticle(ctx, article.Slug, "")
	require.NoError(t, err)
	assert.Equal(t, len(fans), got.FavoritesCount)

	for _, fan := range fans[:2] {
		for i := 0; i < 3; i++ {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				_, err := env.article.UnfavoriteArticle(ctx, article.Slug, id)
				assert.NoError(t, err)
			}(fan.ID)
		}
	}
	wg.Wait()

	got, err = env.article.GetArticle(ctx, article.Slug, "")
	require.NoError(t, err)
	assert.Equal(t, len(fans)-2, got.FavoritesCount)
}
