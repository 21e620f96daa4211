package handlers

import (
	"github.com/opiquem/blog-app-be/internal/middleware"
	"github.com/opiquem/blog-app-be/internal/models"
	"github.com/opiquem/blog-app-be/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ArticleHandler handles HTTP requests for articles, the feed and favorites.
type ArticleHandler struct {
	service     *services.ArticleService
	authService *services.AuthService
	binder      *requestBinder
}

// NewArticleHandler creates a new ArticleHandler.
func NewArticleHandler(service *services.ArticleService, authService *services.AuthService) *ArticleHandler {
	return &ArticleHandler{
		service:     service,
		authService: authService,
		binder:      newRequestBinder(),
	}
}

// RegisterRoutes registers the article routes. /articles/feed is registered before /articles/:slug.
func (h *ArticleHandler) RegisterRoutes(router fiber.Router) {
	optionalAuth := middleware.AuthOptional(h.authService)
	requireAuth := middleware.AuthRequired(h.authService)

	articles := router.Group("/articles")
	articles.Get("/", optionalAuth, h.HandleListArticles)
	articles.Get("/feed", requireAuth, h.HandleFeed)
	articles.Get("/:slug", optionalAuth, h.HandleGetArticle)
	articles.Post("/", requireAuth, h.HandleCreateArticle)
	articles.Put("/:slug", requireAuth, h.HandleUpdateArticle)
	articles.Delete("/:slug", requireAuth, h.HandleDeleteArticle)
	articles.Post("/:slug/favorite", requireAuth, h.HandleFavorite)
	articles.Delete("/:slug/favorite", requireAuth, h.HandleUnfavorite)
}

// HandleListArticles supports tag, title, author, favorited, limit and offset query parameters.
func (h *ArticleHandler) HandleListArticles(c *fiber.Ctx) error {
	page, err := parsePagination(c)
	if err != nil {
		return respondWithError(c, err)
	}
	filter := services.ArticleFilter{
		Tag:        c.Query("tag"),
		Title:      c.Query("title"),
		Author:     c.Query("author"),
		Favorited:  c.Query("favorited"),
		Pagination: page,
	}

	list, err := h.service.ListArticles(c.UserContext(), middleware.CurrentUserID(c), filter)
	if err != nil {
		return respondWithError(c, err)
	}
	return c.JSON(articleListResponse(list))
}

func (h *ArticleHandler) HandleFeed(c *fiber.Ctx) error {
	page, err := parsePagination(c)
	if err != nil {
		return respondWithError(c, err)
	}

	list, err := h.service.GetFeed(c.UserContext(), middleware.CurrentUserID(c), page)
	if err != nil {
		return respondWithError(c, err)
	}
	return c.JSON(articleListResponse(list))
}

func (h *ArticleHandler) HandleGetArticle(c *fiber.Ctx) error {
	article, err := h.service.GetArticle(c.UserContext(), c.Params("slug"), middleware.CurrentUserID(c))
	if err != nil {
		return respondWithError(c, err)
	}
	return c.JSON(fiber.Map{"article": article.ToResponse()})
}

func (h *ArticleHandler) HandleCreateArticle(c *fiber.Ctx) error {
	var input services.CreateArticleInput
	if err := h.binder.bind(c, "article", &input); err != nil {
		return respondWithError(c, err)
	}

	article, err := h.service.CreateArticle(c.UserContext(), middleware.CurrentUserID(c), input)
	if err != nil {
		return respondWithError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"article": article.ToResponse()})
}

func (h *ArticleHandler) HandleUpdateArticle(c *fiber.Ctx) error {
	var input services.UpdateArticleInput
	if err := h.binder.bind(c, "article", &input); err != nil {
		return respondWithError(c, err)
	}

	article, err := h.service.UpdateArticle(c.UserContext(), c.Params("slug"), middleware.CurrentUserID(c), input)
	if err != nil {
		return respondWithError(c, err)
	}
	return c.JSON(fiber.Map{"article": article.ToResponse()})
}

func (h *ArticleHandler) HandleDeleteArticle(c *fiber.Ctx) error {
	if err := h.service.DeleteArticle(c.UserContext(), c.Params("slug"), middleware.CurrentUserID(c)); err != nil {
		return respondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ArticleHandler) HandleFavorite(c *fiber.Ctx) error {
	article, err := h.service.FavoriteArticle(c.UserContext(), c.Params("slug"), middleware.CurrentUserID(c))
	if err != nil {
		return respondWithError(c, err)
	}
	return c.JSON(fiber.Map{"article": article.ToResponse()})
}

func (h *ArticleHandler) HandleUnfavorite(c *fiber.Ctx) error {
	article, err := h.service.UnfavoriteArticle(c.UserContext(), c.Params("slug"), middleware.CurrentUserID(c))
	if err != nil {
		return respondWithError(c, err)
	}
	return c.JSON(fiber.Map{"article": article.ToResponse()})
}

func articleListResponse(list *services.ArticleList) fiber.Map {
	out := make([]models.ArticleResponse, 0, len(list.Articles))
	for i := range list.Articles {
		out = append(out, list.Articles[i].ToResponse())
	}
	return fiber.Map{
		"articles":      out,
		"articlesCount": list.ArticlesCount,
	}
}
