package handlers

import (
	"github.com/opiquem/blog-app-be/internal/middleware"
	"github.com/opiquem/blog-app-be/internal/models"
	"github.com/opiquem/blog-app-be/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CommentHandler handles HTTP requests for comments.
type CommentHandler struct {
	service     *services.CommentService
	authService *services.AuthService
	binder      *requestBinder
}

// NewCommentHandler creates a new CommentHandler.
func NewCommentHandler(service *services.CommentService, authService *services.AuthService) *CommentHandler {
	return &CommentHandler{
		service:     service,
		authService: authService,
		binder:      newRequestBinder(),
	}
}

// RegisterRoutes registers the comment routes.
func (h *CommentHandler) RegisterRoutes(router fiber.Router) {
	requireAuth := middleware.AuthRequired(h.authService)

	comments := router.Group("/comments")
	comments.Get("/", h.HandleListComments)
	comments.Get("/:id", h.HandleGetComment)
	comments.Post("/", requireAuth, h.HandleCreateComment)
	comments.Patch("/:id", requireAuth, h.HandleUpdateComment)
	comments.Delete("/:id", requireAuth, h.HandleDeleteComment)
}

// HandleListComments lists every comment, or those of ?articleId= when given.
func (h *CommentHandler) HandleListComments(c *fiber.Ctx) error {
	comments, err := h.service.ListComments(c.UserContext(), c.Query("articleId"))
	if err != nil {
		return respondWithError(c, err)
	}
	out := make([]models.CommentResponse, 0, len(comments))
	for i := range comments {
		out = append(out, comments[i].ToResponse())
	}
	return c.JSON(fiber.Map{"comments": out})
}

func (h *CommentHandler) HandleGetComment(c *fiber.Ctx) error {
	comment, err := h.service.GetComment(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondWithError(c, err)
	}
	return c.JSON(fiber.Map{"comment": comment.ToResponse()})
}

func (h *CommentHandler) HandleCreateComment(c *fiber.Ctx) error {
	var input services.CreateCommentInput
	if err := h.binder.bind(c, "comment", &input); err != nil {
		return respondWithError(c, err)
	}

	comment, err := h.service.CreateComment(c.UserContext(), middleware.CurrentUserID(c), input)
	if err != nil {
		return respondWithError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"comment": comment.ToResponse()})
}

func (h *CommentHandler) HandleUpdateComment(c *fiber.Ctx) error {
	var input services.UpdateCommentInput
	if err := h.binder.bind(c, "comment", &input); err != nil {
		return respondWithError(c, err)
	}

	comment, err := h.service.UpdateComment(c.UserContext(), c.Params("id"), middleware.CurrentUserID(c), input)
	if err != nil {
		return respondWithError(c, err)
	}
	return c.JSON(fiber.Map{"comment": comment.ToResponse()})
}

func (h *CommentHandler) HandleDeleteComment(c *fiber.Ctx) error {
	if err := h.service.DeleteComment(c.UserContext(), c.Params("id"), middleware.CurrentUserID(c)); err != nil {
		return respondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
