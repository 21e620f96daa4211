package handlers

import (
	"github.com/opiquem/blog-app-be/internal/services"

	"github.com/gofiber/fiber/v2"
)

// TagHandler lists known tags.
type TagHandler struct {
	service *services.TagService
}

func NewTagHandler(service *services.TagService) *TagHandler {
	return &TagHandler{service: service}
}

func (h *TagHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/tags", h.HandleListTags)
}

func (h *TagHandler) HandleListTags(c *fiber.Ctx) error {
	tags, err := h.service.ListTags(c.UserContext())
	if err != nil {
		return respondWithError(c, err)
	}
	return c.JSON(fiber.Map{"tags": tags})
}
