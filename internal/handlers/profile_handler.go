package handlers

import (
	"github.com/opiquem/blog-app-be/internal/middleware"
	"github.com/opiquem/blog-app-be/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ProfileHandler serves profiles and follow toggles.
type ProfileHandler struct {
	service     *services.ProfileService
	authService *services.AuthService
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(service *services.ProfileService, authService *services.AuthService) *ProfileHandler {
	return &ProfileHandler{service: service, authService: authService}
}

// RegisterRoutes registers the profile routes.
func (h *ProfileHandler) RegisterRoutes(router fiber.Router) {
	profiles := router.Group("/profiles")
	profiles.Get("/:username", middleware.AuthOptional(h.authService), h.HandleGetProfile)
	profiles.Post("/:username/follow", middleware.AuthRequired(h.authService), h.HandleFollow)
	profiles.Delete("/:username/follow", middleware.AuthRequired(h.authService), h.HandleUnfollow)
}

func (h *ProfileHandler) HandleGetProfile(c *fiber.Ctx) error {
	profile, err := h.service.GetProfile(c.UserContext(), middleware.CurrentUserID(c), c.Params("username"))
	if err != nil {
		return respondWithError(c, err)
	}
	return c.JSON(fiber.Map{"profile": profile})
}

func (h *ProfileHandler) HandleFollow(c *fiber.Ctx) error {
	profile, err := h.service.FollowProfile(c.UserContext(), middleware.CurrentUserID(c), c.Params("username"))
	if err != nil {
		return respondWithError(c, err)
	}
	return c.JSON(fiber.Map{"profile": profile})
}

func (h *ProfileHandler) HandleUnfollow(c *fiber.Ctx) error {
	profile, err := h.service.UnfollowProfile(c.UserContext(), middleware.CurrentUserID(c), c.Params("username"))
	if err != nil {
		return respondWithError(c, err)
	}
	return c.JSON(fiber.Map{"profile": profile})
}
