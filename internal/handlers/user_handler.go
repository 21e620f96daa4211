package handlers

import (
	"log"

	"github.com/opiquem/blog-app-be/internal/middleware"
	"github.com/opiquem/blog-app-be/internal/services"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles registration, login and the current user.
type UserHandler struct {
	authService *services.AuthService
	binder      *requestBinder
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(authService *services.AuthService) *UserHandler {
	return &UserHandler{
		authService: authService,
		binder:      newRequestBinder(),
	}
}

// RegisterRoutes registers the user routes.
func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	requireAuth := middleware.AuthRequired(h.authService)

	router.Post("/users", h.HandleRegister)
	router.Post("/users/login", h.HandleLogin)
	router.Get("/user", requireAuth, h.HandleCurrentUser)
	router.Put("/user", requireAuth, h.HandleUpdateUser)
}

// HandleRegister creates an account and returns it with a token.
func (h *UserHandler) HandleRegister(c *fiber.Ctx) error {
	var input services.RegisterInput
	if err := h.binder.bind(c, "user", &input); err != nil {
		return respondWithError(c, err)
	}

	user, err := h.authService.RegisterUser(c.UserContext(), input)
	if err != nil {
		log.Printf("Error registering user %s: %v", input.Username, err)
		return respondWithError(c, err)
	}
	token, err := h.authService.GenerateToken(user)
	if err != nil {
		return respondWithError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"user": user.ToResponse(token)})
}

// HandleLogin exchanges credentials for a token.
func (h *UserHandler) HandleLogin(c *fiber.Ctx) error {
	var input services.LoginInput
	if err := h.binder.bind(c, "user", &input); err != nil {
		return respondWithError(c, err)
	}

	user, token, err := h.authService.LoginUser(c.UserContext(), input.Email, input.Password)
	if err != nil {
		log.Printf("Login failed for %s: %v", input.Email, err)
		return respondWithError(c, err)
	}
	return c.JSON(fiber.Map{"user": user.ToResponse(token)})
}

// HandleCurrentUser returns the authenticated user.
func (h *UserHandler) HandleCurrentUser(c *fiber.Ctx) error {
	user, err := h.authService.GetUser(c.UserContext(), middleware.CurrentUserID(c))
	if err != nil {
		return respondWithError(c, err)
	}
	return c.JSON(fiber.Map{"user": user.ToResponse(middleware.CurrentToken(c))})
}

// HandleUpdateUser changes the authenticated user's own fields.
func (h *UserHandler) HandleUpdateUser(c *fiber.Ctx) error {
	var input services.UpdateUserInput
	if err := h.binder.bind(c, "user", &input); err != nil {
		return respondWithError(c, err)
	}

	user, err := h.authService.UpdateUser(c.UserContext(), middleware.CurrentUserID(c), input)
	if err != nil {
		return respondWithError(c, err)
	}
	// the username claim may be stale now
	token, err := h.authService.GenerateToken(user)
	if err != nil {
		return respondWithError(c, err)
	}
	return c.JSON(fiber.Map{"user": user.ToResponse(token)})
}
