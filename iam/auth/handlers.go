package auth

import "github.com/gofiber/fiber/v2"

// AuthHandlers maneja las rutas de autenticación con Fiber
type AuthHandlers struct {
	service *Service
}

func NewAuthHandlers(service *Service) *AuthHandlers {
	return &AuthHandlers{service: service}
}

// LoginRequest credenciales del operador
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RefreshRequest refresh token a canjear
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Login autentica al operador y devuelve el par de tokens
// POST /api/auth/login
func (h *AuthHandlers) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return ErrInvalidCredentials().WithDetail("reason", "unparseable body")
	}

	pair, err := h.service.Login(c.Context(), req.Username, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(pair)
}

// Refresh canjea un refresh token por un nuevo par
// POST /api/auth/refresh
func (h *AuthHandlers) Refresh(c *fiber.Ctx) error {
	var req RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return ErrTokenValidationFailed().WithDetail("reason", "unparseable body")
	}

	pair, err := h.service.Refresh(c.Context(), req.RefreshToken)
	if err != nil {
		return err
	}

	return c.JSON(pair)
}

// AuthRoutes registra las rutas de autenticación
type AuthRoutes struct {
	handlers *AuthHandlers
}

func NewAuthRoutes(handlers *AuthHandlers) *AuthRoutes {
	return &AuthRoutes{handlers: handlers}
}

func (ar *AuthRoutes) Setup(app *fiber.App) {
	group := app.Group("/api/auth")

	group.Post("/login", ar.handlers.Login)
	group.Post("/refresh", ar.handlers.Refresh)
}
