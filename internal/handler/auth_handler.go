package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/school-fees-api/internal/dto"
	"github.com/noah-isme/school-fees-api/internal/middleware"
	"github.com/noah-isme/school-fees-api/internal/service"
	"github.com/noah-isme/school-fees-api/internal/utils"
)

// AuthHandler exposes login and account endpoints.
type AuthHandler struct {
	service service.AuthService
	logger  zerolog.Logger
}

// NewAuthHandler constructs an auth handler.
func NewAuthHandler(service service.AuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger.With().Str("component", "auth_handler").Logger(),
	}
}

// Register binds auth routes. authn protects the account routes and loginLimiter guards login.
func (h *AuthHandler) Register(router fiber.Router, authn fiber.Handler, loginLimiter fiber.Handler) {
	if loginLimiter == nil {
		loginLimiter = func(c *fiber.Ctx) error { return c.Next() }
	}

	router.Post("/login", loginLimiter, h.login)
	router.Post("/register-admin-initial", loginLimiter, h.registerInitialAdmin)
	router.Get("/me", authn, h.me)
	router.Put("/password", authn, h.changePassword)
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	var payload dto.LoginRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	resp, err := h.service.Login(c.UserContext(), payload)
	if err != nil {
		return respondError(c, h.logger, err, "login failed")
	}
	return utils.SendSuccess(c, "Login successful", resp)
}

func (h *AuthHandler) registerInitialAdmin(c *fiber.Ctx) error {
	var payload dto.AdminRegisterRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	resp, err := h.service.RegisterInitialAdmin(c.UserContext(), payload)
	if err != nil {
		return respondError(c, h.logger, err, "initial admin registration failed")
	}
	return utils.SendCreated(c, "Admin registered successfully", resp)
}

func (h *AuthHandler) me(c *fiber.Ctx) error {
	user, err := h.service.Me(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to load current user")
	}
	return utils.SendSuccess(c, "current user", user)
}

func (h *AuthHandler) changePassword(c *fiber.Ctx) error {
	var payload dto.ChangePasswordRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	if err := h.service.ChangePassword(c.UserContext(), middleware.UserID(c), payload); err != nil {
		return respondError(c, h.logger, err, "failed to change password")
	}
	return utils.SendSuccess(c, "Password updated successfully", nil)
}
