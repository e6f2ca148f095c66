package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/school-fees-api/internal/dto"
	"github.com/noah-isme/school-fees-api/internal/middleware"
	"github.com/noah-isme/school-fees-api/internal/models"
	"github.com/noah-isme/school-fees-api/internal/service"
	"github.com/noah-isme/school-fees-api/internal/utils"
)

// FineHandler exposes fine endpoints.
type FineHandler struct {
	service service.FineService
	logger  zerolog.Logger
}

// NewFineHandler constructs a fine handler.
func NewFineHandler(service service.FineService, logger zerolog.Logger) *FineHandler {
	return &FineHandler{
		service: service,
		logger:  logger.With().Str("component", "fine_handler").Logger(),
	}
}

// Register binds fine routes. Paying a fine is open to every authenticated user.
func (h *FineHandler) Register(router fiber.Router) {
	adminOnly := middleware.RequireRole(models.RoleAdmin)
	finance := middleware.RequireRole(models.RoleAdmin, models.RoleAccountant)

	router.Get("/", adminOnly, h.list)
	router.Get("/student/:studentUserId", middleware.RequireRole(models.RoleAdmin, models.RoleAccountant, models.RoleStudent), h.listForStudent)
	router.Post("/", finance, h.create)
	router.Put("/:id/pay", h.pay)
	router.Put("/:id", finance, h.update)
	router.Delete("/:id", adminOnly, h.delete)
}

func (h *FineHandler) list(c *fiber.Ctx) error {
	fines, err := h.service.List(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, err, "failed to list fines")
	}
	return utils.SendSuccess(c, "fines", fines)
}

func (h *FineHandler) listForStudent(c *fiber.Ctx) error {
	studentUserID, err := parseUintParam(c, "studentUserId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid student user id")
	}

	fines, err := h.service.ListForStudent(c.UserContext(), actorFromContext(c), studentUserID)
	if err != nil {
		return respondError(c, h.logger, err, "failed to list student fines")
	}
	return utils.SendSuccess(c, "fines", fines)
}

func (h *FineHandler) create(c *fiber.Ctx) error {
	var payload dto.FineCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	fine, err := h.service.Create(c.UserContext(), actorFromContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to create fine")
	}
	return utils.SendCreated(c, "Fine created successfully", fine)
}

func (h *FineHandler) pay(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid fine id")
	}

	var payload dto.PaymentRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&payload); err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
		}
	}

	fine, err := h.service.Pay(c.UserContext(), actorFromContext(c), id, payload)
	if err != nil {
		if errors.Is(err, service.ErrAlreadyPaid) {
			return utils.SendError(c, fiber.StatusBadRequest, "Fine already paid")
		}
		return respondError(c, h.logger, err, "failed to pay fine")
	}
	return utils.SendSuccess(c, "Fine paid successfully", fine)
}

func (h *FineHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid fine id")
	}

	var payload dto.FineUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	fine, err := h.service.Update(c.UserContext(), actorFromContext(c), id, payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to update fine")
	}
	return utils.SendSuccess(c, "Fine updated successfully", fine)
}

func (h *FineHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid fine id")
	}

	if err := h.service.Delete(c.UserContext(), actorFromContext(c), id); err != nil {
		return respondError(c, h.logger, err, "failed to delete fine")
	}
	return utils.SendSuccess(c, "Fine deleted successfully", nil)
}
