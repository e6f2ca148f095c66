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

// FeeHandler exposes fee endpoints.
type FeeHandler struct {
	fees     service.FeeService
	students service.StudentService
	logger   zerolog.Logger
}

// NewFeeHandler constructs a fee handler.
func NewFeeHandler(fees service.FeeService, students service.StudentService, logger zerolog.Logger) *FeeHandler {
	return &FeeHandler{
		fees:     fees,
		students: students,
		logger:   logger.With().Str("component", "fee_handler").Logger(),
	}
}

// Register binds fee routes. The router group must already be authenticated.
func (h *FeeHandler) Register(router fiber.Router) {
	finance := middleware.RequireRole(models.RoleAdmin, models.RoleAccountant)
	owners := middleware.RequireRole(models.RoleAdmin, models.RoleAccountant, models.RoleStudent)

	router.Get("/", finance, h.list)
	router.Get("/student/:studentUserId", owners, h.listForStudent)
	router.Get("/class/:className", finance, h.listClass)
	router.Post("/", finance, h.create)
	router.Post("/sweep", middleware.RequireRole(models.RoleAdmin), h.sweep)
	router.Put("/:id/pay", owners, h.pay)
	router.Put("/:id", finance, h.update)
	router.Delete("/:id", finance, h.delete)
}

func (h *FeeHandler) list(c *fiber.Ctx) error {
	fees, err := h.fees.List(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, err, "failed to list fees")
	}
	return utils.SendSuccess(c, "fees", fees)
}

func (h *FeeHandler) listForStudent(c *fiber.Ctx) error {
	studentUserID, err := parseUintParam(c, "studentUserId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid student user id")
	}

	fees, err := h.fees.ListForStudent(c.UserContext(), actorFromContext(c), studentUserID)
	if err != nil {
		return respondError(c, h.logger, err, "failed to list student fees")
	}
	return utils.SendSuccess(c, "fees", fees)
}

func (h *FeeHandler) listClass(c *fiber.Ctx) error {
	students, err := h.students.ListByClass(c.UserContext(), c.Params("className"))
	if err != nil {
		return respondError(c, h.logger, err, "failed to list class students")
	}
	return utils.SendSuccess(c, "students", students)
}

func (h *FeeHandler) create(c *fiber.Ctx) error {
	var payload dto.FeeCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	fee, err := h.fees.Create(c.UserContext(), actorFromContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to create fee")
	}
	return utils.SendCreated(c, "Fee created successfully", fee)
}

func (h *FeeHandler) pay(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid fee id")
	}

	var payload dto.PaymentRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&payload); err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
		}
	}

	fee, err := h.fees.Pay(c.UserContext(), actorFromContext(c), id, payload)
	if err != nil {
		if errors.Is(err, service.ErrAlreadyPaid) {
			return utils.SendError(c, fiber.StatusBadRequest, "Fee already paid")
		}
		return respondError(c, h.logger, err, "failed to pay fee")
	}
	return utils.SendSuccess(c, "Fee paid successfully", fee)
}

func (h *FeeHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid fee id")
	}

	var payload dto.FeeUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	fee, err := h.fees.Update(c.UserContext(), actorFromContext(c), id, payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to update fee")
	}
	return utils.SendSuccess(c, "Fee updated successfully", fee)
}

func (h *FeeHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid fee id")
	}

	if err := h.fees.Delete(c.UserContext(), actorFromContext(c), id); err != nil {
		return respondError(c, h.logger, err, "failed to delete fee")
	}
	return utils.SendSuccess(c, "Fee deleted successfully", nil)
}

func (h *FeeHandler) sweep(c *fiber.Ctx) error {
	result, err := h.fees.Sweep(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, err, "late fine sweep failed")
	}
	return utils.SendSuccess(c, "late fine sweep completed", result)
}
