package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/school-fees-api/internal/dto"
	"github.com/noah-isme/school-fees-api/internal/middleware"
	"github.com/noah-isme/school-fees-api/internal/models"
	"github.com/noah-isme/school-fees-api/internal/service"
	"github.com/noah-isme/school-fees-api/internal/utils"
)

// ClassTeacherHandler manages class assignments for teachers.
type ClassTeacherHandler struct {
	service service.ClassTeacherService
	logger  zerolog.Logger
}

func NewClassTeacherHandler(service service.ClassTeacherService, logger zerolog.Logger) *ClassTeacherHandler {
	return &ClassTeacherHandler{
		service: service,
		logger:  logger.With().Str("component", "class_teacher_handler").Logger(),
	}
}

func (h *ClassTeacherHandler) Register(router fiber.Router) {
	router.Use(middleware.RequireRole(models.RoleAdmin))
	router.Get("/", h.list)
	router.Post("/", h.assign)
	router.Delete("/:id", h.remove)
}

func (h *ClassTeacherHandler) list(c *fiber.Ctx) error {
	assignments, err := h.service.List(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, err, "failed to list class teachers")
	}
	return utils.SendSuccess(c, "class teachers", assignments)
}

func (h *ClassTeacherHandler) assign(c *fiber.Ctx) error {
	var payload dto.ClassTeacherCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	assignment, err := h.service.Assign(c.UserContext(), payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to assign class teacher")
	}
	return utils.SendCreated(c, "Class teacher assigned successfully", assignment)
}

func (h *ClassTeacherHandler) remove(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid assignment id")
	}

	if err := h.service.Remove(c.UserContext(), id); err != nil {
		return respondError(c, h.logger, err, "failed to remove class teacher")
	}
	return utils.SendSuccess(c, "Class teacher removed successfully", nil)
}
