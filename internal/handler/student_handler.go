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

// StudentHandler exposes student record endpoints.
type StudentHandler struct {
	service service.StudentService
	logger  zerolog.Logger
}

// NewStudentHandler constructs a student handler.
func NewStudentHandler(service service.StudentService, logger zerolog.Logger) *StudentHandler {
	return &StudentHandler{
		service: service,
		logger:  logger.With().Str("component", "student_handler").Logger(),
	}
}

// Register binds student routes. Class scoping for teachers is enforced by the service.
func (h *StudentHandler) Register(router fiber.Router) {
	staff := middleware.RequireRole(models.RoleAdmin, models.RoleAccountant, models.RoleTeacher)
	managers := middleware.RequireRole(models.RoleAdmin, models.RoleTeacher)

	router.Get("/", staff, h.list)
	router.Get("/search", middleware.RequireRole(models.RoleAdmin, models.RoleAccountant), h.search)
	router.Get("/:userId", h.getByUserID)
	router.Post("/", managers, h.create)
	router.Put("/:id", managers, h.update)
	router.Delete("/:id", managers, h.delete)
}

func (h *StudentHandler) list(c *fiber.Ctx) error {
	students, err := h.service.List(c.UserContext(), actorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to list students")
	}
	return utils.SendSuccess(c, "students", students)
}

func (h *StudentHandler) search(c *fiber.Ctx) error {
	students, err := h.service.Search(c.UserContext(), c.Query("q"))
	if err != nil {
		return respondError(c, h.logger, err, "failed to search students")
	}
	return utils.SendSuccess(c, "students", students)
}

func (h *StudentHandler) getByUserID(c *fiber.Ctx) error {
	userID, err := parseUintParam(c, "userId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid user id")
	}

	student, err := h.service.GetByUserID(c.UserContext(), actorFromContext(c), userID)
	if err != nil {
		return respondError(c, h.logger, err, "failed to load student")
	}
	return utils.SendSuccess(c, "student", student)
}

func (h *StudentHandler) create(c *fiber.Ctx) error {
	var payload dto.StudentCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	created, err := h.service.Create(c.UserContext(), actorFromContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to create student")
	}
	return utils.SendCreated(c, "Student created successfully", created)
}

func (h *StudentHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid student id")
	}

	var payload dto.StudentUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	student, err := h.service.Update(c.UserContext(), actorFromContext(c), id, payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to update student")
	}
	return utils.SendSuccess(c, "Student updated successfully", student)
}

func (h *StudentHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid student id")
	}

	if err := h.service.Delete(c.UserContext(), actorFromContext(c), id); err != nil {
		return respondError(c, h.logger, err, "failed to delete student")
	}
	return utils.SendSuccess(c, "Student deleted successfully", nil)
}
