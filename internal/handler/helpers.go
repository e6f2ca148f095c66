package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/school-fees-api/internal/middleware"
	"github.com/noah-isme/school-fees-api/internal/service"
	"github.com/noah-isme/school-fees-api/internal/utils"
)

const internalErrorMessage = "Something went wrong, please try again later"

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func parseUintParam(c *fiber.Ctx, key string) (uint, error) {
	parsed, err := strconv.ParseUint(strings.TrimSpace(c.Params(key)), 10, 64)
	if err != nil || parsed == 0 {
		return 0, errors.New("invalid identifier")
	}
	return uint(parsed), nil
}

func actorFromContext(c *fiber.Ctx) service.Actor {
	return service.Actor{
		ID:   middleware.UserID(c),
		Role: middleware.UserRole(c),
	}
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

func isValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}

func validationDetails(err error) map[string]string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}
	details := make(map[string]string, len(validationErrors))
	for _, fieldErr := range validationErrors {
		details[lowerFirst(fieldErr.Field())] = fieldErr.Tag()
	}
	return details
}

func lowerFirst(value string) string {
	if value == "" {
		return value
	}
	return strings.ToLower(value[:1]) + value[1:]
}

// errorStatus maps service errors onto HTTP status codes and client messages.
func errorStatus(err error) (int, string, bool) {
	var rollConflict *service.RollNumberConflictError
	switch {
	case errors.As(err, &rollConflict):
		return fiber.StatusBadRequest, rollConflict.Error(), true
	case errors.Is(err, service.ErrStudentNotFound):
		return fiber.StatusNotFound, "Student not found", true
	case errors.Is(err, service.ErrFeeNotFound):
		return fiber.StatusNotFound, "Fee not found", true
	case errors.Is(err, service.ErrFineNotFound):
		return fiber.StatusNotFound, "Fine not found", true
	case errors.Is(err, service.ErrUserNotFound):
		return fiber.StatusNotFound, "User not found", true
	case errors.Is(err, service.ErrNotificationNotFound):
		return fiber.StatusNotFound, "Notification not found", true
	case errors.Is(err, service.ErrClassTeacherNotFound):
		return fiber.StatusNotFound, "Class teacher assignment not found", true
	case errors.Is(err, service.ErrNoClassAssigned):
		return fiber.StatusForbidden, "No class assigned", true
	case errors.Is(err, service.ErrForbidden):
		return fiber.StatusForbidden, "Access denied", true
	case errors.Is(err, service.ErrIdentifierRequired):
		return fiber.StatusBadRequest, "Email, mobile number, or enrollment number is required", true
	case errors.Is(err, service.ErrInvalidCredentials):
		return fiber.StatusBadRequest, "Invalid credentials", true
	case errors.Is(err, service.ErrDuplicateStudent):
		return fiber.StatusBadRequest, "Student with this enrollment number or mobile number already exists", true
	case errors.Is(err, service.ErrAdminExists):
		return fiber.StatusBadRequest, "Admin already exists", true
	case errors.Is(err, service.ErrEmailTaken):
		return fiber.StatusBadRequest, "Email already in use", true
	case errors.Is(err, service.ErrInvalidDate):
		return fiber.StatusBadRequest, "Invalid date", true
	case errors.Is(err, service.ErrNotATeacher):
		return fiber.StatusBadRequest, "User is not a teacher", true
	case errors.Is(err, service.ErrClassAssigned):
		return fiber.StatusBadRequest, "Teacher or class already assigned", true
	case errors.Is(err, service.ErrEmptyNotification):
		return fiber.StatusBadRequest, "Notification title and message are required", true
	case errors.Is(err, service.ErrOpenLateFineExists):
		return fiber.StatusBadRequest, "An unpaid late fine with this reason already exists for this student", true
	}
	return 0, "", false
}

// respondError writes the error envelope for err. Unknown errors are logged and hidden behind a generic 500.
func respondError(c *fiber.Ctx, logger zerolog.Logger, err error, action string) error {
	if isValidationError(err) {
		return utils.Fail(c, fiber.StatusBadRequest, "Validation failed", validationDetails(err))
	}
	if status, message, ok := errorStatus(err); ok {
		return utils.SendError(c, status, message)
	}

	requestLogger(logger, c).Error().Err(err).Msg(action)
	return utils.SendError(c, fiber.StatusInternalServerError, internalErrorMessage)
}
