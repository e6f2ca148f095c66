package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/school-fees-api/internal/dto"
	"github.com/noah-isme/school-fees-api/internal/models"
	"github.com/noah-isme/school-fees-api/internal/repository"
)

// FineService manages penalties owed by students.
type FineService interface {
	List(ctx context.Context) ([]dto.FineResponse, error)
	ListForStudent(ctx context.Context, actor Actor, studentUserID uint) ([]dto.FineResponse, error)
	Create(ctx context.Context, actor Actor, req dto.FineCreateRequest) (dto.FineResponse, error)
	Update(ctx context.Context, actor Actor, id uint, req dto.FineUpdateRequest) (dto.FineResponse, error)
	Pay(ctx context.Context, actor Actor, id uint, req dto.PaymentRequest) (dto.FineResponse, error)
	Delete(ctx context.Context, actor Actor, id uint) error
}

type fineService struct {
	fines     repository.FineRepository
	students  repository.StudentRepository
	activity  ActivityRecorder
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewFineService constructs the fine service.
func NewFineService(fines repository.FineRepository, students repository.StudentRepository, activity ActivityRecorder, validate *validator.Validate, logger zerolog.Logger) FineService {
	return &fineService{
		fines:     fines,
		students:  students,
		activity:  activity,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "fine_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/school-fees-api/internal/service/fines"),
		now:       time.Now,
	}
}

func (s *fineService) List(ctx context.Context) ([]dto.FineResponse, error) {
	fines, err := s.fines.List(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewFineResponseSlice(fines, s.today()), nil
}

func (s *fineService) ListForStudent(ctx context.Context, actor Actor, studentUserID uint) ([]dto.FineResponse, error) {
	student, err := s.students.GetByUserID(ctx, studentUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	if !actor.owns(student.UserID) {
		return nil, ErrForbidden
	}

	fines, err := s.fines.ListByStudent(ctx, student.ID)
	if err != nil {
		return nil, err
	}
	return dto.NewFineResponseSlice(fines, s.today()), nil
}

func (s *fineService) Create(ctx context.Context, actor Actor, req dto.FineCreateRequest) (dto.FineResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.FineResponse{}, err
	}

	student, err := s.students.GetByID(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.FineResponse{}, ErrStudentNotFound
		}
		return dto.FineResponse{}, err
	}

	dueDate, err := dto.ParseDate(req.DueDate)
	if err != nil {
		return dto.FineResponse{}, ErrInvalidDate
	}

	fine := models.Fine{
		StudentID: student.ID,
		UserID:    student.UserID,
		Amount:    req.Amount,
		Reason:    s.clean(req.Reason),
		FineType:  models.FineType(req.FineType),
		DueDate:   dueDate,
		Status:    models.PaymentStatusPending,
		Remarks:   s.clean(req.Remarks),
	}
	if fine.FineType == "" {
		fine.FineType = models.FineTypeOther
	}

	if err := s.fines.Create(ctx, &fine); err != nil {
		return dto.FineResponse{}, translateFineConflict(err)
	}

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor,
		Action:     "fine.created",
		EntityType: "fine",
		EntityID:   uintPtr(fine.ID),
		Metadata: map[string]interface{}{
			"studentId": fine.StudentID,
			"amount":    fine.Amount,
			"fineType":  fine.FineType,
		},
	})

	return s.reload(ctx, fine.ID)
}

func (s *fineService) Update(ctx context.Context, actor Actor, id uint, req dto.FineUpdateRequest) (dto.FineResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.FineResponse{}, err
	}

	fine, err := s.find(ctx, id)
	if err != nil {
		return dto.FineResponse{}, err
	}

	changed := make([]string, 0, 4)
	if req.Amount != nil {
		fine.Amount = *req.Amount
		changed = append(changed, "amount")
	}
	if req.Reason != nil {
		fine.Reason = s.clean(*req.Reason)
		changed = append(changed, "reason")
	}
	if req.FineType != nil {
		fine.FineType = models.FineType(*req.FineType)
		changed = append(changed, "fineType")
	}
	if req.DueDate != nil {
		dueDate, err := dto.ParseDate(*req.DueDate)
		if err != nil {
			return dto.FineResponse{}, ErrInvalidDate
		}
		fine.DueDate = dueDate
		changed = append(changed, "dueDate")
	}
	if req.Status != nil {
		fine.Status = models.PaymentStatus(*req.Status)
		if fine.Status == models.PaymentStatusPaid && fine.PaidDate == nil {
			paidAt := s.now()
			fine.PaidDate = &paidAt
		}
		changed = append(changed, "status")
	}
	if req.PaymentMethod != nil {
		fine.PaymentMethod = strings.TrimSpace(*req.PaymentMethod)
		changed = append(changed, "paymentMethod")
	}
	if req.TransactionID != nil {
		fine.TransactionID = strings.TrimSpace(*req.TransactionID)
		changed = append(changed, "transactionId")
	}
	if req.Remarks != nil {
		fine.Remarks = s.clean(*req.Remarks)
		changed = append(changed, "remarks")
	}

	if err := s.fines.Save(ctx, &fine); err != nil {
		return dto.FineResponse{}, translateFineConflict(err)
	}

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor,
		Action:     "fine.updated",
		EntityType: "fine",
		EntityID:   uintPtr(fine.ID),
		Metadata:   map[string]interface{}{"fields": changed},
	})

	return dto.NewFineResponse(fine, s.today()), nil
}

// Pay settles a fine. Any authenticated caller may pay.
func (s *fineService) Pay(ctx context.Context, actor Actor, id uint, req dto.PaymentRequest) (dto.FineResponse, error) {
	ctx, span := s.tracer.Start(ctx, "fines.pay", trace.WithAttributes(
		attribute.Int64("fine.id", int64(id)),
		attribute.String("actor.role", actor.Role.String()),
	))
	defer span.End()

	if err := s.validator.Struct(req); err != nil {
		return dto.FineResponse{}, err
	}

	fine, err := s.find(ctx, id)
	if err != nil {
		return dto.FineResponse{}, err
	}
	if fine.Status == models.PaymentStatusPaid {
		return dto.FineResponse{}, ErrAlreadyPaid
	}

	paidAt := s.now()
	fine.Status = models.PaymentStatusPaid
	fine.PaidDate = &paidAt
	fine.PaymentMethod = strings.TrimSpace(req.PaymentMethod)
	fine.TransactionID = strings.TrimSpace(req.TransactionID)

	if err := s.fines.Save(ctx, &fine); err != nil {
		span.RecordError(err)
		return dto.FineResponse{}, err
	}

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor,
		Action:     "fine.paid",
		EntityType: "fine",
		EntityID:   uintPtr(fine.ID),
		Metadata: map[string]interface{}{
			"amount":        fine.Amount,
			"paymentMethod": fine.PaymentMethod,
		},
	})

	return dto.NewFineResponse(fine, s.today()), nil
}

func (s *fineService) Delete(ctx context.Context, actor Actor, id uint) error {
	if err := s.fines.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrFineNotFound
		}
		return err
	}

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor,
		Action:     "fine.deleted",
		EntityType: "fine",
		EntityID:   uintPtr(id),
	})
	return nil
}

func (s *fineService) find(ctx context.Context, id uint) (models.Fine, error) {
	fine, err := s.fines.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Fine{}, ErrFineNotFound
		}
		return models.Fine{}, err
	}
	return fine, nil
}

func (s *fineService) reload(ctx context.Context, id uint) (dto.FineResponse, error) {
	fine, err := s.find(ctx, id)
	if err != nil {
		return dto.FineResponse{}, err
	}
	return dto.NewFineResponse(fine, s.today()), nil
}

// translateFineConflict maps the open late fine unique index violation onto ErrOpenLateFineExists.
func translateFineConflict(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrOpenLateFineExists
	}
	return err
}

func (s *fineService) clean(text string) string {
	return plainText(s.sanitizer, text)
}

func (s *fineService) today() time.Time {
	return startOfDay(s.now())
}
