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

const defaultPaymentMethod = "Online"

// FeeServiceConfig toggles optional fee behaviour.
type FeeServiceConfig struct {
	// SweepOnRead runs the late fine sweep before fee listings.
	SweepOnRead bool
}

// FeeService manages fee obligations and their payment.
type FeeService interface {
	List(ctx context.Context) ([]dto.FeeResponse, error)
	ListForStudent(ctx context.Context, actor Actor, studentUserID uint) ([]dto.FeeResponse, error)
	Create(ctx context.Context, actor Actor, req dto.FeeCreateRequest) (dto.FeeResponse, error)
	Pay(ctx context.Context, actor Actor, id uint, req dto.PaymentRequest) (dto.FeeResponse, error)
	Update(ctx context.Context, actor Actor, id uint, req dto.FeeUpdateRequest) (dto.FeeResponse, error)
	Delete(ctx context.Context, actor Actor, id uint) error
	Sweep(ctx context.Context) (dto.LateFineSweepResponse, error)
}

type feeService struct {
	fees      repository.FeeRepository
	students  repository.StudentRepository
	generator LateFineGenerator
	activity  ActivityRecorder
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	tracer    trace.Tracer
	cfg       FeeServiceConfig
	now       func() time.Time
}

// NewFeeService constructs the fee service.
func NewFeeService(fees repository.FeeRepository, students repository.StudentRepository, generator LateFineGenerator, activity ActivityRecorder, validate *validator.Validate, logger zerolog.Logger, cfg FeeServiceConfig) FeeService {
	return &feeService{
		fees:      fees,
		students:  students,
		generator: generator,
		activity:  activity,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "fee_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/school-fees-api/internal/service/fees"),
		cfg:       cfg,
		now:       time.Now,
	}
}

func (s *feeService) List(ctx context.Context) ([]dto.FeeResponse, error) {
	s.sweepBeforeRead(ctx)

	fees, err := s.fees.List(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewFeeResponseSlice(fees, s.today()), nil
}

func (s *feeService) ListForStudent(ctx context.Context, actor Actor, studentUserID uint) ([]dto.FeeResponse, error) {
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

	s.sweepBeforeRead(ctx)

	fees, err := s.fees.ListByStudent(ctx, student.ID)
	if err != nil {
		return nil, err
	}
	return dto.NewFeeResponseSlice(fees, s.today()), nil
}

func (s *feeService) Create(ctx context.Context, actor Actor, req dto.FeeCreateRequest) (dto.FeeResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.FeeResponse{}, err
	}

	student, err := s.resolveStudent(ctx, req.StudentID, req.UserID)
	if err != nil {
		return dto.FeeResponse{}, err
	}

	dueDate, err := dto.ParseDate(req.DueDate)
	if err != nil {
		return dto.FeeResponse{}, ErrInvalidDate
	}

	fee := models.Fee{
		StudentID:         student.ID,
		UserID:            student.UserID,
		Amount:            req.Amount,
		FeesType:          models.FeeType(req.FeesType),
		FeeCategory:       models.FeeCategory(req.FeeCategory),
		Month:             strings.TrimSpace(req.Month),
		InstallmentNumber: req.InstallmentNumber,
		DueDate:           dueDate,
		Status:            models.PaymentStatusPending,
		Remarks:           s.clean(req.Remarks),
	}
	if fee.FeesType == "" {
		fee.FeesType = models.FeeTypeMonthly
	}
	if fee.FeeCategory == "" {
		fee.FeeCategory = models.FeeCategoryRegular
	}

	if err := s.fees.Create(ctx, &fee); err != nil {
		return dto.FeeResponse{}, err
	}

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor,
		Action:     "fee.created",
		EntityType: "fee",
		EntityID:   uintPtr(fee.ID),
		Metadata: map[string]interface{}{
			"studentId": fee.StudentID,
			"amount":    fee.Amount,
			"feesType":  fee.FeesType,
		},
	})

	return s.reload(ctx, fee.ID)
}

func (s *feeService) Pay(ctx context.Context, actor Actor, id uint, req dto.PaymentRequest) (dto.FeeResponse, error) {
	ctx, span := s.tracer.Start(ctx, "fees.pay", trace.WithAttributes(
		attribute.Int64("fee.id", int64(id)),
		attribute.String("actor.role", actor.Role.String()),
	))
	defer span.End()

	if err := s.validator.Struct(req); err != nil {
		return dto.FeeResponse{}, err
	}

	fee, err := s.find(ctx, id)
	if err != nil {
		return dto.FeeResponse{}, err
	}
	if !actor.owns(fee.UserID) {
		return dto.FeeResponse{}, ErrForbidden
	}
	if fee.Status == models.PaymentStatusPaid {
		return dto.FeeResponse{}, ErrAlreadyPaid
	}

	paidAt := s.now()
	fee.Status = models.PaymentStatusPaid
	fee.PaidDate = &paidAt
	fee.PaymentMethod = strings.TrimSpace(req.PaymentMethod)
	if fee.PaymentMethod == "" {
		fee.PaymentMethod = defaultPaymentMethod
	}
	fee.TransactionID = strings.TrimSpace(req.TransactionID)

	if err := s.fees.Save(ctx, &fee); err != nil {
		span.RecordError(err)
		return dto.FeeResponse{}, err
	}

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor,
		Action:     "fee.paid",
		EntityType: "fee",
		EntityID:   uintPtr(fee.ID),
		Metadata: map[string]interface{}{
			"amount":        fee.Amount,
			"paymentMethod": fee.PaymentMethod,
			"transactionId": fee.TransactionID,
		},
	})

	return dto.NewFeeResponse(fee, s.today()), nil
}

func (s *feeService) Update(ctx context.Context, actor Actor, id uint, req dto.FeeUpdateRequest) (dto.FeeResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.FeeResponse{}, err
	}

	fee, err := s.find(ctx, id)
	if err != nil {
		return dto.FeeResponse{}, err
	}

	changed := make([]string, 0, 4)
	if req.Amount != nil {
		fee.Amount = *req.Amount
		changed = append(changed, "amount")
	}
	if req.FeesType != nil {
		fee.FeesType = models.FeeType(*req.FeesType)
		changed = append(changed, "feesType")
	}
	if req.FeeCategory != nil {
		fee.FeeCategory = models.FeeCategory(*req.FeeCategory)
		changed = append(changed, "feeCategory")
	}
	if req.Month != nil {
		fee.Month = strings.TrimSpace(*req.Month)
		changed = append(changed, "month")
	}
	if req.InstallmentNumber != nil {
		fee.InstallmentNumber = req.InstallmentNumber
		changed = append(changed, "installmentNumber")
	}
	if req.DueDate != nil {
		dueDate, err := dto.ParseDate(*req.DueDate)
		if err != nil {
			return dto.FeeResponse{}, ErrInvalidDate
		}
		fee.DueDate = dueDate
		changed = append(changed, "dueDate")
	}
	if req.Status != nil {
		fee.Status = models.PaymentStatus(*req.Status)
		if fee.Status == models.PaymentStatusPaid && fee.PaidDate == nil {
			paidAt := s.now()
			fee.PaidDate = &paidAt
		}
		changed = append(changed, "status")
	}
	if req.PaymentMethod != nil {
		fee.PaymentMethod = strings.TrimSpace(*req.PaymentMethod)
		changed = append(changed, "paymentMethod")
	}
	if req.TransactionID != nil {
		fee.TransactionID = strings.TrimSpace(*req.TransactionID)
		changed = append(changed, "transactionId")
	}
	if req.Remarks != nil {
		fee.Remarks = s.clean(*req.Remarks)
		changed = append(changed, "remarks")
	}

	if err := s.fees.Save(ctx, &fee); err != nil {
		return dto.FeeResponse{}, err
	}

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor,
		Action:     "fee.updated",
		EntityType: "fee",
		EntityID:   uintPtr(fee.ID),
		Metadata:   map[string]interface{}{"fields": changed},
	})

	return dto.NewFeeResponse(fee, s.today()), nil
}

func (s *feeService) Delete(ctx context.Context, actor Actor, id uint) error {
	if err := s.fees.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrFeeNotFound
		}
		return err
	}

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor,
		Action:     "fee.deleted",
		EntityType: "fee",
		EntityID:   uintPtr(id),
	})
	return nil
}

func (s *feeService) Sweep(ctx context.Context) (dto.LateFineSweepResponse, error) {
	result, err := s.generator.Generate(ctx, SweepTriggerManual)
	return dto.LateFineSweepResponse{Scanned: result.Scanned, Created: result.Created, RanAt: result.RanAt}, err
}

// sweepBeforeRead runs the sweep when enabled. Failures never fail the listing.
func (s *feeService) sweepBeforeRead(ctx context.Context) {
	if !s.cfg.SweepOnRead || s.generator == nil {
		return
	}
	if _, err := s.generator.Generate(ctx, SweepTriggerRead); err != nil {
		s.logger.Error().Err(err).Msg("late fine sweep failed before fee listing")
	}
}

func (s *feeService) resolveStudent(ctx context.Context, studentID, userID *uint) (models.Student, error) {
	var (
		student models.Student
		err     error
	)
	switch {
	case studentID != nil && *studentID != 0:
		student, err = s.students.GetByID(ctx, *studentID)
	case userID != nil && *userID != 0:
		student, err = s.students.GetByUserID(ctx, *userID)
	default:
		return models.Student{}, ErrStudentNotFound
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Student{}, ErrStudentNotFound
		}
		return models.Student{}, err
	}
	return student, nil
}

func (s *feeService) find(ctx context.Context, id uint) (models.Fee, error) {
	fee, err := s.fees.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Fee{}, ErrFeeNotFound
		}
		return models.Fee{}, err
	}
	return fee, nil
}

func (s *feeService) reload(ctx context.Context, id uint) (dto.FeeResponse, error) {
	fee, err := s.find(ctx, id)
	if err != nil {
		return dto.FeeResponse{}, err
	}
	return dto.NewFeeResponse(fee, s.today()), nil
}

func (s *feeService) clean(text string) string {
	return plainText(s.sanitizer, text)
}

func (s *feeService) today() time.Time {
	return startOfDay(s.now())
}
