package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/school-fees-api/internal/config"
	"github.com/noah-isme/school-fees-api/internal/dto"
	"github.com/noah-isme/school-fees-api/internal/models"
	"github.com/noah-isme/school-fees-api/internal/observability"
	"github.com/noah-isme/school-fees-api/internal/repository"
)

// SweepTrigger labels what started a late fine sweep.
type SweepTrigger string

const (
	SweepTriggerRead     SweepTrigger = "read"
	SweepTriggerSchedule SweepTrigger = "schedule"
	SweepTriggerManual   SweepTrigger = "manual"
)

// SweepResult summarises one sweep run.
type SweepResult struct {
	Scanned int
	Created int
	RanAt   time.Time
}

// LateFineGenerator turns overdue pending fees into late fines.
type LateFineGenerator interface {
	Generate(ctx context.Context, trigger SweepTrigger) (SweepResult, error)
}

// NotificationPublisher delivers a notification to its recipients.
type NotificationPublisher interface {
	Publish(ctx context.Context, payload dto.NotificationCreateRequest) (dto.NotificationResponse, error)
}

type lateFineService struct {
	fees     repository.FeeRepository
	fines    repository.FineRepository
	activity ActivityRecorder
	notifier NotificationPublisher
	policy   config.LateFinePolicy
	logger   zerolog.Logger
	tracer   trace.Tracer
	now      func() time.Time
}

// NewLateFineService constructs the late fine generator. activity and notifier may be nil.
func NewLateFineService(fees repository.FeeRepository, fines repository.FineRepository, activity ActivityRecorder, notifier NotificationPublisher, policy config.LateFinePolicy, logger zerolog.Logger) LateFineGenerator {
	return &lateFineService{
		fees:     fees,
		fines:    fines,
		activity: activity,
		notifier: notifier,
		policy:   policy,
		logger:   logger.With().Str("component", "late_fine_service").Logger(),
		tracer:   otel.Tracer("github.com/noah-isme/school-fees-api/internal/service/late_fines"),
		now:      time.Now,
	}
}

func (s *lateFineService) Generate(ctx context.Context, trigger SweepTrigger) (SweepResult, error) {
	today := startOfDay(s.now())
	result := SweepResult{RanAt: s.now()}

	ctx, span := s.tracer.Start(ctx, "late_fines.generate", trace.WithAttributes(
		attribute.String("sweep.trigger", string(trigger)),
	))
	defer span.End()

	overdue, err := s.fees.ListPendingDueBefore(ctx, today)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load overdue fees")
		observability.LateFineSweeps().WithLabelValues(string(trigger), "error").Inc()
		return result, fmt.Errorf("load overdue fees: %w", err)
	}
	result.Scanned = len(overdue)

	var errs []error
	for _, fee := range overdue {
		if fee.StudentID == 0 {
			continue
		}

		fine := s.lateFineFor(fee, today)
		created, err := s.fines.CreateLateFineIfAbsent(ctx, &fine)
		if err != nil {
			errs = append(errs, fmt.Errorf("fee %d: %w", fee.ID, err))
			continue
		}
		if !created {
			continue
		}

		result.Created++
		s.afterCreate(ctx, fee, fine)
	}

	span.SetAttributes(
		attribute.Int("sweep.scanned", result.Scanned),
		attribute.Int("sweep.created", result.Created),
	)
	observability.LateFinesGenerated().Add(float64(result.Created))

	if len(errs) > 0 {
		err := errors.Join(errs...)
		span.RecordError(err)
		span.SetStatus(codes.Error, "late fine insert failed")
		observability.LateFineSweeps().WithLabelValues(string(trigger), "error").Inc()
		return result, err
	}

	observability.LateFineSweeps().WithLabelValues(string(trigger), "ok").Inc()
	if result.Created > 0 {
		s.logger.Info().
			Str("trigger", string(trigger)).
			Int("scanned", result.Scanned).
			Int("created", result.Created).
			Msg("late fines generated")
	}
	return result, nil
}

func (s *lateFineService) lateFineFor(fee models.Fee, today time.Time) models.Fine {
	amount := LateFineAmount(fee.Amount, s.policy)
	return models.Fine{
		StudentID: fee.StudentID,
		UserID:    fee.UserID,
		Amount:    amount,
		Reason:    LateFineReason(fee),
		FineType:  models.FineTypeLate,
		DueDate:   today.AddDate(0, 0, s.policy.GraceDays),
		Status:    models.PaymentStatusPending,
		Remarks:   fmt.Sprintf("Auto-generated late fine for overdue fee: ₹%s", decimal.NewFromFloat(fee.Amount).String()),
	}
}

func (s *lateFineService) afterCreate(ctx context.Context, fee models.Fee, fine models.Fine) {
	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      SystemActor,
		Action:     "late_fine.generated",
		EntityType: "fine",
		EntityID:   uintPtr(fine.ID),
		Metadata: map[string]interface{}{
			"feeId":     fee.ID,
			"studentId": fee.StudentID,
			"amount":    fine.Amount,
			"reason":    fine.Reason,
		},
	})

	if s.notifier == nil || fee.UserID == 0 {
		return
	}
	userID := fee.UserID
	_, err := s.notifier.Publish(ctx, dto.NotificationCreateRequest{
		UserID:  &userID,
		Title:   "Late fine added",
		Message: fmt.Sprintf("A late fine of ₹%s was added for %s. Please pay by %s.", decimal.NewFromFloat(fine.Amount).StringFixed(2), fine.Reason, fine.DueDate.Format("02 Jan 2006")),
		Type:    string(models.NotificationTypeFee),
	})
	if err != nil {
		s.logger.Warn().Err(err).Uint("fine_id", fine.ID).Msg("late fine notification not delivered")
	}
}

// LateFineReason builds the reason shared by every late fine for the same fee period.
// An empty month still leaves the trailing separator in place.
func LateFineReason(fee models.Fee) string {
	feesType := string(fee.FeesType)
	if feesType == "" {
		feesType = string(models.FeeTypeMonthly)
	}
	return fmt.Sprintf("Late Fee Payment - %s %s", feesType, fee.Month)
}

// LateFineAmount returns max(rate x amount, minimum) rounded to two decimals.
func LateFineAmount(feeAmount float64, policy config.LateFinePolicy) float64 {
	computed := decimal.NewFromFloat(feeAmount).Mul(decimal.NewFromFloat(policy.Rate))
	minimum := decimal.NewFromFloat(policy.Minimum)
	if computed.LessThan(minimum) {
		computed = minimum
	}
	return computed.Round(2).InexactFloat64()
}

func startOfDay(ts time.Time) time.Time {
	year, month, day := ts.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, ts.Location())
}
