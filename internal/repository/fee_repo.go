package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/school-fees-api/internal/models"
)

// FeeRepository persists fee obligations.
type FeeRepository interface {
	Create(ctx context.Context, fee *models.Fee) error
	GetByID(ctx context.Context, id uint) (models.Fee, error)
	List(ctx context.Context) ([]models.Fee, error)
	ListByStudent(ctx context.Context, studentID uint) ([]models.Fee, error)
	ListPendingDueBefore(ctx context.Context, cutoff time.Time) ([]models.Fee, error)
	Save(ctx context.Context, fee *models.Fee) error
	Delete(ctx context.Context, id uint) error
}

type feeRepository struct {
	db *gorm.DB
}

// NewFeeRepository constructs the fee repository.
func NewFeeRepository(db *gorm.DB) FeeRepository {
	return &feeRepository{db: db}
}

func (r *feeRepository) Create(ctx context.Context, fee *models.Fee) error {
	return r.db.WithContext(ctx).Omit("Student", "User").Create(fee).Error
}

func (r *feeRepository) GetByID(ctx context.Context, id uint) (models.Fee, error) {
	var fee models.Fee
	if err := r.db.WithContext(ctx).Preload("Student").Preload("User").First(&fee, id).Error; err != nil {
		return models.Fee{}, err
	}
	return fee, nil
}

func (r *feeRepository) List(ctx context.Context) ([]models.Fee, error) {
	var fees []models.Fee
	err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("User").
		Order("created_at DESC").
		Order("id DESC").
		Find(&fees).Error
	if err != nil {
		return nil, err
	}
	return fees, nil
}

func (r *feeRepository) ListByStudent(ctx context.Context, studentID uint) ([]models.Fee, error) {
	var fees []models.Fee
	err := r.db.WithContext(ctx).
		Preload("Student").
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&fees).Error
	if err != nil {
		return nil, err
	}
	return fees, nil
}

// ListPendingDueBefore returns pending fees whose due date is strictly before cutoff.
func (r *feeRepository) ListPendingDueBefore(ctx context.Context, cutoff time.Time) ([]models.Fee, error) {
	var fees []models.Fee
	err := r.db.WithContext(ctx).
		Preload("Student").
		Where("status = ? AND due_date < ?", models.PaymentStatusPending, cutoff).
		Order("id ASC").
		Find(&fees).Error
	if err != nil {
		return nil, err
	}
	return fees, nil
}

func (r *feeRepository) Save(ctx context.Context, fee *models.Fee) error {
	return r.db.WithContext(ctx).Omit("Student", "User").Save(fee).Error
}

func (r *feeRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Fee{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
