package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/school-fees-api/internal/models"
)

// FineRepository persists penalties.
type FineRepository interface {
	Create(ctx context.Context, fine *models.Fine) error
	CreateLateFineIfAbsent(ctx context.Context, fine *models.Fine) (bool, error)
	GetByID(ctx context.Context, id uint) (models.Fine, error)
	List(ctx context.Context) ([]models.Fine, error)
	ListByStudent(ctx context.Context, studentID uint) ([]models.Fine, error)
	Save(ctx context.Context, fine *models.Fine) error
	Delete(ctx context.Context, id uint) error
}

type fineRepository struct {
	db *gorm.DB
}

// NewFineRepository constructs the fine repository.
func NewFineRepository(db *gorm.DB) FineRepository {
	return &fineRepository{db: db}
}

func (r *fineRepository) Create(ctx context.Context, fine *models.Fine) error {
	return r.db.WithContext(ctx).Omit("Student").Create(fine).Error
}

// CreateLateFineIfAbsent inserts the fine unless an open late fine with the same
// student and reason already exists. It reports whether a row was written.
func (r *fineRepository) CreateLateFineIfAbsent(ctx context.Context, fine *models.Fine) (bool, error) {
	fine.FineType = models.FineTypeLate
	if fine.Status == "" {
		fine.Status = models.PaymentStatusPending
	}

	result := r.db.WithContext(ctx).
		Omit("Student").
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(fine)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *fineRepository) GetByID(ctx context.Context, id uint) (models.Fine, error) {
	var fine models.Fine
	if err := r.db.WithContext(ctx).Preload("Student").First(&fine, id).Error; err != nil {
		return models.Fine{}, err
	}
	return fine, nil
}

func (r *fineRepository) List(ctx context.Context) ([]models.Fine, error) {
	var fines []models.Fine
	err := r.db.WithContext(ctx).
		Preload("Student").
		Order("created_at DESC").
		Order("id DESC").
		Find(&fines).Error
	if err != nil {
		return nil, err
	}
	return fines, nil
}

func (r *fineRepository) ListByStudent(ctx context.Context, studentID uint) ([]models.Fine, error) {
	var fines []models.Fine
	err := r.db.WithContext(ctx).
		Preload("Student").
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&fines).Error
	if err != nil {
		return nil, err
	}
	return fines, nil
}

func (r *fineRepository) Save(ctx context.Context, fine *models.Fine) error {
	return r.db.WithContext(ctx).Omit("Student").Save(fine).Error
}

func (r *fineRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Fine{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
