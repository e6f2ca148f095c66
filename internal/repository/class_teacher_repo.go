package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/school-fees-api/internal/models"
)

// ClassTeacherRepository persists class to teacher assignments.
type ClassTeacherRepository interface {
	Create(ctx context.Context, assignment *models.ClassTeacher) error
	List(ctx context.Context) ([]models.ClassTeacher, error)
	GetByTeacherID(ctx context.Context, teacherID uint) (models.ClassTeacher, error)
	Delete(ctx context.Context, id uint) error
}

type classTeacherRepository struct {
	db *gorm.DB
}

// NewClassTeacherRepository constructs the class teacher repository.
func NewClassTeacherRepository(db *gorm.DB) ClassTeacherRepository {
	return &classTeacherRepository{db: db}
}

func (r *classTeacherRepository) Create(ctx context.Context, assignment *models.ClassTeacher) error {
	return r.db.WithContext(ctx).Omit("Teacher").Create(assignment).Error
}

func (r *classTeacherRepository) List(ctx context.Context) ([]models.ClassTeacher, error) {
	var assignments []models.ClassTeacher
	if err := r.db.WithContext(ctx).Preload("Teacher").Order("class_name ASC").Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

func (r *classTeacherRepository) GetByTeacherID(ctx context.Context, teacherID uint) (models.ClassTeacher, error) {
	var assignment models.ClassTeacher
	if err := r.db.WithContext(ctx).Where("teacher_id = ?", teacherID).First(&assignment).Error; err != nil {
		return models.ClassTeacher{}, err
	}
	return assignment, nil
}

func (r *classTeacherRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.ClassTeacher{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
