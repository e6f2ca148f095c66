package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/noah-isme/school-fees-api/internal/models"
)

// StudentFilter narrows student listings.
type StudentFilter struct {
	Class string
}

// StudentRepository persists students together with their login accounts.
type StudentRepository interface {
	CreateWithUser(ctx context.Context, user *models.User, student *models.Student) error
	GetByID(ctx context.Context, id uint) (models.Student, error)
	GetByUserID(ctx context.Context, userID uint) (models.Student, error)
	List(ctx context.Context, filter StudentFilter) ([]models.Student, error)
	Search(ctx context.Context, query string, limit int) ([]models.Student, error)
	IdentityTaken(ctx context.Context, enrollmentNumber, mobileNumber string) (bool, error)
	RollNumberTaken(ctx context.Context, class, rollNumber string, excludeID uint) (bool, error)
	UpdateWithUser(ctx context.Context, student *models.Student, email *string) error
	DeleteWithUser(ctx context.Context, student models.Student) error
}

type studentRepository struct {
	db *gorm.DB
}

// NewStudentRepository constructs the student repository.
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) CreateWithUser(ctx context.Context, user *models.User, student *models.Student) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		student.UserID = user.ID
		return tx.Omit("User").Create(student).Error
	})
}

func (r *studentRepository) GetByID(ctx context.Context, id uint) (models.Student, error) {
	var student models.Student
	if err := r.db.WithContext(ctx).Preload("User").First(&student, id).Error; err != nil {
		return models.Student{}, err
	}
	return student, nil
}

func (r *studentRepository) GetByUserID(ctx context.Context, userID uint) (models.Student, error) {
	var student models.Student
	if err := r.db.WithContext(ctx).Preload("User").Where("user_id = ?", userID).First(&student).Error; err != nil {
		return models.Student{}, err
	}
	return student, nil
}

func (r *studentRepository) List(ctx context.Context, filter StudentFilter) ([]models.Student, error) {
	query := r.db.WithContext(ctx).Preload("User")
	if class := strings.TrimSpace(filter.Class); class != "" {
		query = query.Where("class = ?", class)
	}

	var students []models.Student
	if err := query.Order("class ASC").Order("roll_number ASC").Find(&students).Error; err != nil {
		return nil, err
	}
	return students, nil
}

func (r *studentRepository) Search(ctx context.Context, query string, limit int) ([]models.Student, error) {
	term := strings.ToLower(strings.TrimSpace(query))
	if term == "" {
		return []models.Student{}, nil
	}
	if limit <= 0 || limit > 20 {
		limit = 20
	}

	like := "%" + term + "%"
	var students []models.Student
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("LOWER(student_name) LIKE ? OR LOWER(roll_number) LIKE ? OR LOWER(enrollment_number) LIKE ? OR mobile_number LIKE ?", like, like, like, like).
		Order("student_name ASC").
		Limit(limit).
		Find(&students).Error
	if err != nil {
		return nil, err
	}
	return students, nil
}

func (r *studentRepository) IdentityTaken(ctx context.Context, enrollmentNumber, mobileNumber string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Student{}).
		Where("enrollment_number = ? OR mobile_number = ?", enrollmentNumber, mobileNumber).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *studentRepository) RollNumberTaken(ctx context.Context, class, rollNumber string, excludeID uint) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.Student{}).
		Where("class = ? AND roll_number = ?", class, rollNumber)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *studentRepository) UpdateWithUser(ctx context.Context, student *models.Student, email *string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("User").Save(student).Error; err != nil {
			return err
		}
		if email == nil {
			return nil
		}
		return tx.Model(&models.User{}).Where("id = ?", student.UserID).Update("email", *email).Error
	})
}

func (r *studentRepository) DeleteWithUser(ctx context.Context, student models.Student) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Student{}, student.ID).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, student.UserID).Error
	})
}
