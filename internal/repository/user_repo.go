package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/noah-isme/school-fees-api/internal/models"
)

// UserRepository persists login accounts.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	GetStudentByEnrollment(ctx context.Context, enrollmentNumber string) (models.User, error)
	GetByPhone(ctx context.Context, phone string) (models.User, error)
	ExistsWithRole(ctx context.Context, role models.Role) (bool, error)
	Update(ctx context.Context, user *models.User) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository constructs the user repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (r *userRepository) GetStudentByEnrollment(ctx context.Context, enrollmentNumber string) (models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND role = ?", strings.TrimSpace(enrollmentNumber), models.RoleStudent).
		First(&user).Error
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (r *userRepository) GetByPhone(ctx context.Context, phone string) (models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("phone = ?", strings.TrimSpace(phone)).First(&user).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (r *userRepository) ExistsWithRole(ctx context.Context, role models.Role) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("role = ?", role).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}
