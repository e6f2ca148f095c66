package dto

import (
	"time"

	"github.com/noah-isme/school-fees-api/internal/models"
)

// LoginRequest identifies the account by enrollment number, mobile number or email, in that precedence.
type LoginRequest struct {
	Email            string `json:"email" validate:"omitempty,max=255"`
	MobileNumber     string `json:"mobileNumber" validate:"omitempty,max=32"`
	EnrollmentNumber string `json:"enrollmentNumber" validate:"omitempty,max=64"`
	Password         string `json:"password" validate:"required"`
}

// AdminRegisterRequest bootstraps the first administrator.
type AdminRegisterRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// ChangePasswordRequest replaces the caller's password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6,max=72"`
}

// UserCreateRequest provisions a staff or admin account from the admin CLI.
type UserCreateRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Role     string `json:"role" validate:"required,oneof=admin teacher accountant"`
	Phone    string `json:"phone" validate:"omitempty,max=32"`
}

// AuthUserResponse describes the authenticated account.
type AuthUserResponse struct {
	ID                uint      `json:"id"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	Role              string    `json:"role"`
	IsDefaultPassword bool      `json:"isDefaultPassword"`
	StudentID         string    `json:"studentId,omitempty"`
	Phone             string    `json:"phone,omitempty"`
	Address           string    `json:"address,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
}

// LoginResponse carries the bearer token issued on login.
type LoginResponse struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expiresAt"`
	User      AuthUserResponse `json:"user"`
}

// NewAuthUserResponse converts a user model into a DTO.
func NewAuthUserResponse(user models.User) AuthUserResponse {
	return AuthUserResponse{
		ID:                user.ID,
		Name:              user.Name,
		Email:             user.Email,
		Role:              user.Role.String(),
		IsDefaultPassword: user.IsDefaultPassword,
		StudentID:         user.StudentID,
		Phone:             user.Phone,
		Address:           user.Address,
		CreatedAt:         user.CreatedAt,
	}
}
