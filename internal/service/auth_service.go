package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/noah-isme/school-fees-api/internal/dto"
	"github.com/noah-isme/school-fees-api/internal/models"
	"github.com/noah-isme/school-fees-api/internal/repository"
)

const defaultAdminName = "Super Admin"

// AuthService authenticates users and manages their credentials.
type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (dto.LoginResponse, error)
	RegisterInitialAdmin(ctx context.Context, req dto.AdminRegisterRequest) (dto.LoginResponse, error)
	Me(ctx context.Context, userID uint) (dto.AuthUserResponse, error)
	ChangePassword(ctx context.Context, userID uint, req dto.ChangePasswordRequest) error
	EnsureAdmin(ctx context.Context, email, password string, resetPassword bool) (dto.AuthUserResponse, bool, error)
	CreateStaff(ctx context.Context, req dto.UserCreateRequest) (dto.AuthUserResponse, error)
}

type authService struct {
	users     repository.UserRepository
	tokens    *TokenIssuer
	validator *validator.Validate
	logger    zerolog.Logger
	hashCost  int
}

// NewAuthService constructs the authentication service.
func NewAuthService(users repository.UserRepository, tokens *TokenIssuer, validate *validator.Validate, logger zerolog.Logger) AuthService {
	return &authService{
		users:     users,
		tokens:    tokens,
		validator: validate,
		logger:    logger.With().Str("component", "auth_service").Logger(),
		hashCost:  bcrypt.DefaultCost,
	}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (dto.LoginResponse, error) {
	enrollment := strings.TrimSpace(req.EnrollmentNumber)
	mobile := strings.TrimSpace(req.MobileNumber)
	email := strings.TrimSpace(req.Email)

	if enrollment == "" && mobile == "" && email == "" {
		return dto.LoginResponse{}, ErrIdentifierRequired
	}
	if err := s.validator.Struct(req); err != nil {
		return dto.LoginResponse{}, err
	}

	var (
		user models.User
		err  error
	)
	switch {
	case enrollment != "":
		user, err = s.users.GetStudentByEnrollment(ctx, enrollment)
	case mobile != "":
		user, err = s.users.GetByPhone(ctx, mobile)
	default:
		user, err = s.users.GetByEmail(ctx, email)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LoginResponse{}, ErrInvalidCredentials
		}
		return dto.LoginResponse{}, fmt.Errorf("load user: %w", err)
	}

	var matched bool
	if enrollment != "" && user.IsDefaultPassword {
		// Default passwords are the enrollment number itself.
		matched = req.Password == enrollment && s.passwordMatches(user.PasswordHash, enrollment)
	} else {
		matched = s.passwordMatches(user.PasswordHash, req.Password)
	}
	if !matched {
		return dto.LoginResponse{}, ErrInvalidCredentials
	}

	return s.issue(user)
}

func (s *authService) RegisterInitialAdmin(ctx context.Context, req dto.AdminRegisterRequest) (dto.LoginResponse, error) {
	exists, err := s.users.ExistsWithRole(ctx, models.RoleAdmin)
	if err != nil {
		return dto.LoginResponse{}, err
	}
	if exists {
		return dto.LoginResponse{}, ErrAdminExists
	}

	if err := s.validator.Struct(req); err != nil {
		return dto.LoginResponse{}, err
	}

	user, err := s.createUser(ctx, req.Name, req.Email, req.Password, models.RoleAdmin, "")
	if err != nil {
		return dto.LoginResponse{}, err
	}

	s.logger.Info().Uint("user_id", user.ID).Msg("initial admin registered")
	return s.issue(user)
}

func (s *authService) Me(ctx context.Context, userID uint) (dto.AuthUserResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AuthUserResponse{}, ErrUserNotFound
		}
		return dto.AuthUserResponse{}, err
	}
	return dto.NewAuthUserResponse(user), nil
}

func (s *authService) ChangePassword(ctx context.Context, userID uint, req dto.ChangePasswordRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if !s.passwordMatches(user.PasswordHash, req.CurrentPassword) {
		return ErrInvalidCredentials
	}

	hash, err := s.hash(req.NewPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	user.IsDefaultPassword = false

	return s.users.Update(ctx, &user)
}

// EnsureAdmin creates the admin account or promotes an existing user with the same email.
// The password of an existing user is only replaced when resetPassword is set.
func (s *authService) EnsureAdmin(ctx context.Context, email, password string, resetPassword bool) (dto.AuthUserResponse, bool, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return dto.AuthUserResponse{}, false, errors.New("admin email is required")
	}

	user, err := s.users.GetByEmail(ctx, normalized)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		created, createErr := s.createUser(ctx, defaultAdminName, normalized, password, models.RoleAdmin, "")
		if createErr != nil {
			return dto.AuthUserResponse{}, false, createErr
		}
		return dto.NewAuthUserResponse(created), true, nil
	}
	if err != nil {
		return dto.AuthUserResponse{}, false, err
	}

	user.Role = models.RoleAdmin
	if resetPassword {
		hash, hashErr := s.hash(password)
		if hashErr != nil {
			return dto.AuthUserResponse{}, false, hashErr
		}
		user.PasswordHash = hash
		user.IsDefaultPassword = false
	}
	if err := s.users.Update(ctx, &user); err != nil {
		return dto.AuthUserResponse{}, false, err
	}

	return dto.NewAuthUserResponse(user), false, nil
}

func (s *authService) CreateStaff(ctx context.Context, req dto.UserCreateRequest) (dto.AuthUserResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.AuthUserResponse{}, err
	}

	user, err := s.createUser(ctx, req.Name, req.Email, req.Password, models.ParseRole(req.Role), req.Phone)
	if err != nil {
		return dto.AuthUserResponse{}, err
	}
	return dto.NewAuthUserResponse(user), nil
}

func (s *authService) createUser(ctx context.Context, name, email, password string, role models.Role, phone string) (models.User, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if _, err := s.users.GetByEmail(ctx, normalized); err == nil {
		return models.User{}, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, err
	}

	hash, err := s.hash(password)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		Name:         strings.TrimSpace(name),
		Email:        normalized,
		PasswordHash: hash,
		Role:         role,
		Phone:        strings.TrimSpace(phone),
	}
	if err := s.users.Create(ctx, &user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (s *authService) issue(user models.User) (dto.LoginResponse, error) {
	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		s.logger.Error().Err(err).Uint("user_id", user.ID).Msg("failed to issue token")
		return dto.LoginResponse{}, err
	}
	return dto.LoginResponse{Token: token, ExpiresAt: expiresAt, User: dto.NewAuthUserResponse(user)}, nil
}

func (s *authService) hash(password string) (string, error) {
	return hashPassword(password, s.hashCost)
}

func (s *authService) passwordMatches(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func hashPassword(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}
