package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/school-fees-api/internal/dto"
	"github.com/noah-isme/school-fees-api/internal/models"
	"github.com/noah-isme/school-fees-api/internal/repository"
)

// ClassTeacherService assigns teachers to the class they manage.
type ClassTeacherService interface {
	List(ctx context.Context) ([]dto.ClassTeacherResponse, error)
	Assign(ctx context.Context, req dto.ClassTeacherCreateRequest) (dto.ClassTeacherResponse, error)
	Remove(ctx context.Context, id uint) error
}

type classTeacherService struct {
	repo      repository.ClassTeacherRepository
	users     repository.UserRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewClassTeacherService constructs the class teacher service.
func NewClassTeacherService(repo repository.ClassTeacherRepository, users repository.UserRepository, validate *validator.Validate, logger zerolog.Logger) ClassTeacherService {
	return &classTeacherService{
		repo:      repo,
		users:     users,
		validator: validate,
		logger:    logger.With().Str("component", "class_teacher_service").Logger(),
	}
}

func (s *classTeacherService) List(ctx context.Context) ([]dto.ClassTeacherResponse, error) {
	assignments, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]dto.ClassTeacherResponse, 0, len(assignments))
	for _, assignment := range assignments {
		out = append(out, dto.NewClassTeacherResponse(assignment))
	}
	return out, nil
}

func (s *classTeacherService) Assign(ctx context.Context, req dto.ClassTeacherCreateRequest) (dto.ClassTeacherResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ClassTeacherResponse{}, err
	}

	teacher, err := s.users.GetByID(ctx, req.TeacherID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ClassTeacherResponse{}, ErrUserNotFound
		}
		return dto.ClassTeacherResponse{}, err
	}
	if teacher.Role != models.RoleTeacher {
		return dto.ClassTeacherResponse{}, ErrNotATeacher
	}

	existing, err := s.repo.List(ctx)
	if err != nil {
		return dto.ClassTeacherResponse{}, err
	}
	className := strings.TrimSpace(req.ClassName)
	for _, assignment := range existing {
		if assignment.TeacherID == teacher.ID || assignment.ClassName == className {
			return dto.ClassTeacherResponse{}, ErrClassAssigned
		}
	}

	assignment := models.ClassTeacher{TeacherID: teacher.ID, ClassName: className}
	if err := s.repo.Create(ctx, &assignment); err != nil {
		return dto.ClassTeacherResponse{}, err
	}
	assignment.Teacher = &teacher

	s.logger.Info().Uint("teacher_id", teacher.ID).Str("class", className).Msg("class teacher assigned")
	return dto.NewClassTeacherResponse(assignment), nil
}

func (s *classTeacherService) Remove(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrClassTeacherNotFound
		}
		return err
	}
	return nil
}
