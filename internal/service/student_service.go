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

const defaultStudentEmailDomain = "school.com"

// StudentService manages student records and their login accounts.
type StudentService interface {
	List(ctx context.Context, actor Actor) ([]dto.StudentResponse, error)
	ListByClass(ctx context.Context, className string) ([]dto.StudentResponse, error)
	Search(ctx context.Context, query string) ([]dto.StudentResponse, error)
	GetByUserID(ctx context.Context, actor Actor, userID uint) (dto.StudentResponse, error)
	Create(ctx context.Context, actor Actor, req dto.StudentCreateRequest) (dto.StudentCreateResponse, error)
	Update(ctx context.Context, actor Actor, id uint, req dto.StudentUpdateRequest) (dto.StudentResponse, error)
	Delete(ctx context.Context, actor Actor, id uint) error
}

type studentService struct {
	students  repository.StudentRepository
	users     repository.UserRepository
	classes   repository.ClassTeacherRepository
	validator *validator.Validate
	logger    zerolog.Logger
	hashCost  int
}

// NewStudentService constructs the student service.
func NewStudentService(students repository.StudentRepository, users repository.UserRepository, classes repository.ClassTeacherRepository, validate *validator.Validate, logger zerolog.Logger) StudentService {
	return &studentService{
		students:  students,
		users:     users,
		classes:   classes,
		validator: validate,
		logger:    logger.With().Str("component", "student_service").Logger(),
		hashCost:  bcrypt.DefaultCost,
	}
}

func (s *studentService) List(ctx context.Context, actor Actor) ([]dto.StudentResponse, error) {
	filter := repository.StudentFilter{}
	switch actor.Role {
	case models.RoleAdmin, models.RoleAccountant:
	case models.RoleTeacher:
		className, err := s.assignedClass(ctx, actor.ID)
		if err != nil {
			return nil, err
		}
		filter.Class = className
	default:
		return nil, ErrForbidden
	}

	students, err := s.students.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return dto.NewStudentResponseSlice(students), nil
}

func (s *studentService) ListByClass(ctx context.Context, className string) ([]dto.StudentResponse, error) {
	className = strings.TrimSpace(className)
	if className == "" {
		return []dto.StudentResponse{}, nil
	}
	students, err := s.students.List(ctx, repository.StudentFilter{Class: className})
	if err != nil {
		return nil, err
	}
	return dto.NewStudentResponseSlice(students), nil
}

func (s *studentService) Search(ctx context.Context, query string) ([]dto.StudentResponse, error) {
	students, err := s.students.Search(ctx, query, 20)
	if err != nil {
		return nil, err
	}
	return dto.NewStudentResponseSlice(students), nil
}

func (s *studentService) GetByUserID(ctx context.Context, actor Actor, userID uint) (dto.StudentResponse, error) {
	student, err := s.findByUserID(ctx, userID)
	if err != nil {
		return dto.StudentResponse{}, err
	}
	if !actor.owns(student.UserID) {
		return dto.StudentResponse{}, ErrForbidden
	}
	return dto.NewStudentResponse(student), nil
}

func (s *studentService) Create(ctx context.Context, actor Actor, req dto.StudentCreateRequest) (dto.StudentCreateResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.StudentCreateResponse{}, err
	}

	className := strings.TrimSpace(req.Class)
	if err := s.authorizeClass(ctx, actor, className); err != nil {
		return dto.StudentCreateResponse{}, err
	}

	enrollment := strings.TrimSpace(req.EnrollmentNumber)
	mobile := strings.TrimSpace(req.MobileNumber)
	rollNumber := strings.TrimSpace(req.RollNumber)

	taken, err := s.students.IdentityTaken(ctx, enrollment, mobile)
	if err != nil {
		return dto.StudentCreateResponse{}, err
	}
	if taken {
		return dto.StudentCreateResponse{}, ErrDuplicateStudent
	}

	taken, err = s.students.RollNumberTaken(ctx, className, rollNumber, 0)
	if err != nil {
		return dto.StudentCreateResponse{}, err
	}
	if taken {
		return dto.StudentCreateResponse{}, &RollNumberConflictError{RollNumber: rollNumber, Class: className}
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		email = fmt.Sprintf("%s@%s", strings.ToLower(enrollment), defaultStudentEmailDomain)
	}
	if err := s.ensureEmailFree(ctx, email, 0); err != nil {
		return dto.StudentCreateResponse{}, err
	}

	hash, err := hashPassword(enrollment, s.hashCost)
	if err != nil {
		return dto.StudentCreateResponse{}, err
	}

	studentType := models.StudentType(req.StudentType)
	if studentType == "" {
		studentType = models.StudentTypeDayScholar
	}

	user := models.User{
		Name:              strings.TrimSpace(req.StudentName),
		Email:             email,
		PasswordHash:      hash,
		IsDefaultPassword: true,
		Role:              models.RoleStudent,
		StudentID:         enrollment,
		Phone:             mobile,
	}
	student := models.Student{
		StudentName:      strings.TrimSpace(req.StudentName),
		FathersName:      strings.TrimSpace(req.FathersName),
		MothersName:      strings.TrimSpace(req.MothersName),
		Address:          strings.TrimSpace(req.Address),
		Class:            className,
		RollNumber:       rollNumber,
		EnrollmentNumber: enrollment,
		MobileNumber:     mobile,
		StudentType:      studentType,
		BusRoute:         strings.TrimSpace(req.BusRoute),
		TransportOpted:   req.TransportOpted,
	}

	if err := s.students.CreateWithUser(ctx, &user, &student); err != nil {
		s.logger.Error().Err(err).Str("enrollment_number", enrollment).Msg("failed to create student")
		return dto.StudentCreateResponse{}, err
	}
	student.User = &user

	return dto.StudentCreateResponse{
		Student: dto.NewStudentResponse(student),
		User:    dto.UserSummary{ID: user.ID, Name: user.Name, Email: user.Email},
	}, nil
}

func (s *studentService) Update(ctx context.Context, actor Actor, id uint, req dto.StudentUpdateRequest) (dto.StudentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.StudentResponse{}, err
	}

	student, err := s.findByID(ctx, id)
	if err != nil {
		return dto.StudentResponse{}, err
	}
	if err := s.authorizeClass(ctx, actor, student.Class); err != nil {
		return dto.StudentResponse{}, err
	}

	targetClass := student.Class
	if req.Class != nil {
		targetClass = strings.TrimSpace(*req.Class)
	}
	if req.RollNumber != nil && strings.TrimSpace(*req.RollNumber) != student.RollNumber {
		rollNumber := strings.TrimSpace(*req.RollNumber)
		taken, err := s.students.RollNumberTaken(ctx, targetClass, rollNumber, student.ID)
		if err != nil {
			return dto.StudentResponse{}, err
		}
		if taken {
			return dto.StudentResponse{}, &RollNumberConflictError{RollNumber: rollNumber, Class: targetClass}
		}
	}

	var email *string
	if req.Email != nil && strings.TrimSpace(*req.Email) != "" {
		normalized := strings.ToLower(strings.TrimSpace(*req.Email))
		if err := s.ensureEmailFree(ctx, normalized, student.UserID); err != nil {
			return dto.StudentResponse{}, err
		}
		email = &normalized
	}

	applyStudentUpdate(&student, req)
	student.Class = targetClass

	if err := s.students.UpdateWithUser(ctx, &student, email); err != nil {
		return dto.StudentResponse{}, err
	}

	updated, err := s.findByID(ctx, student.ID)
	if err != nil {
		return dto.StudentResponse{}, err
	}
	return dto.NewStudentResponse(updated), nil
}

func (s *studentService) Delete(ctx context.Context, actor Actor, id uint) error {
	student, err := s.findByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorizeClass(ctx, actor, student.Class); err != nil {
		return err
	}

	if err := s.students.DeleteWithUser(ctx, student); err != nil {
		return err
	}
	s.logger.Info().Uint("student_id", student.ID).Uint("user_id", student.UserID).Msg("student deleted")
	return nil
}

// authorizeClass lets admins manage any class and teachers only their assigned one.
func (s *studentService) authorizeClass(ctx context.Context, actor Actor, className string) error {
	switch actor.Role {
	case models.RoleAdmin:
		return nil
	case models.RoleTeacher:
		assigned, err := s.assignedClass(ctx, actor.ID)
		if errors.Is(err, ErrNoClassAssigned) {
			return ErrForbidden
		}
		if err != nil {
			return err
		}
		if assigned != className {
			return ErrForbidden
		}
		return nil
	default:
		return ErrForbidden
	}
}

func (s *studentService) assignedClass(ctx context.Context, teacherID uint) (string, error) {
	assignment, err := s.classes.GetByTeacherID(ctx, teacherID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNoClassAssigned
		}
		return "", err
	}
	return assignment.ClassName, nil
}

func (s *studentService) ensureEmailFree(ctx context.Context, email string, ownerID uint) error {
	existing, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != ownerID {
		return ErrEmailTaken
	}
	return nil
}

func (s *studentService) findByID(ctx context.Context, id uint) (models.Student, error) {
	student, err := s.students.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Student{}, ErrStudentNotFound
		}
		return models.Student{}, err
	}
	return student, nil
}

func (s *studentService) findByUserID(ctx context.Context, userID uint) (models.Student, error) {
	student, err := s.students.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Student{}, ErrStudentNotFound
		}
		return models.Student{}, err
	}
	return student, nil
}

func applyStudentUpdate(student *models.Student, req dto.StudentUpdateRequest) {
	if req.StudentName != nil {
		student.StudentName = strings.TrimSpace(*req.StudentName)
	}
	if req.FathersName != nil {
		student.FathersName = strings.TrimSpace(*req.FathersName)
	}
	if req.MothersName != nil {
		student.MothersName = strings.TrimSpace(*req.MothersName)
	}
	if req.Address != nil {
		student.Address = strings.TrimSpace(*req.Address)
	}
	if req.RollNumber != nil {
		student.RollNumber = strings.TrimSpace(*req.RollNumber)
	}
	if req.MobileNumber != nil {
		student.MobileNumber = strings.TrimSpace(*req.MobileNumber)
	}
	if req.StudentType != nil {
		student.StudentType = models.StudentType(*req.StudentType)
	}
	if req.BusRoute != nil {
		student.BusRoute = strings.TrimSpace(*req.BusRoute)
	}
	if req.TransportOpted != nil {
		student.TransportOpted = *req.TransportOpted
	}
}
