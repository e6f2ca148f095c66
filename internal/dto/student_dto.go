package dto

import (
	"time"

	"github.com/noah-isme/school-fees-api/internal/models"
)

// StudentCreateRequest enrolls a student and provisions their login.
type StudentCreateRequest struct {
	StudentName      string `json:"studentName" validate:"required,max=255"`
	FathersName      string `json:"fathersName" validate:"required,max=255"`
	MothersName      string `json:"mothersName" validate:"required,max=255"`
	Address          string `json:"address" validate:"required,max=512"`
	Class            string `json:"class" validate:"required,max=64"`
	RollNumber       string `json:"rollNumber" validate:"required,max=64"`
	EnrollmentNumber string `json:"enrollmentNumber" validate:"required,min=4,max=64"`
	MobileNumber     string `json:"mobileNumber" validate:"required,max=32"`
	StudentType      string `json:"studentType" validate:"omitempty,oneof=dayScholar hosteler"`
	BusRoute         string `json:"busRoute" validate:"omitempty,max=128"`
	Email            string `json:"email" validate:"omitempty,email"`
	TransportOpted   bool   `json:"transportOpted"`
}

// StudentUpdateRequest patches a student record. Email changes are applied to the linked user.
type StudentUpdateRequest struct {
	StudentName    *string `json:"studentName" validate:"omitempty,min=1,max=255"`
	FathersName    *string `json:"fathersName" validate:"omitempty,min=1,max=255"`
	MothersName    *string `json:"mothersName" validate:"omitempty,min=1,max=255"`
	Address        *string `json:"address" validate:"omitempty,min=1,max=512"`
	Class          *string `json:"class" validate:"omitempty,min=1,max=64"`
	RollNumber     *string `json:"rollNumber" validate:"omitempty,min=1,max=64"`
	MobileNumber   *string `json:"mobileNumber" validate:"omitempty,min=1,max=32"`
	StudentType    *string `json:"studentType" validate:"omitempty,oneof=dayScholar hosteler"`
	BusRoute       *string `json:"busRoute" validate:"omitempty,max=128"`
	TransportOpted *bool   `json:"transportOpted"`
	Email          *string `json:"email" validate:"omitempty,email"`
}

// StudentResponse serializes a student record.
type StudentResponse struct {
	ID               uint         `json:"id"`
	UserID           uint         `json:"userId"`
	StudentName      string       `json:"studentName"`
	FathersName      string       `json:"fathersName"`
	MothersName      string       `json:"mothersName"`
	Address          string       `json:"address"`
	Class            string       `json:"class"`
	RollNumber       string       `json:"rollNumber"`
	EnrollmentNumber string       `json:"enrollmentNumber"`
	MobileNumber     string       `json:"mobileNumber"`
	StudentType      string       `json:"studentType"`
	BusRoute         string       `json:"busRoute"`
	TransportOpted   bool         `json:"transportOpted"`
	User             *UserSummary `json:"user,omitempty"`
	CreatedAt        time.Time    `json:"createdAt"`
	UpdatedAt        time.Time    `json:"updatedAt"`
}

// StudentCreateResponse returns the new student and the login provisioned for them.
type StudentCreateResponse struct {
	Student StudentResponse `json:"student"`
	User    UserSummary     `json:"user"`
}

// NewStudentResponse converts a student model into a DTO.
func NewStudentResponse(student models.Student) StudentResponse {
	return StudentResponse{
		ID:               student.ID,
		UserID:           student.UserID,
		StudentName:      student.StudentName,
		FathersName:      student.FathersName,
		MothersName:      student.MothersName,
		Address:          student.Address,
		Class:            student.Class,
		RollNumber:       student.RollNumber,
		EnrollmentNumber: student.EnrollmentNumber,
		MobileNumber:     student.MobileNumber,
		StudentType:      string(student.StudentType),
		BusRoute:         student.BusRoute,
		TransportOpted:   student.TransportOpted,
		User:             NewUserSummary(student.User),
		CreatedAt:        student.CreatedAt,
		UpdatedAt:        student.UpdatedAt,
	}
}

// NewStudentResponseSlice converts students to DTOs.
func NewStudentResponseSlice(students []models.Student) []StudentResponse {
	out := make([]StudentResponse, 0, len(students))
	for _, student := range students {
		out = append(out, NewStudentResponse(student))
	}
	return out
}

// ClassTeacherCreateRequest assigns a teacher to a class.
type ClassTeacherCreateRequest struct {
	TeacherID uint   `json:"teacherId" validate:"required"`
	ClassName string `json:"className" validate:"required,max=64"`
}

// ClassTeacherResponse serializes a class assignment.
type ClassTeacherResponse struct {
	ID        uint         `json:"id"`
	TeacherID uint         `json:"teacherId"`
	ClassName string       `json:"className"`
	Teacher   *UserSummary `json:"teacher,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
}

// NewClassTeacherResponse converts a class assignment into a DTO.
func NewClassTeacherResponse(assignment models.ClassTeacher) ClassTeacherResponse {
	return ClassTeacherResponse{
		ID:        assignment.ID,
		TeacherID: assignment.TeacherID,
		ClassName: assignment.ClassName,
		Teacher:   NewUserSummary(assignment.Teacher),
		CreatedAt: assignment.CreatedAt,
	}
}
