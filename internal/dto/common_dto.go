package dto

import (
	"fmt"
	"strings"
	"time"

	"github.com/noah-isme/school-fees-api/internal/models"
)

// PaginationMeta captures pagination metadata for list responses.
type PaginationMeta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalItems int64 `json:"totalItems"`
	TotalPages int   `json:"totalPages"`
}

// UserSummary is the slice of a user embedded in other resources.
type UserSummary struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// StudentSummary is the slice of a student embedded in fee and fine responses.
type StudentSummary struct {
	ID               uint   `json:"id"`
	UserID           uint   `json:"userId"`
	StudentName      string `json:"studentName"`
	Class            string `json:"class"`
	RollNumber       string `json:"rollNumber"`
	EnrollmentNumber string `json:"enrollmentNumber"`
}

// NewUserSummary converts a preloaded user, returning nil when absent.
func NewUserSummary(user *models.User) *UserSummary {
	if user == nil || user.ID == 0 {
		return nil
	}
	return &UserSummary{ID: user.ID, Name: user.Name, Email: user.Email}
}

// NewStudentSummary converts a preloaded student, returning nil when absent.
func NewStudentSummary(student *models.Student) *StudentSummary {
	if student == nil || student.ID == 0 {
		return nil
	}
	return &StudentSummary{
		ID:               student.ID,
		UserID:           student.UserID,
		StudentName:      student.StudentName,
		Class:            student.Class,
		RollNumber:       student.RollNumber,
		EnrollmentNumber: student.EnrollmentNumber,
	}
}

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

// ParseDate accepts RFC3339 timestamps or plain calendar dates. Calendar dates are read in local time.
func ParseDate(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if parsed, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", raw)
}
