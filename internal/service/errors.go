package service

import (
	"errors"
	"fmt"
)

var (
	// ErrStudentNotFound is returned when no student matches the lookup.
	ErrStudentNotFound = errors.New("student not found")
	// ErrFeeNotFound is returned when the fee does not exist.
	ErrFeeNotFound = errors.New("fee not found")
	// ErrFineNotFound is returned when the fine does not exist.
	ErrFineNotFound = errors.New("fine not found")
	// ErrUserNotFound is returned when the account does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrNotificationNotFound is returned when the notification is missing or not addressed to the caller.
	ErrNotificationNotFound = errors.New("notification not found")
	// ErrClassTeacherNotFound is returned when the class assignment does not exist.
	ErrClassTeacherNotFound = errors.New("class teacher assignment not found")

	ErrForbidden          = errors.New("access denied")
	ErrNoClassAssigned    = errors.New("no class assigned")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrIdentifierRequired = errors.New("email, mobile number, or enrollment number is required")
	ErrDuplicateStudent   = errors.New("student with this enrollment number or mobile number already exists")
	ErrRollNumberTaken    = errors.New("roll number already exists in class")
	ErrAdminExists        = errors.New("admin already exists")
	ErrEmailTaken         = errors.New("user with this email already exists")
	ErrAlreadyPaid        = errors.New("already paid")
	ErrInvalidDate        = errors.New("invalid date")
	ErrNotATeacher        = errors.New("user is not a teacher")
	ErrClassAssigned      = errors.New("class or teacher already assigned")
	ErrEmptyNotification  = errors.New("notification title and message are required")
	// ErrOpenLateFineExists is returned when a student already has an unpaid late fine with the same reason.
	ErrOpenLateFineExists = errors.New("an unpaid late fine with this reason already exists for the student")
)

// RollNumberConflictError reports a roll number collision within a class.
type RollNumberConflictError struct {
	RollNumber string
	Class      string
}

func (e *RollNumberConflictError) Error() string {
	return fmt.Sprintf("Roll number %s already exists in class %s", e.RollNumber, e.Class)
}

// Is lets callers match the conflict with errors.Is(err, ErrRollNumberTaken).
func (e *RollNumberConflictError) Is(target error) bool {
	return target == ErrRollNumberTaken
}
