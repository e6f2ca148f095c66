package dto

import (
	"time"

	"github.com/noah-isme/school-fees-api/internal/models"
)

// FineCreateRequest issues a manual penalty.
type FineCreateRequest struct {
	StudentID uint    `json:"studentId" validate:"required"`
	Amount    float64 `json:"amount" validate:"required,gt=0"`
	Reason    string  `json:"reason" validate:"required,min=1,max=255"`
	FineType  string  `json:"fineType" validate:"omitempty,oneof=late other"`
	DueDate   string  `json:"dueDate" validate:"required"`
	Remarks   string  `json:"remarks" validate:"omitempty,max=2000"`
}

// FineUpdateRequest patches any subset of fine fields.
type FineUpdateRequest struct {
	Amount        *float64 `json:"amount" validate:"omitempty,gt=0"`
	Reason        *string  `json:"reason" validate:"omitempty,min=1,max=255"`
	FineType      *string  `json:"fineType" validate:"omitempty,oneof=late other"`
	DueDate       *string  `json:"dueDate"`
	Status        *string  `json:"status" validate:"omitempty,oneof=pending paid overdue"`
	PaymentMethod *string  `json:"paymentMethod" validate:"omitempty,max=64"`
	TransactionID *string  `json:"transactionId" validate:"omitempty,max=128"`
	Remarks       *string  `json:"remarks" validate:"omitempty,max=2000"`
}

// FineResponse serializes a fine with the owning student's identifying fields.
type FineResponse struct {
	ID            uint            `json:"id"`
	StudentID     uint            `json:"studentId"`
	UserID        uint            `json:"userId"`
	Amount        float64         `json:"amount"`
	Reason        string          `json:"reason"`
	FineType      string          `json:"fineType"`
	DueDate       time.Time       `json:"dueDate"`
	PaidDate      *time.Time      `json:"paidDate"`
	Status        string          `json:"status"`
	IsOverdue     bool            `json:"isOverdue"`
	PaymentMethod string          `json:"paymentMethod,omitempty"`
	TransactionID string          `json:"transactionId,omitempty"`
	Remarks       string          `json:"remarks,omitempty"`
	Student       *StudentSummary `json:"student,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// NewFineResponse converts a fine model, evaluating overdue against today.
func NewFineResponse(fine models.Fine, today time.Time) FineResponse {
	return FineResponse{
		ID:            fine.ID,
		StudentID:     fine.StudentID,
		UserID:        fine.UserID,
		Amount:        fine.Amount,
		Reason:        fine.Reason,
		FineType:      string(fine.FineType),
		DueDate:       fine.DueDate,
		PaidDate:      fine.PaidDate,
		Status:        string(fine.Status),
		IsOverdue:     fine.IsOverdue(today),
		PaymentMethod: fine.PaymentMethod,
		TransactionID: fine.TransactionID,
		Remarks:       fine.Remarks,
		Student:       NewStudentSummary(fine.Student),
		CreatedAt:     fine.CreatedAt,
		UpdatedAt:     fine.UpdatedAt,
	}
}

// NewFineResponseSlice converts fines to DTOs.
func NewFineResponseSlice(fines []models.Fine, today time.Time) []FineResponse {
	out := make([]FineResponse, 0, len(fines))
	for _, fine := range fines {
		out = append(out, NewFineResponse(fine, today))
	}
	return out
}
