package dto

import (
	"time"

	"github.com/noah-isme/school-fees-api/internal/models"
)

// FeeCreateRequest registers a new fee against a student resolved by studentId or userId.
type FeeCreateRequest struct {
	StudentID         *uint   `json:"studentId"`
	UserID            *uint   `json:"userId"`
	Amount            float64 `json:"amount" validate:"required,gt=0"`
	FeesType          string  `json:"feesType" validate:"omitempty,oneof=monthly installment annual"`
	FeeCategory       string  `json:"feeCategory" validate:"omitempty,oneof=regular transport fine"`
	Month             string  `json:"month" validate:"omitempty,max=32"`
	InstallmentNumber *int    `json:"installmentNumber" validate:"omitempty,gte=1"`
	DueDate           string  `json:"dueDate" validate:"required"`
	Remarks           string  `json:"remarks" validate:"omitempty,max=2000"`
}

// FeeUpdateRequest patches any subset of fee fields.
type FeeUpdateRequest struct {
	Amount            *float64 `json:"amount" validate:"omitempty,gt=0"`
	FeesType          *string  `json:"feesType" validate:"omitempty,oneof=monthly installment annual"`
	FeeCategory       *string  `json:"feeCategory" validate:"omitempty,oneof=regular transport fine"`
	Month             *string  `json:"month" validate:"omitempty,max=32"`
	InstallmentNumber *int     `json:"installmentNumber" validate:"omitempty,gte=1"`
	DueDate           *string  `json:"dueDate"`
	Status            *string  `json:"status" validate:"omitempty,oneof=pending paid overdue"`
	PaymentMethod     *string  `json:"paymentMethod" validate:"omitempty,max=64"`
	TransactionID     *string  `json:"transactionId" validate:"omitempty,max=128"`
	Remarks           *string  `json:"remarks" validate:"omitempty,max=2000"`
}

// PaymentRequest records how a fee or fine was settled.
type PaymentRequest struct {
	PaymentMethod string `json:"paymentMethod" validate:"omitempty,max=64"`
	TransactionID string `json:"transactionId" validate:"omitempty,max=128"`
}

// FeeResponse serializes a fee. IsOverdue is derived at read time and never stored.
type FeeResponse struct {
	ID                uint            `json:"id"`
	StudentID         uint            `json:"studentId"`
	UserID            uint            `json:"userId"`
	Amount            float64         `json:"amount"`
	FeesType          string          `json:"feesType"`
	FeeCategory       string          `json:"feeCategory"`
	Month             string          `json:"month,omitempty"`
	InstallmentNumber *int            `json:"installmentNumber,omitempty"`
	DueDate           time.Time       `json:"dueDate"`
	PaidDate          *time.Time      `json:"paidDate"`
	Status            string          `json:"status"`
	IsOverdue         bool            `json:"isOverdue"`
	PaymentMethod     string          `json:"paymentMethod,omitempty"`
	TransactionID     string          `json:"transactionId,omitempty"`
	Remarks           string          `json:"remarks,omitempty"`
	Student           *StudentSummary `json:"student,omitempty"`
	User              *UserSummary    `json:"user,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// NewFeeResponse converts a fee model, evaluating overdue against today.
func NewFeeResponse(fee models.Fee, today time.Time) FeeResponse {
	return FeeResponse{
		ID:                fee.ID,
		StudentID:         fee.StudentID,
		UserID:            fee.UserID,
		Amount:            fee.Amount,
		FeesType:          string(fee.FeesType),
		FeeCategory:       string(fee.FeeCategory),
		Month:             fee.Month,
		InstallmentNumber: fee.InstallmentNumber,
		DueDate:           fee.DueDate,
		PaidDate:          fee.PaidDate,
		Status:            string(fee.Status),
		IsOverdue:         fee.IsOverdue(today),
		PaymentMethod:     fee.PaymentMethod,
		TransactionID:     fee.TransactionID,
		Remarks:           fee.Remarks,
		Student:           NewStudentSummary(fee.Student),
		User:              NewUserSummary(fee.User),
		CreatedAt:         fee.CreatedAt,
		UpdatedAt:         fee.UpdatedAt,
	}
}

// NewFeeResponseSlice converts fees to DTOs.
func NewFeeResponseSlice(fees []models.Fee, today time.Time) []FeeResponse {
	out := make([]FeeResponse, 0, len(fees))
	for _, fee := range fees {
		out = append(out, NewFeeResponse(fee, today))
	}
	return out
}

// LateFineSweepResponse reports the outcome of one late fine sweep.
type LateFineSweepResponse struct {
	Scanned int       `json:"scanned"`
	Created int       `json:"created"`
	RanAt   time.Time `json:"ranAt"`
}
