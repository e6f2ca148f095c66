package models

import "time"

// FeeType describes the billing cadence of a fee.
type FeeType string

const (
	FeeTypeMonthly     FeeType = "monthly"
	FeeTypeInstallment FeeType = "installment"
	FeeTypeAnnual      FeeType = "annual"
)

// FeeCategory groups fees for reporting.
type FeeCategory string

const (
	FeeCategoryRegular   FeeCategory = "regular"
	FeeCategoryTransport FeeCategory = "transport"
	FeeCategoryFine      FeeCategory = "fine"
)

// PaymentStatus is shared by fees and fines.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusOverdue PaymentStatus = "overdue"
)

// Open reports whether the obligation still awaits payment.
func (s PaymentStatus) Open() bool {
	return s == PaymentStatusPending || s == PaymentStatusOverdue
}

// Fee is a payable obligation owed by a student.
type Fee struct {
	ID                uint          `gorm:"primaryKey" json:"id"`
	StudentID         uint          `gorm:"not null;index" json:"studentId"`
	Student           *Student      `gorm:"constraint:OnDelete:CASCADE" json:"student,omitempty"`
	UserID            uint          `gorm:"not null;index" json:"userId"`
	User              *User         `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Amount            float64       `gorm:"not null" json:"amount"`
	FeesType          FeeType       `gorm:"size:32;not null;default:monthly" json:"feesType"`
	FeeCategory       FeeCategory   `gorm:"size:32;not null;default:regular" json:"feeCategory"`
	Month             string        `gorm:"size:32" json:"month"`
	InstallmentNumber *int          `json:"installmentNumber"`
	DueDate           time.Time     `gorm:"not null;index" json:"dueDate"`
	PaidDate          *time.Time    `json:"paidDate"`
	Status            PaymentStatus `gorm:"size:16;not null;default:pending;index" json:"status"`
	PaymentMethod     string        `gorm:"size:64" json:"paymentMethod"`
	TransactionID     string        `gorm:"size:128" json:"transactionId"`
	Remarks           string        `gorm:"type:text" json:"remarks"`
	CreatedAt         time.Time     `json:"createdAt"`
	UpdatedAt         time.Time     `json:"updatedAt"`
}

// IsOverdue reports whether the fee is unpaid past its due date relative to today.
func (f Fee) IsOverdue(today time.Time) bool {
	return f.Status != PaymentStatusPaid && f.DueDate.Before(today)
}
