package models

import "time"

// FineType separates system generated late fines from manual penalties.
type FineType string

const (
	FineTypeLate  FineType = "late"
	FineTypeOther FineType = "other"
)

// Fine is a penalty owed by a student.
type Fine struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	StudentID     uint          `gorm:"not null;index" json:"studentId"`
	Student       *Student      `gorm:"constraint:OnDelete:CASCADE" json:"student,omitempty"`
	UserID        uint          `gorm:"not null;index" json:"userId"`
	Amount        float64       `gorm:"not null" json:"amount"`
	Reason        string        `gorm:"size:255;not null" json:"reason"`
	FineType      FineType      `gorm:"size:16;not null;default:other;index" json:"fineType"`
	DueDate       time.Time     `gorm:"not null" json:"dueDate"`
	PaidDate      *time.Time    `json:"paidDate"`
	Status        PaymentStatus `gorm:"size:16;not null;default:pending;index" json:"status"`
	PaymentMethod string        `gorm:"size:64" json:"paymentMethod"`
	TransactionID string        `gorm:"size:128" json:"transactionId"`
	Remarks       string        `gorm:"type:text" json:"remarks"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// IsOverdue reports whether the fine is unpaid past its due date relative to today.
func (f Fine) IsOverdue(today time.Time) bool {
	return f.Status != PaymentStatusPaid && f.DueDate.Before(today)
}
