package models

import "time"

// User is an account that can authenticate against the API.
type User struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	Name              string    `gorm:"size:255;not null" json:"name"`
	Email             string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash      string    `gorm:"size:255;not null" json:"-"`
	IsDefaultPassword bool      `gorm:"not null;default:false" json:"isDefaultPassword"`
	Role              Role      `gorm:"size:32;not null;default:student;index" json:"role"`
	StudentID         string    `gorm:"size:64;index" json:"studentId,omitempty"`
	Phone             string    `gorm:"size:32;index" json:"phone,omitempty"`
	Address           string    `gorm:"size:512" json:"address,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}
