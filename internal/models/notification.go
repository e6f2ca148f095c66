package models

import "time"

// NotificationType classifies notifications for clients.
type NotificationType string

const (
	NotificationTypeGeneral  NotificationType = "general"
	NotificationTypeAcademic NotificationType = "academic"
	NotificationTypeEvent    NotificationType = "event"
	NotificationTypeFee      NotificationType = "fee"
)

// NotificationTargetAll addresses every authenticated user.
const NotificationTargetAll = "all"

// Notification is addressed either to one user or to a role audience.
type Notification struct {
	ID         uint             `gorm:"primaryKey" json:"id"`
	UserID     *uint            `gorm:"index" json:"userId"`
	TargetRole string           `gorm:"size:32;index" json:"targetRole"`
	Title      string           `gorm:"size:255;not null" json:"title"`
	Message    string           `gorm:"type:text;not null" json:"message"`
	Type       NotificationType `gorm:"size:32;not null;default:general" json:"type"`
	Read       bool             `gorm:"not null;default:false" json:"read"`
	CreatedAt  time.Time        `json:"createdAt"`
	UpdatedAt  time.Time        `json:"updatedAt"`
}
