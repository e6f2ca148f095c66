package dto

import (
	"time"

	"github.com/noah-isme/school-fees-api/internal/models"
)

// NotificationCreateRequest describes a notification addressed to a user or a role audience.
type NotificationCreateRequest struct {
	UserID     *uint  `json:"userId"`
	TargetRole string `json:"targetRole" validate:"omitempty,oneof=all admin student teacher accountant"`
	Title      string `json:"title" validate:"required,min=1,max=255"`
	Message    string `json:"message" validate:"required,min=1,max=2000"`
	Type       string `json:"type" validate:"omitempty,oneof=general academic event fee"`
}

// NotificationResponse represents notification data returned to clients.
type NotificationResponse struct {
	ID         uint      `json:"id"`
	UserID     *uint     `json:"userId,omitempty"`
	TargetRole string    `json:"targetRole,omitempty"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	Type       string    `json:"type"`
	Read       bool      `json:"read"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// NewNotificationResponse converts a notification model to DTO.
func NewNotificationResponse(model models.Notification) NotificationResponse {
	return NotificationResponse{
		ID:         model.ID,
		UserID:     model.UserID,
		TargetRole: model.TargetRole,
		Title:      model.Title,
		Message:    model.Message,
		Type:       string(model.Type),
		Read:       model.Read,
		CreatedAt:  model.CreatedAt,
		UpdatedAt:  model.UpdatedAt,
	}
}

// NewNotificationResponseSlice converts a slice to DTOs.
func NewNotificationResponseSlice(items []models.Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(items))
	for _, item := range items {
		out = append(out, NewNotificationResponse(item))
	}
	return out
}
