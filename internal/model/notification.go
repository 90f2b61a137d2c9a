package model

import "time"

// Notification is a server-generated message for a user, optionally
// referencing another record (e.g. the swap that triggered it).
type Notification struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	Type        string    `json:"type"`
	IsRead      bool      `json:"is_read"`
	RelatedID   *int64    `json:"related_id,omitempty"`
	RelatedType string    `json:"related_type,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// NotificationTypeInfo is the default notification type.
const NotificationTypeInfo = "info"
