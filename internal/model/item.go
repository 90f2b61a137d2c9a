package model

import "time"

// Item represents a listed clothing piece.
type Item struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"user_id"`
	Title          string    `json:"title"`
	Description    string    `json:"description,omitempty"`
	Size           string    `json:"size,omitempty"`
	Condition      string    `json:"condition,omitempty"`
	ImageURLs      []string  `json:"image_urls"`
	Category       string    `json:"category,omitempty"`
	Tags           []string  `json:"tags"`
	Status         string    `json:"status"`
	PointsRequired int       `json:"points_required"`
	Approved       bool      `json:"approved"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Joined owner fields (not always populated).
	OwnerName      string `json:"owner_name,omitempty"`
	OwnerAvatarURL string `json:"owner_avatar_url,omitempty"`
}

// Item statuses.
const (
	ItemStatusAvailable = "available"
	ItemStatusPending   = "pending"
	ItemStatusSwapped   = "swapped"
	ItemStatusRemoved   = "removed"
)

// Item conditions.
const (
	ConditionNew     = "new"
	ConditionLikeNew = "like-new"
	ConditionGood    = "good"
	ConditionFair    = "fair"
	ConditionPoor    = "poor"
)

// ValidItemStatus reports whether s is a known item status.
func ValidItemStatus(s string) bool {
	switch s {
	case ItemStatusAvailable, ItemStatusPending, ItemStatusSwapped, ItemStatusRemoved:
		return true
	}
	return false
}

// ValidCondition reports whether c is a known condition. The empty
// string is allowed (condition is optional).
func ValidCondition(c string) bool {
	switch c {
	case "", ConditionNew, ConditionLikeNew, ConditionGood, ConditionFair, ConditionPoor:
		return true
	}
	return false
}
