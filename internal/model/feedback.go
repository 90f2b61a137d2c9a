package model

import (
	"fmt"
	"time"
)

// Feedback is a post-swap rating left by one participant for the other.
type Feedback struct {
	ID         int64     `json:"id"`
	SwapID     int64     `json:"swap_id"`
	FromUserID int64     `json:"from_user_id"`
	ToUserID   int64     `json:"to_user_id"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// ValidateRating checks the rating bounds.
func ValidateRating(rating int) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("rating must be between 1 and 5")
	}
	return nil
}
