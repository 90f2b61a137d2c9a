package model

import "time"

// Swap represents a two-party exchange negotiation over an item.
// The owner is copied from the item at creation time and not
// re-derived afterwards.
type Swap struct {
	ID          int64     `json:"id"`
	RequesterID int64     `json:"requester_id"`
	ItemID      int64     `json:"item_id"`
	OwnerID     int64     `json:"owner_id"`
	Status      string    `json:"status"`
	Message     string    `json:"message,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Joined fields (not always populated).
	ItemTitle     string `json:"item_title,omitempty"`
	RequesterName string `json:"requester_name,omitempty"`
	OwnerName     string `json:"owner_name,omitempty"`
}

// Swap statuses.
const (
	SwapStatusPending   = "pending"
	SwapStatusAccepted  = "accepted"
	SwapStatusRejected  = "rejected"
	SwapStatusCompleted = "completed"
	SwapStatusCancelled = "cancelled"
)

// SwapActionStatus maps a transition action to its target status.
// The second return value is false for unrecognized actions.
func SwapActionStatus(action string) (string, bool) {
	switch action {
	case "accept":
		return SwapStatusAccepted, true
	case "reject":
		return SwapStatusRejected, true
	case "complete":
		return SwapStatusCompleted, true
	case "cancel":
		return SwapStatusCancelled, true
	}
	return "", false
}

// IsParticipant reports whether userID is the swap's owner or requester.
func (s *Swap) IsParticipant(userID int64) bool {
	return s.OwnerID == userID || s.RequesterID == userID
}

// Counterparty returns the other participant's ID.
func (s *Swap) Counterparty(userID int64) int64 {
	if userID == s.OwnerID {
		return s.RequesterID
	}
	return s.OwnerID
}
