package api

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/rewear-app/rewear/internal/model"
	"github.com/rewear-app/rewear/internal/store"
)

// SwapsHandler handles swap lifecycle endpoints.
type SwapsHandler struct {
	DB *sql.DB
}

type createSwapRequest struct {
	ItemID  int64  `json:"item_id"`
	Message string `json:"message"`
}

type createFeedbackRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// List handles GET /api/swaps. Returns the caller's swaps, optionally
// filtered by status.
func (h *SwapsHandler) List(w http.ResponseWriter, r *http.Request) {
	user := Identity(r.Context())

	swaps, err := store.ListSwaps(r.Context(), h.DB, user.ID, r.URL.Query().Get("status"))
	if err != nil {
		slog.Error("listing swaps", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get swaps")
		return
	}
	if swaps == nil {
		swaps = []model.Swap{}
	}

	jsonSuccess(w, http.StatusOK, "Swaps retrieved successfully", map[string]any{"swaps": swaps})
}

// Get handles GET /api/swaps/{id}.
func (h *SwapsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid swap id")
		return
	}

	swap, err := store.GetSwap(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("getting swap", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get swap")
		return
	}
	if swap == nil {
		jsonError(w, http.StatusNotFound, "swap not found")
		return
	}

	jsonSuccess(w, http.StatusOK, "Swap retrieved successfully", map[string]any{"swap": swap})
}

// Create handles POST /api/swaps.
func (h *SwapsHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := Identity(r.Context())

	var req createSwapRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ItemID == 0 {
		jsonValidationError(w, map[string]string{"item_id": "item_id is required"})
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, req.ItemID)
	if err != nil {
		slog.Error("getting item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to create swap")
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}
	if item.UserID == user.ID {
		jsonError(w, http.StatusBadRequest, "you cannot request your own item")
		return
	}

	swap, err := store.CreateSwap(r.Context(), h.DB, user.ID, item.ID, item.UserID, req.Message)
	if err != nil {
		slog.Error("creating swap", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to create swap")
		return
	}

	h.notify(r, swap.OwnerID, "New swap request",
		fmt.Sprintf("%s wants to swap for %q", user.Name, item.Title), swap.ID)

	slog.Info("swap created", "requester", user.Email, "item", item.ID)
	jsonSuccess(w, http.StatusCreated, "Swap request created", map[string]any{"swap": swap})
}

// Transition handles PUT /api/swaps/{id}/{action} for
// accept/reject/complete/cancel.
func (h *SwapsHandler) Transition(w http.ResponseWriter, r *http.Request) {
	user := Identity(r.Context())

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid swap id")
		return
	}

	action := r.PathValue("action")
	newStatus, ok := model.SwapActionStatus(action)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid action")
		return
	}

	swap, err := store.GetSwap(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("getting swap", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to update swap")
		return
	}
	if swap == nil {
		jsonError(w, http.StatusNotFound, "swap not found")
		return
	}
	if !swap.IsParticipant(user.ID) {
		jsonError(w, http.StatusForbidden, "not authorized to update this swap")
		return
	}

	updated, err := store.TransitionSwap(r.Context(), h.DB, id, newStatus)
	if err != nil {
		slog.Error("transitioning swap", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to update swap")
		return
	}
	if updated == nil {
		jsonError(w, http.StatusNotFound, "swap not found")
		return
	}

	h.notify(r, swap.Counterparty(user.ID), "Swap "+newStatus,
		fmt.Sprintf("%s marked the swap for %q as %s", user.Name, swap.ItemTitle, newStatus), swap.ID)

	slog.Info("swap transitioned", "user", user.Email, "swap", id, "status", newStatus)
	jsonSuccess(w, http.StatusOK, "Swap "+newStatus, map[string]any{"swap": updated})
}

// Delete handles DELETE /api/swaps/{id}. Participant only.
func (h *SwapsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := Identity(r.Context())

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid swap id")
		return
	}

	swap, err := store.GetSwap(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("getting swap", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to delete swap")
		return
	}
	if swap == nil {
		jsonError(w, http.StatusNotFound, "swap not found")
		return
	}
	if !swap.IsParticipant(user.ID) {
		jsonError(w, http.StatusForbidden, "not authorized to delete this swap")
		return
	}

	if err := store.DeleteSwap(r.Context(), h.DB, id); err != nil {
		slog.Error("deleting swap", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to delete swap")
		return
	}

	jsonSuccess(w, http.StatusOK, "Swap deleted", nil)
}

// CreateFeedback handles POST /api/swaps/{id}/feedback. Participant
// only; the rating goes to the other participant.
func (h *SwapsHandler) CreateFeedback(w http.ResponseWriter, r *http.Request) {
	user := Identity(r.Context())

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid swap id")
		return
	}

	var req createFeedbackRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := model.ValidateRating(req.Rating); err != nil {
		jsonValidationError(w, map[string]string{"rating": err.Error()})
		return
	}

	swap, err := store.GetSwap(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("getting swap", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to create feedback")
		return
	}
	if swap == nil {
		jsonError(w, http.StatusNotFound, "swap not found")
		return
	}
	if !swap.IsParticipant(user.ID) {
		jsonError(w, http.StatusForbidden, "not authorized to rate this swap")
		return
	}

	feedback, err := store.CreateFeedback(r.Context(), h.DB, swap.ID, user.ID, swap.Counterparty(user.ID), req.Rating, req.Comment)
	if err != nil {
		slog.Error("creating feedback", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to create feedback")
		return
	}

	jsonSuccess(w, http.StatusCreated, "Feedback recorded", map[string]any{"feedback": feedback})
}

// notify records a swap-related notification. Notification failures
// are logged, not surfaced; they never fail the triggering request.
func (h *SwapsHandler) notify(r *http.Request, userID int64, title, message string, swapID int64) {
	_, err := store.CreateNotification(r.Context(), h.DB, &model.Notification{
		UserID:      userID,
		Title:       title,
		Message:     message,
		Type:        "swap",
		RelatedID:   &swapID,
		RelatedType: "swap",
	})
	if err != nil {
		slog.Error("creating notification", "error", err)
	}
}
