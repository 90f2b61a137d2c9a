package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/rewear-app/rewear/internal/model"
	"github.com/rewear-app/rewear/internal/store"
)

// UsersHandler handles profile, notification, and stats endpoints.
type UsersHandler struct {
	DB *sql.DB
}

// Profile handles GET /api/users/profile.
func (h *UsersHandler) Profile(w http.ResponseWriter, r *http.Request) {
	user := Identity(r.Context())
	jsonSuccess(w, http.StatusOK, "Profile retrieved successfully", map[string]any{"user": user})
}

// Get handles GET /api/users/{id}. Public.
func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	user, err := store.GetUser(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("getting user", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get user")
		return
	}
	if user == nil {
		jsonError(w, http.StatusNotFound, "user not found")
		return
	}

	jsonSuccess(w, http.StatusOK, "User retrieved successfully", map[string]any{"user": user})
}

// Notifications handles GET /api/users/notifications.
func (h *UsersHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	user := Identity(r.Context())

	notifications, err := store.ListNotifications(r.Context(), h.DB, user.ID)
	if err != nil {
		slog.Error("listing notifications", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get notifications")
		return
	}
	if notifications == nil {
		notifications = []model.Notification{}
	}

	jsonSuccess(w, http.StatusOK, "Notifications retrieved successfully", map[string]any{"notifications": notifications})
}

// MarkNotificationRead handles PUT /api/users/notifications/{id}/read.
func (h *UsersHandler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	user := Identity(r.Context())

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid notification id")
		return
	}

	notification, err := store.MarkNotificationRead(r.Context(), h.DB, id, user.ID)
	if err != nil {
		slog.Error("marking notification read", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to mark notification as read")
		return
	}
	if notification == nil {
		jsonError(w, http.StatusNotFound, "notification not found")
		return
	}

	jsonSuccess(w, http.StatusOK, "Notification marked as read", map[string]any{"notification": notification})
}

// MarkAllNotificationsRead handles PUT /api/users/notifications/read-all.
func (h *UsersHandler) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	user := Identity(r.Context())

	count, err := store.MarkAllNotificationsRead(r.Context(), h.DB, user.ID)
	if err != nil {
		slog.Error("marking all notifications read", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to mark all notifications as read")
		return
	}

	jsonSuccess(w, http.StatusOK, "All notifications marked as read", map[string]any{"count": count})
}

// Stats handles GET /api/users/stats.
func (h *UsersHandler) Stats(w http.ResponseWriter, r *http.Request) {
	user := Identity(r.Context())

	itemCount, err := store.CountItemsForUser(r.Context(), h.DB, user.ID)
	if err != nil {
		slog.Error("counting user items", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get user stats")
		return
	}
	swapCount, err := store.CountSwapsForUser(r.Context(), h.DB, user.ID)
	if err != nil {
		slog.Error("counting user swaps", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get user stats")
		return
	}

	jsonSuccess(w, http.StatusOK, "Stats retrieved successfully", map[string]any{
		"items":  itemCount,
		"swaps":  swapCount,
		"points": user.Points,
	})
}
