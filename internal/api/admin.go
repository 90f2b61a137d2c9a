package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/rewear-app/rewear/internal/model"
	"github.com/rewear-app/rewear/internal/store"
)

// AdminHandler handles moderation and dashboard endpoints. Every route
// is gated behind RequireAdmin.
type AdminHandler struct {
	DB *sql.DB
}

type banRequest struct {
	Banned bool `json:"banned"`
}

type approveRequest struct {
	Approved bool `json:"approved"`
}

// Dashboard handles GET /api/admin/dashboard.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	users, err := store.CountUsers(r.Context(), h.DB)
	if err != nil {
		slog.Error("counting users", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get dashboard stats")
		return
	}
	items, err := store.CountItems(r.Context(), h.DB)
	if err != nil {
		slog.Error("counting items", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get dashboard stats")
		return
	}
	swaps, err := store.CountSwaps(r.Context(), h.DB)
	if err != nil {
		slog.Error("counting swaps", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get dashboard stats")
		return
	}

	jsonSuccess(w, http.StatusOK, "Dashboard stats retrieved successfully", map[string]any{
		"users": users,
		"items": items,
		"swaps": swaps,
	})
}

// Users handles GET /api/admin/users.
func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	users, err := store.ListUsers(r.Context(), h.DB)
	if err != nil {
		slog.Error("listing users", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get users")
		return
	}
	if users == nil {
		users = []model.User{}
	}
	jsonSuccess(w, http.StatusOK, "Users retrieved successfully", map[string]any{"users": users})
}

// Items handles GET /api/admin/items. Unfiltered and uncapped, unlike
// the public listing.
func (h *AdminHandler) Items(w http.ResponseWriter, r *http.Request) {
	items, err := store.ListAllItems(r.Context(), h.DB)
	if err != nil {
		slog.Error("listing items", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get items")
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonSuccess(w, http.StatusOK, "Items retrieved successfully", map[string]any{"items": items})
}

// BanUser handles PUT /api/admin/users/{id}/ban.
func (h *AdminHandler) BanUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req banRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := store.SetUserBanned(r.Context(), h.DB, id, req.Banned)
	if err != nil {
		slog.Error("setting user ban", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to ban user")
		return
	}
	if user == nil {
		jsonError(w, http.StatusNotFound, "user not found")
		return
	}

	admin := Identity(r.Context())
	slog.Info("user ban updated", "admin", admin.Email, "target", user.Email, "banned", req.Banned)
	jsonSuccess(w, http.StatusOK, "User updated successfully", map[string]any{"user": user})
}

// ApproveItem handles PUT /api/admin/items/{id}/approve.
func (h *AdminHandler) ApproveItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req approveRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := store.SetItemApproved(r.Context(), h.DB, id, req.Approved)
	if err != nil {
		slog.Error("setting item approval", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to approve item")
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	admin := Identity(r.Context())
	slog.Info("item approval updated", "admin", admin.Email, "item", id, "approved", req.Approved)
	jsonSuccess(w, http.StatusOK, "Item updated successfully", map[string]any{"item": item})
}

// Analytics handles GET /api/admin/analytics.
func (h *AdminHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	itemsByCategory, err := store.CountItemsByCategory(r.Context(), h.DB)
	if err != nil {
		slog.Error("counting items by category", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get analytics")
		return
	}
	swapsByStatus, err := store.CountSwapsByStatus(r.Context(), h.DB)
	if err != nil {
		slog.Error("counting swaps by status", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get analytics")
		return
	}

	jsonSuccess(w, http.StatusOK, "Analytics retrieved successfully", map[string]any{
		"itemsByCategory": itemsByCategory,
		"swapsByStatus":   swapsByStatus,
	})
}

// Reports handles GET /api/admin/reports. Sourced from feedback
// records, newest first.
func (h *AdminHandler) Reports(w http.ResponseWriter, r *http.Request) {
	feedback, err := store.ListFeedback(r.Context(), h.DB)
	if err != nil {
		slog.Error("listing feedback", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get reports")
		return
	}
	if feedback == nil {
		feedback = []model.Feedback{}
	}
	jsonSuccess(w, http.StatusOK, "Reports retrieved successfully", map[string]any{"reports": feedback})
}
