package api

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"math"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/rewear-app/rewear/internal/config"
	"github.com/rewear-app/rewear/internal/imaging"
	"github.com/rewear-app/rewear/internal/model"
	"github.com/rewear-app/rewear/internal/store"
)

// maxUploadImages bounds how many photos one item may carry.
const maxUploadImages = 5

// ItemsHandler handles item listing and CRUD endpoints.
type ItemsHandler struct {
	DB  *sql.DB
	Cfg *config.Config
}

// flexList accepts either a JSON array of strings or a single string.
type flexList []string

func (l *flexList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*l = list
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	*l = []string{single}
	return nil
}

// normalizeTags splits comma-separated entries, trims whitespace, and
// drops empties.
func normalizeTags(raw []string) []string {
	tags := []string{}
	for _, entry := range raw {
		for _, tag := range strings.Split(entry, ",") {
			if t := strings.TrimSpace(tag); t != "" {
				tags = append(tags, t)
			}
		}
	}
	return tags
}

type createItemRequest struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Category       string   `json:"category"`
	Size           string   `json:"size"`
	Condition      string   `json:"condition"`
	Tags           flexList `json:"tags"`
	ImageURLs      flexList `json:"imageUrls"`
	ImageURLsSnake flexList `json:"image_urls"`
	PointsRequired int      `json:"points_required"`
}

type updateItemRequest struct {
	Title          *string   `json:"title"`
	Description    *string   `json:"description"`
	Category       *string   `json:"category"`
	Size           *string   `json:"size"`
	Condition      *string   `json:"condition"`
	Tags           *flexList `json:"tags"`
	ImageURLs      *flexList `json:"imageUrls"`
	PointsRequired *int      `json:"points_required"`
}

type paginationMeta struct {
	CurrentPage  int `json:"currentPage"`
	TotalPages   int `json:"totalPages"`
	TotalItems   int `json:"totalItems"`
	ItemsPerPage int `json:"itemsPerPage"`
}

// List handles GET /api/items. Public; defaults to available items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	status := q.Get("status")
	if status == "" {
		status = model.ItemStatusAvailable
	}
	if !model.ValidItemStatus(status) {
		jsonError(w, http.StatusBadRequest, "invalid status")
		return
	}

	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	items, total, err := store.ListItems(r.Context(), h.DB, store.ItemFilter{
		Category:  q.Get("category"),
		Size:      q.Get("size"),
		Condition: q.Get("condition"),
		Status:    status,
		Search:    q.Get("search"),
		SortBy:    q.Get("sortBy"),
		SortOrder: q.Get("sortOrder"),
		Page:      page,
		Limit:     limit,
	})
	if err != nil {
		slog.Error("listing items", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get items")
		return
	}
	if items == nil {
		items = []model.Item{}
	}

	jsonSuccess(w, http.StatusOK, "Items retrieved successfully", map[string]any{
		"items": items,
		"pagination": paginationMeta{
			CurrentPage:  page,
			TotalPages:   int(math.Ceil(float64(total) / float64(limit))),
			TotalItems:   total,
			ItemsPerPage: limit,
		},
	})
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("getting item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	jsonSuccess(w, http.StatusOK, "Item retrieved successfully", map[string]any{"item": item})
}

// Create handles POST /api/items. Accepts JSON or multipart form with
// up to five photo files; uploads are processed and stored under the
// uploads root.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := Identity(r.Context())

	var req createItemRequest
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if !h.parseMultipartItem(w, r, &req) {
			return
		}
	} else {
		if err := decodeJSON(r, &req); err != nil {
			jsonError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	details := make(map[string]string)
	if strings.TrimSpace(req.Title) == "" {
		details["title"] = "title is required"
	}
	if !model.ValidCondition(req.Condition) {
		details["condition"] = "invalid condition"
	}
	if req.PointsRequired < 0 {
		details["points_required"] = "points_required must not be negative"
	}
	if len(details) > 0 {
		jsonValidationError(w, details)
		return
	}

	imageURLs := req.ImageURLs
	if len(imageURLs) == 0 {
		imageURLs = req.ImageURLsSnake
	}

	item, err := store.CreateItem(r.Context(), h.DB, &model.Item{
		UserID:         user.ID,
		Title:          strings.TrimSpace(req.Title),
		Description:    req.Description,
		Size:           req.Size,
		Condition:      req.Condition,
		ImageURLs:      imageURLs,
		Category:       req.Category,
		Tags:           normalizeTags(req.Tags),
		PointsRequired: req.PointsRequired,
	}, h.Cfg.UploadReward)
	if err != nil {
		slog.Error("creating item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to create item")
		return
	}

	slog.Info("item created", "user", user.Email, "item", item.ID)
	jsonSuccess(w, http.StatusCreated, "Item created successfully", map[string]any{"item": item})
}

// parseMultipartItem fills req from a multipart form, storing uploaded
// photos. Reports false after writing an error response.
func (h *ItemsHandler) parseMultipartItem(w http.ResponseWriter, r *http.Request, req *createItemRequest) bool {
	// Limit to 20 MB across all parts.
	r.Body = http.MaxBytesReader(w, r.Body, 20<<20)
	if err := r.ParseMultipartForm(20 << 20); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return false
	}

	req.Title = r.FormValue("title")
	req.Description = r.FormValue("description")
	req.Category = r.FormValue("category")
	req.Size = r.FormValue("size")
	req.Condition = r.FormValue("condition")
	req.Tags = flexList{r.FormValue("tags")}
	if v := r.FormValue("points_required"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "invalid points_required")
			return false
		}
		req.PointsRequired = n
	}

	files := r.MultipartForm.File["images"]
	if len(files) > maxUploadImages {
		jsonError(w, http.StatusBadRequest, "too many images (max 5)")
		return false
	}
	for _, header := range files {
		file, err := header.Open()
		if err != nil {
			jsonError(w, http.StatusBadRequest, "reading uploaded image")
			return false
		}
		name, err := imaging.Save(h.Cfg.UploadsDir, file)
		file.Close()
		if err != nil {
			jsonError(w, http.StatusBadRequest, err.Error())
			return false
		}
		req.ImageURLs = append(req.ImageURLs, "/uploads/"+name)
	}
	return true
}

// Update handles PUT /api/items/{id}. Owner only; applies an explicit
// allow-list of mutable fields.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := Identity(r.Context())

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req updateItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("getting item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to update item")
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}
	if item.UserID != user.ID {
		jsonError(w, http.StatusForbidden, "not authorized to update this item")
		return
	}

	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			jsonValidationError(w, map[string]string{"title": "title is required"})
			return
		}
		item.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.Category != nil {
		item.Category = *req.Category
	}
	if req.Size != nil {
		item.Size = *req.Size
	}
	if req.Condition != nil {
		if !model.ValidCondition(*req.Condition) {
			jsonValidationError(w, map[string]string{"condition": "invalid condition"})
			return
		}
		item.Condition = *req.Condition
	}
	if req.Tags != nil {
		item.Tags = normalizeTags(*req.Tags)
	}
	if req.ImageURLs != nil {
		item.ImageURLs = *req.ImageURLs
	}
	if req.PointsRequired != nil {
		if *req.PointsRequired < 0 {
			jsonValidationError(w, map[string]string{"points_required": "points_required must not be negative"})
			return
		}
		item.PointsRequired = *req.PointsRequired
	}

	if err := store.UpdateItem(r.Context(), h.DB, item); err != nil {
		slog.Error("updating item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to update item")
		return
	}

	updated, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("getting item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to update item")
		return
	}
	jsonSuccess(w, http.StatusOK, "Item updated successfully", map[string]any{"item": updated})
}

// Delete handles DELETE /api/items/{id}. Owner only.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := Identity(r.Context())

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("getting item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to delete item")
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}
	if item.UserID != user.ID {
		jsonError(w, http.StatusForbidden, "not authorized to delete this item")
		return
	}

	if err := store.DeleteItem(r.Context(), h.DB, id); err != nil {
		slog.Error("deleting item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to delete item")
		return
	}

	slog.Info("item deleted", "user", user.Email, "item", id)
	jsonSuccess(w, http.StatusOK, "Item deleted successfully", nil)
}

// ListByUser handles GET /api/items/user/{userId} and
// GET /api/users/{id}/items. Public, but owners see all their items
// while everyone else sees only available ones.
func (h *ItemsHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	viewer := Identity(r.Context())
	availableOnly := viewer == nil || viewer.ID != userID

	items, err := store.ListItemsByUser(r.Context(), h.DB, userID, availableOnly)
	if err != nil {
		slog.Error("listing user items", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get user items")
		return
	}
	if items == nil {
		items = []model.Item{}
	}

	jsonSuccess(w, http.StatusOK, "Items retrieved successfully", map[string]any{"items": items})
}
