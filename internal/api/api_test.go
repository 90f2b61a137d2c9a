package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rewear-app/rewear/internal/config"
	"github.com/rewear-app/rewear/internal/db"
	"github.com/rewear-app/rewear/internal/model"
	"github.com/rewear-app/rewear/internal/store"
)

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		JWTSecret:     "test-secret",
		JWTExpiry:     time.Hour,
		InitialPoints: 100,
		UploadReward:  50,
		UploadsDir:    t.TempDir(),
	}
}

func setupTestServer(t *testing.T) (*httptest.Server, *sql.DB, *config.Config) {
	t.Helper()
	database := db.NewTestDB(t)
	cfg := testConfig(t)
	server := httptest.NewServer(NewRouter(database, cfg))
	t.Cleanup(server.Close)
	return server, database, cfg
}

type apiResp struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Error   map[string]string `json:"error"`
}

// doJSON issues a request with an optional JSON body and bearer token,
// returning the status code, decoded envelope, and raw body.
func doJSON(t *testing.T, method, url, token string, body any) (int, apiResp, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var envelope apiResp
	require.NoError(t, json.Unmarshal(raw, &envelope), "body: %s", raw)
	return resp.StatusCode, envelope, raw
}

func decodeData(t *testing.T, envelope apiResp, target any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(envelope.Data, target))
}

// signup registers a user and returns the created user plus a token.
func signup(t *testing.T, serverURL, name, email string) (model.User, string) {
	t.Helper()

	status, envelope, _ := doJSON(t, "POST", serverURL+"/api/auth/signup", "", map[string]string{
		"name":     name,
		"email":    email,
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, status, "signup: %s", envelope.Message)

	var data struct {
		User  model.User `json:"user"`
		Token string     `json:"token"`
	}
	decodeData(t, envelope, &data)
	require.NotEmpty(t, data.Token)
	return data.User, data.Token
}

// createItem lists an item through the API and returns it.
func createItem(t *testing.T, serverURL, token string, fields map[string]any) model.Item {
	t.Helper()

	status, envelope, _ := doJSON(t, "POST", serverURL+"/api/items", token, fields)
	require.Equal(t, http.StatusCreated, status, "create item: %s", envelope.Message)

	var data struct {
		Item model.Item `json:"item"`
	}
	decodeData(t, envelope, &data)
	return data.Item
}

func TestSignup(t *testing.T) {
	server, _, cfg := setupTestServer(t)

	status, envelope, raw := doJSON(t, "POST", server.URL+"/api/auth/signup", "", map[string]string{
		"name":     "Alice",
		"email":    "alice@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, status)
	assert.True(t, envelope.Success)

	var data struct {
		User  model.User `json:"user"`
		Token string     `json:"token"`
	}
	decodeData(t, envelope, &data)
	assert.Equal(t, "Alice", data.User.Name)
	assert.Equal(t, "alice@example.com", data.User.Email)
	assert.Equal(t, cfg.InitialPoints, data.User.Points)
	assert.NotEmpty(t, data.Token)

	// The hash must never leak into responses.
	assert.NotContains(t, string(raw), "password")
}

func TestSignupValidation(t *testing.T) {
	server, _, _ := setupTestServer(t)

	status, envelope, _ := doJSON(t, "POST", server.URL+"/api/auth/signup", "", map[string]string{
		"name":     "A",
		"email":    "not-an-email",
		"password": "short",
	})
	require.Equal(t, http.StatusBadRequest, status)
	assert.False(t, envelope.Success)
	assert.Contains(t, envelope.Error, "name")
	assert.Contains(t, envelope.Error, "email")
	assert.Contains(t, envelope.Error, "password")
}

func TestSignupDuplicateEmail(t *testing.T) {
	server, _, _ := setupTestServer(t)
	signup(t, server.URL, "Alice", "alice@example.com")

	status, envelope, _ := doJSON(t, "POST", server.URL+"/api/auth/signup", "", map[string]string{
		"name":     "Other Alice",
		"email":    "ALICE@example.com", // normalized to the same address
		"password": "password123",
	})
	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "user with this email already exists", envelope.Message)
}

func TestLogin(t *testing.T) {
	server, _, _ := setupTestServer(t)
	signup(t, server.URL, "Alice", "alice@example.com")

	status, envelope, _ := doJSON(t, "POST", server.URL+"/api/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, status)

	var data struct {
		Token string `json:"token"`
	}
	decodeData(t, envelope, &data)
	assert.NotEmpty(t, data.Token)
}

func TestLoginFailuresShareMessage(t *testing.T) {
	server, _, _ := setupTestServer(t)
	signup(t, server.URL, "Alice", "alice@example.com")

	// Unknown email and wrong password must be indistinguishable.
	status, unknownEmail, _ := doJSON(t, "POST", server.URL+"/api/auth/login", "", map[string]string{
		"email":    "nobody@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusUnauthorized, status)

	status, wrongPassword, _ := doJSON(t, "POST", server.URL+"/api/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "wrongpassword",
	})
	require.Equal(t, http.StatusUnauthorized, status)

	assert.Equal(t, unknownEmail.Message, wrongPassword.Message)
}

func TestMe(t *testing.T) {
	server, _, _ := setupTestServer(t)
	user, token := signup(t, server.URL, "Alice", "alice@example.com")

	status, envelope, _ := doJSON(t, "GET", server.URL+"/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, status)

	var data struct {
		User model.User `json:"user"`
	}
	decodeData(t, envelope, &data)
	assert.Equal(t, user.ID, data.User.ID)

	status, _, _ = doJSON(t, "GET", server.URL+"/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _, _ = doJSON(t, "GET", server.URL+"/api/auth/me", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestCreateItemRewardsPoints(t *testing.T) {
	server, _, cfg := setupTestServer(t)
	user, token := signup(t, server.URL, "Alice", "alice@example.com")

	item := createItem(t, server.URL, token, map[string]any{
		"title":     "Denim Jacket",
		"category":  "jackets",
		"condition": "good",
		"tags":      []string{"denim", "vintage"},
	})
	assert.Equal(t, user.ID, item.UserID)
	assert.Equal(t, model.ItemStatusAvailable, item.Status)
	assert.Equal(t, "Alice", item.OwnerName)

	status, envelope, _ := doJSON(t, "GET", server.URL+"/api/users/profile", token, nil)
	require.Equal(t, http.StatusOK, status)
	var data struct {
		User model.User `json:"user"`
	}
	decodeData(t, envelope, &data)
	assert.Equal(t, cfg.InitialPoints+cfg.UploadReward, data.User.Points)
}

func TestCreateItemValidation(t *testing.T) {
	server, _, _ := setupTestServer(t)
	_, token := signup(t, server.URL, "Alice", "alice@example.com")

	status, envelope, _ := doJSON(t, "POST", server.URL+"/api/items", token, map[string]any{
		"title":     "   ",
		"condition": "mint",
	})
	require.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, envelope.Error, "title")
	assert.Contains(t, envelope.Error, "condition")

	status, _, _ = doJSON(t, "POST", server.URL+"/api/items", "", map[string]any{"title": "X"})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestListItemsSearch(t *testing.T) {
	server, _, _ := setupTestServer(t)
	_, token := signup(t, server.URL, "Alice", "alice@example.com")

	createItem(t, server.URL, token, map[string]any{"title": "Denim Jacket"})
	createItem(t, server.URL, token, map[string]any{"title": "Silk Scarf", "description": "Pairs well with DENIM"})
	createItem(t, server.URL, token, map[string]any{"title": "Wool Sweater"})

	status, envelope, _ := doJSON(t, "GET", server.URL+"/api/items?search=denim", "", nil)
	require.Equal(t, http.StatusOK, status)

	var data struct {
		Items []model.Item `json:"items"`
	}
	decodeData(t, envelope, &data)
	require.Len(t, data.Items, 2)
	for _, item := range data.Items {
		assert.NotEqual(t, "Wool Sweater", item.Title)
	}
}

func TestListItemsPagination(t *testing.T) {
	server, _, _ := setupTestServer(t)
	_, token := signup(t, server.URL, "Alice", "alice@example.com")

	for i := 1; i <= 3; i++ {
		createItem(t, server.URL, token, map[string]any{"title": fmt.Sprintf("Item %d", i)})
	}

	status, envelope, _ := doJSON(t, "GET", server.URL+"/api/items?page=2&limit=1", "", nil)
	require.Equal(t, http.StatusOK, status)

	var data struct {
		Items      []model.Item   `json:"items"`
		Pagination paginationMeta `json:"pagination"`
	}
	decodeData(t, envelope, &data)
	assert.Len(t, data.Items, 1)
	assert.Equal(t, 2, data.Pagination.CurrentPage)
	assert.Equal(t, 3, data.Pagination.TotalPages)
	assert.Equal(t, 3, data.Pagination.TotalItems)
	assert.Equal(t, 1, data.Pagination.ItemsPerPage)
}

func TestUpdateItemOwnerOnly(t *testing.T) {
	server, _, _ := setupTestServer(t)
	_, aliceToken := signup(t, server.URL, "Alice", "alice@example.com")
	_, bobToken := signup(t, server.URL, "Bob", "bob@example.com")

	item := createItem(t, server.URL, aliceToken, map[string]any{"title": "Denim Jacket"})

	status, _, _ := doJSON(t, "PUT", fmt.Sprintf("%s/api/items/%d", server.URL, item.ID), bobToken,
		map[string]any{"title": "Stolen Jacket"})
	assert.Equal(t, http.StatusForbidden, status)

	status, envelope, _ := doJSON(t, "PUT", fmt.Sprintf("%s/api/items/%d", server.URL, item.ID), aliceToken,
		map[string]any{"title": "Blue Denim Jacket", "points_required": 30})
	require.Equal(t, http.StatusOK, status)

	var data struct {
		Item model.Item `json:"item"`
	}
	decodeData(t, envelope, &data)
	assert.Equal(t, "Blue Denim Jacket", data.Item.Title)
	assert.Equal(t, 30, data.Item.PointsRequired)
}

func TestDeleteItemOwnerOnly(t *testing.T) {
	server, _, _ := setupTestServer(t)
	_, aliceToken := signup(t, server.URL, "Alice", "alice@example.com")
	_, bobToken := signup(t, server.URL, "Bob", "bob@example.com")

	item := createItem(t, server.URL, aliceToken, map[string]any{"title": "Denim Jacket"})
	url := fmt.Sprintf("%s/api/items/%d", server.URL, item.ID)

	status, _, _ := doJSON(t, "DELETE", url, bobToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _, _ = doJSON(t, "DELETE", url, aliceToken, nil)
	require.Equal(t, http.StatusOK, status)

	status, _, _ = doJSON(t, "GET", url, "", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestUserItemsVisibility(t *testing.T) {
	server, database, _ := setupTestServer(t)
	alice, aliceToken := signup(t, server.URL, "Alice", "alice@example.com")
	_, bobToken := signup(t, server.URL, "Bob", "bob@example.com")

	available := createItem(t, server.URL, aliceToken, map[string]any{"title": "Denim Jacket"})
	pending := createItem(t, server.URL, aliceToken, map[string]any{"title": "Silk Scarf"})

	_, err := database.Exec(`UPDATE items SET status = ? WHERE id = ?`, model.ItemStatusPending, pending.ID)
	require.NoError(t, err)

	url := fmt.Sprintf("%s/api/items/user/%d", server.URL, alice.ID)

	// The owner sees everything.
	_, envelope, _ := doJSON(t, "GET", url, aliceToken, nil)
	var data struct {
		Items []model.Item `json:"items"`
	}
	decodeData(t, envelope, &data)
	assert.Len(t, data.Items, 2)

	// Everyone else only sees available items.
	_, envelope, _ = doJSON(t, "GET", url, bobToken, nil)
	decodeData(t, envelope, &data)
	require.Len(t, data.Items, 1)
	assert.Equal(t, available.ID, data.Items[0].ID)
}

func TestCreateSwapOwnItemRejected(t *testing.T) {
	server, _, _ := setupTestServer(t)
	_, token := signup(t, server.URL, "Alice", "alice@example.com")

	item := createItem(t, server.URL, token, map[string]any{"title": "Denim Jacket"})

	status, envelope, _ := doJSON(t, "POST", server.URL+"/api/swaps", token, map[string]any{
		"item_id": item.ID,
	})
	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "you cannot request your own item", envelope.Message)
}

func TestSwapLifecycle(t *testing.T) {
	server, _, _ := setupTestServer(t)
	alice, aliceToken := signup(t, server.URL, "Alice", "alice@example.com")
	bob, bobToken := signup(t, server.URL, "Bob", "bob@example.com")

	item := createItem(t, server.URL, aliceToken, map[string]any{"title": "Denim Jacket"})

	// Bob requests Alice's item.
	status, envelope, _ := doJSON(t, "POST", server.URL+"/api/swaps", bobToken, map[string]any{
		"item_id": item.ID,
		"message": "Trade for my sweater?",
	})
	require.Equal(t, http.StatusCreated, status)

	var data struct {
		Swap model.Swap `json:"swap"`
	}
	decodeData(t, envelope, &data)
	swap := data.Swap
	assert.Equal(t, model.SwapStatusPending, swap.Status)
	assert.Equal(t, bob.ID, swap.RequesterID)
	assert.Equal(t, alice.ID, swap.OwnerID)

	// Alice got notified.
	_, envelope, _ = doJSON(t, "GET", server.URL+"/api/users/notifications", aliceToken, nil)
	var notifData struct {
		Notifications []model.Notification `json:"notifications"`
	}
	decodeData(t, envelope, &notifData)
	require.Len(t, notifData.Notifications, 1)
	assert.False(t, notifData.Notifications[0].IsRead)

	// Accepting reserves the item.
	status, envelope, _ = doJSON(t, "PUT", fmt.Sprintf("%s/api/swaps/%d/accept", server.URL, swap.ID), aliceToken, nil)
	require.Equal(t, http.StatusOK, status)
	decodeData(t, envelope, &data)
	assert.Equal(t, model.SwapStatusAccepted, data.Swap.Status)

	_, envelope, _ = doJSON(t, "GET", fmt.Sprintf("%s/api/items/%d", server.URL, item.ID), "", nil)
	var itemData struct {
		Item model.Item `json:"item"`
	}
	decodeData(t, envelope, &itemData)
	assert.Equal(t, model.ItemStatusPending, itemData.Item.Status)

	// Completing marks the item swapped.
	status, envelope, _ = doJSON(t, "PUT", fmt.Sprintf("%s/api/swaps/%d/complete", server.URL, swap.ID), bobToken, nil)
	require.Equal(t, http.StatusOK, status)
	decodeData(t, envelope, &data)
	assert.Equal(t, model.SwapStatusCompleted, data.Swap.Status)

	_, envelope, _ = doJSON(t, "GET", fmt.Sprintf("%s/api/items/%d", server.URL, item.ID), "", nil)
	decodeData(t, envelope, &itemData)
	assert.Equal(t, model.ItemStatusSwapped, itemData.Item.Status)

	// Bob rates the completed swap.
	status, envelope, _ = doJSON(t, "POST", fmt.Sprintf("%s/api/swaps/%d/feedback", server.URL, swap.ID), bobToken,
		map[string]any{"rating": 5, "comment": "Great jacket"})
	require.Equal(t, http.StatusCreated, status)

	var feedbackData struct {
		Feedback model.Feedback `json:"feedback"`
	}
	decodeData(t, envelope, &feedbackData)
	assert.Equal(t, bob.ID, feedbackData.Feedback.FromUserID)
	assert.Equal(t, alice.ID, feedbackData.Feedback.ToUserID)
}

func TestSwapRejectReleasesItem(t *testing.T) {
	server, _, _ := setupTestServer(t)
	_, aliceToken := signup(t, server.URL, "Alice", "alice@example.com")
	_, bobToken := signup(t, server.URL, "Bob", "bob@example.com")

	item := createItem(t, server.URL, aliceToken, map[string]any{"title": "Denim Jacket"})

	_, envelope, _ := doJSON(t, "POST", server.URL+"/api/swaps", bobToken, map[string]any{"item_id": item.ID})
	var data struct {
		Swap model.Swap `json:"swap"`
	}
	decodeData(t, envelope, &data)

	status, _, _ := doJSON(t, "PUT", fmt.Sprintf("%s/api/swaps/%d/reject", server.URL, data.Swap.ID), aliceToken, nil)
	require.Equal(t, http.StatusOK, status)

	_, envelope, _ = doJSON(t, "GET", fmt.Sprintf("%s/api/items/%d", server.URL, item.ID), "", nil)
	var itemData struct {
		Item model.Item `json:"item"`
	}
	decodeData(t, envelope, &itemData)
	assert.Equal(t, model.ItemStatusAvailable, itemData.Item.Status)
}

func TestSwapTransitionParticipantsOnly(t *testing.T) {
	server, _, _ := setupTestServer(t)
	_, aliceToken := signup(t, server.URL, "Alice", "alice@example.com")
	_, bobToken := signup(t, server.URL, "Bob", "bob@example.com")
	_, eveToken := signup(t, server.URL, "Eve", "eve@example.com")

	item := createItem(t, server.URL, aliceToken, map[string]any{"title": "Denim Jacket"})

	_, envelope, _ := doJSON(t, "POST", server.URL+"/api/swaps", bobToken, map[string]any{"item_id": item.ID})
	var data struct {
		Swap model.Swap `json:"swap"`
	}
	decodeData(t, envelope, &data)
	url := fmt.Sprintf("%s/api/swaps/%d", server.URL, data.Swap.ID)

	status, _, _ := doJSON(t, "PUT", url+"/accept", eveToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _, _ = doJSON(t, "GET", url, eveToken, nil)
	assert.Equal(t, http.StatusOK, status) // reads are not restricted

	status, _, _ = doJSON(t, "PUT", url+"/destroy", aliceToken, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _, _ = doJSON(t, "DELETE", url, eveToken, nil)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestNotifications(t *testing.T) {
	server, database, _ := setupTestServer(t)
	alice, aliceToken := signup(t, server.URL, "Alice", "alice@example.com")
	_, bobToken := signup(t, server.URL, "Bob", "bob@example.com")

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := store.CreateNotification(ctx, database, &model.Notification{
			UserID:  alice.ID,
			Title:   "Hello",
			Message: "World",
		})
		require.NoError(t, err)
	}

	_, envelope, _ := doJSON(t, "GET", server.URL+"/api/users/notifications", aliceToken, nil)
	var data struct {
		Notifications []model.Notification `json:"notifications"`
	}
	decodeData(t, envelope, &data)
	require.Len(t, data.Notifications, 3)

	// Bob cannot mark Alice's notification read.
	url := fmt.Sprintf("%s/api/users/notifications/%d/read", server.URL, data.Notifications[0].ID)
	status, _, _ := doJSON(t, "PUT", url, bobToken, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _, _ = doJSON(t, "PUT", url, aliceToken, nil)
	require.Equal(t, http.StatusOK, status)

	status, envelope, _ = doJSON(t, "PUT", server.URL+"/api/users/notifications/read-all", aliceToken, nil)
	require.Equal(t, http.StatusOK, status)
	var countData struct {
		Count int `json:"count"`
	}
	decodeData(t, envelope, &countData)
	assert.Equal(t, 2, countData.Count)
}

func TestUserStats(t *testing.T) {
	server, _, cfg := setupTestServer(t)
	_, token := signup(t, server.URL, "Alice", "alice@example.com")
	createItem(t, server.URL, token, map[string]any{"title": "Denim Jacket"})

	status, envelope, _ := doJSON(t, "GET", server.URL+"/api/users/stats", token, nil)
	require.Equal(t, http.StatusOK, status)

	var data struct {
		Items  int `json:"items"`
		Swaps  int `json:"swaps"`
		Points int `json:"points"`
	}
	decodeData(t, envelope, &data)
	assert.Equal(t, 1, data.Items)
	assert.Equal(t, 0, data.Swaps)
	assert.Equal(t, cfg.InitialPoints+cfg.UploadReward, data.Points)
}

func TestAdminAccess(t *testing.T) {
	server, database, _ := setupTestServer(t)
	admin, adminToken := signup(t, server.URL, "Admin", "admin@example.com")
	_, userToken := signup(t, server.URL, "Alice", "alice@example.com")

	require.NoError(t, store.SetUserAdmin(context.Background(), database, admin.ID, true))

	status, _, _ := doJSON(t, "GET", server.URL+"/api/admin/dashboard", userToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _, _ = doJSON(t, "GET", server.URL+"/api/admin/dashboard", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, envelope, _ := doJSON(t, "GET", server.URL+"/api/admin/dashboard", adminToken, nil)
	require.Equal(t, http.StatusOK, status)

	var data struct {
		Users int `json:"users"`
		Items int `json:"items"`
		Swaps int `json:"swaps"`
	}
	decodeData(t, envelope, &data)
	assert.Equal(t, 2, data.Users)
}

func TestAdminBanUser(t *testing.T) {
	server, database, _ := setupTestServer(t)
	admin, adminToken := signup(t, server.URL, "Admin", "admin@example.com")
	alice, aliceToken := signup(t, server.URL, "Alice", "alice@example.com")
	require.NoError(t, store.SetUserAdmin(context.Background(), database, admin.ID, true))

	status, _, _ := doJSON(t, "PUT", fmt.Sprintf("%s/api/admin/users/%d/ban", server.URL, alice.ID),
		adminToken, map[string]any{"banned": true})
	require.Equal(t, http.StatusOK, status)

	// Banned users lose both token and password access.
	status, envelope, _ := doJSON(t, "GET", server.URL+"/api/users/profile", aliceToken, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "account suspended", envelope.Message)

	status, _, _ = doJSON(t, "POST", server.URL+"/api/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusForbidden, status)

	// Unban restores access.
	status, _, _ = doJSON(t, "PUT", fmt.Sprintf("%s/api/admin/users/%d/ban", server.URL, alice.ID),
		adminToken, map[string]any{"banned": false})
	require.Equal(t, http.StatusOK, status)

	status, _, _ = doJSON(t, "GET", server.URL+"/api/users/profile", aliceToken, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestAdminApproveItem(t *testing.T) {
	server, database, _ := setupTestServer(t)
	admin, adminToken := signup(t, server.URL, "Admin", "admin@example.com")
	_, aliceToken := signup(t, server.URL, "Alice", "alice@example.com")
	require.NoError(t, store.SetUserAdmin(context.Background(), database, admin.ID, true))

	// New listings go live immediately; approval is revocable.
	item := createItem(t, server.URL, aliceToken, map[string]any{"title": "Denim Jacket"})
	assert.True(t, item.Approved)

	url := fmt.Sprintf("%s/api/admin/items/%d/approve", server.URL, item.ID)

	status, envelope, _ := doJSON(t, "PUT", url, adminToken, map[string]any{"approved": false})
	require.Equal(t, http.StatusOK, status)

	var data struct {
		Item model.Item `json:"item"`
	}
	decodeData(t, envelope, &data)
	assert.False(t, data.Item.Approved)

	status, envelope, _ = doJSON(t, "PUT", url, adminToken, map[string]any{"approved": true})
	require.Equal(t, http.StatusOK, status)
	decodeData(t, envelope, &data)
	assert.True(t, data.Item.Approved)
}

func TestAdminAnalyticsAndReports(t *testing.T) {
	server, database, _ := setupTestServer(t)
	admin, adminToken := signup(t, server.URL, "Admin", "admin@example.com")
	_, aliceToken := signup(t, server.URL, "Alice", "alice@example.com")
	_, bobToken := signup(t, server.URL, "Bob", "bob@example.com")
	require.NoError(t, store.SetUserAdmin(context.Background(), database, admin.ID, true))

	item := createItem(t, server.URL, aliceToken, map[string]any{"title": "Denim Jacket", "category": "jackets"})
	createItem(t, server.URL, aliceToken, map[string]any{"title": "Silk Scarf", "category": "accessories"})

	_, envelope, _ := doJSON(t, "POST", server.URL+"/api/swaps", bobToken, map[string]any{"item_id": item.ID})
	var swapData struct {
		Swap model.Swap `json:"swap"`
	}
	decodeData(t, envelope, &swapData)

	doJSON(t, "POST", fmt.Sprintf("%s/api/swaps/%d/feedback", server.URL, swapData.Swap.ID), bobToken,
		map[string]any{"rating": 2, "comment": "Never showed up"})

	status, envelope, _ := doJSON(t, "GET", server.URL+"/api/admin/analytics", adminToken, nil)
	require.Equal(t, http.StatusOK, status)

	var analytics struct {
		ItemsByCategory map[string]int `json:"itemsByCategory"`
		SwapsByStatus   map[string]int `json:"swapsByStatus"`
	}
	decodeData(t, envelope, &analytics)
	assert.Equal(t, 1, analytics.ItemsByCategory["jackets"])
	assert.Equal(t, 1, analytics.ItemsByCategory["accessories"])
	assert.Equal(t, 1, analytics.SwapsByStatus[model.SwapStatusPending])

	status, envelope, _ = doJSON(t, "GET", server.URL+"/api/admin/reports", adminToken, nil)
	require.Equal(t, http.StatusOK, status)

	var reports struct {
		Reports []model.Feedback `json:"reports"`
	}
	decodeData(t, envelope, &reports)
	require.Len(t, reports.Reports, 1)
	assert.Equal(t, 2, reports.Reports[0].Rating)
}
