package api

import (
	"database/sql"
	"net/http"

	"github.com/rewear-app/rewear/internal/config"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, cfg *config.Config) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, Cfg: cfg}
	usersHandler := &UsersHandler{DB: db}
	itemsHandler := &ItemsHandler{DB: db, Cfg: cfg}
	swapsHandler := &SwapsHandler{DB: db}
	adminHandler := &AdminHandler{DB: db}

	authMW := AuthMiddleware(cfg.JWTSecret, db)
	optionalMW := OptionalAuthMiddleware(cfg.JWTSecret, db)

	// Public: registration and login.
	mux.HandleFunc("POST /api/auth/signup", authHandler.Signup)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.Handle("GET /api/auth/me", authMW(http.HandlerFunc(authHandler.Me)))

	// Items: public reads, authenticated writes. Listing takes an
	// optional identity so owners can browse their own unavailable
	// items through the user listing.
	mux.HandleFunc("GET /api/items", itemsHandler.List)
	mux.HandleFunc("GET /api/items/{id}", itemsHandler.Get)
	mux.Handle("GET /api/items/user/{id}", optionalMW(http.HandlerFunc(itemsHandler.ListByUser)))
	mux.Handle("POST /api/items", authMW(http.HandlerFunc(itemsHandler.Create)))
	mux.Handle("PUT /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Update)))
	mux.Handle("DELETE /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Delete)))

	// Swaps (participants only).
	mux.Handle("GET /api/swaps", authMW(http.HandlerFunc(swapsHandler.List)))
	mux.Handle("POST /api/swaps", authMW(http.HandlerFunc(swapsHandler.Create)))
	mux.Handle("GET /api/swaps/{id}", authMW(http.HandlerFunc(swapsHandler.Get)))
	mux.Handle("PUT /api/swaps/{id}/{action}", authMW(http.HandlerFunc(swapsHandler.Transition)))
	mux.Handle("DELETE /api/swaps/{id}", authMW(http.HandlerFunc(swapsHandler.Delete)))
	mux.Handle("POST /api/swaps/{id}/feedback", authMW(http.HandlerFunc(swapsHandler.CreateFeedback)))

	// Users. Literal segments take precedence over {id}.
	mux.Handle("GET /api/users/profile", authMW(http.HandlerFunc(usersHandler.Profile)))
	mux.HandleFunc("GET /api/users/{id}", usersHandler.Get)
	mux.Handle("GET /api/users/{id}/items", optionalMW(http.HandlerFunc(itemsHandler.ListByUser)))
	mux.Handle("GET /api/users/notifications", authMW(http.HandlerFunc(usersHandler.Notifications)))
	mux.Handle("PUT /api/users/notifications/{id}/read", authMW(http.HandlerFunc(usersHandler.MarkNotificationRead)))
	mux.Handle("PUT /api/users/notifications/read-all", authMW(http.HandlerFunc(usersHandler.MarkAllNotificationsRead)))
	mux.Handle("GET /api/users/stats", authMW(http.HandlerFunc(usersHandler.Stats)))

	// Admin.
	mux.Handle("GET /api/admin/dashboard", authMW(RequireAdmin(http.HandlerFunc(adminHandler.Dashboard))))
	mux.Handle("GET /api/admin/users", authMW(RequireAdmin(http.HandlerFunc(adminHandler.Users))))
	mux.Handle("GET /api/admin/items", authMW(RequireAdmin(http.HandlerFunc(adminHandler.Items))))
	mux.Handle("PUT /api/admin/users/{id}/ban", authMW(RequireAdmin(http.HandlerFunc(adminHandler.BanUser))))
	mux.Handle("PUT /api/admin/items/{id}/approve", authMW(RequireAdmin(http.HandlerFunc(adminHandler.ApproveItem))))
	mux.Handle("GET /api/admin/analytics", authMW(RequireAdmin(http.HandlerFunc(adminHandler.Analytics))))
	mux.Handle("GET /api/admin/reports", authMW(RequireAdmin(http.HandlerFunc(adminHandler.Reports))))

	return mux
}
