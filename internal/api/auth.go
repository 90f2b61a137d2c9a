package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/rewear-app/rewear/internal/auth"
	"github.com/rewear-app/rewear/internal/config"
	"github.com/rewear-app/rewear/internal/model"
	"github.com/rewear-app/rewear/internal/store"
)

// AuthHandler handles signup, login, and identity endpoints.
type AuthHandler struct {
	DB  *sql.DB
	Cfg *config.Config
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

// Signup handles POST /api/auth/signup.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	details := make(map[string]string)
	if err := model.ValidateName(req.Name); err != nil {
		details["name"] = err.Error()
	}
	req.Email = model.NormalizeEmail(req.Email)
	if err := model.ValidateEmail(req.Email); err != nil {
		details["email"] = err.Error()
	}
	if err := model.ValidatePassword(req.Password); err != nil {
		details["password"] = err.Error()
	}
	if len(details) > 0 {
		jsonValidationError(w, details)
		return
	}

	existing, err := store.GetUserByEmail(r.Context(), h.DB, req.Email)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "registration failed")
		return
	}
	if existing != nil {
		jsonError(w, http.StatusBadRequest, "user with this email already exists")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	user, err := store.CreateUser(r.Context(), h.DB, req.Name, req.Email, string(hash), h.Cfg.InitialPoints)
	if err != nil {
		// Unique index may still fire under a signup race.
		jsonError(w, http.StatusBadRequest, "user with this email already exists")
		return
	}

	token, err := auth.GenerateToken(h.Cfg.JWTSecret, user.ID, h.Cfg.JWTExpiry)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	slog.Info("user registered", "user", user.Email)
	jsonSuccess(w, http.StatusCreated, "User registered successfully", authResponse{User: user, Token: token})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		jsonValidationError(w, map[string]string{"credentials": "email and password required"})
		return
	}

	user, err := store.GetUserByEmail(r.Context(), h.DB, model.NormalizeEmail(req.Email))
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "login failed")
		return
	}
	// Unknown email and wrong password share one message so accounts
	// cannot be enumerated.
	if user == nil {
		jsonError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		slog.Warn("login failed", "email", req.Email, "remote", r.RemoteAddr)
		jsonError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if user.Banned {
		jsonError(w, http.StatusForbidden, "account suspended")
		return
	}

	token, err := auth.GenerateToken(h.Cfg.JWTSecret, user.ID, h.Cfg.JWTExpiry)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	slog.Info("user logged in", "user", user.Email)
	jsonSuccess(w, http.StatusOK, "Login successful", authResponse{User: user, Token: token})
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := Identity(r.Context())
	jsonSuccess(w, http.StatusOK, "User retrieved successfully", map[string]any{"user": user})
}
