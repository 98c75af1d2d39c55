package handlers

import (
	"encoding/json"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/Yug-More/Parallel-AI/internal/api/middleware"
	"github.com/Yug-More/Parallel-AI/internal/metrics"
	"github.com/Yug-More/Parallel-AI/internal/models"
)

// defaultOrgName is the workspace new users join when they name none.
const defaultOrgName = "default"

// RegisterRequest represents the registration request.
type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Org      string `json:"org,omitempty"`
}

// UserResponse represents a user in API responses.
type UserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      string `json:"role,omitempty"`
	OrgID     string `json:"org_id"`
	CreatedAt string `json:"created_at"`
}

func userResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:        u.ID.String(),
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		OrgID:     u.OrgID.String(),
		CreatedAt: u.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

// Register handles user registration and signs the new user in.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	name := sanitizeName(req.Name)
	if name == "" {
		h.Error(w, http.StatusBadRequest, "name is required")
		return
	}
	if !isValidEmail(req.Email) {
		h.Error(w, http.StatusBadRequest, "invalid email")
		return
	}
	if len(req.Password) < 8 {
		h.Error(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	existing, err := h.db.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "registration failed")
		return
	}
	if existing != nil {
		h.Error(w, http.StatusBadRequest, "email already registered")
		return
	}

	orgName := sanitizeName(req.Org)
	if orgName == "" {
		orgName = defaultOrgName
	}
	org, err := h.db.GetOrgByName(r.Context(), orgName)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "registration failed")
		return
	}
	if org == nil {
		org, err = h.db.CreateOrg(r.Context(), orgName)
		if err != nil {
			h.Error(w, http.StatusInternalServerError, "registration failed")
			return
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "registration failed")
		return
	}

	user, err := h.db.CreateUser(r.Context(), org.ID, req.Email, name, "", string(hash))
	if err != nil {
		h.logger.Error().Err(err).Msg("user create failed")
		h.Error(w, http.StatusInternalServerError, "registration failed")
		return
	}

	if err := h.auth.IssueCookie(w, user.ID); err != nil {
		h.Error(w, http.StatusInternalServerError, "registration failed")
		return
	}

	metrics.UsersRegistered.Inc()
	h.logger.Info().Str("user_id", user.ID.String()).Str("org", org.Name).Msg("user registered")
	h.JSON(w, http.StatusCreated, userResponse(user))
}

// LoginRequest represents the login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login verifies credentials and sets the session cookie.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	user, err := h.db.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "login failed")
		return
	}
	if user == nil {
		h.Error(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	hash, err := h.db.GetCredential(r.Context(), user.ID)
	if err != nil || hash == "" {
		h.Error(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) != nil {
		h.Error(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if err := h.auth.IssueCookie(w, user.ID); err != nil {
		h.Error(w, http.StatusInternalServerError, "login failed")
		return
	}
	h.JSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Logout clears the session cookie.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.auth.ClearCookie(w)
	h.JSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Me returns the authenticated user.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}
	h.JSON(w, http.StatusOK, userResponse(user))
}
