package handlers

import (
	"net/http"

	"github.com/isdelr/expense-tracker-be/internal/auth"
	"github.com/isdelr/expense-tracker-be/internal/services"
	"github.com/rs/zerolog/hlog"
)

// UserHandler handles HTTP requests for registration and sessions.
type UserHandler struct {
	service       services.AuthServiceProvider
	secureCookies bool
}

// NewUserHandler creates a new UserHandler. secureCookies sets the Secure
// flag on the session cookie and should be on in production.
func NewUserHandler(service services.AuthServiceProvider, secureCookies bool) *UserHandler {
	return &UserHandler{service: service, secureCookies: secureCookies}
}

// LoginPayload defines the structure for login requests.
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup handles new user registration.
func (h *UserHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var payload services.SignupInput
	if !decodeJSON(w, r, &payload) {
		return
	}

	user, err := h.service.Signup(r.Context(), payload)
	if err != nil {
		writeServiceError(w, r, err, http.StatusBadRequest, "Error creating user")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "User created successfully",
		"user":    user,
	})
}

// Login handles user authentication and sets the session cookie.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if !decodeJSON(w, r, &payload) {
		return
	}

	result, err := h.service.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		writeServiceError(w, r, err, http.StatusBadRequest, "Error logging in user")
		return
	}

	auth.SetSessionCookie(w, result.Token, result.ExpiresAt, h.secureCookies)
	hlog.FromRequest(r).Info().Str("user_id", result.User.ID).Msg("User logged in")

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "User logged in successfully",
		"user":    result.User,
		"token":   result.Token,
	})
}

// Logout ends the session and clears the cookie.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Logout(r.Context(), auth.TokenFromRequest(r)); err != nil {
		writeServiceError(w, r, err, http.StatusBadRequest, "Error logging out")
		return
	}

	auth.ClearSessionCookie(w, h.secureCookies)
	writeMessage(w, http.StatusOK, "Logged out successfully")
}

// Me returns the authenticated user.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Authentication required: No token provided.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}
