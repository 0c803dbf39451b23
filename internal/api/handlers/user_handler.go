package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/sarthakdev/medium-be/internal/auth"
	"github.com/sarthakdev/medium-be/internal/services"
)

// UserHandler handles signup, signin, and the auth check.
type UserHandler struct {
	service services.UserServiceProvider
	tokens  *auth.Service
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service services.UserServiceProvider, tokens *auth.Service) *UserHandler {
	return &UserHandler{service: service, tokens: tokens}
}

// SignupPayload defines the structure for signup requests.
type SignupPayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SigninPayload defines the structure for signin requests.
type SigninPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup handles new user registration and returns a token for the created
// account.
func (h *UserHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var payload SignupPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusLengthRequired, "Incorrect input formatting")
		return
	}
	if !validEmail(payload.Email) || len(payload.Password) < 6 {
		respondError(w, http.StatusLengthRequired, "Incorrect input formatting")
		return
	}

	user, err := h.service.CreateUser(r.Context(), payload.Email, payload.Password, payload.Name)
	if err != nil {
		log.Error().Err(err).Str("email", payload.Email).Msg("Failed to sign up user")
		respondError(w, http.StatusForbidden, "Error while signing up")
		return
	}

	token, err := h.tokens.GenerateJWT(user.ID)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to generate token")
		respondError(w, http.StatusInternalServerError, "Error while signing up")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"jwt": token})
}

// Signin authenticates a user and returns a fresh token. Unknown emails and
// wrong passwords are both reported as not found.
func (h *UserHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var payload SigninPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusLengthRequired, "Incorrect input formatting")
		return
	}
	if !validEmail(payload.Email) || payload.Password == "" {
		respondError(w, http.StatusLengthRequired, "Incorrect input formatting")
		return
	}

	user, err := h.service.AuthenticateUser(r.Context(), payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			respondError(w, http.StatusNotFound, "User not found")
			return
		}
		log.Error().Err(err).Str("email", payload.Email).Msg("Failed to sign in user")
		respondError(w, http.StatusInternalServerError, "Error while signing in")
		return
	}

	token, err := h.tokens.GenerateJWT(user.ID)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to generate token")
		respondError(w, http.StatusInternalServerError, "Error while signing in")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"token":   token,
	})
}

// Me returns the account behind the presented token. A token whose user row
// no longer exists yields an error body with a 200 status; that shape is part
// of the documented contract.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := h.service.GetUserByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			respondError(w, http.StatusOK, "User not found")
			return
		}
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to load user")
		respondError(w, http.StatusInternalServerError, "Failed to load user")
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// validEmail is a shape check, not RFC validation; the store's unique
// constraint is the real gatekeeper.
func validEmail(email string) bool {
	at := strings.Index(email, "@")
	return at > 0 && at < len(email)-1
}
