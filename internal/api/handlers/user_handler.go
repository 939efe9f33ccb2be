package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/raterly/raterly-be/internal/auth"
	"github.com/raterly/raterly-be/internal/services"
	ws "github.com/raterly/raterly-be/internal/websocket"
)

// UserHandler handles HTTP requests for registration, login, and user
// management.
type UserHandler struct {
	service services.UserServiceProvider
	events  services.EventServiceProvider
	tokens  *auth.Manager
	hub     *ws.Hub
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service services.UserServiceProvider, events services.EventServiceProvider, tokens *auth.Manager, hub *ws.Hub) *UserHandler {
	return &UserHandler{service: service, events: events, tokens: tokens, hub: hub}
}

// RegisterPayload defines the structure for registration requests.
type RegisterPayload struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=6"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	Username   string `json:"username" validate:"required"`
	RatingLink string `json:"ratingLink"`
}

// AuthPayload defines the structure for login requests.
type AuthPayload struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UpdateUserPayload defines the structure for partial user updates. Pointer
// fields distinguish "absent" from "present": string fields apply when
// present and non-empty, boolean fields apply whenever present.
type UpdateUserPayload struct {
	Email      *string `json:"email"`
	Password   *string `json:"password"`
	Username   *string `json:"username"`
	RatingLink *string `json:"ratingLink"`
	Active     *bool   `json:"active"`
	Admin      *bool   `json:"admin"`
}

// Register handles new user registration and issues the first token.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload RegisterPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid registration payload")
		return
	}

	user, err := h.service.Register(services.RegisterParams{
		Email:      payload.Email,
		Password:   payload.Password,
		Phone:      payload.Phone,
		Address:    payload.Address,
		Username:   payload.Username,
		RatingLink: payload.RatingLink,
	})
	if err != nil {
		if err == services.ErrUserExists {
			respondError(w, http.StatusBadRequest, "User already exists")
			return
		}
		log.Error().Err(err).Str("email", payload.Email).Msg("Failed to register user")
		respondError(w, http.StatusInternalServerError, "Error creating user")
		return
	}

	token, err := h.tokens.Issue(user.ID, user.Username)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to issue token")
		respondError(w, http.StatusInternalServerError, "Error creating user")
		return
	}

	if err := h.events.CreateEvent("user.registered", "info",
		fmt.Sprintf("User %s registered", user.Username), &user.ID); err != nil {
		log.Warn().Err(err).Msg("Failed to record registration event")
	}
	h.hub.Notify("user.registered", map[string]string{"username": user.Username})

	respondJSON(w, http.StatusCreated, map[string]string{
		"token":    token,
		"userId":   user.ID,
		"username": user.Username,
	})
}

// Login handles user authentication and token issuance. Unknown email and
// wrong password get the same response.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload AuthPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid credentials")
		return
	}

	user, err := h.service.Authenticate(payload.Email, payload.Password)
	if err != nil {
		if err == services.ErrInvalidCredentials {
			respondError(w, http.StatusBadRequest, "Invalid credentials")
			return
		}
		log.Error().Err(err).Str("email", payload.Email).Msg("Failed to authenticate user")
		respondError(w, http.StatusInternalServerError, "Error logging in")
		return
	}

	token, err := h.tokens.Issue(user.ID, user.Username)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to issue token")
		respondError(w, http.StatusInternalServerError, "Error logging in")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"token":    token,
		"username": user.Username,
		"userId":   user.ID,
	})
}

// GetAll handles retrieving every user record.
func (h *UserHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.GetAllUsers()
	if err != nil {
		log.Error().Err(err).Msg("Failed to retrieve users")
		respondError(w, http.StatusInternalServerError, "Error fetching users")
		return
	}
	respondJSON(w, http.StatusOK, users)
}

// GetByUsername handles retrieving a single user's public record.
func (h *UserHandler) GetByUsername(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	user, err := h.service.GetUserByUsername(username)
	if err != nil {
		if err == services.ErrNotFound {
			respondError(w, http.StatusNotFound, "User not found")
			return
		}
		log.Error().Err(err).Str("username", username).Msg("Failed to retrieve user")
		respondError(w, http.StatusInternalServerError, "Error fetching user")
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// Update handles partial updates of a user record.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var payload UpdateUserPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.service.UpdateUser(id, services.UserUpdate{
		Email:      payload.Email,
		Password:   payload.Password,
		Username:   payload.Username,
		RatingLink: payload.RatingLink,
		Active:     payload.Active,
		Admin:      payload.Admin,
	})
	if err != nil {
		switch err {
		case services.ErrNotFound:
			respondError(w, http.StatusNotFound, "User not found")
		case services.ErrUserExists:
			respondError(w, http.StatusBadRequest, "User already exists")
		default:
			log.Error().Err(err).Str("user_id", id).Msg("Failed to update user")
			respondError(w, http.StatusInternalServerError, "Error updating user")
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "User updated successfully",
		"user":    user,
	})
}

// GetSummary handles retrieving a user's precomputed rating aggregate.
func (h *UserHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	summary, err := h.service.GetRatingSummary(username)
	if err != nil {
		if err == services.ErrNotFound {
			respondError(w, http.StatusNotFound, "User not found")
			return
		}
		log.Error().Err(err).Str("username", username).Msg("Failed to retrieve rating summary")
		respondError(w, http.StatusInternalServerError, "Error fetching summary")
		return
	}
	respondJSON(w, http.StatusOK, summary)
}
