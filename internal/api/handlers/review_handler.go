package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/raterly/raterly-be/internal/services"
	ws "github.com/raterly/raterly-be/internal/websocket"
)

// ReviewHandler handles HTTP requests for both the standalone review
// collection and the per-user review histories.
type ReviewHandler struct {
	reviews services.ReviewServiceProvider
	users   services.UserServiceProvider
	events  services.EventServiceProvider
	hub     *ws.Hub
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(reviews services.ReviewServiceProvider, users services.UserServiceProvider, events services.EventServiceProvider, hub *ws.Hub) *ReviewHandler {
	return &ReviewHandler{reviews: reviews, users: users, events: events, hub: hub}
}

// StandaloneReviewPayload defines the body for standalone review creation.
// Rating is a pointer so a present zero rating passes the required check.
type StandaloneReviewPayload struct {
	Rating *float64 `json:"rating" validate:"required"`
	Review string   `json:"review" validate:"required"`
}

// UserReviewPayload defines the body for per-user review submission. A null
// or absent rating is stored as-is; text may be empty.
type UserReviewPayload struct {
	Rating *float64 `json:"rating"`
	Review string   `json:"review"`
}

// CreateStandalone handles inserting a review into the standalone collection.
func (h *ReviewHandler) CreateStandalone(w http.ResponseWriter, r *http.Request) {
	var payload StandaloneReviewPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(payload); err != nil {
		respondError(w, http.StatusBadRequest, "Rating and review are required")
		return
	}

	rec, err := h.reviews.CreateReview(*payload.Rating, payload.Review)
	if err != nil {
		log.Error().Err(err).Msg("Failed to save review")
		respondError(w, http.StatusInternalServerError, "Error saving review")
		return
	}
	respondJSON(w, http.StatusCreated, rec)
}

// ListStandalone handles retrieving all standalone reviews.
func (h *ReviewHandler) ListStandalone(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.reviews.GetAllReviews()
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch reviews")
		respondError(w, http.StatusInternalServerError, "Error fetching reviews")
		return
	}
	respondJSON(w, http.StatusOK, reviews)
}

// GetUserReviews handles retrieving a user's embedded review history.
func (h *ReviewHandler) GetUserReviews(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	user, err := h.users.GetUserByUsername(username)
	if err != nil {
		if err == services.ErrNotFound {
			respondError(w, http.StatusNotFound, "User not found")
			return
		}
		log.Error().Err(err).Str("username", username).Msg("Failed to fetch user reviews")
		respondError(w, http.StatusInternalServerError, "Error fetching reviews")
		return
	}
	respondJSON(w, http.StatusOK, user.Reviews)
}

// SubmitUserReview handles appending one entry to a user's review history.
func (h *ReviewHandler) SubmitUserReview(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	var payload UserReviewPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.users.AppendReview(username, payload.Rating, payload.Review); err != nil {
		if err == services.ErrNotFound {
			respondError(w, http.StatusNotFound, "User not found")
			return
		}
		log.Error().Err(err).Str("username", username).Msg("Failed to submit review")
		respondError(w, http.StatusInternalServerError, "Error saving review")
		return
	}

	if err := h.events.CreateEvent("review.submitted", "info",
		fmt.Sprintf("Review submitted for %s", username), nil); err != nil {
		log.Warn().Err(err).Msg("Failed to record review event")
	}
	h.hub.NotifyTopic(username, "review.submitted", payload)
	h.hub.Notify("review.submitted", map[string]string{"username": username})

	respondJSON(w, http.StatusOK, map[string]string{"message": "Review submitted successfully"})
}
