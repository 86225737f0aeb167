package handlers

import (
	"net/http"

	"othershorts-backend/internal/middleware"
	"othershorts-backend/internal/models"
	"othershorts-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

type signInRequest struct {
	GoogleID string `json:"googleId"`
}

type signInResponse struct {
	*models.User
	Token string `json:"token,omitempty"`
}

// CreateUser handles POST /api/users
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := decodeJSON(r, &req); err != nil {
		respondServiceError(w, err, msgDatabaseFailed)
		return
	}

	res, err := h.userService.SignIn(r.Context(), req.GoogleID)
	if err != nil {
		respondServiceError(w, err, msgDatabaseFailed)
		return
	}

	log.Info().
		Str("user_id", res.User.ID).
		Bool("profile_complete", res.User.ProfileComplete()).
		Msg("User signed in")

	respondJSON(w, http.StatusOK, signInResponse{User: res.User, Token: res.Token})
}

// GetUser handles GET /api/users/{id}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	user, err := h.userService.GetUser(r.Context(), id)
	if err != nil {
		respondServiceError(w, err, msgDatabaseFailed)
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// UpdateUser handles PUT /api/users/{id}
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	if err := middleware.CheckActor(ctx, id); err != nil {
		respondServiceError(w, err, msgDatabaseFailed)
		return
	}

	var req services.ProfileUpdate
	if err := decodeJSON(r, &req); err != nil {
		respondServiceError(w, err, msgDatabaseFailed)
		return
	}

	user, err := h.userService.UpdateProfile(ctx, id, req)
	if err != nil {
		respondServiceError(w, err, msgDatabaseFailed)
		return
	}

	log.Info().Str("user_id", id).Msg("Profile updated")

	respondJSON(w, http.StatusOK, user)
}

type pushTokenRequest struct {
	Token string `json:"token"`
}

// UpdatePushToken handles PUT /api/users/{id}/push-token. An empty token
// unregisters the device.
func (h *UserHandler) UpdatePushToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	if err := middleware.CheckActor(ctx, id); err != nil {
		respondServiceError(w, err, msgDatabaseFailed)
		return
	}

	var req pushTokenRequest
	if err := decodeJSON(r, &req); err != nil {
		respondServiceError(w, err, msgDatabaseFailed)
		return
	}

	if err := h.userService.RegisterPushToken(ctx, id, req.Token); err != nil {
		respondServiceError(w, err, msgDatabaseFailed)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListCountries handles GET /api/countries
func (h *UserHandler) ListCountries(w http.ResponseWriter, r *http.Request) {
	countries, err := h.userService.ListCountries(r.Context())
	if err != nil {
		respondServiceError(w, err, msgDatabaseFailed)
		return
	}

	respondJSON(w, http.StatusOK, countries)
}
