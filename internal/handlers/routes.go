package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Set groups the HTTP handlers mounted by RegisterRoutes
type Set struct {
	User      *UserHandler
	Takeout   *TakeoutHandler
	Rating    *RatingHandler
	Feed      *FeedHandler
	WebSocket *WebSocketHandler
	Health    http.HandlerFunc
}

// RegisterRoutes mounts the API on r. auth wraps every /api route.
func RegisterRoutes(r chi.Router, h Set, auth func(http.Handler) http.Handler) {
	r.Get("/healthz", h.Health)
	r.Get("/ws", h.WebSocket.HandleWebSocket)

	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Get("/countries", h.User.ListCountries)
		r.Post("/users", h.User.CreateUser)

		r.Group(func(r chi.Router) {
			r.Use(auth)
			r.Get("/users/{id}", h.User.GetUser)
			r.Put("/users/{id}", h.User.UpdateUser)
			r.Put("/users/{id}/push-token", h.User.UpdatePushToken)
			r.Post("/uploadTakeout", h.Takeout.UploadTakeout)
			r.Post("/ratings", h.Rating.SubmitRating)
			r.Get("/batch/{userId}", h.Feed.GetBatch)
		})
	})
}
