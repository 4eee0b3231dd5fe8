package routes

import (
	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/middleware"
	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/places"
	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/ratelim"

	"github.com/julienschmidt/httprouter"
)

// Catalog reads are public; a token only changes the rate limit key.
func AddPlaceRoutes(router *httprouter.Router, auth *middleware.Auth, rl *ratelim.RateLimiter, h *places.Handlers) {
	router.GET("/api/pois", auth.OptionalAuth(rl.Limit(h.ListPOIs)))
	router.GET("/api/destinations", auth.OptionalAuth(rl.Limit(h.ListDestinations)))
}
