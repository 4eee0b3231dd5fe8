package routes

import (
	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/itinerary"
	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/middleware"
	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/places"
	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/ratelim"

	"github.com/julienschmidt/httprouter"
)

type Deps struct {
	Auth        *middleware.Auth
	RateLimiter *ratelim.RateLimiter
	Itinerary   *itinerary.Handlers
	Places      *places.Handlers
}

func RoutesWrapper(router *httprouter.Router, d Deps) {
	AddUtilityRoutes(router)
	AddItineraryRoutes(router, d.Auth, d.RateLimiter, d.Itinerary)
	AddPlaceRoutes(router, d.Auth, d.RateLimiter, d.Places)
}
