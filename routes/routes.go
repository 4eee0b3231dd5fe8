package routes

import (
	"fmt"
	"net/http"

	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/itinerary"
	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/middleware"
	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/ratelim"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Index is a simple health check handler.
func Index(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	fmt.Fprint(w, "200")
}

func AddUtilityRoutes(router *httprouter.Router) {
	router.GET("/health", Index)
	router.Handler(http.MethodGet, "/metrics", promhttp.Handler())
}

// The limiter sits inside Authenticate so callers are keyed by user id.
func AddItineraryRoutes(router *httprouter.Router, auth *middleware.Auth, rl *ratelim.RateLimiter, h *itinerary.Handlers) {
	router.POST("/api/trips/generate", auth.Authenticate(rl.Limit(h.Generate)))
	router.POST("/api/trips/customize", auth.Authenticate(rl.Limit(h.Customize)))
	router.GET("/api/trips", auth.Authenticate(h.List))
	router.GET("/api/trips/:id", auth.Authenticate(h.Get))
	router.GET("/api/trips/:id/customized", auth.Authenticate(rl.Limit(h.GetCustomized)))
	router.GET("/api/trips/:id/export.ics", auth.Authenticate(rl.Limit(h.ExportICS)))
	router.GET("/api/trips/:id/export.pdf", auth.Authenticate(rl.Limit(h.ExportPDF)))
	router.DELETE("/api/trips/:id", auth.Authenticate(h.Delete))

	router.GET("/api/trip-requests/:id", auth.Authenticate(h.GetRequest))
	router.POST("/api/trip-requests/:id/retry", auth.Authenticate(rl.Limit(h.Retry)))
}
