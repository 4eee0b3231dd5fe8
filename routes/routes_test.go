package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/itinerary"
	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/middleware"
	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/models"
	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/places"
	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/ratelim"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubDestinations struct{}

func (stubDestinations) ListDestinations(context.Context) ([]models.Destination, error) {
	return []models.Destination{{DestinationID: "hn", Name: "Hanoi"}}, nil
}

func newRouter(t *testing.T) *httprouter.Router {
	t.Helper()
	router := httprouter.New()
	require.NotPanics(t, func() {
		RoutesWrapper(router, Deps{
			Auth:        middleware.NewAuth("secret"),
			RateLimiter: ratelim.NewRateLimiter(100, 100),
			Itinerary:   itinerary.NewHandlers(nil, zap.NewNop()),
			Places:      &places.Handlers{Destinations: stubDestinations{}, Logger: zap.NewNop()},
		})
	})
	return router
}

func TestRoutes(t *testing.T) {
	router := newRouter(t)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/api/destinations", http.StatusOK},
		{http.MethodGet, "/api/trips", http.StatusUnauthorized},
		{http.MethodPost, "/api/trips/generate", http.StatusUnauthorized},
		{http.MethodPost, "/api/trips/customize", http.StatusUnauthorized},
		{http.MethodGet, "/api/trips/abc", http.StatusUnauthorized},
		{http.MethodGet, "/api/trips/abc/customized", http.StatusUnauthorized},
		{http.MethodGet, "/api/trips/abc/export.ics", http.StatusUnauthorized},
		{http.MethodGet, "/api/trips/abc/export.pdf", http.StatusUnauthorized},
		{http.MethodDelete, "/api/trips/abc", http.StatusUnauthorized},
		{http.MethodGet, "/api/trip-requests/abc", http.StatusUnauthorized},
		{http.MethodPost, "/api/trip-requests/abc/retry", http.StatusUnauthorized},
		{http.MethodGet, "/api/nope", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
