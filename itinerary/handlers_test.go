package itinerary

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/globals"
	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/models"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func asUser(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if id := r.Header.Get("X-Test-User"); id != "" {
			r = r.WithContext(context.WithValue(r.Context(), globals.UserIDKey, id))
		}
		next(w, r, ps)
	}
}

func newTestRouter(f *fixture) *httprouter.Router {
	h := NewHandlers(f.svc, zap.NewNop())
	r := httprouter.New()
	r.POST("/api/trips/generate", asUser(h.Generate))
	r.POST("/api/trips/customize", asUser(h.Customize))
	r.GET("/api/trips", asUser(h.List))
	r.GET("/api/trips/:id", asUser(h.Get))
	r.GET("/api/trips/:id/customized", asUser(h.GetCustomized))
	r.GET("/api/trips/:id/export.ics", asUser(h.ExportICS))
	r.GET("/api/trips/:id/export.pdf", asUser(h.ExportPDF))
	r.DELETE("/api/trips/:id", asUser(h.Delete))
	r.GET("/api/trip-requests/:id", asUser(h.GetRequest))
	r.POST("/api/trip-requests/:id/retry", asUser(h.Retry))
	return r
}

func serve(t *testing.T, router http.Handler, method, path, user, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var out map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func errorKind(body map[string]any) string {
	e, _ := body["error"].(map[string]any)
	kind, _ := e["kind"].(string)
	return kind
}

func TestGenerateHandler(t *testing.T) {
	f := newFixture(t, nil)
	router := newTestRouter(f)

	rec, body := serve(t, router, http.MethodPost, "/api/trips/generate", "u1",
		`{"destination":"Hanoi","duration_days":2,"participant_number":2,"preferences":["food"]}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, SourceHeuristic, body["source"])
	assert.NotEmpty(t, body["aiGeneratedId"])
	assert.Len(t, body["days"], 2)

	requestID := body["request_id"].(string)
	rec, body = serve(t, router, http.MethodGet, "/api/trip-requests/"+requestID, "u1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.RequestCompleted, body["status"])
}

func TestGenerateHandlerRejects(t *testing.T) {
	f := newFixture(t, nil)
	router := newTestRouter(f)

	rec, body := serve(t, router, http.MethodPost, "/api/trips/generate", "", `{"destination":"Hanoi"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", errorKind(body))

	rec, body = serve(t, router, http.MethodPost, "/api/trips/generate", "u1", `{"destination":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_failed", errorKind(body))

	rec, body = serve(t, router, http.MethodPost, "/api/trips/generate", "u1", `{"destination":"Hanoi","duration_days":45}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_failed", errorKind(body))
}

func TestRetryHandler(t *testing.T) {
	f := newFixture(t, nil)
	router := newTestRouter(f)
	f.store.failInsertTrip = errBoom

	rec, body := serve(t, router, http.MethodPost, "/api/trips/generate", "u1", `{"destination":"Hanoi"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "failed to save itinerary", body["error"].(map[string]any)["message"])

	req := f.onlyRequest(t)
	rec, body = serve(t, router, http.MethodPost, "/api/trip-requests/"+req.RequestID+"/retry", "u1", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, req.RequestID, body["request_id"])
}

func TestTripHandlers(t *testing.T) {
	f := newFixture(t, nil)
	f.svc.tz = &fakeTZ{name: "Asia/Ho_Chi_Minh"}
	router := newTestRouter(f)
	gen := f.generate(t)

	rec, body := serve(t, router, http.MethodGet, "/api/trips/"+gen.TripID, "u1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["isOriginal"])

	rec, body = serve(t, router, http.MethodGet, "/api/trips/"+gen.TripID, "u2", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "forbidden", errorKind(body))

	rec, _ = serve(t, router, http.MethodGet, "/api/trips?page=1&limit=5", "u1", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, body = serve(t, router, http.MethodGet, "/api/trips/"+gen.TripID+"/customized", "u1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", errorKind(body))
	assert.Zero(t, f.store.countTrips(models.TripCustom))

	rec, body = serve(t, router, http.MethodPost, "/api/trips/customize", "u1", `{"aiGeneratedId":"`+gen.TripID+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	customID := body["aiGeneratedId"].(string)

	rec, body = serve(t, router, http.MethodGet, "/api/trips/"+gen.TripID+"/customized", "u1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, gen.TripID, body["originalAiGeneratedId"])
	assert.Equal(t, customID, body["aiGeneratedId"])

	day1 := gen.Days[0].DayID
	rec, body = serve(t, router, http.MethodPost, "/api/trips/customize", "u1",
		`{"aiGeneratedId":"`+customID+`","itinerary_data":[{"dayId":"`+day1+`","theme":"Markets"}]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	days := body["days"].([]any)
	assert.Equal(t, "Markets", days[0].(map[string]any)["title"])

	rec, _ = serve(t, router, http.MethodGet, "/api/trips/"+gen.TripID+"/export.ics", "u1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/calendar; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "BEGIN:VCALENDAR")

	rec, _ = serve(t, router, http.MethodGet, "/api/trips/"+gen.TripID+"/export.pdf", "u1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))

	rec, body = serve(t, router, http.MethodDelete, "/api/trips/"+gen.TripID, "u1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["deleted"])
	assert.Equal(t, 6.0, body["deletedDays"])

	rec, body = serve(t, router, http.MethodGet, "/api/trips/"+gen.TripID, "u1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", errorKind(body))
}

func TestGetHandlerReportsGenerating(t *testing.T) {
	f := newFixture(t, nil)
	router := newTestRouter(f)
	require.NoError(t, f.store.InsertDays(context.Background(), []models.DayRecord{
		{DayID: "d1", OriginID: "half-written", Type: models.DayAIGen, DayNumber: 1},
	}))

	rec, body := serve(t, router, http.MethodGet, "/api/trips/half-written", "u1", "")
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "generating", body["status"])
}
