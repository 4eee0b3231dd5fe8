package places

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/models"
	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/planner"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubCatalog struct {
	dests []models.Destination
	pois  []models.POI
	last  planner.POIQuery
}

func (s *stubCatalog) ResolveDestination(_ context.Context, label string) (*models.Destination, error) {
	for _, d := range s.dests {
		if NormalizeName(d.Name) == NormalizeName(label) {
			return &d, nil
		}
	}
	return nil, nil
}

func (s *stubCatalog) MatchDestinations(context.Context, string) ([]models.Destination, error) {
	return nil, nil
}

func (s *stubCatalog) FindPOIs(_ context.Context, q planner.POIQuery) ([]models.POI, error) {
	s.last = q
	return s.pois, nil
}

func (s *stubCatalog) ListDestinations(context.Context) ([]models.Destination, error) {
	return s.dests, nil
}

func TestListPOIs(t *testing.T) {
	cat := &stubCatalog{
		dests: []models.Destination{{DestinationID: "d1", Name: "Huế"}},
		pois:  []models.POI{{POIID: "p1", Name: "Imperial City"}},
	}
	h := &Handlers{Catalog: cat, Destinations: cat, Logger: zap.NewNop()}

	rec := httptest.NewRecorder()
	h.ListPOIs(rec, httptest.NewRequest(http.MethodGet, "/api/pois?destination=hue&budget_level=high", nil), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Destination models.Destination `json:"destination"`
		POIs        []models.POI       `json:"pois"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "d1", body.Destination.DestinationID)
	assert.Len(t, body.POIs, 1)
	assert.Equal(t, planner.BandPremium, cat.last.Band.Kind)
	assert.Equal(t, planner.PoolLimit, cat.last.Limit)
}

func TestListPOIsErrors(t *testing.T) {
	cat := &stubCatalog{}
	h := &Handlers{Catalog: cat, Destinations: cat, Logger: zap.NewNop()}

	rec := httptest.NewRecorder()
	h.ListPOIs(rec, httptest.NewRequest(http.MethodGet, "/api/pois", nil), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.ListPOIs(rec, httptest.NewRequest(http.MethodGet, "/api/pois?destination=Atlantis", nil), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListDestinationsEmpty(t *testing.T) {
	cat := &stubCatalog{}
	h := &Handlers{Catalog: cat, Destinations: cat, Logger: zap.NewNop()}

	rec := httptest.NewRecorder()
	h.ListDestinations(rec, httptest.NewRequest(http.MethodGet, "/api/destinations", nil), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}
