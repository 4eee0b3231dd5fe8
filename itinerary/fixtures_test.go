package itinerary

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/aiplan"
	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/models"
	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/mq"
	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/places"
	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/planner"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

type fakePool struct {
	mu     sync.Mutex
	pool   []planner.Candidate
	err    error
	labels [][]string
}

func (f *fakePool) Build(_ context.Context, labels []string, _ string, _ float64) ([]planner.Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.labels = append(f.labels, labels)
	if f.err != nil {
		return nil, f.err
	}
	return append([]planner.Candidate{}, f.pool...), nil
}

type fakeCatalog struct {
	dests   []models.Destination
	pois    map[string]models.POI
	listErr error
}

func (f *fakeCatalog) ResolveDestination(_ context.Context, label string) (*models.Destination, error) {
	key := places.NormalizeName(label)
	for _, d := range f.dests {
		if places.NormalizeName(d.Name) == key {
			d := d
			return &d, nil
		}
	}
	return nil, nil
}

func (f *fakeCatalog) ListDestinations(context.Context) ([]models.Destination, error) {
	return f.dests, f.listErr
}

func (f *fakeCatalog) GetPOIs(_ context.Context, ids []string) ([]models.POI, error) {
	var out []models.POI
	for _, id := range ids {
		if p, ok := f.pois[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeExternal struct {
	plans      []planner.DayPlan
	planErr    error
	suggestion *aiplan.Suggestion
	suggestErr error
	planCalls  int
}

func (f *fakeExternal) Plan(context.Context, int, []planner.Candidate, int) ([]planner.DayPlan, error) {
	f.planCalls++
	return f.plans, f.planErr
}

func (f *fakeExternal) SuggestDestination(context.Context, []string, []models.Destination) (*aiplan.Suggestion, error) {
	return f.suggestion, f.suggestErr
}

// nopLocker never blocks, leaving the unique index as the only guard.
type nopLocker struct{}

func (nopLocker) Lock(context.Context, string) (func(), error) { return func() {}, nil }

func hanoiPOI(id, name string, fee float64, hours int) models.POI {
	return models.POI{
		POIID:               id,
		Name:                name,
		Category:            "sightseeing",
		DestinationID:       "hn",
		RecommendedDuration: models.Duration{Hours: hours},
		EntryFee:            models.EntryFee{Adult: fee},
		Rating:              4.5,
		Location:            models.Coordinates{Latitude: 21.0285, Longitude: 105.8542},
	}
}

func hanoiPool() []planner.Candidate {
	pois := []models.POI{
		hanoiPOI("p1", "Temple of Literature", 30000, 2),
		hanoiPOI("p2", "Hoan Kiem Lake", 0, 1),
		hanoiPOI("p3", "Ho Chi Minh Mausoleum", 0, 2),
		hanoiPOI("p4", "Water Puppet Theatre", 100000, 1),
	}
	out := make([]planner.Candidate, len(pois))
	for i, p := range pois {
		out[i] = planner.Candidate{POI: p, Destination: "Hanoi", Minutes: planner.VisitMinutes(p)}
	}
	return out
}

type fixture struct {
	svc      *Service
	store    *memStore
	pool     *fakePool
	catalog  *fakeCatalog
	events   *mq.Recorder
	external *fakeExternal
}

func newFixture(t *testing.T, external *fakeExternal) *fixture {
	t.Helper()
	pool := hanoiPool()
	f := &fixture{
		store: newMemStore(),
		pool:  &fakePool{pool: pool},
		catalog: &fakeCatalog{
			dests: []models.Destination{
				{DestinationID: "hn", Name: "Hanoi", Tags: []string{"culture", "food"}, POICount: 4},
				{DestinationID: "dn", Name: "Da Nang", Tags: []string{"beach"}, POICount: 9},
			},
			pois: map[string]models.POI{},
		},
		events:   &mq.Recorder{},
		external: external,
	}
	for _, c := range pool {
		f.catalog.pois[c.POI.POIID] = c.POI
	}

	deps := Deps{
		Store:   f.store,
		Pool:    f.pool,
		Catalog: f.catalog,
		Events:  f.events,
		Logger:  zap.NewNop(),
		Options: Options{PublicBaseURL: "https://travel.example.com", DefaultTimezone: "Asia/Ho_Chi_Minh"},
	}
	if external != nil {
		deps.External = external
	}
	f.svc = NewService(deps)
	f.svc.now = func() time.Time { return fixedNow }
	return f
}

func intPtr(n int) *int { return &n }

func strPtr(s string) *string { return &s }

// generate runs a three-day Hanoi request for user u1.
func (f *fixture) generate(t *testing.T) *GenerateResult {
	t.Helper()
	res, err := f.svc.Generate(context.Background(), "u1", GenerateInput{
		Destination:  "Hanoi",
		DurationDays: intPtr(3),
		Participants: 2,
	})
	require.NoError(t, err)
	return res
}
