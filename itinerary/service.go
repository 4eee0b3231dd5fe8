// Package itinerary generates trips, keeps the generated baseline immutable and
// manages the editable custom copy created on first edit.
package itinerary

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/aiplan"
	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/apperr"
	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/models"
	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/mq"
	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/planner"

	"go.uber.org/zap"
)

// PoolBuilder selects candidate POIs for a request.
type PoolBuilder interface {
	Build(ctx context.Context, labels []string, level string, total float64) ([]planner.Candidate, error)
}

// Catalog is the part of the POI catalog the service reads directly.
type Catalog interface {
	ResolveDestination(ctx context.Context, label string) (*models.Destination, error)
	ListDestinations(ctx context.Context) ([]models.Destination, error)
	GetPOIs(ctx context.Context, ids []string) ([]models.POI, error)
}

// ExternalPlanner is the optional model-backed planner.
type ExternalPlanner interface {
	Plan(ctx context.Context, days int, pool []planner.Candidate, participants int) ([]planner.DayPlan, error)
	SuggestDestination(ctx context.Context, preferences []string, options []models.Destination) (*aiplan.Suggestion, error)
}

// Locker serializes first-edit initialization per request.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

type Options struct {
	PublicBaseURL   string
	DefaultTimezone string
}

type Deps struct {
	Store    Store
	Pool     PoolBuilder
	Catalog  Catalog
	External ExternalPlanner
	Locker   Locker
	Events   mq.Emitter
	Logger   *zap.Logger
	Options  Options
}

type Service struct {
	store        Store
	pool         PoolBuilder
	catalog      Catalog
	external     ExternalPlanner
	locker       Locker
	events       mq.Emitter
	materializer *Materializer
	logger       *zap.Logger
	opts         Options
	now          func() time.Time

	tzOnce sync.Once
	tz     timezoneFinder
}

func NewService(d Deps) *Service {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Locker == nil {
		d.Locker = NewLocalLocker()
	}
	if d.Events == nil {
		d.Events = mq.NewLogEmitter(d.Logger)
	}
	if d.Options.DefaultTimezone == "" {
		d.Options.DefaultTimezone = "Asia/Ho_Chi_Minh"
	}
	s := &Service{
		store:    d.Store,
		pool:     d.Pool,
		catalog:  d.Catalog,
		external: d.External,
		locker:   d.Locker,
		events:   d.Events,
		logger:   d.Logger,
		opts:     d.Options,
		now:      func() time.Time { return time.Now().UTC() },
	}
	s.materializer = NewMaterializer(d.Store, d.Logger)
	s.materializer.now = func() time.Time { return s.now() }
	return s
}

// owned loads a trip and checks the caller may touch it.
func (s *Service) owned(ctx context.Context, userID, tripID string) (*models.TripResult, error) {
	trip, err := s.store.GetTrip(ctx, tripID)
	if errors.Is(err, ErrNotFound) {
		return nil, apperr.Missing("trip")
	}
	if err != nil {
		return nil, apperr.InternalErr("failed to load trip", err)
	}
	if trip.UserID != userID {
		return nil, apperr.New(apperr.Forbidden, "trip belongs to another user")
	}
	return trip, nil
}

func (s *Service) emit(ctx context.Context, name string, trip *models.TripResult, detail string) {
	ev := mq.Event{Name: name, Detail: detail, At: s.now()}
	if trip != nil {
		ev.TripID = trip.TripID
		ev.RequestID = trip.RequestID
		ev.UserID = trip.UserID
	}
	s.events.Emit(ctx, ev)
}
