package itinerary

import (
	"context"
	"errors"
	"time"

	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/models"
)

var (
	// ErrNotFound is returned by Store lookups that match nothing.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a write hits a uniqueness constraint.
	ErrDuplicate = errors.New("duplicate record")
)

// Store persists trip requests, trip results and day records.
//
// Implementations must enforce these uniqueness constraints and report
// violations as ErrDuplicate: (origin_id, day_number, type) on day records,
// and at most one done and one custom TripResult per request_id.
type Store interface {
	CreateRequest(ctx context.Context, req *models.TripRequest) error
	GetRequest(ctx context.Context, id string) (*models.TripRequest, error)
	SaveRequest(ctx context.Context, req *models.TripRequest) error
	// ClaimRetry moves a failed, retryable request to processing in one step.
	// It returns ErrNotFound when the request is not in that state.
	ClaimRetry(ctx context.Context, requestID string, at time.Time) error

	InsertTrip(ctx context.Context, trip *models.TripResult) error
	GetTrip(ctx context.Context, id string) (*models.TripResult, error)
	// FindTripByRequest returns the request's trip with the given status.
	FindTripByRequest(ctx context.Context, requestID string, status models.TripStatus) (*models.TripResult, error)
	// UpdateCustomTrip replaces a custom trip. Baseline trips never match.
	UpdateCustomTrip(ctx context.Context, trip *models.TripResult) error
	ListTrips(ctx context.Context, userID string, status models.TripStatus, skip, limit int64) ([]models.TripResult, error)
	DeleteTrips(ctx context.Context, ids []string) (int64, error)

	// InsertDays writes every day it can and returns ErrDuplicate when any of
	// them hit the day constraint.
	InsertDays(ctx context.Context, days []models.DayRecord) error
	GetDay(ctx context.Context, id string) (*models.DayRecord, error)
	// ListDays returns the days of one lineage ordered by day_number.
	ListDays(ctx context.Context, originID string, dayType models.DayType) ([]models.DayRecord, error)
	// UpdateCustomDay replaces a customized day. ai_gen days never match.
	UpdateCustomDay(ctx context.Context, day *models.DayRecord) error
	DeleteDaysByOrigin(ctx context.Context, originIDs []string) (int64, error)
	// DayOrigins lists distinct origin ids of days created before cutoff.
	DayOrigins(ctx context.Context, before time.Time) ([]string, error)
}
