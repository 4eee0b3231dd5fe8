package itinerary

import (
	"context"
	"errors"
	"time"

	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/apperr"
	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/metrics"
	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/models"
	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/mq"
	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/utils"

	"go.uber.org/zap"
)

type TripView struct {
	Trip           models.TripResult  `json:"trip"`
	Days           []models.DayRecord `json:"days"`
	IsOriginal     bool               `json:"isOriginal"`
	IsCustomizable bool               `json:"isCustomizable"`
}

func dayTypeFor(status models.TripStatus) models.DayType {
	if status == models.TripCustom {
		return models.DayCustomized
	}
	return models.DayAIGen
}

// Get returns a trip with its days. A trip whose days exist but whose
// TripResult is not written yet reports PartialWriteInconsistency.
func (s *Service) Get(ctx context.Context, userID, tripID string) (*TripView, error) {
	trip, err := s.owned(ctx, userID, tripID)
	if apperr.KindOf(err) == apperr.NotFound {
		days, listErr := s.store.ListDays(ctx, tripID, models.DayAIGen)
		if listErr == nil && len(days) > 0 {
			return nil, apperr.New(apperr.PartialWriteInconsistency, "itinerary is still generating")
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	days, err := s.store.ListDays(ctx, trip.TripID, dayTypeFor(trip.Status))
	if err != nil {
		return nil, apperr.InternalErr("failed to load days", err)
	}
	return &TripView{
		Trip:           *trip,
		Days:           days,
		IsOriginal:     trip.Status == models.TripDone,
		IsCustomizable: true,
	}, nil
}

// List returns the caller's baseline trips, newest first.
func (s *Service) List(ctx context.Context, userID string, opts utils.QueryOptions) ([]models.TripResult, error) {
	trips, err := s.store.ListTrips(ctx, userID, models.TripDone, opts.Skip(), int64(opts.Limit))
	if err != nil {
		return nil, apperr.InternalErr("failed to list trips", err)
	}
	return trips, nil
}

// Delete removes a trip and its days. Deleting a baseline also removes its
// custom copy; deleting a custom copy leaves the baseline. It returns the
// number of day records removed.
func (s *Service) Delete(ctx context.Context, userID, tripID string) (int64, error) {
	trip, err := s.owned(ctx, userID, tripID)
	if err != nil {
		return 0, err
	}

	ids := []string{trip.TripID}
	if trip.Status == models.TripDone {
		custom, err := s.store.FindTripByRequest(ctx, trip.RequestID, models.TripCustom)
		switch {
		case err == nil:
			ids = append(ids, custom.TripID)
		case !errors.Is(err, ErrNotFound):
			return 0, apperr.InternalErr("failed to look up custom trip", err)
		}
	}

	// Trips go first: days left behind by a failure here are orphans the
	// sweep removes, never a trip without days.
	if _, err := s.store.DeleteTrips(ctx, ids); err != nil {
		return 0, apperr.InternalErr("failed to delete trip", err)
	}
	n, err := s.store.DeleteDaysByOrigin(ctx, ids)
	if err != nil {
		return 0, apperr.InternalErr("failed to delete days", err)
	}

	s.emit(ctx, mq.EventDeleted, trip, string(trip.Status))
	s.logger.Info("trip deleted", zap.Strings("trip_ids", ids), zap.Int64("days", n))
	return n, nil
}

// SweepOrphans deletes day records older than olderThan whose TripResult does
// not exist, which is what an interrupted generation or delete leaves behind.
func (s *Service) SweepOrphans(ctx context.Context, olderThan time.Duration) (int64, error) {
	origins, err := s.store.DayOrigins(ctx, s.now().Add(-olderThan))
	if err != nil {
		return 0, err
	}

	var orphans []string
	for _, id := range origins {
		_, err := s.store.GetTrip(ctx, id)
		switch {
		case errors.Is(err, ErrNotFound):
			orphans = append(orphans, id)
		case err != nil:
			return 0, err
		}
	}
	if len(orphans) == 0 {
		return 0, nil
	}

	n, err := s.store.DeleteDaysByOrigin(ctx, orphans)
	if err != nil {
		return 0, err
	}
	metrics.OrphansSweptTotal.Add(float64(n))
	s.logger.Info("orphaned days swept", zap.Int("origins", len(orphans)), zap.Int64("days", n))
	return n, nil
}
