package itinerary

import (
	"context"
	"fmt"
	"time"

	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/models"
	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/planner"
	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/utils"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Materializer persists a plan as ai_gen day records followed by the done
// TripResult. Readers that find days without a trip treat it as generating.
type Materializer struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time
}

func NewMaterializer(store Store, logger *zap.Logger) *Materializer {
	return &Materializer{store: store, logger: logger, now: time.Now}
}

// Materialize writes the plan for req. On failure it removes any day records
// it wrote so the request can be retried cleanly.
func (m *Materializer) Materialize(ctx context.Context, req *models.TripRequest, destination string, destinationCount int, plans []planner.DayPlan, source string) (*models.TripResult, []models.DayRecord, error) {
	now := m.now()
	tripID := utils.GetUUID()

	days := lo.Map(plans, func(p planner.DayPlan, _ int) models.DayRecord {
		activities := p.Activities
		if activities == nil {
			activities = []models.Activity{}
		}
		return models.DayRecord{
			DayID:       utils.GetUUID(),
			OriginID:    tripID,
			Type:        models.DayAIGen,
			DayNumber:   p.DayNumber,
			Title:       p.Title,
			Description: p.Description,
			Activities:  activities,
			DayTotal:    planner.DayTotal(activities),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
	})

	if err := m.store.InsertDays(ctx, days); err != nil {
		m.rollback(ctx, tripID)
		return nil, nil, fmt.Errorf("insert days: %w", err)
	}

	total := lo.SumBy(days, func(d models.DayRecord) float64 { return d.DayTotal })
	trip := &models.TripResult{
		TripID:        tripID,
		RequestID:     req.RequestID,
		UserID:        req.UserID,
		Destination:   destination,
		DurationDays:  len(days),
		BudgetTotal:   req.BudgetTotal,
		Participants:  req.Participants,
		Preferences:   req.Preferences,
		Status:        models.TripDone,
		Summary:       summarize(destination, destinationCount, days, total),
		TotalCost:     total,
		Source:        source,
		ItineraryData: lo.Map(days, func(d models.DayRecord, _ int) string { return d.DayID }),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := m.store.InsertTrip(ctx, trip); err != nil {
		m.rollback(ctx, tripID)
		return nil, nil, fmt.Errorf("insert trip: %w", err)
	}
	return trip, days, nil
}

func (m *Materializer) rollback(ctx context.Context, tripID string) {
	n, err := m.store.DeleteDaysByOrigin(context.WithoutCancel(ctx), []string{tripID})
	if err != nil {
		m.logger.Error("failed to remove partial days", zap.String("trip_id", tripID), zap.Error(err))
		return
	}
	m.logger.Warn("removed partial days", zap.String("trip_id", tripID), zap.Int64("days", n))
}

func summarize(destination string, destinationCount int, days []models.DayRecord, total float64) string {
	activities := lo.SumBy(days, func(d models.DayRecord) int { return len(d.Activities) })
	places := "destination"
	if destinationCount != 1 {
		places = "destinations"
	}
	return fmt.Sprintf("%d-day trip to %s (%d %s) with %d activities, estimated cost %.0f",
		len(days), destination, destinationCount, places, activities, total)
}
