package itinerary

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/apperr"
	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/metrics"
	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/models"
	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/mq"
	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/places"
	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/planner"
	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/utils"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

const (
	DefaultDurationDays = 3
	MaxDurationDays     = 30

	SourceHeuristic = "heuristic"
	SourceAI        = "ai"
)

type GenerateInput struct {
	Destination  string   `json:"destination"`
	DurationDays *int     `json:"duration_days" validate:"omitempty,min=1,max=30"`
	StartDate    string   `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate      string   `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	BudgetLevel  string   `json:"budget_level" validate:"omitempty,oneof=low medium high"`
	BudgetTotal  float64  `json:"budget_total" validate:"gte=0"`
	Participants int      `json:"participant_number" validate:"gte=0,lte=100"`
	Preferences  []string `json:"preferences" validate:"max=20"`
}

// Unscheduled is a candidate that fit no day.
type Unscheduled struct {
	POIID   string `json:"poi_id"`
	Name    string `json:"name"`
	Minutes int    `json:"duration"`
	Reason  string `json:"reason"`
}

type GenerateResult struct {
	RequestID    string                `json:"request_id"`
	TripID       string                `json:"aiGeneratedId"`
	Destination  models.DestinationRef `json:"destination"`
	Source       string                `json:"source"`
	DurationDays int                   `json:"duration_days"`
	TotalCost    float64               `json:"totalCost"`
	Summary      string                `json:"summary"`
	Days         []models.DayRecord    `json:"days"`
	Unscheduled  []Unscheduled         `json:"unscheduled"`
}

// ResolveDuration picks the trip length: an explicit duration wins, then the
// inclusive span of start and end dates, then the default.
func ResolveDuration(in GenerateInput) (int, error) {
	days := DefaultDurationDays
	switch {
	case in.DurationDays != nil:
		days = *in.DurationDays
	case in.StartDate != "" && in.EndDate != "":
		start, err := time.Parse(time.DateOnly, in.StartDate)
		if err != nil {
			return 0, apperr.Invalid("start_date must be YYYY-MM-DD")
		}
		end, err := time.Parse(time.DateOnly, in.EndDate)
		if err != nil {
			return 0, apperr.Invalid("end_date must be YYYY-MM-DD")
		}
		if end.Before(start) {
			return 0, apperr.Invalid("end_date is before start_date")
		}
		days = int(end.Sub(start).Hours()/24) + 1
	case in.StartDate != "" || in.EndDate != "":
		return 0, apperr.Invalid("start_date and end_date must be given together")
	}
	if days < 1 || days > MaxDurationDays {
		return 0, apperr.Invalid(fmt.Sprintf("trip length must be between 1 and %d days", MaxDurationDays))
	}
	return days, nil
}

// Generate records the request and runs it to completion.
func (s *Service) Generate(ctx context.Context, userID string, in GenerateInput) (*GenerateResult, error) {
	if err := utils.Validate(in); err != nil {
		return nil, err
	}
	days, err := ResolveDuration(in)
	if err != nil {
		return nil, err
	}

	participants := in.Participants
	if participants < 1 {
		participants = 1
	}
	now := s.now()
	req := &models.TripRequest{
		RequestID:    utils.GetUUID(),
		UserID:       userID,
		Destination:  strings.TrimSpace(in.Destination),
		DurationDays: days,
		StartDate:    in.StartDate,
		EndDate:      in.EndDate,
		BudgetLevel:  strings.ToLower(in.BudgetLevel),
		BudgetTotal:  in.BudgetTotal,
		Participants: participants,
		Preferences:  utils.SplitTags(in.Preferences),
		Status:       models.RequestPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.CreateRequest(ctx, req); err != nil {
		return nil, apperr.InternalErr("failed to save trip request", err)
	}
	return s.run(ctx, req)
}

// Retry re-runs a failed request that was marked retryable.
func (s *Service) Retry(ctx context.Context, userID, requestID string) (*GenerateResult, error) {
	req, err := s.ownedRequest(ctx, userID, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != models.RequestFailed || !req.Retryable {
		return nil, apperr.Invalid("trip request is not retryable")
	}
	// Only one concurrent retry wins the failed -> processing transition.
	err = s.store.ClaimRetry(ctx, req.RequestID, s.now())
	if errors.Is(err, ErrNotFound) {
		return nil, apperr.Invalid("trip request is not retryable")
	}
	if err != nil {
		return nil, apperr.InternalErr("failed to update trip request", err)
	}
	req.Error = ""
	req.Retryable = false
	return s.run(ctx, req)
}

// RequestStatus returns a request owned by userID. A request left processing
// after its trip was written is reported, and saved, as completed.
func (s *Service) RequestStatus(ctx context.Context, userID, requestID string) (*models.TripRequest, error) {
	req, err := s.ownedRequest(ctx, userID, requestID)
	if err != nil || req.Status != models.RequestProcessing {
		return req, err
	}

	trip, err := s.store.FindTripByRequest(ctx, req.RequestID, models.TripDone)
	if errors.Is(err, ErrNotFound) {
		return req, nil
	}
	if err != nil {
		return nil, apperr.InternalErr("failed to look up trip", err)
	}
	req.Status = models.RequestCompleted
	req.TripResultID = trip.TripID
	req.UpdatedAt = s.now()
	if err := s.store.SaveRequest(ctx, req); err != nil {
		s.logger.Warn("failed to repair completed request",
			zap.String("request_id", req.RequestID), zap.Error(err))
	}
	return req, nil
}

func (s *Service) ownedRequest(ctx context.Context, userID, requestID string) (*models.TripRequest, error) {
	req, err := s.store.GetRequest(ctx, requestID)
	if errors.Is(err, ErrNotFound) {
		return nil, apperr.Missing("trip request")
	}
	if err != nil {
		return nil, apperr.InternalErr("failed to load trip request", err)
	}
	if req.UserID != userID {
		return nil, apperr.New(apperr.Forbidden, "trip request belongs to another user")
	}
	return req, nil
}

func (s *Service) run(ctx context.Context, req *models.TripRequest) (*GenerateResult, error) {
	started := time.Now()
	req.Status = models.RequestProcessing
	req.UpdatedAt = s.now()
	if err := s.store.SaveRequest(ctx, req); err != nil {
		return nil, apperr.InternalErr("failed to update trip request", err)
	}

	labels := utils.SplitList(req.Destination)
	if len(labels) == 0 {
		ref, err := s.suggestDestination(ctx, req.Preferences)
		if err != nil {
			return nil, s.fail(ctx, req, err, false)
		}
		req.ResolvedDest = ref
		req.Destination = ref.Name
		labels = []string{ref.Name}
	} else {
		req.ResolvedDest = s.describeDestination(ctx, labels)
	}

	pool, err := s.pool.Build(ctx, labels, req.BudgetLevel, req.BudgetTotal)
	if err != nil {
		return nil, s.fail(ctx, req, apperr.InternalErr("failed to build candidate pool", err), true)
	}

	plans, source, unscheduled := s.plan(ctx, req, pool)

	destination := strings.Join(labels, ", ")
	trip, days, err := s.materializer.Materialize(ctx, req, destination, len(labels), plans, source)
	if err != nil {
		return nil, s.fail(ctx, req, apperr.InternalErr("failed to save itinerary", err), true)
	}

	req.Status = models.RequestCompleted
	req.TripResultID = trip.TripID
	req.UpdatedAt = s.now()
	if err := s.store.SaveRequest(context.WithoutCancel(ctx), req); err != nil {
		s.logger.Error("failed to mark request completed",
			zap.String("request_id", req.RequestID), zap.String("trip_id", trip.TripID), zap.Error(err))
	}

	metrics.GenerationsTotal.WithLabelValues(source, models.RequestCompleted).Inc()
	metrics.GenerationDuration.WithLabelValues(source).Observe(time.Since(started).Seconds())
	s.emit(ctx, mq.EventGenerated, trip, source)
	s.logger.Info("itinerary generated",
		zap.String("request_id", req.RequestID),
		zap.String("trip_id", trip.TripID),
		zap.String("source", source),
		zap.Int("days", len(days)),
		zap.Int("pool", len(pool)),
		zap.Int("unscheduled", len(unscheduled)))

	return &GenerateResult{
		RequestID:    req.RequestID,
		TripID:       trip.TripID,
		Destination:  *req.ResolvedDest,
		Source:       source,
		DurationDays: trip.DurationDays,
		TotalCost:    trip.TotalCost,
		Summary:      trip.Summary,
		Days:         days,
		Unscheduled:  unscheduled,
	}, nil
}

// plan prefers the external planner and falls back to the heuristic on any
// failure. An empty pool yields free days.
func (s *Service) plan(ctx context.Context, req *models.TripRequest, pool []planner.Candidate) ([]planner.DayPlan, string, []Unscheduled) {
	if s.external != nil && len(pool) > 0 {
		plans, err := s.external.Plan(ctx, req.DurationDays, pool, req.Participants)
		if err == nil {
			return plans, SourceAI, unscheduledFrom(pool, plans)
		}
		s.logger.Info("falling back to heuristic planner",
			zap.String("request_id", req.RequestID), zap.String("kind", string(apperr.KindOf(err))))
	}

	plans, alloc := planner.Plan(pool, req.DurationDays, req.Participants)
	unscheduled := lo.Map(alloc.Dropped, func(c planner.Candidate, _ int) Unscheduled {
		return Unscheduled{
			POIID:   c.POI.POIID,
			Name:    c.POI.Name,
			Minutes: c.Minutes,
			Reason:  "does not fit any day",
		}
	})
	metrics.UnscheduledPOIsTotal.Add(float64(len(unscheduled)))
	return plans, SourceHeuristic, unscheduled
}

// unscheduledFrom lists pool entries the external plan left out.
func unscheduledFrom(pool []planner.Candidate, plans []planner.DayPlan) []Unscheduled {
	used := map[string]bool{}
	for _, p := range plans {
		for _, a := range p.Activities {
			used[a.POIID] = true
		}
	}
	out := []Unscheduled{}
	for _, c := range pool {
		if !used[c.POI.POIID] {
			out = append(out, Unscheduled{POIID: c.POI.POIID, Name: c.POI.Name, Minutes: c.Minutes, Reason: "not chosen by planner"})
		}
	}
	return out
}

func (s *Service) fail(ctx context.Context, req *models.TripRequest, err error, retryable bool) error {
	req.Status = models.RequestFailed
	req.Retryable = retryable
	req.Error = apperr.Message(err)
	req.UpdatedAt = s.now()
	if saveErr := s.store.SaveRequest(context.WithoutCancel(ctx), req); saveErr != nil {
		s.logger.Error("failed to mark request failed", zap.String("request_id", req.RequestID), zap.Error(saveErr))
	}
	metrics.GenerationsTotal.WithLabelValues("none", models.RequestFailed).Inc()
	s.events.Emit(ctx, mq.Event{Name: mq.EventFailed, RequestID: req.RequestID, UserID: req.UserID, Detail: req.Error, At: s.now()})
	return err
}

// describeDestination builds the destination block for user-supplied labels.
func (s *Service) describeDestination(ctx context.Context, labels []string) *models.DestinationRef {
	ref := &models.DestinationRef{Name: strings.Join(labels, ", ")}
	dest, err := s.catalog.ResolveDestination(ctx, labels[0])
	if err != nil {
		s.logger.Warn("resolve destination", zap.String("label", labels[0]), zap.Error(err))
		return ref
	}
	if dest != nil {
		ref.ID = dest.DestinationID
	}
	return ref
}

// suggestDestination picks a destination for a request that left it blank:
// the external planner first, then the best tag overlap.
func (s *Service) suggestDestination(ctx context.Context, preferences []string) (*models.DestinationRef, error) {
	options, err := s.catalog.ListDestinations(ctx)
	if err != nil {
		return nil, apperr.InternalErr("failed to list destinations", err)
	}
	if len(options) == 0 {
		return nil, apperr.Invalid("destination is required")
	}

	if s.external != nil {
		suggestion, err := s.external.SuggestDestination(ctx, preferences, options)
		if err == nil {
			return &models.DestinationRef{
				Name:             suggestion.Destination.Name,
				ID:               suggestion.Destination.DestinationID,
				AISuggested:      true,
				SuggestionReason: suggestion.Reason,
			}, nil
		}
	}

	dest, reason := PickDestination(preferences, options)
	return &models.DestinationRef{
		Name:             dest.Name,
		ID:               dest.DestinationID,
		AISuggested:      true,
		SuggestionReason: reason,
	}, nil
}

// PickDestination scores options by how many preference tags they share.
// Ties go to the destination with more POIs, then by name. options must not
// be empty.
func PickDestination(preferences []string, options []models.Destination) (models.Destination, string) {
	prefs := lo.Map(preferences, func(p string, _ int) string { return places.NormalizeName(p) })

	type scored struct {
		dest    models.Destination
		matched []string
	}
	ranked := lo.Map(options, func(d models.Destination, _ int) scored {
		tags := lo.Map(d.Tags, func(t string, _ int) string { return places.NormalizeName(t) })
		return scored{dest: d, matched: lo.Intersect(prefs, tags)}
	})
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if len(a.matched) != len(b.matched) {
			return len(a.matched) > len(b.matched)
		}
		if a.dest.POICount != b.dest.POICount {
			return a.dest.POICount > b.dest.POICount
		}
		return a.dest.Name < b.dest.Name
	})

	best := ranked[0]
	if len(best.matched) == 0 {
		return best.dest, fmt.Sprintf("Popular destination with %d attractions", best.dest.POICount)
	}
	sort.Strings(best.matched)
	return best.dest, "Matches your interests: " + strings.Join(best.matched, ", ")
}
