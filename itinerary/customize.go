package itinerary

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/apperr"
	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/metrics"
	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/models"
	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/mq"
	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/planner"
	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/timeutil"
	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/utils"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

type ActivityInput struct {
	Name       string  `json:"name" validate:"required,max=200"`
	Location   string  `json:"location" validate:"max=300"`
	Duration   int     `json:"duration" validate:"gte=0,lte=1440"`
	Cost       float64 `json:"cost" validate:"gte=0"`
	Category   string  `json:"category" validate:"max=50"`
	StartTime  string  `json:"start_time"`
	POIID      string  `json:"poi_id"`
	ActivityID string  `json:"activityId"`
}

// DayEdit changes one day. Nil fields are left alone; a non-nil Activities
// replaces the whole list.
type DayEdit struct {
	DayID       string          `json:"dayId" validate:"required"`
	Theme       *string         `json:"theme" validate:"omitempty,max=200"`
	Description *string         `json:"description" validate:"omitempty,max=2000"`
	Activities  []ActivityInput `json:"activities" validate:"omitempty,max=50,dive"`
	DayTotal    *float64        `json:"dayTotal" validate:"omitempty,gte=0"`
}

type CustomizeInput struct {
	AIGeneratedID string    `json:"aiGeneratedId" validate:"required"`
	ItineraryData []DayEdit `json:"itinerary_data" validate:"omitempty,max=30,dive"`
	Summary       *string   `json:"summary" validate:"omitempty,max=2000"`
}

// trimmed returns a copy with activity names trimmed, so a blank name fails
// the required check.
func (in CustomizeInput) trimmed() CustomizeInput {
	edits := make([]DayEdit, len(in.ItineraryData))
	for i, edit := range in.ItineraryData {
		if edit.Activities != nil {
			acts := make([]ActivityInput, len(edit.Activities))
			for j, a := range edit.Activities {
				a.Name = strings.TrimSpace(a.Name)
				a.StartTime = strings.TrimSpace(a.StartTime)
				acts[j] = a
			}
			edit.Activities = acts
		}
		edits[i] = edit
	}
	if in.ItineraryData != nil {
		in.ItineraryData = edits
	}
	return in
}

type CustomizeResult struct {
	AIGeneratedID         string             `json:"aiGeneratedId"`
	OriginalAIGeneratedID string             `json:"originalAiGeneratedId"`
	IsOriginal            bool               `json:"isOriginal"`
	IsCustomizable        bool               `json:"isCustomizable"`
	TotalCost             float64            `json:"totalCost"`
	Summary               string             `json:"summary"`
	Days                  []models.DayRecord `json:"days"`
	IDMap                 map[string]string  `json:"id_map"`
}

// Customize gets or creates the custom copy of a trip and applies edits to it.
// id may name either the baseline or the custom trip. The baseline and its
// ai_gen days are never written.
func (s *Service) Customize(ctx context.Context, userID string, in CustomizeInput) (*CustomizeResult, error) {
	in = in.trimmed()
	if err := utils.Validate(in); err != nil {
		metrics.CustomizationsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	baseline, err := s.baselineFor(ctx, userID, in.AIGeneratedID)
	if err != nil {
		return nil, err
	}

	lin, err := s.ensureCustom(ctx, baseline)
	if err != nil {
		metrics.CustomizationsTotal.WithLabelValues("failed").Inc()
		return nil, err
	}

	edited, err := s.applyEdits(ctx, lin, in.ItineraryData)
	if err != nil {
		metrics.CustomizationsTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}

	custom := lin.custom
	if edited {
		// Other requests may have edited sibling days; total what is stored.
		lin.customDays, err = s.store.ListDays(ctx, custom.TripID, models.DayCustomized)
		if err != nil {
			return nil, apperr.InternalErr("failed to load custom days", err)
		}
	}
	total := lo.SumBy(lin.customDays, func(d models.DayRecord) float64 { return d.DayTotal })
	if in.Summary != nil || edited || total != custom.TotalCost {
		if in.Summary != nil {
			custom.Summary = strings.TrimSpace(*in.Summary)
		}
		custom.TotalCost = total
		custom.UpdatedAt = s.now()
		if err := s.store.UpdateCustomTrip(ctx, custom); err != nil {
			return nil, apperr.InternalErr("failed to save custom trip", err)
		}
	}

	outcome := "reused"
	if lin.created {
		outcome = "initialized"
	}
	metrics.CustomizationsTotal.WithLabelValues(outcome).Inc()
	if lin.created || edited || in.Summary != nil {
		s.emit(ctx, mq.EventCustomized, custom, outcome)
	}

	return lin.result(), nil
}

// GetCustomized returns the custom copy of a trip without creating one.
func (s *Service) GetCustomized(ctx context.Context, userID, id string) (*CustomizeResult, error) {
	baseline, err := s.baselineFor(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	custom, err := s.store.FindTripByRequest(ctx, baseline.RequestID, models.TripCustom)
	if errors.Is(err, ErrNotFound) {
		return nil, apperr.Missing("custom trip")
	}
	if err != nil {
		return nil, apperr.InternalErr("failed to look up custom trip", err)
	}
	if custom.Initializing {
		return nil, apperr.New(apperr.PartialWriteInconsistency, "custom trip is still initializing")
	}

	lin := &lineage{baseline: baseline, custom: custom}
	if lin.baselineDays, err = s.store.ListDays(ctx, baseline.TripID, models.DayAIGen); err != nil {
		return nil, apperr.InternalErr("failed to load days", err)
	}
	if lin.customDays, err = s.store.ListDays(ctx, custom.TripID, models.DayCustomized); err != nil {
		return nil, apperr.InternalErr("failed to load custom days", err)
	}
	return lin.result(), nil
}

// baselineFor resolves id to the done trip of its lineage.
func (s *Service) baselineFor(ctx context.Context, userID, id string) (*models.TripResult, error) {
	trip, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if trip.Status == models.TripDone {
		return trip, nil
	}
	baseline, err := s.store.FindTripByRequest(ctx, trip.RequestID, models.TripDone)
	if errors.Is(err, ErrNotFound) {
		return nil, apperr.Missing("original trip")
	}
	if err != nil {
		return nil, apperr.InternalErr("failed to load original trip", err)
	}
	return baseline, nil
}

// lineage is a baseline trip with its custom copy, both fully loaded.
type lineage struct {
	baseline     *models.TripResult
	custom       *models.TripResult
	baselineDays []models.DayRecord
	customDays   []models.DayRecord
	created      bool
}

func (l *lineage) result() *CustomizeResult {
	return &CustomizeResult{
		AIGeneratedID:         l.custom.TripID,
		OriginalAIGeneratedID: l.baseline.TripID,
		IsOriginal:            false,
		IsCustomizable:        true,
		TotalCost:             l.custom.TotalCost,
		Summary:               l.custom.Summary,
		Days:                  l.customDays,
		IDMap:                 l.idMap(),
	}
}

// idMap pairs baseline day ids with custom day ids by day number.
func (l *lineage) idMap() map[string]string {
	byNumber := lo.KeyBy(l.customDays, func(d models.DayRecord) int { return d.DayNumber })
	out := make(map[string]string, len(l.baselineDays))
	for _, d := range l.baselineDays {
		if c, ok := byNumber[d.DayNumber]; ok {
			out[d.DayID] = c.DayID
		}
	}
	return out
}

func (l *lineage) customDay(number int) *models.DayRecord {
	for i := range l.customDays {
		if l.customDays[i].DayNumber == number {
			return &l.customDays[i]
		}
	}
	return nil
}

// ensureCustom is the one transition from baseline-only to baseline+custom.
// The custom TripResult is inserted first with Initializing set; the unique
// (request_id, status=custom) index turns a concurrent second insert into
// ConflictAlreadyInitialized, which is absorbed by re-reading the winner.
// Day cloning then fills whatever is missing, so an interrupted clone is
// completed by the next call.
func (s *Service) ensureCustom(ctx context.Context, baseline *models.TripResult) (*lineage, error) {
	unlock, err := s.locker.Lock(ctx, "customize:"+baseline.RequestID)
	if err != nil {
		s.logger.Warn("customize lock unavailable, relying on unique index",
			zap.String("request_id", baseline.RequestID), zap.Error(err))
	} else {
		defer unlock()
	}

	lin := &lineage{baseline: baseline}
	lin.custom, lin.created, err = s.getOrCreateCustomTrip(ctx, baseline)
	if err != nil {
		return nil, err
	}

	lin.baselineDays, err = s.store.ListDays(ctx, baseline.TripID, models.DayAIGen)
	if err != nil {
		return nil, apperr.InternalErr("failed to load days", err)
	}
	lin.customDays, err = s.store.ListDays(ctx, lin.custom.TripID, models.DayCustomized)
	if err != nil {
		return nil, apperr.InternalErr("failed to load custom days", err)
	}

	if lin.custom.Initializing || len(lin.customDays) < len(lin.baselineDays) {
		if err := s.cloneDays(ctx, lin); err != nil {
			return nil, err
		}
	}
	return lin, nil
}

func (s *Service) getOrCreateCustomTrip(ctx context.Context, baseline *models.TripResult) (*models.TripResult, bool, error) {
	existing, err := s.store.FindTripByRequest(ctx, baseline.RequestID, models.TripCustom)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, apperr.InternalErr("failed to look up custom trip", err)
	}

	now := s.now()
	custom := *baseline
	custom.TripID = utils.GetUUID()
	custom.Status = models.TripCustom
	custom.Initializing = true
	custom.ItineraryData = []string{}
	custom.CreatedAt = now
	custom.UpdatedAt = now

	err = s.store.InsertTrip(ctx, &custom)
	if err == nil {
		s.logger.Info("custom trip created",
			zap.String("baseline_id", baseline.TripID), zap.String("custom_id", custom.TripID))
		return &custom, true, nil
	}
	if !errors.Is(err, ErrDuplicate) {
		return nil, false, apperr.InternalErr("failed to create custom trip", err)
	}

	conflict := apperr.Wrap(apperr.ConflictAlreadyInitialized, "custom trip already initialized", err)
	s.logger.Debug("absorbed first-edit race", zap.String("request_id", baseline.RequestID), zap.Error(conflict))
	metrics.CustomizationsTotal.WithLabelValues("conflict_absorbed").Inc()

	existing, err = s.store.FindTripByRequest(ctx, baseline.RequestID, models.TripCustom)
	if err != nil {
		return nil, false, apperr.InternalErr("failed to re-read custom trip", err)
	}
	return existing, false, nil
}

// cloneDays deep-copies every baseline day the custom lineage still lacks.
func (s *Service) cloneDays(ctx context.Context, lin *lineage) error {
	have := lo.KeyBy(lin.customDays, func(d models.DayRecord) int { return d.DayNumber })
	now := s.now()

	var missing []models.DayRecord
	for _, d := range lin.baselineDays {
		if _, ok := have[d.DayNumber]; ok {
			continue
		}
		clone := d
		clone.DayID = utils.GetUUID()
		clone.OriginID = lin.custom.TripID
		clone.Type = models.DayCustomized
		clone.Activities = append([]models.Activity{}, d.Activities...)
		clone.CreatedAt = now
		clone.UpdatedAt = now
		missing = append(missing, clone)
	}

	if err := s.store.InsertDays(ctx, missing); err != nil && !errors.Is(err, ErrDuplicate) {
		return apperr.InternalErr("failed to clone days", err)
	}

	days, err := s.store.ListDays(ctx, lin.custom.TripID, models.DayCustomized)
	if err != nil {
		return apperr.InternalErr("failed to load custom days", err)
	}
	lin.customDays = days

	lin.custom.Initializing = false
	lin.custom.ItineraryData = lo.Map(days, func(d models.DayRecord, _ int) string { return d.DayID })
	lin.custom.TotalCost = lo.SumBy(days, func(d models.DayRecord) float64 { return d.DayTotal })
	lin.custom.UpdatedAt = now
	if err := s.store.UpdateCustomTrip(ctx, lin.custom); err != nil {
		return apperr.InternalErr("failed to finish custom trip", err)
	}
	return nil
}

// applyEdits resolves every edit to the custom day with the same day number
// and applies it to a copy. Nothing is written unless every edit is valid.
// It reports whether anything was written.
func (s *Service) applyEdits(ctx context.Context, lin *lineage, edits []DayEdit) (bool, error) {
	if len(edits) == 0 {
		return false, nil
	}

	staged := map[int]*models.DayRecord{}
	var order []int
	for _, edit := range edits {
		target, err := s.resolveDay(ctx, lin, edit.DayID)
		if err != nil {
			return false, err
		}
		day, ok := staged[target.DayNumber]
		if !ok {
			copied := *target
			copied.Activities = append([]models.Activity{}, target.Activities...)
			day = &copied
			staged[target.DayNumber] = day
			order = append(order, target.DayNumber)
		}
		if err := applyEdit(day, edit); err != nil {
			return false, err
		}
	}

	now := s.now()
	for _, number := range order {
		day := staged[number]
		day.UserModified = true
		day.UpdatedAt = now
		if err := s.store.UpdateCustomDay(ctx, day); err != nil {
			return false, apperr.InternalErr("failed to save day", err)
		}
		*lin.customDay(number) = *day
	}
	return true, nil
}

// resolveDay maps a client day id, which may still point at the baseline, to
// its (origin, day_number) pair and returns the custom day for that number.
func (s *Service) resolveDay(ctx context.Context, lin *lineage, dayID string) (*models.DayRecord, error) {
	day, err := s.store.GetDay(ctx, dayID)
	if errors.Is(err, ErrNotFound) {
		return nil, apperr.Missing("day " + dayID)
	}
	if err != nil {
		return nil, apperr.InternalErr("failed to load day", err)
	}
	if day.OriginID != lin.baseline.TripID && day.OriginID != lin.custom.TripID {
		return nil, apperr.Invalid(fmt.Sprintf("day %s does not belong to trip %s", dayID, lin.baseline.TripID))
	}

	target := lin.customDay(day.DayNumber)
	if target == nil {
		return nil, apperr.Missing(fmt.Sprintf("custom day %d", day.DayNumber))
	}
	return target, nil
}

func applyEdit(day *models.DayRecord, edit DayEdit) error {
	if edit.Theme != nil {
		day.Title = strings.TrimSpace(*edit.Theme)
	}
	if edit.Description != nil {
		day.Description = strings.TrimSpace(*edit.Description)
	}
	if edit.Activities != nil {
		activities, err := scheduleActivities(edit.Activities)
		if err != nil {
			return err
		}
		day.Activities = activities
		day.DayTotal = planner.DayTotal(activities)
	}
	if edit.DayTotal != nil {
		day.DayTotal = *edit.DayTotal
	}
	return nil
}

// scheduleActivities turns edit input into activities. When every activity
// carries a start_time those times are kept; otherwise the list is
// re-sequenced from 08:00. The time slot is always derived from the start.
func scheduleActivities(in []ActivityInput) ([]models.Activity, error) {
	timed := lo.EveryBy(in, func(a ActivityInput) bool { return strings.TrimSpace(a.StartTime) != "" })

	if !timed {
		stops := lo.Map(in, func(a ActivityInput, _ int) planner.Stop {
			return planner.Stop{
				Name:       strings.TrimSpace(a.Name),
				Location:   a.Location,
				Category:   a.Category,
				POIID:      a.POIID,
				ActivityID: a.ActivityID,
				Minutes:    a.Duration,
				Cost:       a.Cost,
			}
		})
		activities, err := planner.Sequence(stops)
		if errors.Is(err, planner.ErrDayOverflow) {
			return nil, apperr.Invalid("activities do not fit in one day")
		}
		return activities, err
	}

	out := make([]models.Activity, 0, len(in))
	for i, a := range in {
		start, err := timeutil.ParseClock(a.StartTime)
		if err != nil {
			return nil, apperr.Invalid(fmt.Sprintf("activities[%d].start_time: %v", i, err))
		}
		end := start + a.Duration
		if end > timeutil.MinutesPerDay {
			return nil, apperr.Invalid(fmt.Sprintf("activities[%d] ends after midnight", i))
		}
		out = append(out, models.Activity{
			Name:       strings.TrimSpace(a.Name),
			Location:   a.Location,
			Duration:   a.Duration,
			Cost:       a.Cost,
			Category:   a.Category,
			TimeSlot:   string(timeutil.SlotAt(start)),
			StartTime:  timeutil.FormatClock(start),
			EndTime:    timeutil.FormatClock(end),
			POIID:      a.POIID,
			ActivityID: a.ActivityID,
		})
	}
	return out, nil
}
