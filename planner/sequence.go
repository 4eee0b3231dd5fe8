package planner

import (
	"errors"
	"fmt"
	"strings"

	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/models"
	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/timeutil"

	"github.com/samber/lo"
)

// ErrDayOverflow is returned when a day's schedule would run past midnight.
var ErrDayOverflow = errors.New("schedule runs past midnight")

// Stop is one place to visit, before it gets clock times.
type Stop struct {
	Name       string
	Location   string
	Category   string
	POIID      string
	ActivityID string
	Minutes    int
	Cost       float64
}

// DayPlan is the source-independent shape both the heuristic and the external
// plan produce.
type DayPlan struct {
	DayNumber   int
	Title       string
	Description string
	Activities  []models.Activity
}

// DayStart is 08:00 in minutes since midnight.
func DayStart() int {
	return DayStartHour * 60
}

// Sequence assigns start and end times in the given order, starting at 08:00
// with a travel buffer between stops. Stops are never reordered. A day that
// would end after midnight is rejected rather than wrapped.
func Sequence(stops []Stop) ([]models.Activity, error) {
	cursor := DayStart()
	out := make([]models.Activity, 0, len(stops))

	for _, s := range stops {
		start := cursor
		end := start + s.Minutes
		if end > timeutil.MinutesPerDay {
			return nil, fmt.Errorf("%w: %q ends at %s", ErrDayOverflow, s.Name, timeutil.FormatClock(end))
		}
		out = append(out, models.Activity{
			Name:       s.Name,
			Location:   s.Location,
			Duration:   s.Minutes,
			Cost:       s.Cost,
			Category:   s.Category,
			TimeSlot:   string(timeutil.SlotAt(start)),
			StartTime:  timeutil.FormatClock(start),
			EndTime:    timeutil.FormatClock(end),
			POIID:      s.POIID,
			ActivityID: s.ActivityID,
		})
		cursor = end + TravelBufferMinutes
	}
	return out, nil
}

// DayTotal sums activity costs.
func DayTotal(activities []models.Activity) float64 {
	return lo.SumBy(activities, func(a models.Activity) float64 { return a.Cost })
}

// Plan runs the allocator and the sequencer over the pool. Allocated days
// always fit inside the daily ceiling, so sequencing cannot overflow here.
func Plan(pool []Candidate, days, participants int) ([]DayPlan, Allocation) {
	alloc := Allocate(pool, days)
	plans := make([]DayPlan, 0, len(alloc.Days))

	for i, bucket := range alloc.Days {
		stops := lo.Map(bucket, func(c Candidate, _ int) Stop { return c.Stop(participants) })
		activities, _ := Sequence(stops)
		plans = append(plans, DayPlan{
			DayNumber:   i + 1,
			Title:       dayTitle(i+1, bucket),
			Description: dayDescription(bucket),
			Activities:  activities,
		})
	}
	return plans, alloc
}

func dayTitle(n int, bucket []Candidate) string {
	if len(bucket) == 0 {
		return fmt.Sprintf("Day %d: Free time", n)
	}
	return fmt.Sprintf("Day %d: %s", n, bucket[0].Destination)
}

func dayDescription(bucket []Candidate) string {
	return Describe(lo.Map(bucket, func(c Candidate, _ int) string { return c.POI.Name }))
}

// Describe renders the default day description for the visited place names.
func Describe(names []string) string {
	switch len(names) {
	case 0:
		return "No scheduled visits. Explore at your own pace."
	case 1:
		return "Visit " + names[0] + "."
	}
	return "Visit " + strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1] + "."
}
