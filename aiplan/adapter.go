// Package aiplan asks a language model for a day plan and reshapes the answer
// into the same DayPlan the heuristic planner produces. Every failure comes
// back as UpstreamUnavailable so the caller can fall back.
package aiplan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/apperr"
	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/metrics"
	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/models"
	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/places"
	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/planner"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// errMalformed marks replies that parsed but do not describe a usable plan.
var errMalformed = errors.New("malformed plan")

type Adapter struct {
	completer Completer
	timeout   time.Duration
	logger    *zap.Logger
}

func NewAdapter(completer Completer, timeout time.Duration, logger *zap.Logger) *Adapter {
	return &Adapter{completer: completer, timeout: timeout, logger: logger}
}

type promptPOI struct {
	POIID       string  `json:"poi_id"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Destination string  `json:"destination"`
	Minutes     int     `json:"duration_minutes"`
	EntryFee    float64 `json:"entry_fee"`
	Rating      float64 `json:"rating"`
}

type planReply struct {
	Days []struct {
		DayNumber   int    `json:"day_number"`
		Title       string `json:"title"`
		Description string `json:"description"`
		Activities  []struct {
			Name     string   `json:"name"`
			POIID    string   `json:"poi_id"`
			Location string   `json:"location"`
			Category string   `json:"category"`
			Duration *int     `json:"duration"`
			Cost     *float64 `json:"cost"`
		} `json:"activities"`
	} `json:"days"`
}

const planSystemPrompt = `You are a travel planner. Reply with JSON only, no prose.
Schema: {"days":[{"day_number":1,"title":"","description":"","activities":[{"name":"","poi_id":"","location":"","category":"","duration":90,"cost":0}]}]}
Use poi_id values from the candidate list when an activity visits a listed place. Duration is in minutes.
Each day starts at 08:00 and should end by 18:00 including 30 minutes of travel between stops.`

// Plan requests a plan for the given number of days built from pool.
func (a *Adapter) Plan(ctx context.Context, days int, pool []planner.Candidate, participants int) ([]planner.DayPlan, error) {
	if days < 1 {
		return nil, apperr.Upstream(fmt.Errorf("%w: day count %d", errMalformed, days))
	}
	if participants < 1 {
		participants = 1
	}

	candidates := lo.Map(pool, func(c planner.Candidate, _ int) promptPOI {
		return promptPOI{
			POIID:       c.POI.POIID,
			Name:        c.POI.Name,
			Category:    c.POI.Category,
			Destination: c.Destination,
			Minutes:     c.Minutes,
			EntryFee:    c.POI.EntryFee.Adult,
			Rating:      c.POI.Rating,
		}
	})
	body, err := json.Marshal(map[string]any{"day_count": days, "candidates": candidates})
	if err != nil {
		return nil, apperr.Upstream(err)
	}

	raw, err := a.complete(ctx, planSystemPrompt, string(body))
	if err != nil {
		return nil, err
	}

	var reply planReply
	if err := json.Unmarshal([]byte(cleanJSON(raw)), &reply); err != nil {
		return nil, a.fail("parse", fmt.Errorf("invalid plan json: %w", err))
	}

	plans, err := normalize(reply, days, pool, participants)
	if err != nil {
		return nil, a.fail("structure", err)
	}
	return plans, nil
}

// Suggestion is the destination picked for a request that left it blank.
type Suggestion struct {
	Destination models.Destination
	Reason      string
}

const suggestSystemPrompt = `You pick one travel destination from a fixed list.
Reply with JSON only: {"destination":"<name from the list>","reason":"<one sentence>"}`

// SuggestDestination asks the model to choose among options for the given
// preference tags. The answer must name one of the options.
func (a *Adapter) SuggestDestination(ctx context.Context, preferences []string, options []models.Destination) (*Suggestion, error) {
	if len(options) == 0 {
		return nil, apperr.Upstream(fmt.Errorf("%w: no destinations to choose from", errMalformed))
	}

	listed := lo.Map(options, func(d models.Destination, _ int) map[string]any {
		return map[string]any{"name": d.Name, "tags": d.Tags}
	})
	body, err := json.Marshal(map[string]any{"preferences": preferences, "destinations": listed})
	if err != nil {
		return nil, apperr.Upstream(err)
	}

	raw, err := a.complete(ctx, suggestSystemPrompt, string(body))
	if err != nil {
		return nil, err
	}

	var reply struct {
		Destination string `json:"destination"`
		Reason      string `json:"reason"`
	}
	if err := json.Unmarshal([]byte(cleanJSON(raw)), &reply); err != nil {
		return nil, a.fail("parse", fmt.Errorf("invalid suggestion json: %w", err))
	}

	key := places.NormalizeName(reply.Destination)
	dest, ok := lo.Find(options, func(d models.Destination) bool { return places.NormalizeName(d.Name) == key })
	if !ok || key == "" {
		return nil, a.fail("structure", fmt.Errorf("%w: unknown destination %q", errMalformed, reply.Destination))
	}

	reason := strings.TrimSpace(reply.Reason)
	if reason == "" {
		reason = "Suggested for your preferences"
	}
	return &Suggestion{Destination: dest, Reason: reason}, nil
}

func (a *Adapter) complete(ctx context.Context, system, user string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	raw, err := a.completer.Complete(ctx, system, user)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", a.fail("timeout", err)
		}
		return "", a.fail("transport", err)
	}
	return raw, nil
}

func (a *Adapter) fail(reason string, err error) error {
	metrics.AIPlanFailuresTotal.WithLabelValues(reason).Inc()
	a.logger.Warn("external plan unavailable", zap.String("reason", reason), zap.Error(err))
	return apperr.Upstream(err)
}

// cleanJSON strips markdown fences and any prose around the outermost object.
func cleanJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}

func normalize(reply planReply, days int, pool []planner.Candidate, participants int) ([]planner.DayPlan, error) {
	if len(reply.Days) != days {
		return nil, fmt.Errorf("%w: expected %d days, got %d", errMalformed, days, len(reply.Days))
	}

	byID := lo.SliceToMap(pool, func(c planner.Candidate) (string, planner.Candidate) { return c.POI.POIID, c })
	plans := make([]planner.DayPlan, days)
	seen := make([]bool, days)

	for i, d := range reply.Days {
		n := d.DayNumber
		if n == 0 {
			n = i + 1
		}
		if n < 1 || n > days || seen[n-1] {
			return nil, fmt.Errorf("%w: bad day_number %d", errMalformed, d.DayNumber)
		}
		seen[n-1] = true

		stops := make([]planner.Stop, 0, len(d.Activities))
		for _, act := range d.Activities {
			var stop planner.Stop
			if c, ok := byID[act.POIID]; ok && act.POIID != "" {
				stop = c.Stop(participants)
			} else {
				stop = planner.Stop{Minutes: planner.DefaultVisitMinutes}
			}
			if name := strings.TrimSpace(act.Name); name != "" {
				stop.Name = name
			}
			if stop.Name == "" {
				return nil, fmt.Errorf("%w: day %d has an unnamed activity", errMalformed, n)
			}
			if act.Location != "" {
				stop.Location = act.Location
			}
			if act.Category != "" && stop.Category == "" {
				stop.Category = act.Category
			}
			if act.Duration != nil && *act.Duration > 0 {
				stop.Minutes = *act.Duration
			}
			if act.Duration != nil && *act.Duration < 0 {
				return nil, fmt.Errorf("%w: negative duration for %q", errMalformed, stop.Name)
			}
			if act.Cost != nil {
				if *act.Cost < 0 {
					return nil, fmt.Errorf("%w: negative cost for %q", errMalformed, stop.Name)
				}
				stop.Cost = *act.Cost
			}
			if stop.Category == "" {
				stop.Category = "sightseeing"
			}
			stops = append(stops, stop)
		}

		activities, err := planner.Sequence(stops)
		if err != nil {
			return nil, fmt.Errorf("day %d: %w", n, err)
		}

		title := strings.TrimSpace(d.Title)
		if title == "" {
			title = fmt.Sprintf("Day %d", n)
		}
		desc := strings.TrimSpace(d.Description)
		if desc == "" {
			desc = planner.Describe(lo.Map(stops, func(s planner.Stop, _ int) string { return s.Name }))
		}
		plans[n-1] = planner.DayPlan{
			DayNumber:   n,
			Title:       title,
			Description: desc,
			Activities:  activities,
		}
	}
	return plans, nil
}
