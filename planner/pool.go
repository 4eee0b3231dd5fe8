// Package planner turns a trip request into a day-by-day schedule: it builds a
// fee-banded candidate pool from the POI catalog, distributes the pool across
// days with a longest-first load balancer and sequences each day into clock
// times.
package planner

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/metrics"
	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/models"
	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/timeutil"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

const (
	// PoolLimit is how many POIs are taken per destination.
	PoolLimit = 15

	PremiumBudgetTotal = 10_000_000
	PremiumMinFee      = 1_000_000
	BudgetMaxTotal     = 3_000_000
	BudgetMaxFee       = 500_000
)

type BandKind string

const (
	BandAny     BandKind = "any"
	BandPremium BandKind = "premium"
	BandBudget  BandKind = "budget"
)

// FeeBand is the entry-fee predicate applied to a destination's POIs.
type FeeBand struct {
	Kind BandKind
	// Min is inclusive, Max is exclusive. Zero means unbounded.
	Min float64
	Max float64
}

// BudgetBand picks the fee band for a budget tier and/or numeric total. The
// premium rule is checked first.
func BudgetBand(level string, total float64) FeeBand {
	level = strings.ToLower(strings.TrimSpace(level))
	switch {
	case level == "high" || total >= PremiumBudgetTotal:
		return FeeBand{Kind: BandPremium, Min: PremiumMinFee}
	case level == "low" || (total > 0 && total < BudgetMaxTotal):
		return FeeBand{Kind: BandBudget, Max: BudgetMaxFee}
	default:
		return FeeBand{Kind: BandAny}
	}
}

func (b FeeBand) Constrained() bool { return b.Kind != BandAny }

func (b FeeBand) Matches(fee float64) bool {
	if b.Min > 0 && fee < b.Min {
		return false
	}
	if b.Max > 0 && fee >= b.Max {
		return false
	}
	return true
}

type Order int

const (
	// ByFeeThenRating orders by entry fee desc, then rating desc.
	ByFeeThenRating Order = iota
	// ByRating orders by rating desc, then entry fee desc.
	ByRating
)

type POIQuery struct {
	DestinationID string
	Band          FeeBand
	Order         Order
	Limit         int
}

// Catalog is the read side of the POI catalog.
type Catalog interface {
	// ResolveDestination returns the destination whose normalized name equals
	// label, or nil when there is none.
	ResolveDestination(ctx context.Context, label string) (*models.Destination, error)
	// MatchDestinations returns destinations whose normalized name contains
	// label or is contained by it.
	MatchDestinations(ctx context.Context, label string) ([]models.Destination, error)
	FindPOIs(ctx context.Context, q POIQuery) ([]models.POI, error)
}

// Candidate is a POI selected for scheduling, annotated with the destination
// label it was found under.
type Candidate struct {
	POI         models.POI
	Destination string
	Minutes     int
}

// VisitMinutes converts the catalog duration, defaulting to two hours.
func VisitMinutes(p models.POI) int {
	m := timeutil.ToMinutes(p.RecommendedDuration.Hours, p.RecommendedDuration.Minutes)
	if m <= 0 {
		return DefaultVisitMinutes
	}
	return m
}

// Stop converts the candidate into a schedulable stop costed for the party.
func (c Candidate) Stop(participants int) Stop {
	if participants < 1 {
		participants = 1
	}
	location := c.POI.Address
	if location == "" {
		location = c.Destination
	}
	return Stop{
		Name:     c.POI.Name,
		Location: location,
		Category: c.POI.Category,
		POIID:    c.POI.POIID,
		Minutes:  c.Minutes,
		Cost:     c.POI.EntryFee.Adult * float64(participants),
	}
}

type Builder struct {
	catalog Catalog
	cache   Cache
	logger  *zap.Logger
}

func NewBuilder(catalog Catalog, cache Cache, logger *zap.Logger) *Builder {
	if cache == nil {
		cache = nopCache{}
	}
	return &Builder{catalog: catalog, cache: cache, logger: logger}
}

// Build returns the ordered candidate pool for the given destination labels.
// An empty pool is not an error; the caller decides how to degrade.
func (b *Builder) Build(ctx context.Context, labels []string, level string, total float64) ([]Candidate, error) {
	band := BudgetBand(level, total)
	var pool []Candidate

	for _, label := range labels {
		pois, err := b.forDestination(ctx, label, band)
		if err != nil {
			return nil, err
		}
		for _, p := range pois {
			pool = append(pool, Candidate{POI: p, Destination: label, Minutes: VisitMinutes(p)})
		}
	}

	return lo.UniqBy(pool, func(c Candidate) string { return c.POI.POIID }), nil
}

func (b *Builder) forDestination(ctx context.Context, label string, band FeeBand) ([]models.POI, error) {
	dest, err := b.catalog.ResolveDestination(ctx, label)
	if err != nil {
		return nil, fmt.Errorf("resolve destination %q: %w", label, err)
	}

	if dest != nil {
		pois, err := b.fetch(ctx, dest.DestinationID, band, ByFeeThenRating)
		if err != nil {
			return nil, err
		}
		if len(pois) == 0 && band.Constrained() {
			metrics.PoolFallbacksTotal.WithLabelValues("band").Inc()
			b.logger.Info("fee band empty, falling back to unfiltered pool",
				zap.String("destination", label), zap.String("band", string(band.Kind)))
			pois, err = b.fetch(ctx, dest.DestinationID, FeeBand{Kind: BandAny}, ByRating)
			if err != nil {
				return nil, err
			}
		}
		if len(pois) > 0 {
			return pois, nil
		}
	}

	matches, err := b.catalog.MatchDestinations(ctx, label)
	if err != nil {
		return nil, fmt.Errorf("match destination %q: %w", label, err)
	}
	for _, m := range matches {
		if dest != nil && m.DestinationID == dest.DestinationID {
			continue
		}
		pois, err := b.fetch(ctx, m.DestinationID, FeeBand{Kind: BandAny}, ByRating)
		if err != nil {
			return nil, err
		}
		if len(pois) > 0 {
			metrics.PoolFallbacksTotal.WithLabelValues("fuzzy").Inc()
			b.logger.Info("destination resolved by fuzzy match",
				zap.String("label", label), zap.String("matched", m.Name))
			return pois, nil
		}
	}

	b.logger.Warn("no points of interest for destination", zap.String("destination", label))
	return nil, nil
}

func (b *Builder) fetch(ctx context.Context, destID string, band FeeBand, order Order) ([]models.POI, error) {
	key := fmt.Sprintf("pool:%s:%s:%d", destID, band.Kind, order)
	if pois, ok := b.cache.Get(ctx, key); ok {
		return pois, nil
	}

	pois, err := b.catalog.FindPOIs(ctx, POIQuery{DestinationID: destID, Band: band, Order: order, Limit: PoolLimit})
	if err != nil {
		return nil, fmt.Errorf("find pois for %s: %w", destID, err)
	}

	pois = lo.Filter(pois, func(p models.POI, _ int) bool { return band.Matches(p.EntryFee.Adult) })
	SortPOIs(pois, order)
	if len(pois) > PoolLimit {
		pois = pois[:PoolLimit]
	}

	b.cache.Set(ctx, key, pois)
	return pois, nil
}

// SortPOIs orders in place. Ties fall back to name then id so the result does
// not depend on store ordering.
func SortPOIs(pois []models.POI, order Order) {
	sort.SliceStable(pois, func(i, j int) bool {
		a, b := pois[i], pois[j]
		if order == ByRating {
			if a.Rating != b.Rating {
				return a.Rating > b.Rating
			}
			if a.EntryFee.Adult != b.EntryFee.Adult {
				return a.EntryFee.Adult > b.EntryFee.Adult
			}
		} else {
			if a.EntryFee.Adult != b.EntryFee.Adult {
				return a.EntryFee.Adult > b.EntryFee.Adult
			}
			if a.Rating != b.Rating {
				return a.Rating > b.Rating
			}
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.POIID < b.POIID
	})
}
