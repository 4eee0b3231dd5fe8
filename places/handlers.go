package places

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/apperr"
	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/models"
	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/planner"
	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/utils"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// Handlers exposes the read side of the catalog.
type Handlers struct {
	Catalog      planner.Catalog
	Destinations DestinationLister
	Logger       *zap.Logger
}

// GET /api/pois?destination=Hue&budget_level=high&budget_total=0
func (h *Handlers) ListPOIs(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	q := r.URL.Query()
	label := q.Get("destination")
	if label == "" {
		utils.RespondWithAppError(w, h.Logger, apperr.Invalid("destination is required"))
		return
	}
	total, _ := strconv.ParseFloat(q.Get("budget_total"), 64)

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	dest, err := h.Catalog.ResolveDestination(ctx, label)
	if err != nil {
		utils.RespondWithAppError(w, h.Logger, apperr.InternalErr("failed to resolve destination", err))
		return
	}
	if dest == nil {
		utils.RespondWithAppError(w, h.Logger, apperr.Missing("destination"))
		return
	}

	pois, err := h.Catalog.FindPOIs(ctx, planner.POIQuery{
		DestinationID: dest.DestinationID,
		Band:          planner.BudgetBand(q.Get("budget_level"), total),
		Limit:         planner.PoolLimit,
	})
	if err != nil {
		utils.RespondWithAppError(w, h.Logger, apperr.InternalErr("failed to fetch pois", err))
		return
	}
	if pois == nil {
		pois = []models.POI{}
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"destination": dest,
		"pois":        pois,
	})
}

// DestinationLister lists every catalog destination.
type DestinationLister interface {
	ListDestinations(ctx context.Context) ([]models.Destination, error)
}

// GET /api/destinations
func (h *Handlers) ListDestinations(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	dests, err := h.Destinations.ListDestinations(ctx)
	if err != nil {
		utils.RespondWithAppError(w, h.Logger, apperr.InternalErr("failed to list destinations", err))
		return
	}
	if dests == nil {
		dests = []models.Destination{}
	}
	utils.RespondWithJSON(w, http.StatusOK, dests)
}
