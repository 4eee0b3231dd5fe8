package itinerary

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/apperr"
	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/utils"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// generateTimeout leaves room for the external planner timeout plus storage.
const generateTimeout = 60 * time.Second

type Handlers struct {
	Service *Service
	Logger  *zap.Logger
}

func NewHandlers(svc *Service, logger *zap.Logger) *Handlers {
	return &Handlers{Service: svc, Logger: logger}
}

func (h *Handlers) fail(w http.ResponseWriter, err error) {
	utils.RespondWithAppError(w, h.Logger, err)
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(v); err != nil {
		return apperr.Wrap(apperr.ValidationFailed, "invalid request payload", err)
	}
	return nil
}

func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, apperr.Unauthorized, "unauthorized")
		return "", false
	}
	return userID, true
}

// POST /api/trips/generate
func (h *Handlers) Generate(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var in GenerateInput
	if err := decode(w, r, &in); err != nil {
		h.fail(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), generateTimeout)
	defer cancel()

	res, err := h.Service.Generate(ctx, userID, in)
	if err != nil {
		h.fail(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, res)
}

// POST /api/trip-requests/:id/retry
func (h *Handlers) Retry(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), generateTimeout)
	defer cancel()

	res, err := h.Service.Retry(ctx, userID, ps.ByName("id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, res)
}

// GET /api/trip-requests/:id
func (h *Handlers) GetRequest(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	req, err := h.Service.RequestStatus(ctx, userID, ps.ByName("id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, req)
}

// POST /api/trips/customize
func (h *Handlers) Customize(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var in CustomizeInput
	if err := decode(w, r, &in); err != nil {
		h.fail(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	res, err := h.Service.Customize(ctx, userID, in)
	if err != nil {
		h.fail(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, res)
}

// GET /api/trips/:id/customized
// Read only; the custom copy is created by POST /api/trips/customize.
func (h *Handlers) GetCustomized(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := h.Service.GetCustomized(ctx, userID, ps.ByName("id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, res)
}

// GET /api/trips
func (h *Handlers) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	opts := utils.ParseQueryOptions(r)

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	trips, err := h.Service.List(ctx, userID, opts)
	if err != nil {
		h.fail(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"trips": trips,
		"page":  opts.Page,
		"limit": opts.Limit,
	})
}

// GET /api/trips/:id
func (h *Handlers) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	view, err := h.Service.Get(ctx, userID, ps.ByName("id"))
	if apperr.KindOf(err) == apperr.PartialWriteInconsistency {
		utils.RespondWithJSON(w, http.StatusAccepted, utils.M{"id": ps.ByName("id"), "status": "generating"})
		return
	}
	if err != nil {
		h.fail(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, view)
}

// DELETE /api/trips/:id
func (h *Handlers) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	n, err := h.Service.Delete(ctx, userID, ps.ByName("id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"deleted": true, "deletedDays": n})
}

// GET /api/trips/:id/export.ics
func (h *Handlers) ExportICS(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	id := ps.ByName("id")
	body, err := h.Service.ExportICS(ctx, userID, id)
	if err != nil {
		h.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=trip-"+id+".ics")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// GET /api/trips/:id/export.pdf
func (h *Handlers) ExportPDF(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	id := ps.ByName("id")
	body, err := h.Service.ExportPDF(ctx, userID, id)
	if err != nil {
		h.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=trip-"+id+".pdf")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}
