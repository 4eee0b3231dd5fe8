package utils

import (
	"encoding/json"
	"net/http"

	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/apperr"

	"go.uber.org/zap"
)

type M map[string]interface{}

// Sends a JSON response
func RespondWithJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func RespondWithError(w http.ResponseWriter, code int, kind apperr.Kind, msg string) {
	RespondWithJSON(w, code, M{"error": M{"kind": kind, "message": msg}})
}

// RespondWithAppError maps err to its status and stable kind. Causes are
// logged here and never written to the client.
func RespondWithAppError(w http.ResponseWriter, logger *zap.Logger, err error) {
	kind := apperr.KindOf(err)
	status := apperr.HTTPStatus(kind)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", zap.String("kind", string(kind)), zap.Error(err))
	} else {
		logger.Debug("request rejected", zap.String("kind", string(kind)), zap.Error(err))
	}
	RespondWithError(w, status, kind, apperr.Message(err))
}
