package utils

import (
	"net/http"
	"strconv"

	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/globals"
)

type QueryOptions struct {
	Page  int
	Limit int
}

func ParseQueryOptions(r *http.Request) QueryOptions {
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}

	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	return QueryOptions{Page: page, Limit: limit}
}

func (o QueryOptions) Skip() int64 {
	return int64((o.Page - 1) * o.Limit)
}

func GetUserIDFromRequest(r *http.Request) string {
	requestingUserID, ok := r.Context().Value(globals.UserIDKey).(string)
	if !ok || requestingUserID == "" {
		return ""
	}
	return requestingUserID
}
