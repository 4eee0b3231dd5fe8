package itinerary

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/models"
)

// memStore is an in-memory Store with the same uniqueness rules as the Mongo
// indexes. Records are copied on the way in and out.
type memStore struct {
	mu       sync.Mutex
	requests map[string]models.TripRequest
	trips    map[string]models.TripResult
	days     map[string]models.DayRecord

	// failInsertTrip makes the next InsertTrip fail.
	failInsertTrip error
	// failSaveStatus makes the next SaveRequest with that status fail.
	failSaveStatus string
	// dayWrites counts UpdateCustomDay calls by day type seen in the store.
	aiGenWrites int
}

func newMemStore() *memStore {
	return &memStore{
		requests: map[string]models.TripRequest{},
		trips:    map[string]models.TripResult{},
		days:     map[string]models.DayRecord{},
	}
}

func cloneDay(d models.DayRecord) models.DayRecord {
	d.Activities = append([]models.Activity{}, d.Activities...)
	return d
}

func (m *memStore) CreateRequest(_ context.Context, req *models.TripRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.requests[req.RequestID]; ok {
		return ErrDuplicate
	}
	m.requests[req.RequestID] = *req
	return nil
}

func (m *memStore) GetRequest(_ context.Context, id string) (*models.TripRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.requests[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (m *memStore) SaveRequest(_ context.Context, req *models.TripRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.requests[req.RequestID]; !ok {
		return ErrNotFound
	}
	if m.failSaveStatus != "" && m.failSaveStatus == req.Status {
		m.failSaveStatus = ""
		return errBoom
	}
	m.requests[req.RequestID] = *req
	return nil
}

func (m *memStore) ClaimRetry(_ context.Context, requestID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.requests[requestID]
	if !ok || r.Status != models.RequestFailed || !r.Retryable {
		return ErrNotFound
	}
	r.Status = models.RequestProcessing
	r.Retryable = false
	r.Error = ""
	r.UpdatedAt = at
	m.requests[requestID] = r
	return nil
}

func (m *memStore) InsertTrip(_ context.Context, trip *models.TripResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failInsertTrip != nil {
		err := m.failInsertTrip
		m.failInsertTrip = nil
		return err
	}
	if _, ok := m.trips[trip.TripID]; ok {
		return ErrDuplicate
	}
	if trip.Status == models.TripCustom || trip.Status == models.TripDone {
		for _, t := range m.trips {
			if t.RequestID == trip.RequestID && t.Status == trip.Status {
				return ErrDuplicate
			}
		}
	}
	m.trips[trip.TripID] = *trip
	return nil
}

func (m *memStore) GetTrip(_ context.Context, id string) (*models.TripResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.trips[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &t, nil
}

func (m *memStore) FindTripByRequest(_ context.Context, requestID string, status models.TripStatus) (*models.TripResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.trips {
		if t.RequestID == requestID && t.Status == status {
			return &t, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memStore) UpdateCustomTrip(_ context.Context, trip *models.TripResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.trips[trip.TripID]
	if !ok || t.Status != models.TripCustom {
		return ErrNotFound
	}
	m.trips[trip.TripID] = *trip
	return nil
}

func (m *memStore) ListTrips(_ context.Context, userID string, status models.TripStatus, skip, limit int64) ([]models.TripResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.TripResult{}
	for _, t := range m.trips {
		if t.UserID == userID && (status == "" || t.Status == status) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if skip >= int64(len(out)) {
		return []models.TripResult{}, nil
	}
	out = out[skip:]
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) DeleteTrips(_ context.Context, ids []string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, id := range ids {
		if _, ok := m.trips[id]; ok {
			delete(m.trips, id)
			n++
		}
	}
	return n, nil
}

func (m *memStore) InsertDays(_ context.Context, days []models.DayRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var dup bool
	for _, d := range days {
		if m.hasDay(d.OriginID, d.DayNumber, d.Type) {
			dup = true
			continue
		}
		m.days[d.DayID] = cloneDay(d)
	}
	if dup {
		return ErrDuplicate
	}
	return nil
}

func (m *memStore) hasDay(origin string, number int, t models.DayType) bool {
	for _, d := range m.days {
		if d.OriginID == origin && d.DayNumber == number && d.Type == t {
			return true
		}
	}
	return false
}

func (m *memStore) GetDay(_ context.Context, id string) (*models.DayRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.days[id]
	if !ok {
		return nil, ErrNotFound
	}
	d = cloneDay(d)
	return &d, nil
}

func (m *memStore) ListDays(_ context.Context, originID string, dayType models.DayType) ([]models.DayRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.DayRecord{}
	for _, d := range m.days {
		if d.OriginID == originID && d.Type == dayType {
			out = append(out, cloneDay(d))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DayNumber < out[j].DayNumber })
	return out, nil
}

func (m *memStore) UpdateCustomDay(_ context.Context, day *models.DayRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.days[day.DayID]
	if ok && d.Type == models.DayAIGen {
		m.aiGenWrites++
	}
	if !ok || d.Type != models.DayCustomized {
		return ErrNotFound
	}
	m.days[day.DayID] = cloneDay(*day)
	return nil
}

func (m *memStore) DeleteDaysByOrigin(_ context.Context, originIDs []string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	set := map[string]bool{}
	for _, id := range originIDs {
		set[id] = true
	}
	var n int64
	for id, d := range m.days {
		if set[d.OriginID] {
			delete(m.days, id)
			n++
		}
	}
	return n, nil
}

func (m *memStore) DayOrigins(_ context.Context, before time.Time) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := map[string]bool{}
	out := []string{}
	for _, d := range m.days {
		if d.CreatedAt.Before(before) && !seen[d.OriginID] {
			seen[d.OriginID] = true
			out = append(out, d.OriginID)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *memStore) countDays(dayType models.DayType) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, d := range m.days {
		if d.Type == dayType {
			n++
		}
	}
	return n
}

func (m *memStore) countTrips(status models.TripStatus) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.trips {
		if t.Status == status {
			n++
		}
	}
	return n
}

var errBoom = errors.New("boom")
