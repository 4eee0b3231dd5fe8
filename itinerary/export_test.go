package itinerary

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/apperr"
	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTZ struct {
	name  string
	calls int
}

func (f *fakeTZ) GetTimezoneName(float64, float64) string {
	f.calls++
	return f.name
}

func TestExportICS(t *testing.T) {
	f := newFixture(t, nil)
	tz := &fakeTZ{name: "Asia/Tokyo"}
	f.svc.tz = tz

	gen, err := f.svc.Generate(context.Background(), "u1", GenerateInput{
		Destination: "Hanoi",
		StartDate:   "2025-04-01",
		EndDate:     "2025-04-03",
	})
	require.NoError(t, err)

	body, err := f.svc.ExportICS(context.Background(), "u1", gen.TripID)
	require.NoError(t, err)
	cal := string(body)

	assert.True(t, strings.HasPrefix(cal, "BEGIN:VCALENDAR"))
	assert.Contains(t, cal, "X-WR-TIMEZONE:Asia/Tokyo")
	assert.Equal(t, 4, strings.Count(cal, "BEGIN:VEVENT"))
	assert.Contains(t, cal, "UID:"+gen.TripID+"-1-0@travelbook")
	assert.Contains(t, cal, "SUMMARY:Temple of Literature")
	// Day 1 starts at 08:00 Tokyo time.
	assert.Contains(t, cal, "DTSTART:20250331T230000Z")
	assert.Equal(t, 1, tz.calls)
}

func TestExportICSFallsBackToDefaultTimezone(t *testing.T) {
	f := newFixture(t, nil)
	tz := &fakeTZ{name: "Asia/Tokyo"}
	f.svc.tz = tz
	for id, p := range f.catalog.pois {
		p.Location = models.Coordinates{}
		f.catalog.pois[id] = p
	}
	gen := f.generate(t)

	body, err := f.svc.ExportICS(context.Background(), "u1", gen.TripID)
	require.NoError(t, err)
	cal := string(body)

	assert.Contains(t, cal, "X-WR-TIMEZONE:Asia/Ho_Chi_Minh")
	// No start date: day 1 is today in Hanoi.
	assert.Contains(t, cal, "DTSTART:20250310T010000Z")
	assert.Zero(t, tz.calls)
}

func TestExportPDF(t *testing.T) {
	f := newFixture(t, nil)
	f.svc.tz = &fakeTZ{name: "Asia/Ho_Chi_Minh"}
	gen := f.generate(t)
	custom, err := f.svc.Customize(context.Background(), "u1", CustomizeInput{
		AIGeneratedID: gen.TripID,
		Summary:       strPtr("Chuyến đi Hà Nội"),
	})
	require.NoError(t, err)

	body, err := f.svc.ExportPDF(context.Background(), "u1", custom.AIGeneratedID)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF-")))

	_, err = f.svc.ExportPDF(context.Background(), "u2", gen.TripID)
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))
}
