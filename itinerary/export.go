package itinerary

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/apperr"
	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/models"
	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/places"
	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/timeutil"

	ics "github.com/arran4/golang-ical"
	"github.com/phpdave11/gofpdf"
	"github.com/ringsaturn/tzf"
	"github.com/samber/lo"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"
)

type timezoneFinder interface {
	GetTimezoneName(lng float64, lat float64) string
}

type exportData struct {
	trip  *models.TripResult
	days  []models.DayRecord
	loc   *time.Location
	start time.Time
}

func (s *Service) timezones() timezoneFinder {
	s.tzOnce.Do(func() {
		if s.tz != nil {
			return
		}
		finder, err := tzf.NewDefaultFinder()
		if err != nil {
			s.logger.Warn("timezone finder unavailable", zap.Error(err))
			return
		}
		s.tz = finder
	})
	return s.tz
}

// location picks the timezone of the first activity POI with coordinates.
func (s *Service) location(ctx context.Context, days []models.DayRecord) *time.Location {
	fallback, err := time.LoadLocation(s.opts.DefaultTimezone)
	if err != nil {
		fallback = time.UTC
	}

	var ids []string
	for _, d := range days {
		for _, a := range d.Activities {
			ids = append(ids, a.POIID)
		}
	}
	ids = lo.Uniq(lo.Compact(ids))
	if len(ids) == 0 {
		return fallback
	}

	pois, err := s.catalog.GetPOIs(ctx, ids)
	if err != nil {
		s.logger.Warn("load pois for timezone", zap.Error(err))
		return fallback
	}
	poi, ok := lo.Find(pois, func(p models.POI) bool {
		return p.Location.Latitude != 0 || p.Location.Longitude != 0
	})
	if !ok {
		return fallback
	}

	finder := s.timezones()
	if finder == nil {
		return fallback
	}
	name := finder.GetTimezoneName(poi.Location.Longitude, poi.Location.Latitude)
	loc, err := time.LoadLocation(name)
	if name == "" || err != nil {
		return fallback
	}
	return loc
}

func (s *Service) loadExport(ctx context.Context, userID, tripID string) (*exportData, error) {
	trip, err := s.owned(ctx, userID, tripID)
	if err != nil {
		return nil, err
	}
	days, err := s.store.ListDays(ctx, trip.TripID, dayTypeFor(trip.Status))
	if err != nil {
		return nil, apperr.InternalErr("failed to load days", err)
	}

	loc := s.location(ctx, days)
	now := s.now().In(loc)
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	if req, err := s.store.GetRequest(ctx, trip.RequestID); err == nil && req.StartDate != "" {
		if d, err := time.ParseInLocation(time.DateOnly, req.StartDate, loc); err == nil {
			start = d
		}
	}
	return &exportData{trip: trip, days: days, loc: loc, start: start}, nil
}

// ExportICS renders the trip as an iCalendar feed, one event per activity.
func (s *Service) ExportICS(ctx context.Context, userID, tripID string) ([]byte, error) {
	data, err := s.loadExport(ctx, userID, tripID)
	if err != nil {
		return nil, err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//TravelBook//Itinerary//EN")
	cal.SetXWRCalName(places.StripDiacritics(data.trip.Destination))
	cal.SetXWRTimezone(data.loc.String())

	stamp := s.now()
	for _, day := range data.days {
		date := data.start.AddDate(0, 0, day.DayNumber-1)
		for i, a := range day.Activities {
			startMin, err := timeutil.ParseClock(a.StartTime)
			if err != nil {
				continue
			}
			start := date.Add(time.Duration(startMin) * time.Minute)
			end := start.Add(time.Duration(a.Duration) * time.Minute)

			ev := cal.AddEvent(fmt.Sprintf("%s-%d-%d@travelbook", data.trip.TripID, day.DayNumber, i))
			ev.SetDtStampTime(stamp)
			ev.SetStartAt(start)
			ev.SetEndAt(end)
			ev.SetSummary(a.Name)
			if a.Location != "" {
				ev.SetLocation(a.Location)
			}
			ev.SetDescription(fmt.Sprintf("%s. Cost %.0f", day.Title, a.Cost))
		}
	}
	return []byte(cal.Serialize()), nil
}

// ExportPDF renders a printable itinerary with a QR code linking to the trip.
func (s *Service) ExportPDF(ctx context.Context, userID, tripID string) ([]byte, error) {
	data, err := s.loadExport(ctx, userID, tripID)
	if err != nil {
		return nil, err
	}

	shareURL := fmt.Sprintf("%s/trips/%s", s.opts.PublicBaseURL, data.trip.TripID)
	qrPNG, err := qrcode.Encode(shareURL, qrcode.Medium, 256)
	if err != nil {
		return nil, apperr.InternalErr("failed to generate QR code", err)
	}

	// Core fonts are Latin-1 only.
	text := places.StripDiacritics

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(text(data.trip.Destination), false)
	pdf.AddPage()

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 160, 10, 35, 35, false, imageOpts, 0, "")

	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(140, 10, text(data.trip.Destination))
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 11)
	pdf.MultiCell(140, 6, text(data.trip.Summary), "", "L", false)
	pdf.Cell(140, 6, fmt.Sprintf("%d days from %s, total %.0f", data.trip.DurationDays, data.start.Format(time.DateOnly), data.trip.TotalCost))
	pdf.Ln(14)

	for _, day := range data.days {
		pdf.SetFont("Arial", "B", 13)
		pdf.Cell(0, 8, text(day.Title))
		pdf.Ln(8)
		if day.Description != "" {
			pdf.SetFont("Arial", "I", 10)
			pdf.MultiCell(0, 5, text(day.Description), "", "L", false)
		}
		pdf.SetFont("Arial", "", 10)
		for _, a := range day.Activities {
			line := fmt.Sprintf("%s-%s  %s", a.StartTime, a.EndTime, text(a.Name))
			if a.Location != "" {
				line += " (" + text(a.Location) + ")"
			}
			pdf.CellFormat(150, 6, line, "", 0, "L", false, 0, "")
			pdf.CellFormat(30, 6, fmt.Sprintf("%.0f", a.Cost), "", 1, "R", false, 0, "")
		}
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(180, 6, fmt.Sprintf("Day total %.0f", day.DayTotal), "", 1, "R", false, 0, "")
		pdf.Ln(4)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, apperr.InternalErr("failed to render PDF", err)
	}
	return buf.Bytes(), nil
}
