package models

import "time"

// TripRequest is what the user submitted. Status moves pending -> processing
// -> completed|failed.
type TripRequest struct {
	RequestID    string          `json:"id" bson:"_id"`
	UserID       string          `json:"user_id" bson:"user_id"`
	Destination  string          `json:"destination" bson:"destination"`
	DurationDays int             `json:"duration_days" bson:"duration_days"`
	StartDate    string          `json:"start_date,omitempty" bson:"start_date,omitempty"`
	EndDate      string          `json:"end_date,omitempty" bson:"end_date,omitempty"`
	BudgetLevel  string          `json:"budget_level,omitempty" bson:"budget_level,omitempty"`
	BudgetTotal  float64         `json:"budget_total" bson:"budget_total"`
	Participants int             `json:"participant_number" bson:"participant_number"`
	Preferences  []string        `json:"preferences" bson:"preferences"`
	Status       string          `json:"status" bson:"status"`
	Retryable    bool            `json:"retryable,omitempty" bson:"retryable,omitempty"`
	Error        string          `json:"error,omitempty" bson:"error,omitempty"`
	ResolvedDest *DestinationRef `json:"resolved_destination,omitempty" bson:"resolved_destination,omitempty"`
	TripResultID string          `json:"trip_result_id,omitempty" bson:"trip_result_id,omitempty"`
	CreatedAt    time.Time       `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" bson:"updated_at"`
}

const (
	RequestPending    = "pending"
	RequestProcessing = "processing"
	RequestCompleted  = "completed"
	RequestFailed     = "failed"
)

// DestinationRef is the destination block returned by Generate.
type DestinationRef struct {
	Name             string `json:"name" bson:"name"`
	ID               string `json:"id,omitempty" bson:"id,omitempty"`
	AISuggested      bool   `json:"ai_suggested" bson:"ai_suggested"`
	SuggestionReason string `json:"suggestion_reason,omitempty" bson:"suggestion_reason,omitempty"`
}

type TripStatus string

const (
	// TripDone is the generated baseline. It is never mutated by customization.
	TripDone TripStatus = "done"
	// TripCustom is the copy-on-first-edit derivative of a baseline.
	TripCustom TripStatus = "custom"
)

// TripResult is the top-level record of one generation run. Baseline and
// custom versions of the same trip share RequestID. Initializing stays true
// while the days of a custom version are still being cloned.
type TripResult struct {
	TripID        string     `json:"id" bson:"_id"`
	RequestID     string     `json:"request_id" bson:"request_id"`
	UserID        string     `json:"user_id" bson:"user_id"`
	Destination   string     `json:"destination" bson:"destination"`
	DurationDays  int        `json:"duration_days" bson:"duration_days"`
	BudgetTotal   float64    `json:"budget_total" bson:"budget_total"`
	Participants  int        `json:"participant_number" bson:"participant_number"`
	Preferences   []string   `json:"preferences" bson:"preferences"`
	Status        TripStatus `json:"status" bson:"status"`
	Summary       string     `json:"summary" bson:"summary"`
	TotalCost     float64    `json:"total_cost" bson:"total_cost"`
	Source        string     `json:"source,omitempty" bson:"source,omitempty"`
	ItineraryData []string   `json:"itinerary_data" bson:"itinerary_data"`
	Initializing  bool       `json:"initializing,omitempty" bson:"initializing,omitempty"`
	CreatedAt     time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" bson:"updated_at"`
}

type DayType string

const (
	DayAIGen      DayType = "ai_gen"
	DayCustomized DayType = "customized"
)

// DayRecord is one calendar day of a trip. (OriginID, DayNumber, Type) is unique.
type DayRecord struct {
	DayID        string     `json:"id" bson:"_id"`
	OriginID     string     `json:"origin_id" bson:"origin_id"`
	Type         DayType    `json:"type" bson:"type"`
	DayNumber    int        `json:"day_number" bson:"day_number"`
	Title        string     `json:"title" bson:"title"`
	Description  string     `json:"description" bson:"description"`
	Activities   []Activity `json:"activities" bson:"activities"`
	DayTotal     float64    `json:"day_total" bson:"day_total"`
	UserModified bool       `json:"user_modified" bson:"user_modified"`
	CreatedAt    time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" bson:"updated_at"`
}

// Activity is one scheduled stop inside a day. Duration is in minutes.
type Activity struct {
	Name       string  `json:"name" bson:"name"`
	Location   string  `json:"location" bson:"location"`
	Duration   int     `json:"duration" bson:"duration"`
	Cost       float64 `json:"cost" bson:"cost"`
	Category   string  `json:"category" bson:"category"`
	TimeSlot   string  `json:"timeSlot" bson:"time_slot"`
	StartTime  string  `json:"start_time" bson:"start_time"`
	EndTime    string  `json:"end_time" bson:"end_time"`
	POIID      string  `json:"poi_id,omitempty" bson:"poi_id,omitempty"`
	ActivityID string  `json:"activityId,omitempty" bson:"activity_id,omitempty"`
}
