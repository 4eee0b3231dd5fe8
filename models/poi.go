package models

// POI is a catalog point of interest. The itinerary engine only reads it.
type POI struct {
	POIID               string      `json:"id" bson:"_id"`
	Name                string      `json:"name" bson:"name"`
	Category            string      `json:"category" bson:"category"`
	DestinationID       string      `json:"destination_id" bson:"destination_id"`
	Address             string      `json:"address,omitempty" bson:"address,omitempty"`
	RecommendedDuration Duration    `json:"recommendedDuration" bson:"recommended_duration"`
	EntryFee            EntryFee    `json:"entryFee" bson:"entry_fee"`
	Rating              float64     `json:"rating" bson:"rating"`
	Location            Coordinates `json:"location" bson:"location,omitempty"`
	Tags                []string    `json:"tags,omitempty" bson:"tags,omitempty"`
}

// Duration is the catalog's hours+minutes unit.
type Duration struct {
	Hours   int `json:"hours" bson:"hours"`
	Minutes int `json:"minutes" bson:"minutes"`
}

type EntryFee struct {
	Adult float64 `json:"adult" bson:"adult"`
	Child float64 `json:"child,omitempty" bson:"child,omitempty"`
}

type Coordinates struct {
	Latitude  float64 `json:"latitude,omitempty" bson:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty" bson:"longitude,omitempty"`
}

// Destination groups POIs. NameKey is the diacritic-free lower-case name used
// for matching.
type Destination struct {
	DestinationID string   `json:"id" bson:"_id"`
	Name          string   `json:"name" bson:"name"`
	NameKey       string   `json:"-" bson:"name_key"`
	Country       string   `json:"country,omitempty" bson:"country,omitempty"`
	Tags          []string `json:"tags,omitempty" bson:"tags,omitempty"`
	POICount      int      `json:"poi_count,omitempty" bson:"poi_count,omitempty"`
}
