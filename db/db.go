package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Collections are the document collections the itinerary engine touches.
type Collections struct {
	Client        *mongo.Client
	TripRequests  *mongo.Collection
	TripResults   *mongo.Collection
	ItineraryDays *mongo.Collection
	Destinations  *mongo.Collection
	POIs          *mongo.Collection
}

// Connect dials MongoDB and pings it before handing out collections.
func Connect(ctx context.Context, uri, database string, logger *zap.Logger) (*Collections, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	logger.Info("connected to mongo", zap.String("database", database))

	d := client.Database(database)
	return &Collections{
		Client:        client,
		TripRequests:  d.Collection("trip_requests"),
		TripResults:   d.Collection("trip_results"),
		ItineraryDays: d.Collection("itinerary_days"),
		Destinations:  d.Collection("destinations"),
		POIs:          d.Collection("pois"),
	}, nil
}

// EnsureIndexes creates the uniqueness constraints the engine relies on:
// one day per (origin, number, type) and one custom trip per request.
func (c *Collections) EnsureIndexes(ctx context.Context) error {
	_, err := c.ItineraryDays.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "origin_id", Value: 1}, {Key: "day_number", Value: 1}, {Key: "type", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_origin_day_type"),
		},
		{
			Keys: bson.D{{Key: "created_at", Value: 1}},
		},
	})
	if err != nil {
		return fmt.Errorf("itinerary_days indexes: %w", err)
	}

	_, err = c.TripResults.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "request_id", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetName("uniq_custom_per_request").
				SetPartialFilterExpression(bson.M{"status": "custom"}),
		},
		{
			Keys: bson.D{{Key: "request_id", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetName("uniq_done_per_request").
				SetPartialFilterExpression(bson.M{"status": "done"}),
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
	})
	if err != nil {
		return fmt.Errorf("trip_results indexes: %w", err)
	}

	_, err = c.POIs.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "destination_id", Value: 1}, {Key: "entry_fee.adult", Value: -1}, {Key: "rating", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("pois indexes: %w", err)
	}

	_, err = c.Destinations.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "name_key", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("destinations indexes: %w", err)
	}
	return nil
}

func (c *Collections) Disconnect(ctx context.Context) error {
	return c.Client.Disconnect(ctx)
}
