package itinerary

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/db"
	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/models"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore is the production Store. The unique indexes created by
// db.EnsureIndexes back the ErrDuplicate contract.
type MongoStore struct {
	requests *mongo.Collection
	trips    *mongo.Collection
	days     *mongo.Collection
}

func NewMongoStore(c *db.Collections) *MongoStore {
	return &MongoStore{requests: c.TripRequests, trips: c.TripResults, days: c.ItineraryDays}
}

func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	default:
		return err
	}
}

func findOne[T any](ctx context.Context, coll *mongo.Collection, filter bson.M) (*T, error) {
	var out T
	if err := coll.FindOne(ctx, filter).Decode(&out); err != nil {
		return nil, mapErr(err)
	}
	return &out, nil
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter bson.M, opts *options.FindOptions) ([]T, error) {
	cursor, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := []T{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MongoStore) CreateRequest(ctx context.Context, req *models.TripRequest) error {
	_, err := s.requests.InsertOne(ctx, req)
	return mapErr(err)
}

func (s *MongoStore) GetRequest(ctx context.Context, id string) (*models.TripRequest, error) {
	return findOne[models.TripRequest](ctx, s.requests, bson.M{"_id": id})
}

func (s *MongoStore) SaveRequest(ctx context.Context, req *models.TripRequest) error {
	res, err := s.requests.ReplaceOne(ctx, bson.M{"_id": req.RequestID}, req)
	if err != nil {
		return mapErr(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) ClaimRetry(ctx context.Context, requestID string, at time.Time) error {
	res, err := s.requests.UpdateOne(ctx,
		bson.M{"_id": requestID, "status": models.RequestFailed, "retryable": true},
		bson.M{
			"$set":   bson.M{"status": models.RequestProcessing, "updated_at": at},
			"$unset": bson.M{"retryable": "", "error": ""},
		})
	if err != nil {
		return mapErr(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) InsertTrip(ctx context.Context, trip *models.TripResult) error {
	_, err := s.trips.InsertOne(ctx, trip)
	return mapErr(err)
}

func (s *MongoStore) GetTrip(ctx context.Context, id string) (*models.TripResult, error) {
	return findOne[models.TripResult](ctx, s.trips, bson.M{"_id": id})
}

func (s *MongoStore) FindTripByRequest(ctx context.Context, requestID string, status models.TripStatus) (*models.TripResult, error) {
	return findOne[models.TripResult](ctx, s.trips, bson.M{"request_id": requestID, "status": status})
}

func (s *MongoStore) UpdateCustomTrip(ctx context.Context, trip *models.TripResult) error {
	res, err := s.trips.ReplaceOne(ctx, bson.M{"_id": trip.TripID, "status": models.TripCustom}, trip)
	if err != nil {
		return mapErr(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) ListTrips(ctx context.Context, userID string, status models.TripStatus, skip, limit int64) ([]models.TripResult, error) {
	filter := bson.M{"user_id": userID}
	if status != "" {
		filter["status"] = status
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)
	return findAll[models.TripResult](ctx, s.trips, filter, opts)
}

func (s *MongoStore) DeleteTrips(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := s.trips.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (s *MongoStore) InsertDays(ctx context.Context, days []models.DayRecord) error {
	if len(days) == 0 {
		return nil
	}
	docs := lo.Map(days, func(d models.DayRecord, _ int) interface{} { return d })
	_, err := s.days.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	return mapErr(err)
}

func (s *MongoStore) GetDay(ctx context.Context, id string) (*models.DayRecord, error) {
	return findOne[models.DayRecord](ctx, s.days, bson.M{"_id": id})
}

func (s *MongoStore) ListDays(ctx context.Context, originID string, dayType models.DayType) ([]models.DayRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "day_number", Value: 1}})
	return findAll[models.DayRecord](ctx, s.days, bson.M{"origin_id": originID, "type": dayType}, opts)
}

func (s *MongoStore) UpdateCustomDay(ctx context.Context, day *models.DayRecord) error {
	res, err := s.days.ReplaceOne(ctx, bson.M{"_id": day.DayID, "type": models.DayCustomized}, day)
	if err != nil {
		return mapErr(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) DeleteDaysByOrigin(ctx context.Context, originIDs []string) (int64, error) {
	if len(originIDs) == 0 {
		return 0, nil
	}
	res, err := s.days.DeleteMany(ctx, bson.M{"origin_id": bson.M{"$in": originIDs}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (s *MongoStore) DayOrigins(ctx context.Context, before time.Time) ([]string, error) {
	values, err := s.days.Distinct(ctx, "origin_id", bson.M{"created_at": bson.M{"$lt": before}})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if id, ok := v.(string); ok {
			out = append(out, id)
		}
	}
	return out, nil
}
