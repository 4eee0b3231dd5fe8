package places

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/db"
	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/models"
	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/planner"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoCatalog reads destinations and POIs from MongoDB.
type MongoCatalog struct {
	destinations *mongo.Collection
	pois         *mongo.Collection
}

func NewMongoCatalog(c *db.Collections) *MongoCatalog {
	return &MongoCatalog{destinations: c.Destinations, pois: c.POIs}
}

func (m *MongoCatalog) ResolveDestination(ctx context.Context, label string) (*models.Destination, error) {
	key := NormalizeName(label)
	if key == "" {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var dest models.Destination
	err := m.destinations.FindOne(ctx, bson.M{"name_key": key}).Decode(&dest)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &dest, nil
}

func (m *MongoCatalog) MatchDestinations(ctx context.Context, label string) ([]models.Destination, error) {
	all, err := m.ListDestinations(ctx)
	if err != nil {
		return nil, err
	}
	return lo.Filter(all, func(d models.Destination, _ int) bool {
		return Related(d.Name, label)
	}), nil
}

// ListDestinations returns every destination, most POIs first.
func (m *MongoCatalog) ListDestinations(ctx context.Context) ([]models.Destination, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := m.destinations.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []models.Destination
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].POICount != out[j].POICount {
			return out[i].POICount > out[j].POICount
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (m *MongoCatalog) FindPOIs(ctx context.Context, q planner.POIQuery) ([]models.POI, error) {
	filter := bson.M{"destination_id": q.DestinationID}
	fee := bson.M{}
	if q.Band.Min > 0 {
		fee["$gte"] = q.Band.Min
	}
	if q.Band.Max > 0 {
		fee["$lt"] = q.Band.Max
	}
	if len(fee) > 0 {
		filter["entry_fee.adult"] = fee
	}

	sortSpec := bson.D{{Key: "entry_fee.adult", Value: -1}, {Key: "rating", Value: -1}}
	if q.Order == planner.ByRating {
		sortSpec = bson.D{{Key: "rating", Value: -1}, {Key: "entry_fee.adult", Value: -1}}
	}
	opts := options.Find().SetSort(sortSpec)
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := m.pois.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []models.POI
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetPOIs loads POIs by id. Unknown ids are skipped.
func (m *MongoCatalog) GetPOIs(ctx context.Context, ids []string) ([]models.POI, error) {
	ids = lo.Uniq(lo.Compact(ids))
	if len(ids) == 0 {
		return []models.POI{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := m.pois.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := []models.POI{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
