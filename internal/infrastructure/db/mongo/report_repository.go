package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/safecity/incident-api/internal/core/domain"
	"github.com/safecity/incident-api/internal/core/ports"
)

const collectionReports = "reports"

type ReportRepository struct {
	col *mongo.Collection
}

func NewReportRepository(db *mongo.Database) *ReportRepository {
	return &ReportRepository{col: db.Collection(collectionReports)}
}

func (r *ReportRepository) Insert(ctx context.Context, report *domain.Report) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, report)
	return err
}

func (r *ReportRepository) FindByID(ctx context.Context, id string) (*domain.Report, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var report domain.Report
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&report)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrReportNotFound
		}
		return nil, err
	}
	return &report, nil
}

func (r *ReportRepository) ListAll(ctx context.Context) ([]*domain.Report, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "reported_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	return decodeReports(ctx, cur)
}

func (r *ReportRepository) Search(ctx context.Context, filter ports.SearchReportsFilter) ([]*domain.Report, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := bson.M{}

	reportedAt := bson.M{}
	if filter.From != nil {
		reportedAt["$gte"] = *filter.From
	}
	if filter.To != nil {
		reportedAt["$lte"] = *filter.To
	}
	if len(reportedAt) > 0 {
		query["reported_at"] = reportedAt
	}

	lat := bson.M{}
	if filter.MinLat != nil {
		lat["$gte"] = *filter.MinLat
	}
	if filter.MaxLat != nil {
		lat["$lte"] = *filter.MaxLat
	}
	if len(lat) > 0 {
		query["latitude"] = lat
	}

	lon := bson.M{}
	if filter.MinLon != nil {
		lon["$gte"] = *filter.MinLon
	}
	if filter.MaxLon != nil {
		lon["$lte"] = *filter.MaxLon
	}
	if len(lon) > 0 {
		query["longitude"] = lon
	}

	cur, err := r.col.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "reported_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	return decodeReports(ctx, cur)
}

func (r *ReportRepository) Update(ctx context.Context, report *domain.Report) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": report.ID}, report)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrReportNotFound
	}
	return nil
}

func (r *ReportRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrReportNotFound
	}
	return nil
}

func (r *ReportRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Report, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{"user_id": userID}, options.Find().SetSort(bson.D{{Key: "reported_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	return decodeReports(ctx, cur)
}

func (r *ReportRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.col.CountDocuments(ctx, bson.M{"user_id": userID})
}

// LastReportedAt finds the most recent submission timestamp for the identity.
// Anonymous submissions are matched on the exact IP string with no user
// attached; no IP normalization happens here.
func (r *ReportRepository) LastReportedAt(ctx context.Context, userID *string, ip string) (*time.Time, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var filter bson.M
	if userID != nil {
		filter = bson.M{"user_id": *userID}
	} else {
		filter = bson.M{"user_id": bson.M{"$exists": false}, "ip_address": ip}
	}

	opts := options.FindOne().
		SetSort(bson.D{{Key: "reported_at", Value: -1}}).
		SetProjection(bson.M{"reported_at": 1})

	var doc struct {
		ReportedAt time.Time `bson:"reported_at"`
	}
	err := r.col.FindOne(ctx, filter, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}

	ts := doc.ReportedAt.UTC()
	return &ts, nil
}

func (r *ReportRepository) CountAll(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.col.CountDocuments(ctx, bson.M{})
}

func (r *ReportRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.col.CountDocuments(ctx, bson.M{"reported_at": bson.M{"$gte": since}})
}

// TopAreas groups reports by coordinates rounded to two decimals and returns
// the busiest buckets, count descending.
func (r *ReportRepository) TopAreas(ctx context.Context, limit int) ([]ports.AreaCount, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{
				"lat": bson.M{"$round": bson.A{"$latitude", 2}},
				"lon": bson.M{"$round": bson.A{"$longitude", 2}},
			},
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}}}},
		{{Key: "$limit", Value: limit}},
	}

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []ports.AreaCount
	for cur.Next(ctx) {
		var doc struct {
			ID struct {
				Lat float64 `bson:"lat"`
				Lon float64 `bson:"lon"`
			} `bson:"_id"`
			Count int64 `bson:"count"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, ports.AreaCount{Latitude: doc.ID.Lat, Longitude: doc.ID.Lon, Count: doc.Count})
	}
	return out, cur.Err()
}

// CountByHour groups reports by the hour of day they were reported at.
// Hours with no reports produce no bucket; the service zero-fills them.
func (r *ReportRepository) CountByHour(ctx context.Context) ([]ports.HourCount, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":   bson.M{"$hour": "$reported_at"},
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []ports.HourCount
	for cur.Next(ctx) {
		var doc struct {
			Hour  int   `bson:"_id"`
			Count int64 `bson:"count"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, ports.HourCount{Hour: doc.Hour, Count: doc.Count})
	}
	return out, cur.Err()
}

// EnsureIndexes creates the indexes backing rate-limit lookups, per-user
// history, and category filtering.
func (r *ReportRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "reported_at", Value: -1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "reported_at", Value: -1}}},
		{Keys: bson.D{{Key: "ip_address", Value: 1}, {Key: "reported_at", Value: -1}}},
		{Keys: bson.D{{Key: "category", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func decodeReports(ctx context.Context, cur *mongo.Cursor) ([]*domain.Report, error) {
	defer cur.Close(ctx)

	var out []*domain.Report
	for cur.Next(ctx) {
		var report domain.Report
		if err := cur.Decode(&report); err != nil {
			return nil, err
		}
		out = append(out, &report)
	}
	return out, cur.Err()
}
