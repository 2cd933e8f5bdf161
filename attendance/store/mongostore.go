package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fieldtrack.com/fieldtrack/attendance/core"
	"fieldtrack.com/fieldtrack/attendance/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	EventsCollection    = "attendances"
	DistancesCollection = "distances"
	UsersCollection     = "users"
)

// MongoStore is the document store backend.
type MongoStore struct {
	db *mongo.Database
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db}
}

// ConnectMongo dials uri and returns the named database.
func ConnectMongo(ctx context.Context, uri, name string) (*mongo.Client, *mongo.Database, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, fmt.Errorf("failed to ping mongo: %w", err)
	}
	return client, client.Database(name), nil
}

// EnsureIndexes creates the lookup indexes and the unique keys that the
// upserts depend on.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		EventsCollection: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "timestamp", Value: 1}}},
			{Keys: bson.D{{Key: "date", Value: 1}}},
		},
		DistancesCollection: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		UsersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "state", Value: 1}, {Key: "role", Value: 1}}},
		},
	}
	for name, models := range indexes {
		if _, err := s.db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", name, err)
		}
	}
	return nil
}

func (s *MongoStore) InsertEvent(ctx context.Context, event *model.AttendanceEvent) error {
	if _, err := s.db.Collection(EventsCollection).InsertOne(ctx, event); err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

func eventFilter(q core.EventQuery) bson.M {
	filter := bson.M{}
	if len(q.UserIDs) > 0 {
		filter["userId"] = bson.M{"$in": q.UserIDs}
	}

	ts := bson.M{}
	if !q.From.IsZero() {
		ts["$gte"] = q.From.UTC()
	}
	if !q.Before.IsZero() {
		ts["$lt"] = q.Before.UTC()
	}
	if !q.Through.IsZero() {
		ts["$lte"] = q.Through.UTC()
	}
	if len(ts) > 0 {
		filter["timestamp"] = ts
	}

	date := bson.M{}
	if q.DateFrom != "" {
		date["$gte"] = q.DateFrom
	}
	if q.DateTo != "" {
		date["$lte"] = q.DateTo
	}
	if len(date) > 0 {
		filter["date"] = date
	}
	return filter
}

func (s *MongoStore) ListEvents(ctx context.Context, q core.EventQuery) ([]model.AttendanceEvent, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.db.Collection(EventsCollection).Find(ctx, eventFilter(q), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	events := []model.AttendanceEvent{}
	if err := cur.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("failed to decode events: %w", err)
	}
	return events, nil
}

// UpsertDistance is a single atomic update-or-insert keyed on user and date.
// Two racing first writes can both miss and collide on the unique index;
// the loser retries once as a plain update.
func (s *MongoStore) UpsertDistance(ctx context.Context, summary *model.DistanceSummary) (*model.DistanceSummary, error) {
	coll := s.db.Collection(DistancesCollection)
	filter := bson.M{"userId": summary.UserID, "date": summary.Date}
	update := bson.M{
		"$set": bson.M{
			"totalDistance":         summary.TotalDistance,
			"pointToPointDistances": summary.PointToPointDistances,
			"updatedAt":             summary.UpdatedAt,
		},
		"$setOnInsert": bson.M{"_id": summary.ID},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var saved model.DistanceSummary
	err := coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&saved)
	if mongo.IsDuplicateKeyError(err) {
		err = coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&saved)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to upsert distance: %w", err)
	}
	return &saved, nil
}

func (s *MongoStore) FindDistance(ctx context.Context, userID, date string) (*model.DistanceSummary, error) {
	var summary model.DistanceSummary
	err := s.db.Collection(DistancesCollection).FindOne(ctx, bson.M{"userId": userID, "date": date}).Decode(&summary)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find distance: %w", err)
	}
	return &summary, nil
}

func (s *MongoStore) ListUsers(ctx context.Context, q core.UserQuery) ([]model.User, error) {
	filter := bson.M{}
	if len(q.IDs) > 0 {
		filter["_id"] = bson.M{"$in": q.IDs}
	}
	if q.Role != "" {
		filter["role"] = q.Role
	}
	if q.Region != "" {
		filter["state"] = q.Region
	}

	cur, err := s.db.Collection(UsersCollection).Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "email", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	users := []model.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

func (s *MongoStore) FindUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.findUser(ctx, bson.M{"email": email})
}

func (s *MongoStore) findUser(ctx context.Context, filter bson.M) (*model.User, error) {
	var user model.User
	err := s.db.Collection(UsersCollection).FindOne(ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

func (s *MongoStore) SaveUser(ctx context.Context, user *model.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.Collection(UsersCollection).ReplaceOne(ctx, bson.M{"_id": user.ID}, user, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}
