package users

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionName = "users"

type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection(collectionName)}
}

// EnsureIndexes creates the lookup index on username. The index is
// deliberately non-unique; duplicate usernames are detected at login.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetName("username_lookup"),
	})
	if err != nil {
		return fmt.Errorf("users: create username index: %w", err)
	}
	return nil
}

func (s *MongoStore) Insert(ctx context.Context, u User) error {
	if _, err := s.coll.InsertOne(ctx, u); err != nil {
		return fmt.Errorf("users: insert %q: %w", u.Username, err)
	}
	return nil
}

func (s *MongoStore) FindByUsername(ctx context.Context, username string) ([]User, error) {
	opts := options.Find().
		SetProjection(bson.D{
			{Key: "_id", Value: 1},
			{Key: "name", Value: 1},
			{Key: "username", Value: 1},
			{Key: "password", Value: 1},
			{Key: "role", Value: 1},
		}).
		SetLimit(maxMatches)

	cur, err := s.coll.Find(ctx, bson.D{{Key: "username", Value: username}}, opts)
	if err != nil {
		return nil, fmt.Errorf("users: find %q: %w", username, err)
	}

	var out []User
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("users: decode %q: %w", username, err)
	}
	return out, nil
}

func (s *MongoStore) List(ctx context.Context) ([]Listing, error) {
	opts := options.Find().
		SetProjection(bson.D{
			{Key: "_id", Value: 0},
			{Key: "username", Value: 1},
			{Key: "role", Value: 1},
		}).
		SetSort(bson.D{{Key: "username", Value: 1}})

	cur, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("users: list: %w", err)
	}

	out := []Listing{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("users: decode list: %w", err)
	}
	return out, nil
}
