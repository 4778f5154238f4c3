package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mbodj/packhouse/internal/domain/models"
	"github.com/mbodj/packhouse/internal/repository"
)

// Store implements repository.Store on a MongoDB collection.
type Store struct {
	client   *mongo.Client
	dbName   string
	collName string
}

// NewStore connects to MongoDB and verifies the connection.
func NewStore(ctx context.Context, uri string, dbName string) (*Store, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &Store{
		client:   client,
		dbName:   dbName,
		collName: "packing_log",
	}, nil
}

// Append inserts the entry with a generated object id.
func (s *Store) Append(ctx context.Context, entry models.PackingLogEntry) (models.PackingLogEntry, error) {
	entry.ID = primitive.NewObjectID().Hex()

	collection := s.client.Database(s.dbName).Collection(s.collName)
	if _, err := collection.InsertOne(ctx, entry); err != nil {
		return models.PackingLogEntry{}, fmt.Errorf("%w: insert packing log entry: %v", repository.ErrStorageUnavailable, err)
	}
	return entry, nil
}

// ReadAll returns every stored entry in insertion order. Object ids generated
// by Append are monotonic per process, so (created_at, _id) reproduces the
// append sequence.
func (s *Store) ReadAll(ctx context.Context) ([]models.PackingLogEntry, error) {
	collection := s.client.Database(s.dbName).Collection(s.collName)

	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := collection.Find(ctx, bson.D{}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("%w: query packing log: %v", repository.ErrStorageUnavailable, err)
	}
	defer cursor.Close(ctx)

	entries := make([]models.PackingLogEntry, 0)
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("%w: decode packing log: %v", repository.ErrStorageUnavailable, err)
	}
	return entries, nil
}

// Close closes the MongoDB connection.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

var _ repository.Store = (*Store)(nil)
