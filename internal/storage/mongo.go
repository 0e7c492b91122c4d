package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bbbfishhh/InfoFlow4Venture/internal/config"
	"github.com/bbbfishhh/InfoFlow4Venture/internal/types"
)

// MongoStore persists news documents in a MongoDB collection.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
	logger     *slog.Logger
}

// NewMongoStore connects to MongoDB and ensures the collection indexes:
// a unique index on url and a TTL index on created_at with the configured
// retention horizon.
func NewMongoStore(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (*MongoStore, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("mongodb connect: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, fmt.Errorf("mongodb ping: %w", err)
	}

	s := &MongoStore{
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
		logger:     logger.With("component", "mongo_store"),
	}
	if err := s.ensureIndexes(connectCtx, cfg.Retention); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context, retention time.Duration) error {
	_, err := s.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "url", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(retention.Seconds())),
		},
	})
	if err != nil {
		return fmt.Errorf("mongodb create indexes: %w", err)
	}
	return nil
}

func (s *MongoStore) FindByURL(ctx context.Context, url string) (*types.NewsDocument, error) {
	var doc types.NewsDocument
	err := s.collection.FindOne(ctx, bson.M{"url": url}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, &types.StoreError{Op: "find", URL: url, Err: err}
	}
	return &doc, nil
}

func (s *MongoStore) UpsertStub(ctx context.Context, doc types.NewsDocument) error {
	_, err := s.collection.UpdateOne(ctx,
		bson.M{"url": doc.URL},
		bson.M{"$set": doc},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return &types.StoreError{Op: "upsert", URL: doc.URL, Err: err}
	}
	s.logger.Debug("stub upserted", "url", doc.URL)
	return nil
}

func (s *MongoStore) UpdateDetail(ctx context.Context, url string, content string, keywords []string, at time.Time) error {
	res, err := s.collection.UpdateOne(ctx,
		bson.M{"url": url},
		bson.M{"$set": bson.M{
			"content":      content,
			"keywords":     keywords,
			"last_updated": at,
		}},
	)
	if err != nil {
		return &types.StoreError{Op: "update_detail", URL: url, Err: err}
	}
	if res.MatchedCount == 0 {
		return types.ErrNotFound
	}
	s.logger.Debug("detail merged", "url", url, "keywords", len(keywords))
	return nil
}

func (s *MongoStore) LatestComplete(ctx context.Context, limit int) ([]types.NewsDocument, error) {
	filter := bson.M{
		"content":  bson.M{"$ne": nil},
		"keywords": bson.M{"$nin": bson.A{nil, bson.A{}}},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "published_date", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, &types.StoreError{Op: "latest_complete", Err: err}
	}
	defer cursor.Close(ctx)

	var docs []types.NewsDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, &types.StoreError{Op: "latest_complete", Err: err}
	}
	return docs, nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	disconnectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.client.Disconnect(disconnectCtx)
}
