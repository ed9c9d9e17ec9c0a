package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/hemicycle/pkg/errors"
	"github.com/matzehuels/hemicycle/pkg/pipeline"
)

// Defaults for [NewMongoStore].
const (
	DefaultMongoDatabase   = "hemicycle"
	DefaultMongoCollection = "results"
)

// resultDocument is one stored update. The (broadcast, entry) pair is unique.
type resultDocument struct {
	Broadcast       string `bson:"broadcast"`
	pipeline.Update `bson:",inline"`
}

// MongoStore keeps one document per (broadcast, entry) pair.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// MongoConfig configures [NewMongoStore].
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

// NewMongoStore connects to MongoDB, verifies the connection and ensures the
// unique index on (broadcast, entry).
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if err := errors.ValidateURL(cfg.URI, "mongodb", "mongodb+srv"); err != nil {
		return nil, err
	}
	if cfg.Database == "" {
		cfg.Database = DefaultMongoDatabase
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultMongoCollection
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "ping mongodb")
	}

	s := &MongoStore{
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
	}
	_, err = s.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "broadcast", Value: 1}, {Key: "entry", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("create index: %w", err)
	}
	return s, nil
}

func entryFilter(broadcast, entry string) bson.D {
	return bson.D{{Key: "broadcast", Value: broadcast}, {Key: "entry", Value: entry}}
}

func (s *MongoStore) Save(ctx context.Context, broadcast string, u pipeline.Update) error {
	doc := resultDocument{Broadcast: broadcast, Update: u}
	_, err := s.collection.ReplaceOne(ctx, entryFilter(broadcast, u.Entry), doc,
		options.Replace().SetUpsert(true))
	if err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "save %s/%s", broadcast, u.Entry)
	}
	return nil
}

func (s *MongoStore) Load(ctx context.Context, broadcast string) ([]pipeline.Update, error) {
	cur, err := s.collection.Find(ctx, bson.D{{Key: "broadcast", Value: broadcast}})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "load %s", broadcast)
	}
	var docs []resultDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "load %s", broadcast)
	}

	out := make([]pipeline.Update, len(docs))
	for i, d := range docs {
		out[i] = d.Update
	}
	sortUpdates(out)
	return out, nil
}

func (s *MongoStore) Delete(ctx context.Context, broadcast string) error {
	if _, err := s.collection.DeleteMany(ctx, bson.D{{Key: "broadcast", Value: broadcast}}); err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "delete %s", broadcast)
	}
	return nil
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}

var _ Store = (*MongoStore)(nil)
