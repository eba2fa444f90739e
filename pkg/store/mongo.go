package store

import (
	"context"
	stderrors "errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/valuechain/pkg/errors"
)

// MongoConfig configures [NewMongoStore].
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

// Defaults applied by NewMongoStore for empty fields.
const (
	DefaultMongoDatabase   = "valuechain"
	DefaultMongoCollection = "snapshots"
)

// MongoStore keeps each snapshot as one document keyed by its id.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to MongoDB and verifies the connection.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.Database == "" {
		cfg.Database = DefaultMongoDatabase
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultMongoCollection
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "connect to mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "ping mongo")
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

func (s *MongoStore) Load(ctx context.Context, id string) (*Snapshot, error) {
	var snap Snapshot
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&snap)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, errors.New(errors.ErrCodeDocumentNotFound, "document %q not found", id)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "mongo find %s", id)
	}
	return &snap, nil
}

func (s *MongoStore) Save(ctx context.Context, snap *Snapshot) error {
	if err := errors.ValidateDocumentID(snap.ID); err != nil {
		return err
	}
	err := RetryWithBackoff(ctx, func() error {
		_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": snap.ID}, snap, options.Replace().SetUpsert(true))
		return mongoErr(err)
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeStoreUnavailable, err, "mongo replace %s", snap.ID)
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return errors.Wrap(errors.ErrCodeStoreUnavailable, err, "mongo delete %s", id)
	}
	return nil
}

func (s *MongoStore) List(ctx context.Context) ([]string, error) {
	opts := options.Find().
		SetProjection(bson.M{"_id": 1}).
		SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "mongo find")
	}
	var rows []struct {
		ID string `bson:"_id"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "mongo cursor")
	}
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	return ids, nil
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func mongoErr(err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return Retryable(err)
	}
	return err
}

var _ Store = (*MongoStore)(nil)
