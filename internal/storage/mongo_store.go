package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"canvasboard/internal/domain"
)

const (
	defaultMongoDatabase   = "canvasboard"
	defaultMongoCollection = "snapshots"
)

// MongoStore keeps the snapshot as a single document keyed by workspace.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// mongoSnapshot is the stored document. Groups and items stay nested and
// id-keyed, mirroring the JSON form.
type mongoSnapshot struct {
	ID      string                  `bson:"_id"`
	Version int                     `bson:"version"`
	SavedAt time.Time               `bson:"savedAt"`
	Camera  domain.Camera           `bson:"camera"`
	Groups  map[string]domain.Group `bson:"groups"`
	Items   map[string]domain.Item  `bson:"items"`
}

func NewMongoStore(ctx context.Context, cfg domain.StoreConfig) (*MongoStore, error) {
	if cfg.DSN == "" {
		return nil, errors.New("mongodb: connection uri required")
	}
	client, err := mongo.Connect(options.Client().ApplyURI(cfg.DSN))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	dbName := cfg.Database
	if dbName == "" {
		dbName = defaultMongoDatabase
	}
	collName := cfg.Collection
	if collName == "" {
		collName = defaultMongoCollection
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(dbName).Collection(collName),
	}, nil
}

func (s *MongoStore) Save(ctx context.Context, snap *domain.Snapshot) error {
	doc := mongoSnapshot{
		ID:      workspaceRowID,
		Version: snap.Version,
		SavedAt: snap.SavedAt,
		Camera:  snap.Camera,
		Groups:  snap.Groups,
		Items:   snap.Items,
	}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": workspaceRowID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (s *MongoStore) Load(ctx context.Context) (*domain.Snapshot, error) {
	var doc mongoSnapshot
	err := s.coll.FindOne(ctx, bson.M{"_id": workspaceRowID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("load snapshot: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	snap := domain.NewSnapshot()
	snap.Version = doc.Version
	snap.SavedAt = doc.SavedAt
	snap.Camera = doc.Camera
	for id, g := range doc.Groups {
		snap.Groups[id] = g
	}
	for id, it := range doc.Items {
		snap.Items[id] = it
	}
	return snap, nil
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
