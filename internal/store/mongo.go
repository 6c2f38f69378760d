package store

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/talkincode/warehouse/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// MongoConfig for the MongoDB connection
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration
}

// MongoProductStore keeps products in a single MongoDB collection
type MongoProductStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoProductStore connects, pings the primary and binds the collection.
func NewMongoProductStore(cfg MongoConfig) (*MongoProductStore, error) {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, errors.Wrap(err, "connect mongodb")
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)
		return nil, errors.Wrap(err, "ping mongodb")
	}

	zap.L().Info("connected to mongodb",
		zap.String("namespace", "store"),
		zap.String("database", cfg.Database),
		zap.String("collection", cfg.Collection))

	return &MongoProductStore{
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

func (s *MongoProductStore) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]domain.Product, error) {
	cursor, err := s.collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "find products")
	}
	defer cursor.Close(ctx)

	products := make([]domain.Product, 0)
	if err := cursor.All(ctx, &products); err != nil {
		return nil, errors.Wrap(err, "decode products")
	}
	return products, nil
}

func (s *MongoProductStore) ListAll(ctx context.Context) ([]domain.Product, error) {
	return s.find(ctx, bson.M{})
}

func (s *MongoProductStore) ListPage(ctx context.Context, page, limit int64) ([]domain.Product, error) {
	skip, _ := skipTake(page, limit)
	return s.find(ctx, bson.M{}, options.Find().SetSkip(skip).SetLimit(limit))
}

func (s *MongoProductStore) ListByOwner(ctx context.Context, email string) ([]domain.Product, error) {
	return s.find(ctx, bson.M{"email": email})
}

func (s *MongoProductStore) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}

	var p domain.Product
	err = s.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, errors.Wrap(err, "find product")
	}
	return &p, nil
}

func (s *MongoProductStore) Count(ctx context.Context) (int64, error) {
	n, err := s.collection.EstimatedDocumentCount(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "count products")
	}
	return n, nil
}

func (s *MongoProductStore) Insert(ctx context.Context, p *domain.Product) (primitive.ObjectID, error) {
	p.ID = primitive.NewObjectID()
	if _, err := s.collection.InsertOne(ctx, p); err != nil {
		return primitive.NilObjectID, errors.Wrap(err, "insert product")
	}
	return p.ID, nil
}

func (s *MongoProductStore) update(ctx context.Context, id string, set bson.M, upsert bool) (UpdateResult, error) {
	oid, err := ParseID(id)
	if err != nil {
		return UpdateResult{}, err
	}
	result, err := s.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set},
		options.Update().SetUpsert(upsert))
	if err != nil {
		return UpdateResult{}, errors.Wrap(err, "update product")
	}
	return UpdateResult{Matched: result.MatchedCount, Upserted: result.UpsertedCount > 0}, nil
}

func (s *MongoProductStore) SetStock(ctx context.Context, id string, stock int64, upsert bool) (UpdateResult, error) {
	return s.update(ctx, id, bson.M{"stock": stock}, upsert)
}

func (s *MongoProductStore) Replace(ctx context.Context, id string, p *domain.Product, upsert bool) (UpdateResult, error) {
	return s.update(ctx, id, bson.M{
		"name":         p.Name,
		"price":        p.Price,
		"stock":        p.Stock,
		"supplierName": p.SupplierName,
		"image":        p.Image,
		"quote":        p.Quote,
	}, upsert)
}

func (s *MongoProductStore) Delete(ctx context.Context, id string) (int64, error) {
	oid, err := ParseID(id)
	if err != nil {
		return 0, err
	}
	result, err := s.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return 0, errors.Wrap(err, "delete product")
	}
	return result.DeletedCount, nil
}

func (s *MongoProductStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *MongoProductStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
