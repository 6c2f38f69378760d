package store

import (
	"context"
	"os"
	"path/filepath"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/talkincode/warehouse/internal/domain"
	bolt "go.etcd.io/bbolt"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	json          = jsoniter.ConfigCompatibleWithStandardLibrary
	productBucket = []byte("products")
)

// BoltProductStore keeps products in a single bbolt bucket keyed by the
// raw ObjectID bytes, so iteration follows creation order.
type BoltProductStore struct {
	db *bolt.DB
}

func NewBoltProductStore(file string) (*BoltProductStore, error) {
	if err := os.MkdirAll(filepath.Dir(file), 0o700); err != nil {
		return nil, errors.Wrap(err, "create bolt dir")
	}
	db, err := bolt.Open(file, 0o600, &bolt.Options{Timeout: 3 * time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "open bolt %s", file)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(productBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "create products bucket")
	}
	return &BoltProductStore{db: db}, nil
}

func (s *BoltProductStore) scan(match func(p *domain.Product) bool, skip, take int64) ([]domain.Product, error) {
	products := make([]domain.Product, 0)
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(productBucket).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var p domain.Product
			if err := json.Unmarshal(v, &p); err != nil {
				return errors.Wrapf(err, "decode product %x", k)
			}
			if match != nil && !match(&p) {
				continue
			}
			if skip > 0 {
				skip--
				continue
			}
			products = append(products, p)
			if take > 0 && int64(len(products)) >= take {
				break
			}
		}
		return nil
	})
	return products, err
}

func (s *BoltProductStore) ListAll(ctx context.Context) ([]domain.Product, error) {
	return s.scan(nil, 0, 0)
}

func (s *BoltProductStore) ListPage(ctx context.Context, page, limit int64) ([]domain.Product, error) {
	skip, take := skipTake(page, limit)
	return s.scan(nil, skip, take)
}

func (s *BoltProductStore) ListByOwner(ctx context.Context, email string) ([]domain.Product, error) {
	return s.scan(func(p *domain.Product) bool { return p.Email == email }, 0, 0)
}

func (s *BoltProductStore) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}

	var p *domain.Product
	err = s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(productBucket).Get(oid[:])
		if v == nil {
			return ErrNotFound
		}
		p = new(domain.Product)
		return json.Unmarshal(v, p)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *BoltProductStore) Count(ctx context.Context) (int64, error) {
	var n int
	err := s.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(productBucket).Stats().KeyN
		return nil
	})
	return int64(n), err
}

func putProduct(b *bolt.Bucket, p *domain.Product) error {
	data, err := json.Marshal(p)
	if err != nil {
		return errors.Wrap(err, "encode product")
	}
	return b.Put(p.ID[:], data)
}

func (s *BoltProductStore) Insert(ctx context.Context, p *domain.Product) (primitive.ObjectID, error) {
	p.ID = primitive.NewObjectID()
	err := s.db.Update(func(tx *bolt.Tx) error {
		return putProduct(tx.Bucket(productBucket), p)
	})
	if err != nil {
		return primitive.NilObjectID, errors.Wrap(err, "insert product")
	}
	return p.ID, nil
}

func (s *BoltProductStore) update(id string, upsert bool, apply func(p *domain.Product)) (UpdateResult, error) {
	oid, err := ParseID(id)
	if err != nil {
		return UpdateResult{}, err
	}

	var result UpdateResult
	err = s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(productBucket)
		p := domain.Product{ID: oid}
		if v := b.Get(oid[:]); v != nil {
			if err := json.Unmarshal(v, &p); err != nil {
				return errors.Wrap(err, "decode product")
			}
			result.Matched = 1
		} else if upsert {
			result.Upserted = true
		} else {
			return nil
		}
		apply(&p)
		return putProduct(b, &p)
	})
	if err != nil {
		return UpdateResult{}, errors.Wrap(err, "update product")
	}
	return result, nil
}

func (s *BoltProductStore) SetStock(ctx context.Context, id string, stock int64, upsert bool) (UpdateResult, error) {
	return s.update(id, upsert, func(p *domain.Product) { p.Stock = stock })
}

func (s *BoltProductStore) Replace(ctx context.Context, id string, src *domain.Product, upsert bool) (UpdateResult, error) {
	return s.update(id, upsert, func(p *domain.Product) { replaceFields(p, src) })
}

func (s *BoltProductStore) Delete(ctx context.Context, id string) (int64, error) {
	oid, err := ParseID(id)
	if err != nil {
		return 0, err
	}

	var deleted int64
	err = s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(productBucket)
		if b.Get(oid[:]) == nil {
			return nil
		}
		deleted = 1
		return b.Delete(oid[:])
	})
	if err != nil {
		return 0, errors.Wrap(err, "delete product")
	}
	return deleted, nil
}

func (s *BoltProductStore) Ping(ctx context.Context) error {
	return s.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket(productBucket) == nil {
			return errors.New("products bucket missing")
		}
		return nil
	})
}

func (s *BoltProductStore) Close(ctx context.Context) error {
	return s.db.Close()
}
