package store

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/talkincode/warehouse/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound  = errors.New("product not found")
	ErrInvalidID = errors.New("invalid product id")
)

// UpdateResult reports what a stock or replace write touched
type UpdateResult struct {
	Matched  int64
	Upserted bool
}

// Found reports whether the write hit or created a record
func (r UpdateResult) Found() bool {
	return r.Matched > 0 || r.Upserted
}

// ProductStore is the persistence boundary for products
type ProductStore interface {
	// ListAll returns every product in natural storage order
	ListAll(ctx context.Context) ([]domain.Product, error)

	// ListPage skips page*limit records and returns up to limit records.
	// Values are not bound-checked; limit <= 0 means no limit.
	ListPage(ctx context.Context, page, limit int64) ([]domain.Product, error)

	// ListByOwner returns the products tagged with email
	ListByOwner(ctx context.Context, email string) ([]domain.Product, error)

	// GetByID returns ErrNotFound when no record matches
	GetByID(ctx context.Context, id string) (*domain.Product, error)

	// Count is a fast, possibly approximate, cardinality
	Count(ctx context.Context) (int64, error)

	// Insert assigns a new identifier and stores p verbatim
	Insert(ctx context.Context, p *domain.Product) (primitive.ObjectID, error)

	// SetStock overwrites only the stock field
	SetStock(ctx context.Context, id string, stock int64, upsert bool) (UpdateResult, error)

	// Replace overwrites name, price, stock, supplierName, image and quote
	Replace(ctx context.Context, id string, p *domain.Product, upsert bool) (UpdateResult, error)

	// Delete removes at most one record and returns the deleted count
	Delete(ctx context.Context, id string) (int64, error)

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// ParseID converts a hex identifier into an ObjectID
func ParseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return primitive.NilObjectID, errors.Wrapf(ErrInvalidID, "%q", id)
	}
	return oid, nil
}

// skipTake turns page/limit into skip/take, clamping negative skips
func skipTake(page, limit int64) (skip, take int64) {
	skip = page * limit
	if skip < 0 {
		skip = 0
	}
	take = limit
	if take < 0 {
		take = 0
	}
	return skip, take
}

// replaceFields copies the overwritable fields from src into dst
func replaceFields(dst, src *domain.Product) {
	dst.Name = src.Name
	dst.Price = src.Price
	dst.Stock = src.Stock
	dst.SupplierName = src.SupplierName
	dst.Image = src.Image
	dst.Quote = src.Quote
}
