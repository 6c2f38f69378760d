package store

import (
	"context"

	"github.com/pkg/errors"
	"github.com/talkincode/warehouse/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// productRow is the relational shape of domain.Product
type productRow struct {
	ID           string  `gorm:"primaryKey;size:24"`
	Name         string  `gorm:"index"`
	Price        float64
	Stock        int64
	SupplierName string
	Image        string `gorm:"size:1024"`
	Quote        string
	Email        string `gorm:"index"`
}

// TableName returns table name
func (productRow) TableName() string {
	return "products"
}

func toRow(p *domain.Product) productRow {
	return productRow{
		ID:           p.ID.Hex(),
		Name:         p.Name,
		Price:        p.Price,
		Stock:        p.Stock,
		SupplierName: p.SupplierName,
		Image:        p.Image,
		Quote:        p.Quote,
		Email:        p.Email,
	}
}

func (r productRow) toProduct() domain.Product {
	oid, _ := primitive.ObjectIDFromHex(r.ID)
	return domain.Product{
		ID:           oid,
		Name:         r.Name,
		Price:        r.Price,
		Stock:        r.Stock,
		SupplierName: r.SupplierName,
		Image:        r.Image,
		Quote:        r.Quote,
		Email:        r.Email,
	}
}

var replaceColumns = []string{"name", "price", "stock", "supplier_name", "image", "quote"}

// GormProductStore is the GORM implementation of ProductStore
type GormProductStore struct {
	db *gorm.DB
}

// NewGormProductStore migrates the products table and wraps db
func NewGormProductStore(db *gorm.DB) (*GormProductStore, error) {
	if err := db.AutoMigrate(&productRow{}); err != nil {
		return nil, errors.Wrap(err, "migrate products")
	}
	return &GormProductStore{db: db}, nil
}

func (s *GormProductStore) find(ctx context.Context, scope func(*gorm.DB) *gorm.DB) ([]domain.Product, error) {
	var rows []productRow
	q := s.db.WithContext(ctx).Model(&productRow{}).Order("id")
	if scope != nil {
		q = scope(q)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "find products")
	}
	products := make([]domain.Product, 0, len(rows))
	for _, r := range rows {
		products = append(products, r.toProduct())
	}
	return products, nil
}

func (s *GormProductStore) ListAll(ctx context.Context) ([]domain.Product, error) {
	return s.find(ctx, nil)
}

func (s *GormProductStore) ListPage(ctx context.Context, page, limit int64) ([]domain.Product, error) {
	skip, take := skipTake(page, limit)
	return s.find(ctx, func(db *gorm.DB) *gorm.DB {
		db = db.Offset(int(skip))
		if take > 0 {
			db = db.Limit(int(take))
		}
		return db
	})
}

func (s *GormProductStore) ListByOwner(ctx context.Context, email string) ([]domain.Product, error) {
	return s.find(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("email = ?", email)
	})
}

func (s *GormProductStore) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	var row productRow
	err = s.db.WithContext(ctx).Where("id = ?", oid.Hex()).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, errors.Wrap(err, "find product")
	}
	p := row.toProduct()
	return &p, nil
}

func (s *GormProductStore) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&productRow{}).Count(&total).Error; err != nil {
		return 0, errors.Wrap(err, "count products")
	}
	return total, nil
}

func (s *GormProductStore) Insert(ctx context.Context, p *domain.Product) (primitive.ObjectID, error) {
	p.ID = primitive.NewObjectID()
	row := toRow(p)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return primitive.NilObjectID, errors.Wrap(err, "insert product")
	}
	return p.ID, nil
}

func (s *GormProductStore) update(ctx context.Context, oid primitive.ObjectID, row productRow, columns []string, upsert bool) (UpdateResult, error) {
	db := s.db.WithContext(ctx)
	if !upsert {
		updates := make(map[string]interface{}, len(columns))
		values := map[string]interface{}{
			"name":          row.Name,
			"price":         row.Price,
			"stock":         row.Stock,
			"supplier_name": row.SupplierName,
			"image":         row.Image,
			"quote":         row.Quote,
		}
		for _, col := range columns {
			updates[col] = values[col]
		}
		result := db.Model(&productRow{}).Where("id = ?", oid.Hex()).Updates(updates)
		if result.Error != nil {
			return UpdateResult{}, errors.Wrap(result.Error, "update product")
		}
		return UpdateResult{Matched: result.RowsAffected}, nil
	}

	var exists int64
	if err := db.Model(&productRow{}).Where("id = ?", oid.Hex()).Count(&exists).Error; err != nil {
		return UpdateResult{}, errors.Wrap(err, "update product")
	}
	row.ID = oid.Hex()
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(columns),
	}).Create(&row).Error
	if err != nil {
		return UpdateResult{}, errors.Wrap(err, "upsert product")
	}
	if exists > 0 {
		return UpdateResult{Matched: 1}, nil
	}
	return UpdateResult{Upserted: true}, nil
}

func (s *GormProductStore) SetStock(ctx context.Context, id string, stock int64, upsert bool) (UpdateResult, error) {
	oid, err := ParseID(id)
	if err != nil {
		return UpdateResult{}, err
	}
	return s.update(ctx, oid, productRow{Stock: stock}, []string{"stock"}, upsert)
}

func (s *GormProductStore) Replace(ctx context.Context, id string, p *domain.Product, upsert bool) (UpdateResult, error) {
	oid, err := ParseID(id)
	if err != nil {
		return UpdateResult{}, err
	}
	return s.update(ctx, oid, toRow(p), replaceColumns, upsert)
}

func (s *GormProductStore) Delete(ctx context.Context, id string) (int64, error) {
	oid, err := ParseID(id)
	if err != nil {
		return 0, err
	}
	result := s.db.WithContext(ctx).Where("id = ?", oid.Hex()).Delete(&productRow{})
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "delete product")
	}
	return result.RowsAffected, nil
}

func (s *GormProductStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *GormProductStore) Close(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
