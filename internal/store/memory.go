package store

import (
	"context"
	"sync"

	"github.com/google/btree"
	"github.com/talkincode/warehouse/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type memoryItem struct {
	seq     uint64
	product domain.Product
}

func memoryLess(a, b memoryItem) bool {
	return a.seq < b.seq
}

// MemoryProductStore is a process-local store ordered by insertion.
// It backs the "memory" database type and the handler tests.
type MemoryProductStore struct {
	mu    sync.RWMutex
	seq   uint64
	tree  *btree.BTreeG[memoryItem]
	index map[primitive.ObjectID]uint64
}

func NewMemoryProductStore() *MemoryProductStore {
	return &MemoryProductStore{
		tree:  btree.NewG[memoryItem](16, memoryLess),
		index: make(map[primitive.ObjectID]uint64),
	}
}

func (s *MemoryProductStore) collect(match func(p *domain.Product) bool, skip, take int64) []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]domain.Product, 0)
	s.tree.Ascend(func(item memoryItem) bool {
		if match != nil && !match(&item.product) {
			return true
		}
		if skip > 0 {
			skip--
			return true
		}
		products = append(products, item.product)
		return take <= 0 || int64(len(products)) < take
	})
	return products
}

func (s *MemoryProductStore) ListAll(ctx context.Context) ([]domain.Product, error) {
	return s.collect(nil, 0, 0), nil
}

func (s *MemoryProductStore) ListPage(ctx context.Context, page, limit int64) ([]domain.Product, error) {
	skip, take := skipTake(page, limit)
	return s.collect(nil, skip, take), nil
}

func (s *MemoryProductStore) ListByOwner(ctx context.Context, email string) ([]domain.Product, error) {
	return s.collect(func(p *domain.Product) bool { return p.Email == email }, 0, 0), nil
}

func (s *MemoryProductStore) lookup(oid primitive.ObjectID) (memoryItem, bool) {
	seq, ok := s.index[oid]
	if !ok {
		return memoryItem{}, false
	}
	return s.tree.Get(memoryItem{seq: seq})
}

func (s *MemoryProductStore) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.lookup(oid)
	if !ok {
		return nil, ErrNotFound
	}
	p := item.product
	return &p, nil
}

func (s *MemoryProductStore) Count(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(s.tree.Len()), nil
}

func (s *MemoryProductStore) put(p domain.Product) {
	s.seq++
	s.index[p.ID] = s.seq
	s.tree.ReplaceOrInsert(memoryItem{seq: s.seq, product: p})
}

func (s *MemoryProductStore) Insert(ctx context.Context, p *domain.Product) (primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.ID = primitive.NewObjectID()
	s.put(*p)
	return p.ID, nil
}

func (s *MemoryProductStore) update(id string, upsert bool, apply func(p *domain.Product)) (UpdateResult, error) {
	oid, err := ParseID(id)
	if err != nil {
		return UpdateResult{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.lookup(oid)
	if !ok {
		if !upsert {
			return UpdateResult{}, nil
		}
		p := domain.Product{ID: oid}
		apply(&p)
		s.put(p)
		return UpdateResult{Upserted: true}, nil
	}
	apply(&item.product)
	s.tree.ReplaceOrInsert(item)
	return UpdateResult{Matched: 1}, nil
}

func (s *MemoryProductStore) SetStock(ctx context.Context, id string, stock int64, upsert bool) (UpdateResult, error) {
	return s.update(id, upsert, func(p *domain.Product) { p.Stock = stock })
}

func (s *MemoryProductStore) Replace(ctx context.Context, id string, src *domain.Product, upsert bool) (UpdateResult, error) {
	return s.update(id, upsert, func(p *domain.Product) { replaceFields(p, src) })
}

func (s *MemoryProductStore) Delete(ctx context.Context, id string) (int64, error) {
	oid, err := ParseID(id)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	seq, ok := s.index[oid]
	if !ok {
		return 0, nil
	}
	delete(s.index, oid)
	s.tree.Delete(memoryItem{seq: seq})
	return 1, nil
}

func (s *MemoryProductStore) Ping(ctx context.Context) error {
	return nil
}

func (s *MemoryProductStore) Close(ctx context.Context) error {
	return nil
}
