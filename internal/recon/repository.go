package recon

import (
	"context"
	"sync"

	"catalogsync/internal/models"
)

// MappingRepository is the persistence contract the reconciliation engine
// depends on. Get returns (nil, nil) when no mapping exists for the supplier
// SKU. The gorm-backed implementation lives in internal/database.
type MappingRepository interface {
	Get(ctx context.Context, supplierSKU string) (*models.SKUMapping, error)
	Put(ctx context.Context, mapping *models.SKUMapping) error
	Delete(ctx context.Context, supplierSKU string) error
	List(ctx context.Context) ([]models.SKUMapping, error)
	MasterSKUs(ctx context.Context) ([]string, error)
	PendingSKUs(ctx context.Context) ([]models.SKU, error)
}

// CachedRepository layers an in-process cache over a MappingRepository. It is
// safe for concurrent readers and for the check-miss-compute-write pattern;
// Put writes through to the backing store before updating the cache so a
// concurrent manual override is never lost to a stale entry.
type CachedRepository struct {
	backend MappingRepository

	mu    sync.RWMutex
	cache map[string]*models.SKUMapping
}

func NewCachedRepository(backend MappingRepository) *CachedRepository {
	return &CachedRepository{
		backend: backend,
		cache:   make(map[string]*models.SKUMapping),
	}
}

func (r *CachedRepository) Get(ctx context.Context, supplierSKU string) (*models.SKUMapping, error) {
	r.mu.RLock()
	if m, ok := r.cache[supplierSKU]; ok {
		r.mu.RUnlock()
		copied := *m
		return &copied, nil
	}
	r.mu.RUnlock()

	m, err := r.backend.Get(ctx, supplierSKU)
	if err != nil || m == nil {
		return m, err
	}

	r.mu.Lock()
	r.cache[supplierSKU] = m
	r.mu.Unlock()

	copied := *m
	return &copied, nil
}

func (r *CachedRepository) Put(ctx context.Context, mapping *models.SKUMapping) error {
	if err := r.backend.Put(ctx, mapping); err != nil {
		return err
	}

	r.mu.Lock()
	copied := *mapping
	r.cache[mapping.SupplierSKU] = &copied
	r.mu.Unlock()

	return nil
}

func (r *CachedRepository) Delete(ctx context.Context, supplierSKU string) error {
	if err := r.backend.Delete(ctx, supplierSKU); err != nil {
		return err
	}

	r.mu.Lock()
	delete(r.cache, supplierSKU)
	r.mu.Unlock()

	return nil
}

func (r *CachedRepository) List(ctx context.Context) ([]models.SKUMapping, error) {
	return r.backend.List(ctx)
}

func (r *CachedRepository) MasterSKUs(ctx context.Context) ([]string, error) {
	return r.backend.MasterSKUs(ctx)
}

func (r *CachedRepository) PendingSKUs(ctx context.Context) ([]models.SKU, error) {
	return r.backend.PendingSKUs(ctx)
}
