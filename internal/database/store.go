package database

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"catalogsync/internal/logger"
	"catalogsync/internal/models"
)

// Store persists normalized catalog records. Upserts key on the deterministic
// SPU/SKU ids so re-importing the same source item never duplicates rows.
type Store struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStore(db *Database, log *logger.Logger) *Store {
	return &Store{db: db.DB, log: log}
}

// UpsertProduct writes an SPU and its SKUs. A SKU row already confirmed
// manually keeps its master sku and status: re-imports and webhook races must
// not move a SKU backward.
func (s *Store) UpsertProduct(ctx context.Context, spu *models.SPU) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		spuRow := *spu
		spuRow.SKUs = nil
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).Create(&spuRow).Error; err != nil {
			return fmt.Errorf("failed to upsert spu %s: %w", spu.ID, err)
		}

		for i := range spu.SKUs {
			sku := spu.SKUs[i]

			var existing models.SKU
			err := tx.First(&existing, "id = ?", sku.ID).Error
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				if err := tx.Create(&sku).Error; err != nil {
					return fmt.Errorf("failed to create sku %s: %w", sku.ID, err)
				}
			case err != nil:
				return fmt.Errorf("failed to load sku %s: %w", sku.ID, err)
			default:
				if existing.MappingStatus == models.MappingStatusManual {
					sku.MasterSKU = existing.MasterSKU
					sku.MappingStatus = existing.MappingStatus
				}
				sku.CreatedAt = existing.CreatedAt
				if err := tx.Model(&models.SKU{}).Where("id = ?", sku.ID).
					Updates(map[string]interface{}{
						"supplier_sku":   sku.SupplierSKU,
						"master_sku":     sku.MasterSKU,
						"price":          sku.Price,
						"stock":          sku.Stock,
						"weight":         sku.Weight,
						"barcode":        sku.Barcode,
						"mapping_status": sku.MappingStatus,
					}).Error; err != nil {
					return fmt.Errorf("failed to update sku %s: %w", sku.ID, err)
				}
			}
		}
		return nil
	})
}

// ApplyInventory writes stock (and optionally price) deltas by supplier sku.
// Unknown SKUs are skipped with a warning; a delta for a SKU the catalog has
// never seen is not an error.
func (s *Store) ApplyInventory(ctx context.Context, updates []models.InventoryUpdate) error {
	for _, u := range updates {
		values := map[string]interface{}{"stock": u.Quantity}
		if u.Price != nil {
			values["price"] = *u.Price
		}

		res := s.db.WithContext(ctx).Model(&models.SKU{}).
			Where("supplier_sku = ?", u.SKU).
			Updates(values)
		if res.Error != nil {
			return fmt.Errorf("failed to apply inventory for %s: %w", u.SKU, res.Error)
		}
		if res.RowsAffected == 0 {
			s.log.Warn("inventory update for unknown sku %s skipped", u.SKU)
		}
	}
	return nil
}

// GetProduct loads one SPU with its SKUs.
func (s *Store) GetProduct(ctx context.Context, id string) (*models.SPU, error) {
	var spu models.SPU
	err := s.db.WithContext(ctx).Preload("SKUs").First(&spu, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load spu %s: %w", id, err)
	}
	return &spu, nil
}

// ListProducts returns SPUs, optionally filtered by connector.
func (s *Store) ListProducts(ctx context.Context, connectorID string) ([]models.SPU, error) {
	q := s.db.WithContext(ctx).Preload("SKUs")
	if connectorID != "" {
		q = q.Where("connector_id = ?", connectorID)
	}
	var spus []models.SPU
	if err := q.Find(&spus).Error; err != nil {
		return nil, fmt.Errorf("failed to list spus: %w", err)
	}
	return spus, nil
}

// MappingStore is the gorm-backed mapping repository the reconciliation
// engine reads and writes through.
type MappingStore struct {
	db *gorm.DB
}

func NewMappingStore(db *Database) *MappingStore {
	return &MappingStore{db: db.DB}
}

func (m *MappingStore) Get(ctx context.Context, supplierSKU string) (*models.SKUMapping, error) {
	var mapping models.SKUMapping
	err := m.db.WithContext(ctx).First(&mapping, "supplier_sku = ?", supplierSKU).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load mapping for %s: %w", supplierSKU, err)
	}
	return &mapping, nil
}

func (m *MappingStore) Put(ctx context.Context, mapping *models.SKUMapping) error {
	err := m.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "supplier_sku"}},
		UpdateAll: true,
	}).Create(mapping).Error
	if err != nil {
		return fmt.Errorf("failed to persist mapping for %s: %w", mapping.SupplierSKU, err)
	}
	return nil
}

func (m *MappingStore) Delete(ctx context.Context, supplierSKU string) error {
	err := m.db.WithContext(ctx).
		Delete(&models.SKUMapping{}, "supplier_sku = ?", supplierSKU).Error
	if err != nil {
		return fmt.Errorf("failed to delete mapping for %s: %w", supplierSKU, err)
	}
	return nil
}

func (m *MappingStore) List(ctx context.Context) ([]models.SKUMapping, error) {
	var mappings []models.SKUMapping
	if err := m.db.WithContext(ctx).Find(&mappings).Error; err != nil {
		return nil, fmt.Errorf("failed to list mappings: %w", err)
	}
	return mappings, nil
}

func (m *MappingStore) MasterSKUs(ctx context.Context) ([]string, error) {
	var masters []string
	err := m.db.WithContext(ctx).Model(&models.SKUMapping{}).
		Distinct("master_sku").Pluck("master_sku", &masters).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list master skus: %w", err)
	}
	return masters, nil
}

func (m *MappingStore) PendingSKUs(ctx context.Context) ([]models.SKU, error) {
	var skus []models.SKU
	err := m.db.WithContext(ctx).
		Where("mapping_status = ?", models.MappingStatusPending).
		Find(&skus).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pending skus: %w", err)
	}
	return skus, nil
}
