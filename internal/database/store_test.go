package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalogsync/internal/logger"
	"catalogsync/internal/models"
)

func testStore(t *testing.T) (*Store, *MappingStore) {
	t.Helper()
	db, err := New("sqlite://:memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(db, logger.New("error")), NewMappingStore(db)
}

func testSPU() *models.SPU {
	return &models.SPU{
		ID:          "conn-1:BL123",
		Title:       "Produto Bling A",
		Vendor:      "Acme",
		ConnectorID: "conn-1",
		ExternalID:  "BL123",
		SKUs: []models.SKU{{
			ID:            "conn-1:BL123:BL001",
			SPUID:         "conn-1:BL123",
			SupplierSKU:   "BL001",
			Price:         49.9,
			Stock:         10,
			MappingStatus: models.MappingStatusPending,
		}},
	}
}

func TestUpsertProductIsIdempotent(t *testing.T) {
	store, _ := testStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertProduct(ctx, testSPU()))

	updated := testSPU()
	updated.Title = "Produto Bling A v2"
	updated.SKUs[0].Stock = 4
	require.NoError(t, store.UpsertProduct(ctx, updated))

	spus, err := store.ListProducts(ctx, "conn-1")
	require.NoError(t, err)
	require.Len(t, spus, 1)
	assert.Equal(t, "Produto Bling A v2", spus[0].Title)
	require.Len(t, spus[0].SKUs, 1)
	assert.Equal(t, 4, spus[0].SKUs[0].Stock)
}

func TestUpsertProductPreservesManualSKU(t *testing.T) {
	store, _ := testStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertProduct(ctx, testSPU()))

	// Operator confirms the mapping out of band.
	err := store.db.Model(&models.SKU{}).
		Where("id = ?", "conn-1:BL123:BL001").
		Updates(map[string]interface{}{
			"master_sku":     "MASTER-777",
			"mapping_status": models.MappingStatusManual,
		}).Error
	require.NoError(t, err)

	// A later import run arrives with the SKU still pending.
	require.NoError(t, store.UpsertProduct(ctx, testSPU()))

	spu, err := store.GetProduct(ctx, "conn-1:BL123")
	require.NoError(t, err)
	require.NotNil(t, spu)
	require.Len(t, spu.SKUs, 1)
	assert.Equal(t, "MASTER-777", spu.SKUs[0].MasterSKU)
	assert.Equal(t, models.MappingStatusManual, spu.SKUs[0].MappingStatus)
}

func TestApplyInventory(t *testing.T) {
	store, _ := testStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertProduct(ctx, testSPU()))

	price := 59.9
	err := store.ApplyInventory(ctx, []models.InventoryUpdate{
		{SKU: "BL001", Quantity: 3, Price: &price},
		{SKU: "UNKNOWN", Quantity: 1},
	})
	require.NoError(t, err)

	spu, err := store.GetProduct(ctx, "conn-1:BL123")
	require.NoError(t, err)
	require.Len(t, spu.SKUs, 1)
	assert.Equal(t, 3, spu.SKUs[0].Stock)
	assert.Equal(t, 59.9, spu.SKUs[0].Price)
}

func TestGetProductMissing(t *testing.T) {
	store, _ := testStore(t)

	spu, err := store.GetProduct(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, spu)
}

func TestMappingStoreRoundTrip(t *testing.T) {
	_, mappings := testStore(t)
	ctx := context.Background()

	missing, err := mappings.Get(ctx, "BL001")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, mappings.Put(ctx, &models.SKUMapping{
		SupplierSKU: "BL001",
		MasterSKU:   "MASTER-001",
		Confidence:  0.92,
		MappingType: models.MappingTypeAuto,
	}))

	got, err := mappings.Get(ctx, "BL001")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "MASTER-001", got.MasterSKU)

	// Manual override supersedes in place: still one row per supplier sku.
	require.NoError(t, mappings.Put(ctx, &models.SKUMapping{
		SupplierSKU: "BL001",
		MasterSKU:   "MASTER-777",
		Confidence:  1.0,
		MappingType: models.MappingTypeManual,
	}))

	all, err := mappings.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, models.MappingTypeManual, all[0].MappingType)

	masters, err := mappings.MasterSKUs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"MASTER-777"}, masters)

	require.NoError(t, mappings.Delete(ctx, "BL001"))
	gone, err := mappings.Get(ctx, "BL001")
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestMappingStorePendingSKUs(t *testing.T) {
	store, mappings := testStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertProduct(ctx, testSPU()))

	pending, err := mappings.PendingSKUs(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "BL001", pending[0].SupplierSKU)
}
