package connectors

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalogsync/internal/logger"
	"catalogsync/internal/models"
)

func testBase() *Base {
	return &Base{
		Source: models.SourceTypeBling,
		Cfg:    &models.Connector{ID: "bling-config-id", Type: models.SourceTypeBling},
		Log:    logger.New("error"),
	}
}

func rawFixture() *models.RawProduct {
	return &models.RawProduct{
		ID:    "BL123",
		Title: "Produto Bling A",
		Variants: []models.RawVariant{
			{ID: "v1", SKU: "BL001", Price: 49.9, Quantity: 10, Weight: 0.3, Barcode: "7891234567890"},
		},
	}
}

func TestNormalizeProductDeterministic(t *testing.T) {
	base := testBase()

	first, err := base.NormalizeProduct(rawFixture())
	require.NoError(t, err)
	second, err := base.NormalizeProduct(rawFixture())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Contains(t, first.ID, "bling-config-id")
	assert.Contains(t, first.ID, "BL123")
}

func TestNormalizeProductShape(t *testing.T) {
	base := testBase()

	spu, err := base.NormalizeProduct(rawFixture())
	require.NoError(t, err)

	assert.Equal(t, "Produto Bling A", spu.Title)
	assert.Equal(t, "bling-config-id", spu.ConnectorID)
	assert.Equal(t, "BL123", spu.ExternalID)

	require.Len(t, spu.SKUs, 1)
	sku := spu.SKUs[0]
	assert.Equal(t, spu.ID, sku.SPUID)
	assert.Equal(t, "BL001", sku.SupplierSKU)
	assert.Equal(t, 49.9, sku.Price)
	assert.Equal(t, 10, sku.Stock)
	assert.Equal(t, models.MappingStatusPending, sku.MappingStatus)
	assert.Empty(t, sku.MasterSKU)
}

func TestNormalizeProductRequiresConfiguration(t *testing.T) {
	base := &Base{Source: models.SourceTypeBling, Log: logger.New("error")}

	_, err := base.NormalizeProduct(rawFixture())
	assert.Error(t, err)
}

func TestValidateRawRejections(t *testing.T) {
	base := testBase()

	noID := rawFixture()
	noID.ID = ""
	assert.Error(t, base.ValidateRaw(noID))

	noTitle := rawFixture()
	noTitle.Title = ""
	assert.Error(t, base.ValidateRaw(noTitle))

	noVariants := rawFixture()
	noVariants.Variants = nil
	assert.Error(t, base.ValidateRaw(noVariants))

	assert.NoError(t, base.ValidateRaw(rawFixture()))
}

func TestConfigureRequiresCredentials(t *testing.T) {
	base := &Base{Source: models.SourceTypeShopify, Log: logger.New("error")}

	err := base.Configure(&models.Connector{
		ID:          "c1",
		Credentials: map[string]interface{}{"shop_domain": "acme"},
	}, "shop_domain", "access_token")
	assert.Error(t, err)

	err = base.Configure(&models.Connector{
		ID: "c1",
		Credentials: map[string]interface{}{
			"shop_domain":  "acme",
			"access_token": "tok",
		},
	}, "shop_domain", "access_token")
	assert.NoError(t, err)
}

type failingStore struct{ err error }

func (s *failingStore) UpsertProduct(context.Context, *models.SPU) error { return s.err }
func (s *failingStore) ApplyInventory(context.Context, []models.InventoryUpdate) error {
	return s.err
}

func TestImportOneCountsFailuresAndContinues(t *testing.T) {
	base := testBase()
	result := NewSyncResult()

	// Malformed item: counted as failed, no error raised.
	bad := rawFixture()
	bad.Title = ""
	base.ImportOne(context.Background(), bad, result)

	base.ImportOne(context.Background(), rawFixture(), result)

	assert.Equal(t, 1, result.ProductsImported)
	assert.Equal(t, 1, result.ProductsFailed)
	assert.Len(t, result.Errors, 1)
	assert.True(t, result.Success)
}

func TestImportOneCountsStoreFailure(t *testing.T) {
	base := testBase()
	base.Store = &failingStore{err: fmt.Errorf("db unavailable")}
	result := NewSyncResult()

	base.ImportOne(context.Background(), rawFixture(), result)

	assert.Equal(t, 0, result.ProductsImported)
	assert.Equal(t, 1, result.ProductsFailed)
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 100, ClampLimit(0, 100))
	assert.Equal(t, 100, ClampLimit(500, 100))
	assert.Equal(t, 50, ClampLimit(50, 100))
	assert.Equal(t, 100, ClampLimit(-1, 100))
}
