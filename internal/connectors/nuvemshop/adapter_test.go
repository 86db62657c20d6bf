package nuvemshop

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalogsync/internal/connectors"
	"catalogsync/internal/logger"
	"catalogsync/internal/models"
	"catalogsync/internal/webhook"
)

type stubTransport struct {
	responses map[string]*connectors.Response
	err       error
	requests  []*connectors.Request
}

func (s *stubTransport) Do(_ context.Context, req *connectors.Request) (*connectors.Response, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return nil, s.err
	}
	if resp, ok := s.responses[req.Path]; ok {
		return resp, nil
	}
	return &connectors.Response{StatusCode: http.StatusNotFound, Body: []byte(`{}`)}, nil
}

type memStore struct {
	spus      []*models.SPU
	inventory []models.InventoryUpdate
}

func (s *memStore) UpsertProduct(_ context.Context, spu *models.SPU) error {
	s.spus = append(s.spus, spu)
	return nil
}

func (s *memStore) ApplyInventory(_ context.Context, updates []models.InventoryUpdate) error {
	s.inventory = append(s.inventory, updates...)
	return nil
}

func ok(body string) *connectors.Response {
	return &connectors.Response{StatusCode: http.StatusOK, Body: []byte(body)}
}

func newAdapter(t *testing.T, transport connectors.Transport, store connectors.Store) *Adapter {
	t.Helper()
	a := New(connectors.Deps{
		Logger:    logger.New("error"),
		Store:     store,
		Transport: transport,
	}).(*Adapter)

	err := a.Configure(&models.Connector{
		ID:   "nuvem-config-id",
		Type: models.SourceTypeNuvemshop,
		Credentials: map[string]interface{}{
			"store_id":       "12345",
			"access_token":   "tok",
			"webhook_secret": "hush",
		},
	})
	require.NoError(t, err)
	return a
}

const productsBody = `[
	{"id":501,"name":{"pt":"Caneca Verde","es":"Taza Verde"},"description":{"pt":"Caneca"},"brand":"Acme",
	 "variants":[{"id":601,"sku":"NV-001","price":"35.00","stock":8,"weight":"0.40","barcode":"789000111"}],
	 "images":[{"id":701,"src":"https://cdn/img.png"}]}
]`

func TestImportProductsUsesLocalizedFields(t *testing.T) {
	transport := &stubTransport{responses: map[string]*connectors.Response{
		"/products": ok(productsBody),
	}}
	store := &memStore{}
	a := newAdapter(t, transport, store)

	result := a.ImportProducts(context.Background(), 0, 0)

	assert.True(t, result.Success)
	assert.Equal(t, 1, result.ProductsImported)
	assert.Equal(t, 0, result.ProductsFailed)

	require.Len(t, store.spus, 1)
	spu := store.spus[0]
	assert.Equal(t, "nuvem-config-id:501", spu.ID)
	assert.Equal(t, "Caneca Verde", spu.Title)
	require.Len(t, spu.SKUs, 1)
	assert.Equal(t, "NV-001", spu.SKUs[0].SupplierSKU)
	assert.Equal(t, 35.0, spu.SKUs[0].Price)
	assert.Equal(t, 0.4, spu.SKUs[0].Weight)
}

func TestImportProductsPastEndOfCatalog(t *testing.T) {
	// A 404 page means the catalog is exhausted, not a failed run.
	transport := &stubTransport{}
	a := newAdapter(t, transport, &memStore{})

	result := a.ImportProducts(context.Background(), 200, 400)

	assert.True(t, result.Success)
	assert.Equal(t, 0, result.ProductsImported)
}

func TestHandleWebhookRejectsBadSignature(t *testing.T) {
	store := &memStore{}
	a := newAdapter(t, &stubTransport{}, store)

	body := []byte(`{"store_id":12345,"event":"product/updated","id":501}`)
	err := a.HandleWebhook(context.Background(), &models.WebhookPayload{
		Event:   eventProductUpdated,
		Data:    body,
		RawBody: body,
		Headers: map[string]string{SignatureHeader: webhook.Sign(body, "wrong-secret")},
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, webhook.ErrInvalidSignature)
	assert.Empty(t, store.spus)
}

func TestHandleWebhookProductUpdatedRefetches(t *testing.T) {
	transport := &stubTransport{responses: map[string]*connectors.Response{
		"/products/501": ok(`{"id":501,"name":{"pt":"Caneca Verde"},"variants":[{"id":601,"sku":"NV-001","price":"35.00","stock":9}]}`),
	}}
	store := &memStore{}
	a := newAdapter(t, transport, store)

	body := []byte(`{"store_id":12345,"event":"product/updated","id":501}`)
	err := a.HandleWebhook(context.Background(), &models.WebhookPayload{
		Event:   eventProductUpdated,
		Data:    body,
		RawBody: body,
		Headers: map[string]string{SignatureHeader: webhook.Sign(body, "hush")},
	})

	require.NoError(t, err)
	require.Len(t, store.spus, 1)
	assert.Equal(t, "nuvem-config-id:501", store.spus[0].ID)
}

func TestHandleWebhookVariantUpdatedAppliesInventory(t *testing.T) {
	transport := &stubTransport{responses: map[string]*connectors.Response{
		"/products/501": ok(`{"id":501,"name":{"pt":"Caneca Verde"},"variants":[{"id":601,"sku":"NV-001","price":"35.00","stock":2}]}`),
	}}
	store := &memStore{}
	a := newAdapter(t, transport, store)

	body := []byte(`{"store_id":12345,"event":"product_variant/updated","id":501}`)
	err := a.HandleWebhook(context.Background(), &models.WebhookPayload{
		Event:   eventVariantUpdated,
		Data:    body,
		RawBody: body,
		Headers: map[string]string{SignatureHeader: webhook.Sign(body, "hush")},
	})

	require.NoError(t, err)
	require.Len(t, store.inventory, 1)
	assert.Equal(t, "NV-001", store.inventory[0].SKU)
	assert.Equal(t, 2, store.inventory[0].Quantity)
}

func TestLocalizedFallsBackToAnyLanguage(t *testing.T) {
	assert.Equal(t, "Taza", localized(map[string]string{"es": "Taza"}))
	assert.Equal(t, "Caneca", localized(map[string]string{"pt": "Caneca", "es": "Taza"}))
	assert.Equal(t, "", localized(nil))
}
