package shopify

import (
	"context"
	"fmt"
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

type stubRecon struct{ calls int }

func (r *stubRecon) ReconcileSKUs(_ context.Context, spu *models.SPU) error {
	r.calls++
	for i := range spu.SKUs {
		spu.SKUs[i].MasterSKU = "MASTER-" + spu.SKUs[i].SupplierSKU
		spu.SKUs[i].MappingStatus = models.MappingStatusAuto
	}
	return nil
}

func ok(body string) *connectors.Response {
	return &connectors.Response{StatusCode: http.StatusOK, Body: []byte(body)}
}

func newAdapter(t *testing.T, transport connectors.Transport, store connectors.Store, recon connectors.Reconciler) *Adapter {
	t.Helper()
	a := New(connectors.Deps{
		Logger:    logger.New("error"),
		Store:     store,
		Recon:     recon,
		Transport: transport,
	}).(*Adapter)

	err := a.Configure(&models.Connector{
		ID:   "shopify-config-id",
		Type: models.SourceTypeShopify,
		Credentials: map[string]interface{}{
			"shop_domain":    "acme",
			"access_token":   "shpat_test",
			"webhook_secret": "hush",
		},
	})
	require.NoError(t, err)
	return a
}

const productsBody = `{"products":[
	{"id":1001,"title":"Camiseta Azul","body_html":"<p>Azul</p>","vendor":"Acme","product_type":"Camisetas","tags":"verao, promo",
	 "variants":[{"id":2001,"product_id":1001,"sku":"SHP-001","price":"99.90","inventory_quantity":5,"weight":0.2}],
	 "images":[{"id":3001,"src":"https://cdn/img1.png"}]},
	{"id":1002,"title":"","variants":[{"id":2002,"sku":"SHP-002","price":"10.00"}]}
]}`

func TestConfigureRequiresCredentials(t *testing.T) {
	a := New(connectors.Deps{Logger: logger.New("error")})
	err := a.Configure(&models.Connector{
		ID:          "c1",
		Credentials: map[string]interface{}{"shop_domain": "acme"},
	})
	assert.Error(t, err)
}

func TestImportProductsNormalizesAndReconciles(t *testing.T) {
	transport := &stubTransport{responses: map[string]*connectors.Response{
		"/products.json": ok(productsBody),
	}}
	store := &memStore{}
	recon := &stubRecon{}
	a := newAdapter(t, transport, store, recon)

	result := a.ImportProducts(context.Background(), 0, 0)

	assert.True(t, result.Success)
	assert.Equal(t, 1, result.ProductsImported)
	assert.Equal(t, 1, result.ProductsFailed) // 1002 has no title
	assert.Equal(t, 1, recon.calls)

	require.Len(t, store.spus, 1)
	spu := store.spus[0]
	assert.Equal(t, "shopify-config-id:1001", spu.ID)
	assert.Equal(t, []string{"verao", "promo"}, []string(spu.Tags))
	require.Len(t, spu.SKUs, 1)
	assert.Equal(t, "SHP-001", spu.SKUs[0].SupplierSKU)
	assert.Equal(t, "MASTER-SHP-001", spu.SKUs[0].MasterSKU)
	assert.Equal(t, models.MappingStatusAuto, spu.SKUs[0].MappingStatus)
}

func TestImportProductsClampsLimit(t *testing.T) {
	transport := &stubTransport{responses: map[string]*connectors.Response{
		"/products.json": ok(`{"products":[]}`),
	}}
	a := newAdapter(t, transport, &memStore{}, nil)

	a.ImportProducts(context.Background(), 10000, 0)

	require.Len(t, transport.requests, 1)
	assert.Equal(t, "250", transport.requests[0].Query.Get("limit"))
}

func TestImportProductsAbortsOnPageFailure(t *testing.T) {
	transport := &stubTransport{err: fmt.Errorf("tls handshake timeout")}
	a := newAdapter(t, transport, &memStore{}, nil)

	result := a.ImportProducts(context.Background(), 50, 0)

	assert.False(t, result.Success)
	assert.Equal(t, 0, result.ProductsImported)
	require.NotEmpty(t, result.Errors)
}

func TestTestConnectionFoldsFailuresToFalse(t *testing.T) {
	transport := &stubTransport{err: fmt.Errorf("no such host")}
	a := newAdapter(t, transport, &memStore{}, nil)

	assert.False(t, a.TestConnection(context.Background()))
}

func TestTestConnectionSuccess(t *testing.T) {
	transport := &stubTransport{responses: map[string]*connectors.Response{
		"/shop.json": ok(`{"shop":{"id":7,"name":"Acme","myshopify_domain":"acme.myshopify.com"}}`),
	}}
	a := newAdapter(t, transport, &memStore{}, nil)

	assert.True(t, a.TestConnection(context.Background()))
}

func TestHandleWebhookRejectsTamperedSignature(t *testing.T) {
	store := &memStore{}
	a := newAdapter(t, &stubTransport{}, store, nil)

	body := []byte(`{"id":1001,"title":"Camiseta","variants":[{"id":2001,"sku":"SHP-001","price":"10.00"}]}`)
	sig := webhook.Sign(body, "hush")

	// One altered byte in the signature must reject the payload outright.
	altered := []byte(sig)
	if altered[0] == 'A' {
		altered[0] = 'B'
	} else {
		altered[0] = 'A'
	}

	err := a.HandleWebhook(context.Background(), &models.WebhookPayload{
		Event:   eventProductUpdate,
		Data:    body,
		RawBody: body,
		Headers: map[string]string{SignatureHeader: string(altered)},
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, webhook.ErrInvalidSignature)
	assert.Empty(t, store.spus)
}

func TestHandleWebhookProcessesSignedProductUpdate(t *testing.T) {
	store := &memStore{}
	a := newAdapter(t, &stubTransport{}, store, nil)

	body := []byte(`{"id":1001,"title":"Camiseta","variants":[{"id":2001,"sku":"SHP-001","price":"10.00","inventory_quantity":2}]}`)
	err := a.HandleWebhook(context.Background(), &models.WebhookPayload{
		Event:   eventProductUpdate,
		Data:    body,
		RawBody: body,
		Headers: map[string]string{SignatureHeader: webhook.Sign(body, "hush")},
	})

	require.NoError(t, err)
	require.Len(t, store.spus, 1)
	assert.Equal(t, "shopify-config-id:1001", store.spus[0].ID)
}

func TestHandleWebhookInventoryEvent(t *testing.T) {
	store := &memStore{}
	a := newAdapter(t, &stubTransport{}, store, nil)

	body := []byte(`{"inventory_item_id":555,"available":12,"sku":"SHP-001"}`)
	err := a.HandleWebhook(context.Background(), &models.WebhookPayload{
		Event:   eventInventoryUpdate,
		Data:    body,
		RawBody: body,
		Headers: map[string]string{SignatureHeader: webhook.Sign(body, "hush")},
	})

	require.NoError(t, err)
	require.Len(t, store.inventory, 1)
	assert.Equal(t, "SHP-001", store.inventory[0].SKU)
	assert.Equal(t, 12, store.inventory[0].Quantity)
}

func TestHandleWebhookIgnoresUnknownTopic(t *testing.T) {
	store := &memStore{}
	a := newAdapter(t, &stubTransport{}, store, nil)

	body := []byte(`{"id":9}`)
	err := a.HandleWebhook(context.Background(), &models.WebhookPayload{
		Event:   "orders/create",
		Data:    body,
		RawBody: body,
		Headers: map[string]string{SignatureHeader: webhook.Sign(body, "hush")},
	})

	assert.NoError(t, err)
	assert.Empty(t, store.spus)
}

func TestFetchInventoryFiltersRequestedSKUs(t *testing.T) {
	transport := &stubTransport{responses: map[string]*connectors.Response{
		"/products.json": ok(productsBody),
	}}
	a := newAdapter(t, transport, &memStore{}, nil)

	updates, err := a.FetchInventory(context.Background(), []string{"SHP-002"})
	require.NoError(t, err)

	require.Len(t, updates, 1)
	assert.Equal(t, "SHP-002", updates[0].SKU)
}
