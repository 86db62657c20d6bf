package bling

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalogsync/internal/connectors"
	"catalogsync/internal/logger"
	"catalogsync/internal/models"
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
		ID:   "bling-config-id",
		Type: models.SourceTypeBling,
		Credentials: map[string]interface{}{
			"api_key": "test-key",
		},
	})
	require.NoError(t, err)
	return a
}

func TestConfigureRequiresAPIKey(t *testing.T) {
	a := New(connectors.Deps{Logger: logger.New("error")})
	err := a.Configure(&models.Connector{ID: "c1", Credentials: map[string]interface{}{}})
	assert.Error(t, err)
}

const listBody = `{"retorno":{"produtos":[
	{"produto":{"codigo":"BL123","descricao":"Produto Bling A","preco":"49.90","estoqueAtual":10,"gtin":"7891234567890"}},
	{"produto":{"codigo":"BL124","preco":"10.00","estoqueAtual":3}}
]}}`

func TestImportProductsCountsPartialFailures(t *testing.T) {
	transport := &stubTransport{responses: map[string]*connectors.Response{
		"/produtos/json": ok(listBody),
	}}
	store := &memStore{}
	a := newAdapter(t, transport, store)

	result := a.ImportProducts(context.Background(), 0, 0)

	// BL124 has no descricao: rejected, counted, run continues.
	assert.True(t, result.Success)
	assert.Equal(t, 1, result.ProductsImported)
	assert.Equal(t, 1, result.ProductsFailed)
	assert.LessOrEqual(t, result.ProductsImported+result.ProductsFailed, 2)

	require.Len(t, store.spus, 1)
	spu := store.spus[0]
	assert.Equal(t, "bling-config-id:BL123", spu.ID)
	require.Len(t, spu.SKUs, 1)
	assert.Equal(t, "BL123", spu.SKUs[0].SupplierSKU)
	assert.Equal(t, models.MappingStatusPending, spu.SKUs[0].MappingStatus)
}

func TestImportProductsAbortsOnPageFailure(t *testing.T) {
	transport := &stubTransport{err: fmt.Errorf("connection refused")}
	a := newAdapter(t, transport, &memStore{})

	result := a.ImportProducts(context.Background(), 0, 0)

	assert.False(t, result.Success)
	assert.Equal(t, 0, result.ProductsImported)
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0], "connection refused")
}

func TestImportProductsUnconfigured(t *testing.T) {
	a := New(connectors.Deps{Logger: logger.New("error")}).(*Adapter)
	result := a.ImportProducts(context.Background(), 0, 0)

	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Errors)
}

func TestTestConnectionNeverThrows(t *testing.T) {
	transport := &stubTransport{err: fmt.Errorf("dial tcp: connection refused")}
	a := newAdapter(t, transport, &memStore{})

	assert.False(t, a.TestConnection(context.Background()))

	a2 := New(connectors.Deps{Logger: logger.New("error")}).(*Adapter)
	assert.False(t, a2.TestConnection(context.Background()))
}

func TestTestConnectionSuccess(t *testing.T) {
	transport := &stubTransport{responses: map[string]*connectors.Response{
		"/situacao/json": ok(`{"retorno":{}}`),
	}}
	a := newAdapter(t, transport, &memStore{})

	assert.True(t, a.TestConnection(context.Background()))
}

func TestFetchInventoryBySKUOmitsFailedLookups(t *testing.T) {
	transport := &stubTransport{responses: map[string]*connectors.Response{
		"/produto/BL123/json": ok(`{"retorno":{"produtos":[{"produto":{"codigo":"BL123","descricao":"A","preco":"49.90","estoqueAtual":7}}]}}`),
	}}
	a := newAdapter(t, transport, &memStore{})

	updates, err := a.FetchInventory(context.Background(), []string{"BL123", "MISSING"})
	require.NoError(t, err)

	require.Len(t, updates, 1)
	assert.Equal(t, "BL123", updates[0].SKU)
	assert.Equal(t, 7, updates[0].Quantity)
}

func TestFetchInventoryPagesUntilShortPage(t *testing.T) {
	transport := &stubTransport{responses: map[string]*connectors.Response{
		"/produtos/json": ok(listBody),
	}}
	a := newAdapter(t, transport, &memStore{})

	updates, err := a.FetchInventory(context.Background(), nil)
	require.NoError(t, err)

	// Two products, one variant each; a short page stops the walk after one
	// request.
	assert.Len(t, updates, 2)
	assert.Len(t, transport.requests, 1)
}

func TestHandleWebhookStockEvent(t *testing.T) {
	store := &memStore{}
	a := newAdapter(t, &stubTransport{}, store)

	data, _ := json.Marshal(map[string]interface{}{"codigo": "BL001", "estoqueAtual": 4, "preco": "19,90"})
	err := a.HandleWebhook(context.Background(), &models.WebhookPayload{
		Event: eventStockChanged,
		Data:  data,
	})
	require.NoError(t, err)

	require.Len(t, store.inventory, 1)
	assert.Equal(t, "BL001", store.inventory[0].SKU)
	assert.Equal(t, 4, store.inventory[0].Quantity)
	require.NotNil(t, store.inventory[0].Price)
	assert.Equal(t, 19.9, *store.inventory[0].Price)
}

func TestHandleWebhookProductEventRefetches(t *testing.T) {
	transport := &stubTransport{responses: map[string]*connectors.Response{
		"/produto/BL123/json": ok(`{"retorno":{"produtos":[{"produto":{"codigo":"BL123","descricao":"Produto Bling A","preco":"49.90","estoqueAtual":10}}]}}`),
	}}
	store := &memStore{}
	a := newAdapter(t, transport, store)

	data, _ := json.Marshal(map[string]string{"codigo": "BL123"})
	err := a.HandleWebhook(context.Background(), &models.WebhookPayload{
		Event: eventProductChanged,
		Data:  data,
	})
	require.NoError(t, err)
	require.Len(t, store.spus, 1)
	assert.Equal(t, "bling-config-id:BL123", store.spus[0].ID)
}

func TestHandleWebhookIgnoresUnknownEvent(t *testing.T) {
	store := &memStore{}
	a := newAdapter(t, &stubTransport{}, store)

	err := a.HandleWebhook(context.Background(), &models.WebhookPayload{
		Event: "pedido.alterado",
		Data:  json.RawMessage(`{}`),
	})
	assert.NoError(t, err)
	assert.Empty(t, store.spus)
	assert.Empty(t, store.inventory)
}

func TestParseDecimal(t *testing.T) {
	assert.Equal(t, 49.9, parseDecimal("49.90"))
	assert.Equal(t, 19.9, parseDecimal("19,90"))
	assert.Equal(t, 0.0, parseDecimal(""))
	assert.Equal(t, 0.0, parseDecimal("abc"))
}
