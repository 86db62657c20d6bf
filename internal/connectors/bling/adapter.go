package bling

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"catalogsync/internal/connectors"
	"catalogsync/internal/models"
)

// pageSize is Bling's fixed page cap for /produtos.
const pageSize = 100

// Webhook event names Bling posts to registered callbacks.
const (
	eventProductChanged = "produto.alterado"
	eventProductCreated = "produto.incluido"
	eventStockChanged   = "estoque.alterado"
)

// Adapter connects the Bling ERP to the catalog pipeline.
type Adapter struct {
	connectors.Base
	deps   connectors.Deps
	client *Client
}

func New(deps connectors.Deps) connectors.Connector {
	return &Adapter{
		Base: connectors.Base{
			Source: models.SourceTypeBling,
			Log:    deps.Logger,
			Store:  deps.Store,
			Recon:  deps.Recon,
		},
		deps: deps,
	}
}

func (a *Adapter) Configure(cfg *models.Connector) error {
	if err := a.Base.Configure(cfg, "api_key"); err != nil {
		return err
	}

	transport := a.deps.Transport
	if transport == nil {
		transport = connectors.NewHTTPTransport(baseURL, nil)
	}
	a.client = NewClient(transport, cfg.Credential("api_key"), a.Log)
	return nil
}

func (a *Adapter) TestConnection(ctx context.Context) bool {
	if err := a.Configured(); err != nil {
		a.Log.Warn("bling: connection test on unconfigured connector: %v", err)
		return false
	}
	if err := a.client.CheckStatus(ctx); err != nil {
		a.Log.Warn("bling: connection test failed: %v", err)
		return false
	}
	return true
}

func (a *Adapter) ImportProducts(ctx context.Context, limit, offset int) *models.SyncResult {
	started := time.Now()
	result := connectors.NewSyncResult()

	if err := a.Configured(); err != nil {
		return a.AbortRun(result, started, err)
	}

	limit = connectors.ClampLimit(limit, pageSize)
	page := offset/limit + 1

	products, err := a.client.ListProducts(ctx, page)
	if err != nil {
		return a.AbortRun(result, started, err)
	}

	if len(products) > limit {
		products = products[:limit]
	}

	for i := range products {
		a.ImportOne(ctx, products[i].toRaw(), result)
	}

	return a.FinishRun(result, started)
}

func (a *Adapter) FetchInventory(ctx context.Context, skus []string) ([]models.InventoryUpdate, error) {
	if err := a.Configured(); err != nil {
		return nil, err
	}

	if len(skus) > 0 {
		updates := make([]models.InventoryUpdate, 0, len(skus))
		for _, sku := range skus {
			product, err := a.client.GetProduct(ctx, sku)
			if err != nil {
				// Per-item lookup failure: the item is omitted, the rest
				// of the batch continues.
				a.Log.Warn("bling: inventory lookup failed for %s: %v", sku, err)
				continue
			}
			updates = append(updates, product.toInventory()...)
		}
		return updates, nil
	}

	// No filter: walk the whole catalog until a short page signals the end.
	var updates []models.InventoryUpdate
	for page := 1; ; page++ {
		products, err := a.client.ListProducts(ctx, page)
		if err != nil {
			return nil, fmt.Errorf("failed to page inventory: %w", err)
		}
		for i := range products {
			updates = append(updates, products[i].toInventory()...)
		}
		if len(products) < pageSize {
			break
		}
	}
	return updates, nil
}

func (a *Adapter) HandleWebhook(ctx context.Context, payload *models.WebhookPayload) error {
	if err := a.Configured(); err != nil {
		return err
	}

	switch payload.Event {
	case eventProductChanged, eventProductCreated:
		return a.handleProductEvent(ctx, payload)
	case eventStockChanged:
		return a.handleStockEvent(ctx, payload)
	default:
		a.Log.Info("bling: ignoring unknown webhook event %q", payload.Event)
		return nil
	}
}

func (a *Adapter) handleProductEvent(ctx context.Context, payload *models.WebhookPayload) error {
	var event webhookEvent
	if err := json.Unmarshal(payload.Data, &event); err != nil {
		return fmt.Errorf("failed to parse product event: %w", err)
	}
	if event.Codigo == "" {
		return fmt.Errorf("product event has no codigo")
	}

	product, err := a.client.GetProduct(ctx, event.Codigo)
	if err != nil {
		return fmt.Errorf("failed to refetch product %s: %w", event.Codigo, err)
	}

	spu, err := a.NormalizeProduct(product.toRaw())
	if err != nil {
		return fmt.Errorf("failed to normalize product %s: %w", event.Codigo, err)
	}
	if a.Recon != nil {
		if err := a.Recon.ReconcileSKUs(ctx, spu); err != nil {
			return fmt.Errorf("failed to reconcile product %s: %w", event.Codigo, err)
		}
	}
	if a.Store != nil {
		if err := a.Store.UpsertProduct(ctx, spu); err != nil {
			return fmt.Errorf("failed to store product %s: %w", event.Codigo, err)
		}
	}

	a.Log.Info("bling: product %s updated via webhook", event.Codigo)
	return nil
}

func (a *Adapter) handleStockEvent(ctx context.Context, payload *models.WebhookPayload) error {
	var event webhookEvent
	if err := json.Unmarshal(payload.Data, &event); err != nil {
		return fmt.Errorf("failed to parse stock event: %w", err)
	}
	if event.Codigo == "" {
		return fmt.Errorf("stock event has no codigo")
	}

	update := models.InventoryUpdate{
		SKU:      event.Codigo,
		Quantity: int(event.EstoqueAtual),
	}
	if event.Preco != "" {
		price := parseDecimal(event.Preco)
		update.Price = &price
	}

	if a.Store != nil {
		if err := a.Store.ApplyInventory(ctx, []models.InventoryUpdate{update}); err != nil {
			return fmt.Errorf("failed to apply stock update for %s: %w", event.Codigo, err)
		}
	}

	a.Log.Info("bling: stock updated for %s (qty %d)", event.Codigo, update.Quantity)
	return nil
}
