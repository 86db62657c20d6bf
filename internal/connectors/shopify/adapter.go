package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"catalogsync/internal/connectors"
	"catalogsync/internal/models"
	"catalogsync/internal/webhook"
)

// pageSize is Shopify's product listing cap.
const pageSize = 250

// SignatureHeader carries the base64 HMAC-SHA256 of the raw webhook body.
const SignatureHeader = "X-Shopify-Hmac-Sha256"

// Webhook topics the adapter dispatches on.
const (
	eventProductCreate   = "products/create"
	eventProductUpdate   = "products/update"
	eventProductDelete   = "products/delete"
	eventInventoryUpdate = "inventory_levels/update"
)

// Adapter connects a Shopify shop to the catalog pipeline.
type Adapter struct {
	connectors.Base
	deps   connectors.Deps
	client *Client
}

func New(deps connectors.Deps) connectors.Connector {
	return &Adapter{
		Base: connectors.Base{
			Source: models.SourceTypeShopify,
			Log:    deps.Logger,
			Store:  deps.Store,
			Recon:  deps.Recon,
		},
		deps: deps,
	}
}

func (a *Adapter) Configure(cfg *models.Connector) error {
	if err := a.Base.Configure(cfg, "shop_domain", "access_token"); err != nil {
		return err
	}

	transport := a.deps.Transport
	if transport == nil {
		transport = connectors.NewHTTPTransport(
			BaseURL(cfg.Credential("shop_domain")),
			AuthHeaders(cfg.Credential("access_token")),
		)
	}
	a.client = NewClient(transport, a.Log)
	return nil
}

func (a *Adapter) TestConnection(ctx context.Context) bool {
	if err := a.Configured(); err != nil {
		a.Log.Warn("shopify: connection test on unconfigured connector: %v", err)
		return false
	}
	shop, err := a.client.GetShopInfo(ctx)
	if err != nil {
		a.Log.Warn("shopify: connection test failed: %v", err)
		return false
	}
	a.Log.Debug("shopify: connected to shop %s (%s)", shop.Name, shop.MyshopifyDomain)
	return true
}

// ImportProducts fetches one page. Shopify paginates by cursor, so the offset
// is carried as a since_id watermark rather than a row offset.
func (a *Adapter) ImportProducts(ctx context.Context, limit, offset int) *models.SyncResult {
	started := time.Now()
	result := connectors.NewSyncResult()

	if err := a.Configured(); err != nil {
		return a.AbortRun(result, started, err)
	}

	limit = connectors.ClampLimit(limit, pageSize)

	products, err := a.client.GetProducts(ctx, limit, int64(offset))
	if err != nil {
		return a.AbortRun(result, started, err)
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

	var filter map[string]bool
	if len(skus) > 0 {
		filter = make(map[string]bool, len(skus))
		for _, s := range skus {
			filter[s] = true
		}
	}

	var updates []models.InventoryUpdate
	var sinceID int64
	for {
		products, err := a.client.GetProducts(ctx, pageSize, sinceID)
		if err != nil {
			return nil, fmt.Errorf("failed to page inventory: %w", err)
		}
		for i := range products {
			for _, u := range products[i].toInventory() {
				if filter != nil && !filter[u.SKU] {
					continue
				}
				updates = append(updates, u)
			}
			sinceID = products[i].ID
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
	if err := a.verifySignature(payload); err != nil {
		return err
	}

	switch payload.Event {
	case eventProductCreate, eventProductUpdate:
		return a.handleProductEvent(ctx, payload)
	case eventInventoryUpdate:
		return a.handleInventoryEvent(ctx, payload)
	case eventProductDelete:
		// The pipeline never deletes normalized records.
		a.Log.Info("shopify: ignoring product delete webhook")
		return nil
	default:
		a.Log.Info("shopify: ignoring unknown webhook event %q", payload.Event)
		return nil
	}
}

// verifySignature enforces the HMAC header before any business logic touches
// payload.Data. Verification only relaxes when no secret is configured, and
// that is logged loudly.
func (a *Adapter) verifySignature(payload *models.WebhookPayload) error {
	secret := a.Cfg.Credential("webhook_secret")
	if secret == "" {
		a.Log.Warn("shopify: no webhook secret configured, accepting unverified webhook")
		return nil
	}
	if err := webhook.Verify(payload.RawBody, payload.Headers[SignatureHeader], secret); err != nil {
		return fmt.Errorf("shopify webhook rejected: %w", err)
	}
	return nil
}

// handleProductEvent re-normalizes the single affected product. Shopify sends
// the full product as the webhook body.
func (a *Adapter) handleProductEvent(ctx context.Context, payload *models.WebhookPayload) error {
	var product Product
	if err := json.Unmarshal(payload.Data, &product); err != nil {
		return fmt.Errorf("failed to parse product event: %w", err)
	}

	spu, err := a.NormalizeProduct(product.toRaw())
	if err != nil {
		return fmt.Errorf("failed to normalize product %d: %w", product.ID, err)
	}
	if a.Recon != nil {
		if err := a.Recon.ReconcileSKUs(ctx, spu); err != nil {
			return fmt.Errorf("failed to reconcile product %d: %w", product.ID, err)
		}
	}
	if a.Store != nil {
		if err := a.Store.UpsertProduct(ctx, spu); err != nil {
			return fmt.Errorf("failed to store product %d: %w", product.ID, err)
		}
	}

	a.Log.Info("shopify: product %d updated via webhook", product.ID)
	return nil
}

func (a *Adapter) handleInventoryEvent(ctx context.Context, payload *models.WebhookPayload) error {
	var event inventoryEvent
	if err := json.Unmarshal(payload.Data, &event); err != nil {
		return fmt.Errorf("failed to parse inventory event: %w", err)
	}
	if event.SKU == "" {
		a.Log.Warn("shopify: inventory event without sku (item %d), skipping", event.InventoryItemID)
		return nil
	}

	if a.Store != nil {
		update := models.InventoryUpdate{SKU: event.SKU, Quantity: event.Available}
		if err := a.Store.ApplyInventory(ctx, []models.InventoryUpdate{update}); err != nil {
			return fmt.Errorf("failed to apply inventory update for %s: %w", event.SKU, err)
		}
	}

	a.Log.Info("shopify: inventory updated for %s (qty %d)", event.SKU, event.Available)
	return nil
}
