package nuvemshop

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"catalogsync/internal/connectors"
	"catalogsync/internal/models"
	"catalogsync/internal/webhook"
)

// pageSize is Nuvemshop's per_page cap.
const pageSize = 200

// SignatureHeader carries the base64 HMAC-SHA256 of the raw webhook body.
const SignatureHeader = "X-Linkedstore-Hmac-Sha256"

// Webhook events the adapter dispatches on.
const (
	eventProductCreated = "product/created"
	eventProductUpdated = "product/updated"
	eventProductDeleted = "product/deleted"
	eventVariantUpdated = "product_variant/updated"
)

// Adapter connects a Nuvemshop store to the catalog pipeline.
type Adapter struct {
	connectors.Base
	deps   connectors.Deps
	client *Client
}

func New(deps connectors.Deps) connectors.Connector {
	return &Adapter{
		Base: connectors.Base{
			Source: models.SourceTypeNuvemshop,
			Log:    deps.Logger,
			Store:  deps.Store,
			Recon:  deps.Recon,
		},
		deps: deps,
	}
}

func (a *Adapter) Configure(cfg *models.Connector) error {
	if err := a.Base.Configure(cfg, "store_id", "access_token"); err != nil {
		return err
	}

	transport := a.deps.Transport
	if transport == nil {
		transport = connectors.NewHTTPTransport(
			BaseURL(cfg.Credential("store_id")),
			AuthHeaders(cfg.Credential("access_token")),
		)
	}
	a.client = NewClient(transport, a.Log)
	return nil
}

func (a *Adapter) TestConnection(ctx context.Context) bool {
	if err := a.Configured(); err != nil {
		a.Log.Warn("nuvemshop: connection test on unconfigured connector: %v", err)
		return false
	}
	info, err := a.client.GetStoreInfo(ctx)
	if err != nil {
		a.Log.Warn("nuvemshop: connection test failed: %v", err)
		return false
	}
	a.Log.Debug("nuvemshop: connected to store %d (%s)", info.ID, info.URL)
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

	products, err := a.client.GetProducts(ctx, page, limit)
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
	for page := 1; ; page++ {
		products, err := a.client.GetProducts(ctx, page, pageSize)
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
	case eventProductCreated, eventProductUpdated:
		return a.handleProductEvent(ctx, payload)
	case eventVariantUpdated:
		return a.handleVariantEvent(ctx, payload)
	case eventProductDeleted:
		a.Log.Info("nuvemshop: ignoring product delete webhook")
		return nil
	default:
		a.Log.Info("nuvemshop: ignoring unknown webhook event %q", payload.Event)
		return nil
	}
}

func (a *Adapter) verifySignature(payload *models.WebhookPayload) error {
	secret := a.Cfg.Credential("webhook_secret")
	if secret == "" {
		a.Log.Warn("nuvemshop: no webhook secret configured, accepting unverified webhook")
		return nil
	}
	if err := webhook.Verify(payload.RawBody, payload.Headers[SignatureHeader], secret); err != nil {
		return fmt.Errorf("nuvemshop webhook rejected: %w", err)
	}
	return nil
}

// handleProductEvent refetches and re-normalizes the affected product:
// Nuvemshop callbacks carry only identifiers.
func (a *Adapter) handleProductEvent(ctx context.Context, payload *models.WebhookPayload) error {
	var event webhookEvent
	if err := json.Unmarshal(payload.Data, &event); err != nil {
		return fmt.Errorf("failed to parse product event: %w", err)
	}
	if event.ID == 0 {
		return fmt.Errorf("product event has no id")
	}

	product, err := a.client.GetProduct(ctx, event.ID)
	if err != nil {
		return fmt.Errorf("failed to refetch product %d: %w", event.ID, err)
	}

	spu, err := a.NormalizeProduct(product.toRaw())
	if err != nil {
		return fmt.Errorf("failed to normalize product %d: %w", event.ID, err)
	}
	if a.Recon != nil {
		if err := a.Recon.ReconcileSKUs(ctx, spu); err != nil {
			return fmt.Errorf("failed to reconcile product %d: %w", event.ID, err)
		}
	}
	if a.Store != nil {
		if err := a.Store.UpsertProduct(ctx, spu); err != nil {
			return fmt.Errorf("failed to store product %d: %w", event.ID, err)
		}
	}

	a.Log.Info("nuvemshop: product %d updated via webhook", event.ID)
	return nil
}

// handleVariantEvent applies the stock/price delta of one variant by
// refetching its owning product.
func (a *Adapter) handleVariantEvent(ctx context.Context, payload *models.WebhookPayload) error {
	var event webhookEvent
	if err := json.Unmarshal(payload.Data, &event); err != nil {
		return fmt.Errorf("failed to parse variant event: %w", err)
	}
	if event.ID == 0 {
		return fmt.Errorf("variant event has no id")
	}

	product, err := a.client.GetProduct(ctx, event.ID)
	if err != nil {
		return fmt.Errorf("failed to refetch product %d: %w", event.ID, err)
	}

	if a.Store != nil {
		if err := a.Store.ApplyInventory(ctx, product.toInventory()); err != nil {
			return fmt.Errorf("failed to apply inventory for product %d: %w", event.ID, err)
		}
	}

	a.Log.Info("nuvemshop: inventory updated for product %d", event.ID)
	return nil
}
