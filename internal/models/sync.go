package models

import (
	"encoding/json"
	"time"
)

// SyncResult summarizes one import run against one configured source.
// Partial success is the normal case: per-item failures are counted here,
// only configuration and signature errors surface as Go errors.
type SyncResult struct {
	Success          bool          `json:"success"`
	ProductsImported int           `json:"products_imported"`
	ProductsUpdated  int           `json:"products_updated"`
	ProductsFailed   int           `json:"products_failed"`
	Errors           []string      `json:"errors"`
	Duration         time.Duration `json:"duration"`
}

// WebhookPayload is the inbound callback envelope. Data stays opaque until
// the adapter has verified the signature (when one is configured).
type WebhookPayload struct {
	Event       string            `json:"event"`
	Data        json.RawMessage   `json:"data"`
	Timestamp   time.Time         `json:"timestamp"`
	ConnectorID string            `json:"connector_id"`
	Headers     map[string]string `json:"headers"`
	RawBody     []byte            `json:"-"`
}

// InventoryUpdate is one stock/price delta for a supplier SKU.
type InventoryUpdate struct {
	SKU      string   `json:"sku"`
	Quantity int      `json:"quantity"`
	Price    *float64 `json:"price,omitempty"`
}
