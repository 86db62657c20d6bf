package connectors

import (
	"context"
	"fmt"
	"time"

	"catalogsync/internal/logger"
	"catalogsync/internal/models"
)

// Base carries the behavior shared by every source adapter: credential
// validation, the raw-to-canonical mapping algorithm, per-product validation
// and SyncResult bookkeeping. Adapters embed it.
type Base struct {
	Source models.SourceType
	Cfg    *models.Connector
	Log    *logger.Logger
	Store  Store
	Recon  Reconciler
}

// Configure validates that every required credential field is present before
// storing the config. Missing credentials are a configuration error: fatal,
// raised before any network call.
func (b *Base) Configure(cfg *models.Connector, required ...string) error {
	if cfg == nil {
		return fmt.Errorf("%s: connector config is required", b.Source)
	}
	for _, key := range required {
		if cfg.Credential(key) == "" {
			return fmt.Errorf("%s: missing required credential %q", b.Source, key)
		}
	}
	b.Cfg = cfg
	return nil
}

// Configured reports whether Configure succeeded.
func (b *Base) Configured() error {
	if b.Cfg == nil {
		return fmt.Errorf("%s: connector is not configured", b.Source)
	}
	return nil
}

// ValidateRaw applies the shared per-product acceptance rules: a raw product
// needs an id, a title and at least one variant.
func (b *Base) ValidateRaw(raw *models.RawProduct) error {
	if raw == nil {
		return fmt.Errorf("raw product is nil")
	}
	if raw.ID == "" {
		return fmt.Errorf("raw product has no id")
	}
	if raw.Title == "" {
		return fmt.Errorf("raw product %s has no title", raw.ID)
	}
	if len(raw.Variants) == 0 {
		return fmt.Errorf("raw product %s has no variants", raw.ID)
	}
	return nil
}

// NormalizeProduct converts a raw product into the canonical SPU/SKU shape.
// IDs are deterministic composites of the connector id and the raw ids, so
// re-importing the same source item always yields the same records. The
// function performs no I/O; SKUs start out pending until reconciliation runs.
func (b *Base) NormalizeProduct(raw *models.RawProduct) (*models.SPU, error) {
	if err := b.Configured(); err != nil {
		return nil, err
	}
	if err := b.ValidateRaw(raw); err != nil {
		return nil, err
	}

	spuID := fmt.Sprintf("%s:%s", b.Cfg.ID, raw.ID)

	spu := &models.SPU{
		ID:          spuID,
		Title:       raw.Title,
		Description: raw.Description,
		Vendor:      raw.Vendor,
		Category:    raw.Category,
		Tags:        raw.Tags,
		Images:      raw.Images,
		ConnectorID: b.Cfg.ID,
		ExternalID:  raw.ID,
		SKUs:        make([]models.SKU, 0, len(raw.Variants)),
	}

	for _, v := range raw.Variants {
		variantKey := v.ID
		if variantKey == "" {
			variantKey = v.SKU
		}
		spu.SKUs = append(spu.SKUs, models.SKU{
			ID:            fmt.Sprintf("%s:%s", spuID, variantKey),
			SPUID:         spuID,
			SupplierSKU:   v.SKU,
			Price:         v.Price,
			Stock:         v.Quantity,
			Weight:        v.Weight,
			Barcode:       v.Barcode,
			MappingStatus: models.MappingStatusPending,
		})
	}

	return spu, nil
}

// NewSyncResult starts the bookkeeping for one import run.
func NewSyncResult() *models.SyncResult {
	return &models.SyncResult{
		Success: true,
		Errors:  []string{},
	}
}

// ImportOne runs a single raw product through normalize, reconcile and store,
// folding any failure into the result. One malformed or failing item must not
// stop the rest of the page.
func (b *Base) ImportOne(ctx context.Context, raw *models.RawProduct, result *models.SyncResult) {
	spu, err := b.NormalizeProduct(raw)
	if err != nil {
		b.Log.Warn("%s: skipping product: %v", b.Source, err)
		result.ProductsFailed++
		result.Errors = append(result.Errors, err.Error())
		return
	}

	if b.Recon != nil {
		if err := b.Recon.ReconcileSKUs(ctx, spu); err != nil {
			b.Log.Warn("%s: reconciliation failed for product %s: %v", b.Source, spu.ID, err)
			result.ProductsFailed++
			result.Errors = append(result.Errors, err.Error())
			return
		}
	}

	if b.Store != nil {
		if err := b.Store.UpsertProduct(ctx, spu); err != nil {
			b.Log.Warn("%s: failed to store product %s: %v", b.Source, spu.ID, err)
			result.ProductsFailed++
			result.Errors = append(result.Errors, err.Error())
			return
		}
	}

	result.ProductsImported++
}

// AbortRun records a batch-level failure: the run stops, success flips to
// false and the error is captured in the result rather than raised.
func (b *Base) AbortRun(result *models.SyncResult, started time.Time, err error) *models.SyncResult {
	b.Log.Error("%s: import run aborted: %v", b.Source, err)
	result.Success = false
	result.Errors = append(result.Errors, err.Error())
	result.Duration = time.Since(started)
	return result
}

// FinishRun closes the bookkeeping for a completed run.
func (b *Base) FinishRun(result *models.SyncResult, started time.Time) *models.SyncResult {
	result.Duration = time.Since(started)
	b.Log.Info("%s: import run finished: %d imported, %d failed in %s",
		b.Source, result.ProductsImported, result.ProductsFailed, result.Duration)
	return result
}

// ClampLimit bounds a requested page size to the adapter's cap, defaulting to
// the cap when the request is unset or out of range.
func ClampLimit(limit, cap int) int {
	if limit <= 0 || limit > cap {
		return cap
	}
	return limit
}
