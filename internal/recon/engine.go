package recon

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"catalogsync/internal/logger"
	"catalogsync/internal/models"
)

const (
	// AutoAcceptThreshold gates automatic mapping: the best candidate must
	// score at least this high to be persisted without operator review.
	AutoAcceptThreshold = 0.8

	// CandidateFloor is the score below which a match is treated as a
	// genuine no-match. Scores between the floor and the auto threshold
	// currently fall through to the same pending branch.
	CandidateFloor = 0.5

	// synthesizedConfidence is the fixed confidence attached to a
	// synthesized master SKU proposal. Proposals are never persisted as
	// mappings; they surface on the SKU for manual confirmation.
	synthesizedConfidence = 0.6
)

// Engine resolves supplier-local SKUs to master SKUs: persisted mapping
// first, then similarity-based auto-mapping, then a synthesized proposal
// pending manual confirmation.
type Engine struct {
	repo MappingRepository
	log  *logger.Logger
	now  func() time.Time

	locks sync.Map // supplier sku -> *sync.Mutex
}

func NewEngine(repo MappingRepository, log *logger.Logger) *Engine {
	return &Engine{
		repo: repo,
		log:  log,
		now:  time.Now,
	}
}

// ReconcileSKUs assigns a master SKU to every SKU of the product that does
// not already carry a terminal mapping status. SKUs are mutated in place;
// only auto-accepted mappings are persisted.
func (e *Engine) ReconcileSKUs(ctx context.Context, spu *models.SPU) error {
	for i := range spu.SKUs {
		sku := &spu.SKUs[i]

		// manual and auto are terminal; the engine never moves a SKU backward.
		if sku.MappingStatus != models.MappingStatusPending {
			continue
		}
		if sku.SupplierSKU == "" {
			e.log.Warn("SKU %s has no supplier sku, skipping reconciliation", sku.ID)
			continue
		}

		if err := e.reconcileOne(ctx, sku); err != nil {
			return fmt.Errorf("failed to reconcile sku %s: %w", sku.SupplierSKU, err)
		}
	}
	return nil
}

func (e *Engine) reconcileOne(ctx context.Context, sku *models.SKU) error {
	unlock := e.lock(sku.SupplierSKU)
	defer unlock()

	// Re-checked under the per-supplier-sku lock so two concurrent runs
	// cannot diverge on the same identifier.
	mapping, err := e.repo.Get(ctx, sku.SupplierSKU)
	if err != nil {
		return fmt.Errorf("mapping lookup failed: %w", err)
	}
	if mapping != nil {
		sku.MasterSKU = mapping.MasterSKU
		sku.MappingStatus = models.MappingStatus(mapping.MappingType)
		return nil
	}

	masters, err := e.repo.MasterSKUs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list master skus: %w", err)
	}

	candidate, score := BestMatch(sku.SupplierSKU, masters)

	if candidate != "" && score >= AutoAcceptThreshold {
		mapping := &models.SKUMapping{
			SupplierSKU: sku.SupplierSKU,
			MasterSKU:   candidate,
			Confidence:  score,
			MappingType: models.MappingTypeAuto,
		}
		if err := e.repo.Put(ctx, mapping); err != nil {
			return fmt.Errorf("failed to persist auto mapping: %w", err)
		}
		sku.MasterSKU = candidate
		sku.MappingStatus = models.MappingStatusAuto
		e.log.Info("auto-mapped %s -> %s (confidence %.2f)", sku.SupplierSKU, candidate, score)
		return nil
	}

	// No confident match, including best scores in the dead zone between
	// CandidateFloor and AutoAcceptThreshold: attach a synthesized proposal
	// and leave the SKU pending for manual review.
	sku.MasterSKU = e.synthesizeMasterSKU(sku.SupplierSKU)
	sku.MappingStatus = models.MappingStatusPending
	e.log.Info("no confident match for %s (best %.2f), proposed %s (confidence %.2f)",
		sku.SupplierSKU, score, sku.MasterSKU, synthesizedConfidence)
	return nil
}

// synthesizeMasterSKU derives a candidate master identifier from the supplier
// SKU: a MST- prefix, the normalized supplier sku, and a time-derived suffix.
func (e *Engine) synthesizeMasterSKU(supplierSKU string) string {
	slug := strings.ToUpper(normalizeSKU(supplierSKU))
	if slug == "" {
		slug = "SKU"
	}
	suffix := strings.ToUpper(strconv.FormatInt(e.now().Unix(), 36))
	return fmt.Sprintf("MST-%s-%s", slug, suffix)
}

// CreateManualMapping persists an operator-confirmed mapping with confidence
// 1.0. This is the one path allowed to supersede an existing mapping.
func (e *Engine) CreateManualMapping(ctx context.Context, supplierSKU, masterSKU string) (*models.SKUMapping, error) {
	if supplierSKU == "" || masterSKU == "" {
		return nil, fmt.Errorf("supplier sku and master sku are required")
	}

	unlock := e.lock(supplierSKU)
	defer unlock()

	mapping := &models.SKUMapping{
		SupplierSKU: supplierSKU,
		MasterSKU:   masterSKU,
		Confidence:  1.0,
		MappingType: models.MappingTypeManual,
	}
	if err := e.repo.Put(ctx, mapping); err != nil {
		return nil, fmt.Errorf("failed to persist manual mapping: %w", err)
	}

	e.log.Info("manual mapping created: %s -> %s", supplierSKU, masterSKU)
	return mapping, nil
}

// ListMappings returns every persisted mapping.
func (e *Engine) ListMappings(ctx context.Context) ([]models.SKUMapping, error) {
	mappings, err := e.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list mappings: %w", err)
	}
	return mappings, nil
}

// DeleteMapping removes a persisted mapping. Already-imported SKUs keep their
// assigned master; the next reconciliation of the supplier sku starts from
// scratch.
func (e *Engine) DeleteMapping(ctx context.Context, supplierSKU string) error {
	if supplierSKU == "" {
		return fmt.Errorf("supplier sku is required")
	}

	unlock := e.lock(supplierSKU)
	defer unlock()

	if err := e.repo.Delete(ctx, supplierSKU); err != nil {
		return fmt.Errorf("failed to delete mapping for %s: %w", supplierSKU, err)
	}

	e.log.Info("mapping deleted for %s", supplierSKU)
	return nil
}

// MappingInput is one supplier->master pair for bulk import.
type MappingInput struct {
	SupplierSKU string `json:"supplier_sku"`
	MasterSKU   string `json:"master_sku"`
}

// BulkResult reports per-item outcomes of a bulk mapping import.
type BulkResult struct {
	Created int      `json:"created"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors"`
}

// BulkCreateMappings imports a batch of manual mappings with the same
// per-item semantics as CreateManualMapping. One bad pair does not stop the
// rest of the batch.
func (e *Engine) BulkCreateMappings(ctx context.Context, inputs []MappingInput) *BulkResult {
	result := &BulkResult{Errors: []string{}}
	for _, in := range inputs {
		if _, err := e.CreateManualMapping(ctx, in.SupplierSKU, in.MasterSKU); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", in.SupplierSKU, err))
			continue
		}
		result.Created++
	}
	return result
}

// Conflict flags a supplier SKU whose resolution is ambiguous across
// suppliers. The detection criterion is still undecided, so reports carry an
// empty list for now.
type Conflict struct {
	SupplierSKU string   `json:"supplier_sku"`
	MasterSKUs  []string `json:"master_skus"`
}

// Report is the reconciliation status snapshot served to operators.
type Report struct {
	Mappings    []models.SKUMapping `json:"mappings"`
	PendingSKUs []models.SKU        `json:"pending_skus"`
	Conflicts   []Conflict          `json:"conflicts"`
}

// GetReconciliationReport returns all persisted mappings, every SKU still
// awaiting manual confirmation, and the (currently always empty) conflict
// list.
func (e *Engine) GetReconciliationReport(ctx context.Context) (*Report, error) {
	mappings, err := e.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list mappings: %w", err)
	}

	pending, err := e.repo.PendingSKUs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending skus: %w", err)
	}

	return &Report{
		Mappings:    mappings,
		PendingSKUs: pending,
		Conflicts:   []Conflict{},
	}, nil
}

func (e *Engine) lock(supplierSKU string) func() {
	v, _ := e.locks.LoadOrStore(supplierSKU, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
