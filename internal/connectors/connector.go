package connectors

import (
	"context"
	"fmt"

	"catalogsync/internal/config"
	"catalogsync/internal/logger"
	"catalogsync/internal/models"
)

// Connector is the operation set every source adapter exposes. Callers depend
// only on this contract, never on a concrete source.
type Connector interface {
	// Configure stores credentials and performs adapter-specific client
	// setup. It fails fast when required credential fields are missing.
	Configure(cfg *models.Connector) error

	// TestConnection performs one lightweight authenticated call. It never
	// returns an error: expected auth/network failures are logged and
	// folded into false so health-check callers can poll safely.
	TestConnection(ctx context.Context) bool

	// ImportProducts fetches one page of products, normalizes each item and
	// hands it to reconciliation and the store. Per-item failures are
	// counted, not raised; only the page request itself aborts the run.
	ImportProducts(ctx context.Context, limit, offset int) *models.SyncResult

	// FetchInventory returns current stock/price for the given supplier
	// SKUs, or for the whole catalog when skus is empty.
	FetchInventory(ctx context.Context, skus []string) ([]models.InventoryUpdate, error)

	// HandleWebhook verifies and dispatches one inbound callback. Signature
	// failure is the one hard error on this path.
	HandleWebhook(ctx context.Context, payload *models.WebhookPayload) error

	// NormalizeProduct converts one raw product into the canonical model.
	// It is pure given a configured instance and performs no I/O.
	NormalizeProduct(raw *models.RawProduct) (*models.SPU, error)
}

// Store is what the connector layer expects from persistence. The gorm
// implementation lives in internal/database; tests substitute fakes.
type Store interface {
	UpsertProduct(ctx context.Context, spu *models.SPU) error
	ApplyInventory(ctx context.Context, updates []models.InventoryUpdate) error
}

// Reconciler assigns master SKUs to a normalized product's SKUs.
type Reconciler interface {
	ReconcileSKUs(ctx context.Context, spu *models.SPU) error
}

// Deps carries the collaborators an adapter needs. Transport is optional:
// when nil, adapters build their real HTTP transport from credentials.
type Deps struct {
	Config    *config.Config
	Logger    *logger.Logger
	Store     Store
	Recon     Reconciler
	Transport Transport
}

// Factory builds one adapter instance.
type Factory func(deps Deps) Connector

var registry = map[models.SourceType]Factory{}

// Register binds a source type to its adapter constructor. It is called from
// adapter package init via the registry package, once at startup.
func Register(sourceType models.SourceType, factory Factory) {
	registry[sourceType] = factory
}

// New resolves a source type through the registry.
func New(sourceType models.SourceType, deps Deps) (Connector, error) {
	factory, ok := registry[sourceType]
	if !ok {
		return nil, fmt.Errorf("unknown source type: %s", sourceType)
	}
	return factory(deps), nil
}

// Types returns the registered source types.
func Types() []models.SourceType {
	out := make([]models.SourceType, 0, len(registry))
	for t := range registry {
		out = append(out, t)
	}
	return out
}
