package syncer

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"catalogsync/internal/connectors"
	"catalogsync/internal/database"
	"catalogsync/internal/events"
	"catalogsync/internal/logger"
	"catalogsync/internal/models"
	"catalogsync/internal/recon"
)

// Syncer drives import runs: it builds the adapter for a connector row, runs
// the import, stamps last_sync and publishes the outcome. Both the API sync
// endpoint and the scheduled worker runs go through here.
type Syncer struct {
	db        *gorm.DB
	store     *database.Store
	engine    *recon.Engine
	publisher *events.Publisher
	log       *logger.Logger
}

func New(db *database.Database, store *database.Store, engine *recon.Engine, publisher *events.Publisher, log *logger.Logger) *Syncer {
	return &Syncer{
		db:        db.DB,
		store:     store,
		engine:    engine,
		publisher: publisher,
		log:       log,
	}
}

// Connector loads one connector row, or nil when the id is unknown.
func (s *Syncer) Connector(ctx context.Context, id string) (*models.Connector, error) {
	var conn models.Connector
	err := s.db.WithContext(ctx).First(&conn, "id = ?", id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load connector %s: %w", id, err)
	}
	return &conn, nil
}

// Build constructs and configures the adapter for a connector row.
func (s *Syncer) Build(conn *models.Connector) (connectors.Connector, error) {
	adapter, err := connectors.New(conn.Type, connectors.Deps{
		Logger: s.log,
		Store:  s.store,
		Recon:  s.engine,
	})
	if err != nil {
		return nil, err
	}
	if err := adapter.Configure(conn); err != nil {
		return nil, fmt.Errorf("failed to configure connector %s: %w", conn.ID, err)
	}
	return adapter, nil
}

// SyncConnector runs one full import for the connector. A failed run still
// returns the result; only building the adapter is a hard error.
func (s *Syncer) SyncConnector(ctx context.Context, conn *models.Connector) (*models.SyncResult, error) {
	adapter, err := s.Build(conn)
	if err != nil {
		return nil, err
	}

	s.log.Info("starting sync for connector %s (%s)", conn.ID, conn.Type)
	result := adapter.ImportProducts(ctx, 0, 0)

	now := time.Now().UTC()
	err = s.db.WithContext(ctx).Model(&models.Connector{}).
		Where("id = ?", conn.ID).
		Update("last_sync", now).Error
	if err != nil {
		s.log.Error("failed to stamp last_sync for %s: %v", conn.ID, err)
	}
	conn.LastSync = &now

	if err := s.publisher.Publish(ctx, events.Event{
		Type:        events.TypeSyncCompleted,
		ConnectorID: conn.ID,
		Data: map[string]interface{}{
			"success":  result.Success,
			"imported": result.ProductsImported,
			"failed":   result.ProductsFailed,
		},
	}); err != nil {
		s.log.Error("failed to publish sync event for %s: %v", conn.ID, err)
	}

	return result, nil
}

// SyncInventory pulls current stock for the connector's whole catalog and
// applies it to the store.
func (s *Syncer) SyncInventory(ctx context.Context, conn *models.Connector) (int, error) {
	adapter, err := s.Build(conn)
	if err != nil {
		return 0, err
	}

	updates, err := adapter.FetchInventory(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch inventory for %s: %w", conn.ID, err)
	}
	if err := s.store.ApplyInventory(ctx, updates); err != nil {
		return 0, err
	}

	if len(updates) > 0 {
		if err := s.publisher.Publish(ctx, events.Event{
			Type:        events.TypeInventoryUpdated,
			ConnectorID: conn.ID,
			Data:        map[string]interface{}{"updates": len(updates)},
		}); err != nil {
			s.log.Error("failed to publish inventory event for %s: %v", conn.ID, err)
		}
	}

	return len(updates), nil
}

// SyncAll runs a full import for every active connector. One connector's
// failure does not stop the others.
func (s *Syncer) SyncAll(ctx context.Context) {
	var conns []models.Connector
	err := s.db.WithContext(ctx).
		Where("status = ?", models.ConnectorStatusActive).
		Find(&conns).Error
	if err != nil {
		s.log.Error("failed to list active connectors: %v", err)
		return
	}

	for i := range conns {
		conn := &conns[i]
		result, err := s.SyncConnector(ctx, conn)
		if err != nil {
			s.log.Error("sync failed for connector %s: %v", conn.ID, err)
			continue
		}
		if !result.Success {
			s.log.Error("sync run for connector %s did not complete: %v", conn.ID, result.Errors)
		}
		if _, err := s.SyncInventory(ctx, conn); err != nil {
			s.log.Error("inventory sync failed for connector %s: %v", conn.ID, err)
		}
	}
}
