package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/segmentio/kafka-go"

	"catalogsync/internal/config"
	"catalogsync/internal/events"
	"catalogsync/internal/logger"
	"catalogsync/internal/syncer"
)

// Worker runs the background side of the pipeline: scheduled full syncs of
// every active connector, plus on-demand syncs requested over the catalog
// topic.
type Worker struct {
	config *config.Config
	logger *logger.Logger
	reader *kafka.Reader
	cron   *cron.Cron
	syncer *syncer.Syncer
}

func New(cfg *config.Config, log *logger.Logger, s *syncer.Syncer) *Worker {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        strings.Split(cfg.KafkaBrokers, ","),
		GroupID:        "catalogsync-worker",
		Topic:          cfg.KafkaTopic,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		CommitInterval: time.Second,
	})

	return &Worker{
		config: cfg,
		logger: log,
		reader: reader,
		cron:   cron.New(),
		syncer: s,
	}
}

// Start schedules the periodic sync and blocks consuming the catalog topic.
func (w *Worker) Start() error {
	spec := fmt.Sprintf("@every %dm", w.config.SyncIntervalMinutes)
	_, err := w.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()
		w.logger.Info("scheduled sync starting")
		w.syncer.SyncAll(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule sync: %w", err)
	}
	w.cron.Start()

	w.logger.Info("worker started, syncing every %dm and listening for events...",
		w.config.SyncIntervalMinutes)

	for {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		message, err := w.reader.ReadMessage(ctx)
		cancel()

		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			w.logger.Error("failed to read message: %v", err)
			continue
		}

		var event events.Event
		if err := json.Unmarshal(message.Value, &event); err != nil {
			w.logger.Error("failed to parse event: %v", err)
			continue
		}

		if err := w.process(event); err != nil {
			w.logger.Error("failed to process %s event: %v", event.Type, err)
		}
	}
}

func (w *Worker) process(event events.Event) error {
	switch event.Type {
	case events.TypeSyncRequested:
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()

		conn, err := w.syncer.Connector(ctx, event.ConnectorID)
		if err != nil {
			return err
		}
		if conn == nil {
			return fmt.Errorf("unknown connector %s", event.ConnectorID)
		}

		result, err := w.syncer.SyncConnector(ctx, conn)
		if err != nil {
			return err
		}
		w.logger.Info("requested sync for %s finished: %d imported, %d failed",
			conn.ID, result.ProductsImported, result.ProductsFailed)
		return nil

	case events.TypeSyncCompleted, events.TypeProductImported, events.TypeInventoryUpdated:
		// Emitted by this service; nothing to do on the consuming side yet.
		w.logger.Debug("observed %s event for connector %s", event.Type, event.ConnectorID)
		return nil

	default:
		w.logger.Debug("ignoring unknown event type %q", event.Type)
		return nil
	}
}

func (w *Worker) Stop() {
	w.logger.Info("stopping worker...")
	w.cron.Stop()
	w.reader.Close()
}
