package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"catalogsync/internal/logger"
)

// Event types emitted on the catalog topic.
const (
	TypeSyncRequested    = "connector.sync_requested"
	TypeSyncCompleted    = "connector.sync_completed"
	TypeProductImported  = "product.imported"
	TypeInventoryUpdated = "inventory.updated"
)

// Event is the envelope written to the catalog topic. ConnectorID keys the
// message so events for one connector stay ordered.
type Event struct {
	Type        string                 `json:"type"`
	ConnectorID string                 `json:"connector_id"`
	Data        map[string]interface{} `json:"data,omitempty"`
	Timestamp   time.Time              `json:"timestamp"`
}

// Publisher writes catalog events to Kafka. A Publisher built with no brokers
// is a no-op, so the API can run without a broker in development.
type Publisher struct {
	writer *kafka.Writer
	log    *logger.Logger
}

func NewPublisher(brokers, topic string, log *logger.Logger) *Publisher {
	if brokers == "" {
		log.Warn("no kafka brokers configured, events will not be published")
		return &Publisher{log: log}
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(strings.Split(brokers, ",")...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 100 * time.Millisecond,
	}

	return &Publisher{writer: writer, log: log}
}

func (p *Publisher) Publish(ctx context.Context, event Event) error {
	if p.writer == nil {
		p.log.Debug("dropping event %s for %s (no broker)", event.Type, event.ConnectorID)
		return nil
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.ConnectorID),
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.Type, err)
	}

	p.log.Debug("published %s event for connector %s", event.Type, event.ConnectorID)
	return nil
}

func (p *Publisher) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
