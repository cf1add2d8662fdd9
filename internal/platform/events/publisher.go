// Package events publishes engine events to Kafka for downstream consumers
// (SIEM pipelines, regulator feeds). Publishing is fire-and-forget: the
// gating path and the violation log never depend on broker availability.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

// Event is the wire payload for engine events.
type Event struct {
	Kind       string    `json:"kind"`
	Subject    string    `json:"subject"`
	Actor      string    `json:"actor,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	ModuleName string    `json:"module_name,omitempty"`
	Amount     uint64    `json:"amount,omitempty"`
	RequestID  string    `json:"request_id,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Event kinds emitted by the engine.
const (
	KindViolationRecorded = "violation_recorded"
	KindTransferRejected  = "transfer_rejected"
	KindIdentityDeleted   = "identity_deleted"
	KindModuleBound       = "module_bound"
	KindModuleRemoved     = "module_removed"
)

// Publisher emits engine events. Implementations must be safe for
// concurrent use and must not block the caller on broker round trips.
type Publisher interface {
	Publish(ctx context.Context, event Event)
	Close()
}

// KafkaPublisher produces events to a single topic using franz-go.
type KafkaPublisher struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// NewKafkaPublisher connects to the brokers and returns a publisher for the
// given topic. The topic must already be provisioned.
func NewKafkaPublisher(brokers []string, topic string, logger *slog.Logger) (*KafkaPublisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerBatchMaxBytes(1<<20),
		kgo.AllowAutoTopicCreation(),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &KafkaPublisher{client: client, topic: topic, logger: logger}, nil
}

// Publish serializes the event and produces it asynchronously. Failures are
// logged, never returned; the violation log remains the durable record.
func (p *KafkaPublisher) Publish(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.ErrorContext(ctx, "marshal event failed", "kind", event.Kind, "error", err)
		return
	}
	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(event.Subject),
		Value: payload,
	}
	p.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil {
			p.logger.Error("produce event failed", "kind", event.Kind, "topic", p.topic, "error", err)
		}
	})
}

// Close flushes pending records and releases the client.
func (p *KafkaPublisher) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = p.client.Flush(ctx)
	p.client.Close()
}

// NopPublisher drops all events. Used when Kafka is not configured and in
// tests that don't assert on event emission.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) {}
func (NopPublisher) Close()                         {}
