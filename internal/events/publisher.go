// Package events publishes synchronization outcomes to downstream consumers.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/core/domain"
	portsevents "github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/core/ports/events"
	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/platform/logging"
	"github.com/segmentio/kafka-go"
)

// SyncCompletedEvent is the message body announced after every synchronization cycle.
type SyncCompletedEvent struct {
	Type               string                    `json:"type"`
	CycleDate          string                    `json:"cycleDate"`
	StartedAt          time.Time                 `json:"startedAt"`
	FinishedAt         time.Time                 `json:"finishedAt"`
	Succeeded          bool                      `json:"succeeded"`
	Error              string                    `json:"error,omitempty"`
	CurrenciesUpserted int                       `json:"currenciesUpserted"`
	Regimes            []domain.RegimeSyncResult `json:"regimes"`
}

// SyncCompletedEventType tags SyncCompletedEvent payloads.
const SyncCompletedEventType = "fxrates.sync.completed"

const writeTimeout = 10 * time.Second

// KafkaSyncPublisher writes one message per finished cycle to a Kafka topic.
type KafkaSyncPublisher struct {
	writer *kafka.Writer
}

// NewKafkaSyncPublisher creates a publisher for topic on brokers.
func NewKafkaSyncPublisher(brokers []string, topic string) (*KafkaSyncPublisher, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka: at least one broker is required")
	}
	if topic == "" {
		return nil, errors.New("kafka: topic is required")
	}
	return &KafkaSyncPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireOne,
			WriteTimeout: writeTimeout,
		},
	}, nil
}

var _ portsevents.SyncEventPublisher = (*KafkaSyncPublisher)(nil)

func (p *KafkaSyncPublisher) PublishSyncCompleted(ctx context.Context, report domain.SyncReport) error {
	msg, err := newSyncCompletedMessage(report)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish sync event: %w", err)
	}

	logging.FromContext(ctx).Debug("Sync event published",
		slog.String("topic", p.writer.Topic),
		slog.String("key", string(msg.Key)))
	return nil
}

func (p *KafkaSyncPublisher) Close() error {
	return p.writer.Close()
}

// newSyncCompletedMessage keys the message by cycle date so one day's cycles share a partition.
func newSyncCompletedMessage(report domain.SyncReport) (kafka.Message, error) {
	cycleDate := domain.TruncateToDate(report.StartedAt).Format(domain.DateLayout)
	event := SyncCompletedEvent{
		Type:               SyncCompletedEventType,
		CycleDate:          cycleDate,
		StartedAt:          report.StartedAt,
		FinishedAt:         report.FinishedAt,
		Succeeded:          report.Succeeded,
		Error:              report.Error,
		CurrenciesUpserted: report.CurrenciesUpserted,
		Regimes:            report.Regimes,
	}
	if event.Regimes == nil {
		event.Regimes = []domain.RegimeSyncResult{}
	}

	value, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to encode sync event: %w", err)
	}
	return kafka.Message{
		Key:   []byte(cycleDate),
		Value: value,
		Time:  report.FinishedAt,
	}, nil
}

// NoopSyncPublisher discards events. It is used when no broker is configured.
type NoopSyncPublisher struct{}

var _ portsevents.SyncEventPublisher = NoopSyncPublisher{}

func (NoopSyncPublisher) PublishSyncCompleted(context.Context, domain.SyncReport) error { return nil }

func (NoopSyncPublisher) Close() error { return nil }
