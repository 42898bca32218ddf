package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/segmentio/kafka-go"
)

// KafkaPublisher publishes finalized staging records to per-tenant Kafka
// topics. One writer is kept per broker connection string; writers are safe
// for concurrent use and created lazily on first publish.
type KafkaPublisher struct {
	logger *slog.Logger

	mu      sync.Mutex
	writers map[string]*kafka.Writer
}

func NewKafkaPublisher(logger *slog.Logger) *KafkaPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &KafkaPublisher{
		logger:  logger,
		writers: make(map[string]*kafka.Writer),
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, connection, topic string, payload []byte) error {
	if strings.TrimSpace(connection) == "" {
		return fmt.Errorf("kafka connection string must not be empty")
	}
	if strings.TrimSpace(topic) == "" {
		return fmt.Errorf("kafka topic must not be empty")
	}

	writer := p.writer(connection)
	err := writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Value: payload,
	})
	if err != nil {
		return fmt.Errorf("write to topic %s: %w", topic, err)
	}
	p.logger.InfoContext(ctx, "message published",
		"module", "events",
		"layer", "adapter",
		"operation", "publish",
		"outcome", "success",
		"topic", topic,
		"bytes", len(payload),
	)
	return nil
}

func (p *KafkaPublisher) writer(connection string) *kafka.Writer {
	p.mu.Lock()
	defer p.mu.Unlock()
	if w, ok := p.writers[connection]; ok {
		return w
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(strings.Split(connection, ",")...),
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
	}
	p.writers[connection] = w
	return w
}

func (p *KafkaPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var errs []error
	for connection, w := range p.writers {
		if err := w.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close writer %s: %w", connection, err))
		}
	}
	p.writers = make(map[string]*kafka.Writer)
	return errors.Join(errs...)
}
