package events

import (
	"context"
	"log/slog"
)

// LoggingPublisher records publishes instead of sending them. Used in local
// runs without a broker.
type LoggingPublisher struct {
	logger *slog.Logger
}

func NewLoggingPublisher(logger *slog.Logger) *LoggingPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingPublisher{logger: logger}
}

func (p *LoggingPublisher) Publish(ctx context.Context, connection, topic string, payload []byte) error {
	p.logger.InfoContext(ctx, "published event",
		"module", "events",
		"layer", "adapter",
		"operation", "publish",
		"outcome", "success",
		"connection", connection,
		"topic", topic,
		"bytes", len(payload),
	)
	return nil
}
