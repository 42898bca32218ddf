package ports

import "context"

// TopicPublisher delivers a finalized staging record to a downstream message
// topic. The connection string is tenant-scoped and comes from the resolved
// tenant handle.
type TopicPublisher interface {
	Publish(ctx context.Context, connection, topic string, payload []byte) error
}
