package outbox

import (
	"time"
)

// Message is a lifecycle event pending export to RabbitMQ.
type Message struct {
	ID          int64
	Exchange    string
	RoutingKey  string
	Payload     []byte
	ContentType string
	RetryCount  int
	LastError   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	NextRetryAt time.Time
}
