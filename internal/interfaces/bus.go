package interfaces

import (
	"context"
	"time"

	"github.com/ternarybob/concord/internal/models"
)

// MessageBus is a queue-per-recipient asynchronous transport with unicast
// and topic-broadcast delivery. Send and Receive are only permitted while
// the bus is running; a stopped bus rejects them with an error.
type MessageBus interface {
	// Start launches the background expiry sweeper
	Start() error

	// Stop cancels the sweeper and awaits its termination before returning
	Stop() error

	// Send enqueues a message. Wildcard receiver broadcasts to subscribers
	// of the message type, excluding the sender; a broadcast with zero
	// subscribers is a successful no-op. Returns false when the recipient
	// queue is full (capacity rejection, no retry).
	Send(msg *models.AgentMessage) (bool, error)

	// Receive polls the recipient's queue with a bounded wait. Returns
	// (nil, nil) on timeout.
	Receive(ctx context.Context, recipientID string, timeout time.Duration) (*models.AgentMessage, error)

	// Subscribe registers the id for the given message types. Idempotent.
	Subscribe(id string, types []string)

	// Unsubscribe removes the id from the given types, or from all types
	// when types is nil. Idempotent.
	Unsubscribe(id string, types []string)

	// Stats returns delivery counters
	Stats() models.BusStats

	// QueueStatus reports fill levels per recipient queue
	QueueStatus() map[string]models.QueueStatus

	// ClearQueue drops all queued messages for one recipient
	ClearQueue(recipientID string) int

	// ClearAllQueues drops every queued message on the bus and returns the
	// total number dropped
	ClearAllQueues() int

	// HealthCheck returns false when the bus is not running; logs warnings
	// for high queue usage and delivery failure rates.
	HealthCheck() bool
}
