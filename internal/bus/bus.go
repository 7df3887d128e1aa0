// Package bus provides the asynchronous message transport between agents
// and the debate coordinator. Each recipient owns a bounded FIFO queue;
// delivery is pull-based with a bounded wait, and a background sweeper
// expires stale messages.
package bus

import (
	"context"
	"errors"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/concord/internal/common"
	"github.com/ternarybob/concord/internal/interfaces"
	"github.com/ternarybob/concord/internal/models"
)

// ErrBusNotRunning rejects send and receive on a stopped bus.
var ErrBusNotRunning = errors.New("message bus is not running")

// deliveryWindow is the number of recent deliveries averaged into
// BusStats.AverageDeliveryTime.
const deliveryWindow = 100

// Config bounds the bus queues and the expiry sweep.
type Config struct {
	MaxQueueSize   int
	MessageTimeout time.Duration
	SweepInterval  time.Duration
}

// FromCommonConfig maps the application bus settings onto bus bounds.
func FromCommonConfig(cfg *common.BusConfig) Config {
	return Config{
		MaxQueueSize:   cfg.MaxQueueSize,
		MessageTimeout: common.MustDuration(cfg.MessageTimeout, 30*time.Second),
		SweepInterval:  common.MustDuration(cfg.SweepInterval, 500*time.Millisecond),
	}
}

// Bus is the queue-per-recipient message transport.
type Bus struct {
	config Config
	logger arbor.ILogger

	mu          chanMutex
	running     bool
	queues      map[string][]*models.AgentMessage
	notify      map[string]chan struct{}       // capacity 1, signals a non-empty queue
	subscribers map[string]map[string]struct{} // message type -> recipient ids

	totalSent        int64
	totalReceived    int64
	totalBroadcast   int64
	failedDeliveries int64
	messageTypes     map[string]int64
	deliveryTimes    []time.Duration // ring of the last deliveryWindow samples
	deliveryNext     int

	stopCh      chan struct{}
	sweeperDone chan struct{}
}

type chanMutex chan struct{}

func newChanMutex() chanMutex {
	m := make(chanMutex, 1)
	m <- struct{}{}
	return m
}

func (m chanMutex) Lock()   { <-m }
func (m chanMutex) Unlock() { m <- struct{}{} }

// New creates a stopped bus; Start launches the sweeper.
func New(config Config, logger arbor.ILogger) *Bus {
	if config.MaxQueueSize <= 0 {
		config.MaxQueueSize = 1000
	}
	if config.MessageTimeout <= 0 {
		config.MessageTimeout = 30 * time.Second
	}
	if config.SweepInterval <= 0 {
		config.SweepInterval = 500 * time.Millisecond
	}
	return &Bus{
		config:       config,
		logger:       logger,
		mu:           newChanMutex(),
		queues:       make(map[string][]*models.AgentMessage),
		notify:       make(map[string]chan struct{}),
		subscribers:  make(map[string]map[string]struct{}),
		messageTypes: make(map[string]int64),
	}
}

// Start launches the background expiry sweeper. Starting a running bus
// is a no-op.
func (b *Bus) Start() error {
	b.mu.Lock()
	if b.running {
		b.mu.Unlock()
		return nil
	}
	b.running = true
	b.stopCh = make(chan struct{})
	b.sweeperDone = make(chan struct{})
	stop, done := b.stopCh, b.sweeperDone
	b.mu.Unlock()

	common.SafeGo(b.logger, "bus-sweeper", func() {
		defer close(done)
		b.sweepLoop(stop)
	})

	b.logger.Info().
		Int("max_queue_size", b.config.MaxQueueSize).
		Str("message_timeout", b.config.MessageTimeout.String()).
		Msg("Message bus started")
	return nil
}

// Stop halts the sweeper and waits for it to exit. Queued messages are
// retained; a subsequent Start resumes delivery. Stopping a stopped bus
// is a no-op.
func (b *Bus) Stop() error {
	b.mu.Lock()
	if !b.running {
		b.mu.Unlock()
		return nil
	}
	b.running = false
	stop, done := b.stopCh, b.sweeperDone
	b.mu.Unlock()

	close(stop)
	<-done

	b.logger.Info().Msg("Message bus stopped")
	return nil
}

// Send enqueues a message for its recipient, or fans a wildcard-addressed
// message out to every subscriber of its type except the sender. Returns
// false when a target queue is at capacity; the message is rejected, not
// retried, and existing queued messages are never displaced.
func (b *Bus) Send(msg *models.AgentMessage) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.running {
		return false, ErrBusNotRunning
	}

	if msg.ReceiverID == models.BroadcastReceiver {
		return b.broadcastLocked(msg), nil
	}

	if !b.enqueueLocked(msg.ReceiverID, msg) {
		b.failedDeliveries++
		b.logger.Warn().
			Str("receiver_id", msg.ReceiverID).
			Str("type", msg.Type).
			Msg("Queue full, message rejected")
		return false, nil
	}

	b.totalSent++
	b.messageTypes[msg.Type]++
	return true, nil
}

// broadcastLocked fans out to the type's subscribers. Zero subscribers is
// a successful no-op. Caller holds mu.
func (b *Bus) broadcastLocked(msg *models.AgentMessage) bool {
	b.totalBroadcast++
	b.messageTypes[msg.Type]++

	targets := b.subscribers[msg.Type]
	if len(targets) == 0 {
		return true
	}

	ok := true
	for id := range targets {
		if id == msg.SenderID {
			continue
		}
		copied := *msg
		copied.ReceiverID = id
		if !b.enqueueLocked(id, &copied) {
			b.failedDeliveries++
			ok = false
			continue
		}
		b.totalSent++
	}
	return ok
}

// enqueueLocked appends to the recipient queue and signals any waiting
// receiver. Caller holds mu.
func (b *Bus) enqueueLocked(recipientID string, msg *models.AgentMessage) bool {
	queue := b.queues[recipientID]
	if len(queue) >= b.config.MaxQueueSize {
		return false
	}
	b.queues[recipientID] = append(queue, msg)

	select {
	case b.notifyLocked(recipientID) <- struct{}{}:
	default:
	}
	return true
}

func (b *Bus) notifyLocked(recipientID string) chan struct{} {
	ch, ok := b.notify[recipientID]
	if !ok {
		ch = make(chan struct{}, 1)
		b.notify[recipientID] = ch
	}
	return ch
}

// Receive dequeues the oldest message for the recipient, waiting up to
// timeout for one to arrive. Returns (nil, nil) when the wait expires
// with an empty queue.
func (b *Bus) Receive(ctx context.Context, recipientID string, timeout time.Duration) (*models.AgentMessage, error) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		b.mu.Lock()
		if !b.running {
			b.mu.Unlock()
			return nil, ErrBusNotRunning
		}

		if queue := b.queues[recipientID]; len(queue) > 0 {
			msg := queue[0]
			b.queues[recipientID] = queue[1:]
			b.totalReceived++
			b.recordDeliveryLocked(time.Since(msg.Timestamp))
			b.mu.Unlock()
			return msg, nil
		}
		wait := b.notifyLocked(recipientID)
		b.mu.Unlock()

		select {
		case <-wait:
		case <-deadline.C:
			return nil, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// recordDeliveryLocked folds one sample into the rolling window. Caller
// holds mu.
func (b *Bus) recordDeliveryLocked(d time.Duration) {
	if len(b.deliveryTimes) < deliveryWindow {
		b.deliveryTimes = append(b.deliveryTimes, d)
		return
	}
	b.deliveryTimes[b.deliveryNext] = d
	b.deliveryNext = (b.deliveryNext + 1) % deliveryWindow
}

// Subscribe registers the id for the given message types. Duplicate
// subscriptions are absorbed.
func (b *Bus) Subscribe(id string, types []string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, t := range types {
		set, ok := b.subscribers[t]
		if !ok {
			set = make(map[string]struct{})
			b.subscribers[t] = set
		}
		set[id] = struct{}{}
	}
}

// Unsubscribe removes the id from the given types, or from every type
// when types is nil. Unknown ids and types are ignored.
func (b *Bus) Unsubscribe(id string, types []string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if types == nil {
		for t, set := range b.subscribers {
			delete(set, id)
			if len(set) == 0 {
				delete(b.subscribers, t)
			}
		}
		return
	}

	for _, t := range types {
		set, ok := b.subscribers[t]
		if !ok {
			continue
		}
		delete(set, id)
		if len(set) == 0 {
			delete(b.subscribers, t)
		}
	}
}

// sweepLoop expires stale messages until stop closes.
func (b *Bus) sweepLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(b.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			b.sweepExpired()
		}
	}
}

// sweepExpired drops messages older than MessageTimeout from the head of
// each queue. Queues are FIFO, so the scan stops at the first fresh
// message.
func (b *Bus) sweepExpired() {
	cutoff := time.Now().Add(-b.config.MessageTimeout)

	b.mu.Lock()
	expired := 0
	for id, queue := range b.queues {
		i := 0
		for i < len(queue) && queue[i].Timestamp.Before(cutoff) {
			i++
		}
		if i > 0 {
			b.queues[id] = queue[i:]
			expired += i
		}
	}
	if expired > 0 {
		b.failedDeliveries += int64(expired)
	}
	b.mu.Unlock()

	if expired > 0 {
		b.logger.Warn().
			Int("expired", expired).
			Msg("Expired messages dropped")
	}
}

// Stats returns the bus delivery counters.
func (b *Bus) Stats() models.BusStats {
	b.mu.Lock()
	defer b.mu.Unlock()

	var avg time.Duration
	if len(b.deliveryTimes) > 0 {
		var sum time.Duration
		for _, d := range b.deliveryTimes {
			sum += d
		}
		avg = sum / time.Duration(len(b.deliveryTimes))
	}

	types := make(map[string]int64, len(b.messageTypes))
	for t, n := range b.messageTypes {
		types[t] = n
	}

	return models.BusStats{
		TotalSent:           b.totalSent,
		TotalReceived:       b.totalReceived,
		TotalBroadcast:      b.totalBroadcast,
		FailedDeliveries:    b.failedDeliveries,
		AverageDeliveryTime: avg,
		MessageTypes:        types,
	}
}

// QueueStatus reports fill levels for every recipient queue.
func (b *Bus) QueueStatus() map[string]models.QueueStatus {
	b.mu.Lock()
	defer b.mu.Unlock()

	status := make(map[string]models.QueueStatus, len(b.queues))
	for id, queue := range b.queues {
		status[id] = models.QueueStatus{
			QueueSize: len(queue),
			MaxSize:   b.config.MaxQueueSize,
			UsageRate: float64(len(queue)) / float64(b.config.MaxQueueSize),
		}
	}
	return status
}

// ClearQueue drops every queued message for one recipient and returns the
// number dropped.
func (b *Bus) ClearQueue(recipientID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	dropped := len(b.queues[recipientID])
	if dropped > 0 {
		b.queues[recipientID] = nil
	}
	return dropped
}

// ClearAllQueues drops every queued message across all recipients and
// returns the total dropped. Subscriptions are untouched.
func (b *Bus) ClearAllQueues() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	dropped := 0
	for id, queue := range b.queues {
		if len(queue) > 0 {
			dropped += len(queue)
			b.queues[id] = nil
		}
	}
	if dropped > 0 {
		b.logger.Info().Int("dropped", dropped).Msg("All queues cleared")
	}
	return dropped
}

// HealthCheck reports whether the bus is running, logging warnings for
// queues near capacity and elevated delivery failure rates.
func (b *Bus) HealthCheck() bool {
	b.mu.Lock()
	running := b.running
	var crowded []string
	for id, queue := range b.queues {
		if float64(len(queue))/float64(b.config.MaxQueueSize) > 0.8 {
			crowded = append(crowded, id)
		}
	}
	sent, failed := b.totalSent, b.failedDeliveries
	b.mu.Unlock()

	if !running {
		return false
	}

	for _, id := range crowded {
		b.logger.Warn().
			Str("receiver_id", id).
			Msg("Queue usage above 80%")
	}

	if sent > 0 && float64(failed)/float64(sent+failed) > 0.1 {
		b.logger.Warn().
			Int64("failed", failed).
			Int64("sent", sent).
			Msg("Elevated delivery failure rate")
	}
	return true
}

// Ensure Bus implements the MessageBus interface
var _ interfaces.MessageBus = (*Bus)(nil)
