package bus

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/concord/internal/common"
	"github.com/ternarybob/concord/internal/models"
)

func newTestBus(t *testing.T, config Config) *Bus {
	t.Helper()
	b := New(config, arbor.NewLogger())
	require.NoError(t, b.Start())
	t.Cleanup(func() { b.Stop() })
	return b
}

func newMsg(sender, receiver, msgType string) *models.AgentMessage {
	return &models.AgentMessage{
		ID:         common.NewMessageID(),
		SenderID:   sender,
		ReceiverID: receiver,
		Type:       msgType,
		Timestamp:  time.Now(),
	}
}

func TestSendReceiveFIFO(t *testing.T) {
	b := newTestBus(t, Config{})
	ctx := context.Background()

	var sent []*models.AgentMessage
	for i := 0; i < 3; i++ {
		msg := newMsg("a", "b", fmt.Sprintf("type_%d", i))
		ok, err := b.Send(msg)
		require.NoError(t, err)
		require.True(t, ok)
		sent = append(sent, msg)
	}

	for i := 0; i < 3; i++ {
		got, err := b.Receive(ctx, "b", time.Second)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, sent[i].ID, got.ID)
	}

	stats := b.Stats()
	assert.Equal(t, int64(3), stats.TotalSent)
	assert.Equal(t, int64(3), stats.TotalReceived)
}

func TestReceiveTimeoutReturnsNil(t *testing.T) {
	b := newTestBus(t, Config{})

	start := time.Now()
	got, err := b.Receive(context.Background(), "nobody", 50*time.Millisecond)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestReceiveWakesOnSend(t *testing.T) {
	b := newTestBus(t, Config{})

	go func() {
		time.Sleep(50 * time.Millisecond)
		b.Send(newMsg("a", "b", "ping"))
	}()

	start := time.Now()
	got, err := b.Receive(context.Background(), "b", 2*time.Second)
	require.NoError(t, err)
	require.NotNil(t, got)
	// Delivery happens at send time, well before the full timeout.
	assert.Less(t, time.Since(start), time.Second)
}

func TestQueueOverflowRejectsNewMessage(t *testing.T) {
	b := newTestBus(t, Config{MaxQueueSize: 2})
	ctx := context.Background()

	first := newMsg("a", "b", "x")
	ok, err := b.Send(first)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = b.Send(newMsg("a", "b", "x"))
	require.NoError(t, err)
	require.True(t, ok)

	// Queue full: the new message is rejected, queued ones stay.
	ok, err = b.Send(newMsg("a", "b", "x"))
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := b.Receive(ctx, "b", time.Second)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)

	assert.Equal(t, int64(1), b.Stats().FailedDeliveries)
}

func TestBroadcastExcludesSender(t *testing.T) {
	b := newTestBus(t, Config{})
	ctx := context.Background()

	b.Subscribe("alice", []string{"news"})
	b.Subscribe("bob", []string{"news"})
	b.Subscribe("carol", []string{"news"})

	ok, err := b.Send(newMsg("alice", models.BroadcastReceiver, "news"))
	require.NoError(t, err)
	require.True(t, ok)

	// The sender never receives its own broadcast.
	got, err := b.Receive(ctx, "alice", 50*time.Millisecond)
	require.NoError(t, err)
	assert.Nil(t, got)

	for _, id := range []string{"bob", "carol"} {
		got, err := b.Receive(ctx, id, time.Second)
		require.NoError(t, err)
		require.NotNil(t, got, "recipient %s", id)
		assert.Equal(t, id, got.ReceiverID)
	}

	assert.Equal(t, int64(1), b.Stats().TotalBroadcast)
}

func TestBroadcastWithoutSubscribersIsNoOp(t *testing.T) {
	b := newTestBus(t, Config{})

	ok, err := b.Send(newMsg("alice", models.BroadcastReceiver, "unheard"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(0), b.Stats().TotalSent)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := newTestBus(t, Config{})
	ctx := context.Background()

	b.Subscribe("bob", []string{"news"})
	b.Subscribe("bob", []string{"news"}) // duplicate subscription is absorbed
	b.Unsubscribe("bob", nil)

	ok, err := b.Send(newMsg("alice", models.BroadcastReceiver, "news"))
	require.NoError(t, err)
	require.True(t, ok)

	got, err := b.Receive(ctx, "bob", 50*time.Millisecond)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStoppedBusRejectsSendAndReceive(t *testing.T) {
	b := New(Config{}, arbor.NewLogger())
	require.NoError(t, b.Start())
	require.NoError(t, b.Stop())

	_, err := b.Send(newMsg("a", "b", "x"))
	assert.ErrorIs(t, err, ErrBusNotRunning)

	_, err = b.Receive(context.Background(), "b", 10*time.Millisecond)
	assert.ErrorIs(t, err, ErrBusNotRunning)

	// Stop is idempotent.
	require.NoError(t, b.Stop())
}

func TestExpirySweepDropsStaleMessages(t *testing.T) {
	b := newTestBus(t, Config{
		MessageTimeout: 30 * time.Millisecond,
		SweepInterval:  10 * time.Millisecond,
	})
	ctx := context.Background()

	ok, err := b.Send(newMsg("a", "b", "stale"))
	require.NoError(t, err)
	require.True(t, ok)

	time.Sleep(100 * time.Millisecond)

	got, err := b.Receive(ctx, "b", 10*time.Millisecond)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, int64(1), b.Stats().FailedDeliveries)
}

func TestExpirySweepKeepsFreshMessages(t *testing.T) {
	b := newTestBus(t, Config{
		MessageTimeout: time.Minute,
		SweepInterval:  10 * time.Millisecond,
	})
	ctx := context.Background()

	msg := newMsg("a", "b", "fresh")
	ok, err := b.Send(msg)
	require.NoError(t, err)
	require.True(t, ok)

	time.Sleep(50 * time.Millisecond)

	got, err := b.Receive(ctx, "b", time.Second)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, msg.ID, got.ID)
}

func TestClearQueue(t *testing.T) {
	b := newTestBus(t, Config{})

	for i := 0; i < 3; i++ {
		_, err := b.Send(newMsg("a", "b", "x"))
		require.NoError(t, err)
	}

	assert.Equal(t, 3, b.ClearQueue("b"))
	assert.Equal(t, 0, b.ClearQueue("b"))

	got, err := b.Receive(context.Background(), "b", 10*time.Millisecond)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestClearAllQueues(t *testing.T) {
	b := newTestBus(t, Config{})

	for i := 0; i < 3; i++ {
		_, err := b.Send(newMsg("a", "b", "x"))
		require.NoError(t, err)
	}
	for i := 0; i < 2; i++ {
		_, err := b.Send(newMsg("a", "c", "x"))
		require.NoError(t, err)
	}

	assert.Equal(t, 5, b.ClearAllQueues())
	assert.Equal(t, 0, b.ClearAllQueues())

	for _, id := range []string{"b", "c"} {
		got, err := b.Receive(context.Background(), id, 10*time.Millisecond)
		require.NoError(t, err)
		assert.Nil(t, got)
	}
}

func TestQueueStatus(t *testing.T) {
	b := newTestBus(t, Config{MaxQueueSize: 10})

	for i := 0; i < 4; i++ {
		_, err := b.Send(newMsg("a", "b", "x"))
		require.NoError(t, err)
	}

	status := b.QueueStatus()
	require.Contains(t, status, "b")
	assert.Equal(t, 4, status["b"].QueueSize)
	assert.Equal(t, 10, status["b"].MaxSize)
	assert.InDelta(t, 0.4, status["b"].UsageRate, 0.001)
}

func TestHealthCheck(t *testing.T) {
	b := New(Config{}, arbor.NewLogger())
	assert.False(t, b.HealthCheck())

	require.NoError(t, b.Start())
	defer b.Stop()
	assert.True(t, b.HealthCheck())
}

func TestStatsTracksMessageTypes(t *testing.T) {
	b := newTestBus(t, Config{})

	_, err := b.Send(newMsg("a", "b", "alpha"))
	require.NoError(t, err)
	_, err = b.Send(newMsg("a", "b", "alpha"))
	require.NoError(t, err)
	_, err = b.Send(newMsg("a", "b", "beta"))
	require.NoError(t, err)

	stats := b.Stats()
	assert.Equal(t, int64(2), stats.MessageTypes["alpha"])
	assert.Equal(t, int64(1), stats.MessageTypes["beta"])
}
