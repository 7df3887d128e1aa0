package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/concord/internal/bus"
	"github.com/ternarybob/concord/internal/common"
	"github.com/ternarybob/concord/internal/models"
)

func TestEventStreamDeliversDebateEvents(t *testing.T) {
	logger := arbor.NewLogger()

	messageBus := bus.New(bus.Config{}, logger)
	require.NoError(t, messageBus.Start())
	defer messageBus.Stop()

	stream := NewEventStream(messageBus, logger)
	stream.Start()
	defer stream.Stop()

	ts := httptest.NewServer(http.HandlerFunc(stream.HandleWebSocket))
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Give the server a moment to register the client.
	time.Sleep(50 * time.Millisecond)

	event := &models.AgentMessage{
		ID:             common.NewMessageID(),
		SenderID:       "debate_coordinator",
		ReceiverID:     models.BroadcastReceiver,
		Type:           models.MessageTypeDebateEvent,
		Content:        map[string]interface{}{"phase": "initial_decision"},
		Timestamp:      time.Now(),
		ConversationID: "debate_ws_test",
	}
	ok, err := messageBus.Send(event)
	require.NoError(t, err)
	require.True(t, ok)

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var received models.AgentMessage
	require.NoError(t, conn.ReadJSON(&received))

	assert.Equal(t, event.ID, received.ID)
	assert.Equal(t, "debate_ws_test", received.ConversationID)
	assert.Equal(t, "initial_decision", received.Content["phase"])
}
