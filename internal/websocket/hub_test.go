package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(zap.NewNop())
	go hub.Run()
	t.Cleanup(hub.Stop)
	return hub
}

func receive(t *testing.T, c *Client) *Message {
	t.Helper()
	select {
	case data, ok := <-c.send:
		require.True(t, ok, "client channel closed")
		var msg Message
		require.NoError(t, json.Unmarshal(data, &msg))
		return &msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func TestHub_PublishReachesOnlyChannelWatchers(t *testing.T) {
	hub := newTestHub(t)
	channelA, channelB := uuid.New(), uuid.New()

	watcherA := NewClient(hub, nil, channelA, uuid.New())
	watcherB := NewClient(hub, nil, channelB, uuid.New())
	hub.Register(watcherA)
	hub.Register(watcherB)

	hub.PublishSubscribers(channelA, 3)

	msg := receive(t, watcherA)
	assert.Equal(t, MessageTypeSubscribersChanged, msg.Type)

	var payload SubscribersChangedPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))
	assert.Equal(t, channelA, payload.ChannelID)
	assert.Equal(t, int64(3), payload.SubscribersCount)

	select {
	case <-watcherB.send:
		t.Fatal("watcher of another channel received an update")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_UnregisterClosesClient(t *testing.T) {
	hub := newTestHub(t)
	channelID := uuid.New()

	client := NewClient(hub, nil, channelID, uuid.New())
	hub.Register(client)
	assert.Eventually(t, func() bool { return hub.WatcherCount(channelID) == 1 }, time.Second, 5*time.Millisecond)

	hub.Unregister(client)
	assert.Eventually(t, func() bool { return hub.WatcherCount(channelID) == 0 }, time.Second, 5*time.Millisecond)

	_, ok := <-client.send
	assert.False(t, ok)
}

func TestHub_StopClosesClientsAndRejectsNewOnes(t *testing.T) {
	hub := NewHub(zap.NewNop())
	go hub.Run()

	channelID := uuid.New()
	client := NewClient(hub, nil, channelID, uuid.New())
	hub.Register(client)

	hub.Stop()
	hub.Stop()

	_, ok := <-client.send
	assert.False(t, ok)

	late := NewClient(hub, nil, channelID, uuid.New())
	hub.Register(late)
	_, ok = <-late.send
	assert.False(t, ok)

	// Publishing after stop must not block.
	hub.PublishSubscribers(channelID, 1)
}

func TestClient_SendAfterCloseIsDropped(t *testing.T) {
	hub := NewHub(zap.NewNop())
	client := NewClient(hub, nil, uuid.New(), uuid.New())
	client.Close()
	client.Close()

	msg, err := NewMessage(MessageTypeWatching, WatchingPayload{ChannelID: client.channelID})
	require.NoError(t, err)
	assert.NotPanics(t, func() { client.Send(msg) })
	assert.False(t, client.trySend([]byte("{}")))
}

func TestClient_DeliverRacesClose(t *testing.T) {
	hub := newTestHub(t)
	channelID := uuid.New()

	for i := 0; i < 50; i++ {
		client := NewClient(hub, nil, channelID, uuid.New())
		hub.Register(client)
		go hub.Unregister(client)
		go client.Close()
		hub.PublishSubscribers(channelID, int64(i))
	}
	assert.Eventually(t, func() bool { return hub.WatcherCount(channelID) == 0 }, time.Second, 5*time.Millisecond)
}

func TestClient_SendError(t *testing.T) {
	hub := NewHub(zap.NewNop())
	client := NewClient(hub, nil, uuid.New(), uuid.New())

	client.SendError(ErrCodeReadOnly, "This feed does not accept messages")

	msg := receive(t, client)
	assert.Equal(t, MessageTypeError, msg.Type)
	var payload ErrorPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))
	assert.Equal(t, ErrCodeReadOnly, payload.Code)
}
