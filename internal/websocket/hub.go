package websocket

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Hub fans subscriber-count updates out to every client watching a channel.
type Hub struct {
	channels   map[uuid.UUID]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan *channelUpdate
	stop       chan struct{}
	done       chan struct{} // closed when Run() exits
	stopped    bool
	log        *zap.Logger
	mu         sync.RWMutex
}

type channelUpdate struct {
	channelID uuid.UUID
	count     int64
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		channels:   make(map[uuid.UUID]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *channelUpdate, 64),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
		log:        log,
	}
}

func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.stop:
			h.mu.Lock()
			h.stopped = true
			for _, clients := range h.channels {
				for client := range clients {
					client.Close()
				}
			}
			h.channels = make(map[uuid.UUID]map[*Client]bool)
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			clients, ok := h.channels[client.channelID]
			if !ok {
				clients = make(map[*Client]bool)
				h.channels[client.channelID] = clients
			}
			clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.channels[client.channelID]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					client.Close()
				}
				if len(clients) == 0 {
					delete(h.channels, client.channelID)
				}
			}
			h.mu.Unlock()

		case update := <-h.broadcast:
			h.deliver(update)
		}
	}
}

// Stop shuts the hub down and closes every client. It blocks until Run exits.
func (h *Hub) Stop() {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return
	}
	h.stopped = true
	h.mu.Unlock()

	close(h.stop)
	<-h.done
}

// Register adds a client to its channel. It is a no-op once the hub stopped.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		client.Close()
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// PublishSubscribers queues a count update for channelID.
func (h *Hub) PublishSubscribers(channelID uuid.UUID, count int64) {
	select {
	case h.broadcast <- &channelUpdate{channelID: channelID, count: count}:
	case <-h.done:
	}
}

// WatcherCount reports how many clients currently watch channelID.
func (h *Hub) WatcherCount(channelID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels[channelID])
}

func (h *Hub) deliver(update *channelUpdate) {
	msg, err := NewMessage(MessageTypeSubscribersChanged, SubscribersChangedPayload{
		ChannelID:        update.channelID,
		SubscribersCount: update.count,
	})
	if err != nil {
		h.log.Error("failed to build subscribers message", zap.Error(err))
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.Error("failed to marshal subscribers message", zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.channels[update.channelID] {
		if !client.trySend(data) {
			// Slow consumer: drop it rather than stall every other watcher.
			delete(h.channels[update.channelID], client)
			client.Close()
		}
	}
}
