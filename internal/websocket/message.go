package websocket

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type MessageType string

const (
	// Server to Client
	MessageTypeWatching           MessageType = "WATCHING"
	MessageTypeSubscribersChanged MessageType = "SUBSCRIBERS_CHANGED"
	MessageTypeError              MessageType = "ERROR"
)

type Message struct {
	Type      MessageType     `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp int64           `json:"timestamp"`
}

func NewMessage(msgType MessageType, payload interface{}) (*Message, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:      msgType,
		Payload:   payloadBytes,
		Timestamp: time.Now().UnixMilli(),
	}, nil
}

type WatchingPayload struct {
	ChannelID        uuid.UUID `json:"channelId"`
	SubscribersCount int64     `json:"subscribersCount"`
}

type SubscribersChangedPayload struct {
	ChannelID        uuid.UUID `json:"channelId"`
	SubscribersCount int64     `json:"subscribersCount"`
}

const ErrCodeReadOnly = "READ_ONLY"

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
