package domain

import (
	"time"

	"github.com/google/uuid"
)

// Subscription relates a subscriber to the channel they follow.
type Subscription struct {
	ID           uuid.UUID `json:"_id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	SubscriberID uuid.UUID `json:"subscriber" gorm:"type:uuid;not null;uniqueIndex:idx_subscriber_channel"`
	ChannelID    uuid.UUID `json:"channel" gorm:"type:uuid;not null;uniqueIndex:idx_subscriber_channel;index"`
	CreatedAt    time.Time `json:"createdAt"`
}

// SubscriptionState is the result of toggling a subscription.
type SubscriptionState struct {
	ChannelID        uuid.UUID `json:"channelId"`
	Subscribed       bool      `json:"subscribed"`
	SubscribersCount int64     `json:"subscribersCount"`
}
