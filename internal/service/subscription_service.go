package service

import (
	"context"
	"errors"

	"github.com/dom/videotube/internal/domain"
	"github.com/dom/videotube/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrSelfSubscription = domain.BadRequest("cannot subscribe to your own channel")

// SubscriberNotifier receives the new subscriber count after every toggle.
type SubscriberNotifier interface {
	PublishSubscribers(channelID uuid.UUID, count int64)
}

type SubscriptionService struct {
	userRepo         repository.UserRepository
	subscriptionRepo repository.SubscriptionRepository
	notifier         SubscriberNotifier
}

func NewSubscriptionService(userRepo repository.UserRepository, subscriptionRepo repository.SubscriptionRepository, notifier SubscriberNotifier) *SubscriptionService {
	return &SubscriptionService{
		userRepo:         userRepo,
		subscriptionRepo: subscriptionRepo,
		notifier:         notifier,
	}
}

// Toggle subscribes subscriberID to channelID, or unsubscribes if the
// relation already exists.
func (s *SubscriptionService) Toggle(ctx context.Context, subscriberID, channelID uuid.UUID) (*domain.SubscriptionState, error) {
	if subscriberID == channelID {
		return nil, ErrSelfSubscription
	}

	if _, err := s.userRepo.GetByID(ctx, channelID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChannelNotFound
		}
		return nil, err
	}

	subscribed := true
	existing, err := s.subscriptionRepo.Get(ctx, subscriberID, channelID)
	switch {
	case err == nil:
		if err := s.subscriptionRepo.Delete(ctx, existing.ID); err != nil {
			return nil, err
		}
		subscribed = false
	case errors.Is(err, gorm.ErrRecordNotFound):
		sub := &domain.Subscription{
			ID:           uuid.New(),
			SubscriberID: subscriberID,
			ChannelID:    channelID,
		}
		// A concurrent toggle may have created the row first; the
		// subscription exists either way.
		if err := s.subscriptionRepo.Create(ctx, sub); err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
	default:
		return nil, err
	}

	count, err := s.subscriptionRepo.CountSubscribers(ctx, channelID)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.PublishSubscribers(channelID, count)
	}

	return &domain.SubscriptionState{
		ChannelID:        channelID,
		Subscribed:       subscribed,
		SubscribersCount: count,
	}, nil
}
