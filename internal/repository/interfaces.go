package repository

import (
	"context"

	"github.com/dom/videotube/internal/domain"
	"github.com/google/uuid"
)

// UserRepository reads return sanitized users (no password or refresh token)
// unless the method name says otherwise.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByIDWithCredentials(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByUsernameOrEmailWithCredentials(ctx context.Context, username, email string) (*domain.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	// Update writes the named columns only and runs full validation.
	Update(ctx context.Context, user *domain.User, columns ...string) error
	SetRefreshToken(ctx context.Context, id uuid.UUID, token *string) error
	AppendWatchHistory(ctx context.Context, id uuid.UUID, videoID uuid.UUID) error
	GetChannelProfile(ctx context.Context, username string, viewerID *uuid.UUID) (*domain.ChannelProfile, error)
	GetWatchHistory(ctx context.Context, id uuid.UUID) ([]*domain.WatchHistoryEntry, error)
}

type SubscriptionRepository interface {
	Create(ctx context.Context, sub *domain.Subscription) error
	Get(ctx context.Context, subscriberID, channelID uuid.UUID) (*domain.Subscription, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CountSubscribers(ctx context.Context, channelID uuid.UUID) (int64, error)
}

type VideoRepository interface {
	Create(ctx context.Context, video *domain.Video) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Video, error)
	IncrementViews(ctx context.Context, id uuid.UUID) error
}

type Repositories struct {
	User         UserRepository
	Subscription SubscriptionRepository
	Video        VideoRepository
}
