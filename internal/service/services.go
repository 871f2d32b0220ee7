package service

import (
	"github.com/dom/videotube/internal/config"
	"github.com/dom/videotube/internal/media"
	"github.com/dom/videotube/internal/repository"
)

type Services struct {
	Tokens       *TokenService
	Auth         *AuthService
	Account      *AccountService
	Profile      *ProfileService
	Subscription *SubscriptionService
}

func NewServices(repos *repository.Repositories, mediaStore media.Store, notifier SubscriberNotifier, cfg *config.Config) *Services {
	tokens := NewTokenService(KeysFromConfig(cfg))
	return &Services{
		Tokens:       tokens,
		Auth:         NewAuthService(repos.User, tokens),
		Account:      NewAccountService(repos.User, mediaStore),
		Profile:      NewProfileService(repos.User, repos.Video),
		Subscription: NewSubscriptionService(repos.User, repos.Subscription, notifier),
	}
}

func KeysFromConfig(cfg *config.Config) TokenKeys {
	return TokenKeys{
		AccessSecret:  []byte(cfg.AccessTokenSecret),
		AccessExpiry:  cfg.AccessTokenExpiry,
		RefreshSecret: []byte(cfg.RefreshTokenSecret),
		RefreshExpiry: cfg.RefreshTokenExpiry,
	}
}
