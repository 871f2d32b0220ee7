package service

import (
	"context"
	"errors"
	"strings"

	"github.com/dom/videotube/internal/domain"
	"github.com/dom/videotube/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrUsernameMissing = domain.BadRequest("username is missing")
	ErrChannelNotFound = domain.NotFound("channel does not exists")
	ErrVideoNotFound   = domain.NotFound("video not found")
)

// ProfileService serves the read-only social views of a user.
type ProfileService struct {
	userRepo  repository.UserRepository
	videoRepo repository.VideoRepository
}

func NewProfileService(userRepo repository.UserRepository, videoRepo repository.VideoRepository) *ProfileService {
	return &ProfileService{
		userRepo:  userRepo,
		videoRepo: videoRepo,
	}
}

// GetChannelProfile looks the channel up case-insensitively. viewerID is nil
// for anonymous callers, who are never subscribed.
func (s *ProfileService) GetChannelProfile(ctx context.Context, viewerID *uuid.UUID, username string) (*domain.ChannelProfile, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, ErrUsernameMissing
	}

	profile, err := s.userRepo.GetChannelProfile(ctx, username, viewerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChannelNotFound
		}
		return nil, err
	}
	return profile, nil
}

// GetWatchHistory returns watched videos in stored order, each with its
// owner summary.
func (s *ProfileService) GetWatchHistory(ctx context.Context, userID uuid.UUID) ([]*domain.WatchHistoryEntry, error) {
	return s.userRepo.GetWatchHistory(ctx, userID)
}

// RecordWatch appends videoID to the user's history and counts the view.
func (s *ProfileService) RecordWatch(ctx context.Context, userID, videoID uuid.UUID) error {
	if _, err := s.videoRepo.GetByID(ctx, videoID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrVideoNotFound
		}
		return err
	}

	if err := s.userRepo.AppendWatchHistory(ctx, userID, videoID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	return s.videoRepo.IncrementViews(ctx, videoID)
}
