package service

import (
	"context"
	"errors"
	"strings"

	"github.com/dom/videotube/internal/domain"
	"github.com/dom/videotube/internal/media"
	"github.com/dom/videotube/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrAllFieldsRequired      = domain.BadRequest("All fields are required")
	ErrUserExists             = domain.Conflict("User with username or email exists")
	ErrEmailInUse             = domain.Conflict("Email is already in use")
	ErrAvatarRequired         = domain.BadRequest("Avatar file is required")
	ErrAvatarMissing          = domain.BadRequest("Avatar file is missing")
	ErrAvatarUpload           = domain.BadRequest("Error while uploading avatar")
	ErrCoverImageMissing      = domain.BadRequest("Cover image file is missing")
	ErrCoverImageUpload       = domain.BadRequest("Error while uploading cover image")
	ErrPasswordsRequired      = domain.BadRequest("Old and new password are required")
	ErrInvalidOldPassword     = domain.BadRequest("Invalid old password")
	ErrRegistrationFailed     = domain.Internal("Something went wrong while registering the user")
	ErrPasswordHashingFailure = domain.Internal("Something went wrong while securing the password")
)

// AccountService handles registration and every mutation a user makes to
// their own account.
type AccountService struct {
	userRepo repository.UserRepository
	media    media.Store
}

func NewAccountService(userRepo repository.UserRepository, mediaStore media.Store) *AccountService {
	return &AccountService{
		userRepo: userRepo,
		media:    mediaStore,
	}
}

// RegisterInput carries form fields and the staged local paths of uploaded
// files. CoverImagePath may be empty.
type RegisterInput struct {
	FullName       string
	Email          string
	Username       string
	Password       string
	AvatarPath     string
	CoverImagePath string
}

func (s *AccountService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	fullName := strings.TrimSpace(input.FullName)
	email := strings.TrimSpace(input.Email)
	username := strings.ToLower(strings.TrimSpace(input.Username))
	if fullName == "" || email == "" || username == "" || strings.TrimSpace(input.Password) == "" {
		return nil, ErrAllFieldsRequired
	}

	exists, err := s.userRepo.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserExists
	}

	if input.AvatarPath == "" {
		return nil, ErrAvatarRequired
	}

	avatarURL, err := s.media.Upload(ctx, input.AvatarPath)
	if err != nil || avatarURL == "" {
		return nil, ErrAvatarRequired.Wrap(err)
	}

	var coverURL string
	if input.CoverImagePath != "" {
		coverURL, err = s.media.Upload(ctx, input.CoverImagePath)
		if err != nil {
			return nil, ErrCoverImageUpload.Wrap(err)
		}
	}

	hash, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:         uuid.New(),
		Username:   username,
		Email:      email,
		FullName:   fullName,
		Avatar:     avatarURL,
		CoverImage: coverURL,
		Password:   hash,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUserExists.Wrap(err)
		}
		return nil, ErrRegistrationFailed.Wrap(err)
	}

	created, err := s.userRepo.GetByID(ctx, user.ID)
	if err != nil {
		return nil, ErrRegistrationFailed.Wrap(err)
	}
	return created, nil
}

// ChangePassword replaces the password hash. The write goes through full
// document validation.
func (s *AccountService) ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error {
	if oldPassword == "" || strings.TrimSpace(newPassword) == "" {
		return ErrPasswordsRequired
	}

	user, err := s.loadWithCredentials(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)); err != nil {
		return ErrInvalidOldPassword
	}

	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	user.Password = hash

	return s.save(ctx, user, "password")
}

func (s *AccountService) UpdateAccountDetails(ctx context.Context, userID uuid.UUID, fullName, email string) (*domain.User, error) {
	fullName = strings.TrimSpace(fullName)
	email = strings.TrimSpace(email)
	if fullName == "" || email == "" {
		return nil, ErrAllFieldsRequired
	}

	user, err := s.loadWithCredentials(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.FullName = fullName
	user.Email = email
	if err := s.save(ctx, user, "fullname", "email"); err != nil {
		return nil, err
	}
	return sanitize(user), nil
}

func (s *AccountService) UpdateAvatar(ctx context.Context, userID uuid.UUID, localPath string) (*domain.User, error) {
	if localPath == "" {
		return nil, ErrAvatarMissing
	}

	user, err := s.loadWithCredentials(ctx, userID)
	if err != nil {
		return nil, err
	}

	url, err := s.media.Upload(ctx, localPath)
	if err != nil || url == "" {
		return nil, ErrAvatarUpload.Wrap(err)
	}

	user.Avatar = url
	if err := s.save(ctx, user, "avatar"); err != nil {
		return nil, err
	}
	return sanitize(user), nil
}

func (s *AccountService) UpdateCoverImage(ctx context.Context, userID uuid.UUID, localPath string) (*domain.User, error) {
	if localPath == "" {
		return nil, ErrCoverImageMissing
	}

	user, err := s.loadWithCredentials(ctx, userID)
	if err != nil {
		return nil, err
	}

	url, err := s.media.Upload(ctx, localPath)
	if err != nil || url == "" {
		return nil, ErrCoverImageUpload.Wrap(err)
	}

	user.CoverImage = url
	if err := s.save(ctx, user, "cover_image"); err != nil {
		return nil, err
	}
	return sanitize(user), nil
}

func (s *AccountService) loadWithCredentials(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByIDWithCredentials(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// save persists the changed columns only, so a refresh rotation or a watch
// recorded while an upload was in flight is not overwritten.
func (s *AccountService) save(ctx context.Context, user *domain.User, columns ...string) error {
	if err := s.userRepo.Update(ctx, user, columns...); err != nil {
		switch {
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return ErrEmailInUse.Wrap(err)
		case errors.Is(err, gorm.ErrRecordNotFound):
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", ErrPasswordHashingFailure.Wrap(err)
	}
	return string(hash), nil
}
