package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/dom/videotube/internal/domain"
	"github.com/dom/videotube/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrCredentialsRequired  = domain.BadRequest("username or email is required")
	ErrUserNotFound         = domain.NotFound("User does not exist")
	ErrInvalidCredentials   = domain.Unauthorized("Invalid user credentials")
	ErrTokenGeneration      = domain.Internal("Something went wrong while generating refresh and access token")
	ErrRefreshTokenRequired = domain.Unauthorized("Unauthorized request")
	ErrStaleRefreshToken    = domain.Unauthorized("Refresh token is expired or used")
	ErrInvalidAccessToken   = domain.Unauthorized("Invalid access token")
)

// AuthService owns session state: it issues token pairs and keeps the
// user's stored refresh token in step with the one handed out.
type AuthService struct {
	userRepo repository.UserRepository
	tokens   *TokenService
}

func NewAuthService(userRepo repository.UserRepository, tokens *TokenService) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
	}
}

type LoginInput struct {
	Username string
	Email    string
	Password string
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type AuthResult struct {
	User *domain.User `json:"user"`
	TokenPair
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	username := strings.ToLower(strings.TrimSpace(input.Username))
	email := strings.TrimSpace(input.Email)
	if username == "" && email == "" {
		return nil, ErrCredentialsRequired
	}

	user, err := s.userRepo.GetByUsernameOrEmailWithCredentials(ctx, username, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	pair, err := s.generateTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: sanitize(user), TokenPair: *pair}, nil
}

// Logout clears the stored refresh token. Clearing an absent token is not an
// error.
func (s *AuthService) Logout(ctx context.Context, userID uuid.UUID) error {
	if err := s.userRepo.SetRefreshToken(ctx, userID, nil); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

// Refresh rotates the session. Only the refresh token currently stored on
// the user is accepted, so a superseded token can never be replayed.
func (s *AuthService) Refresh(ctx context.Context, presented string) (*TokenPair, error) {
	if presented == "" {
		return nil, ErrRefreshTokenRequired
	}

	userID, err := s.tokens.VerifyRefreshToken(presented)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByIDWithCredentials(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	if user.RefreshToken == nil || subtle.ConstantTimeCompare([]byte(*user.RefreshToken), []byte(presented)) != 1 {
		return nil, ErrStaleRefreshToken
	}

	return s.generateTokens(ctx, user)
}

// Authenticate resolves an access token to the sanitized user it was issued to.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*domain.User, error) {
	if accessToken == "" {
		return nil, ErrRefreshTokenRequired
	}

	_, userID, err := s.tokens.VerifyAccessToken(accessToken)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidAccessToken
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) generateTokens(ctx context.Context, user *domain.User) (*TokenPair, error) {
	accessToken, err := s.tokens.IssueAccessToken(user)
	if err != nil {
		return nil, ErrTokenGeneration.Wrap(err)
	}

	refreshToken, err := s.tokens.IssueRefreshToken(user.ID)
	if err != nil {
		return nil, ErrTokenGeneration.Wrap(err)
	}

	if err := s.userRepo.SetRefreshToken(ctx, user.ID, &refreshToken); err != nil {
		return nil, ErrTokenGeneration.Wrap(err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// sanitize returns a copy of user without password or refresh token.
func sanitize(user *domain.User) *domain.User {
	clean := *user
	clean.Password = ""
	clean.RefreshToken = nil
	return &clean
}
