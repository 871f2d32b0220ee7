package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/dom/videotube/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenIssuer = "videotube"

var ErrInvalidToken = domain.Unauthorized("Invalid refresh token")

// TokenKeys is the signing configuration for both token kinds. It is built
// once at startup and never mutated.
type TokenKeys struct {
	AccessSecret  []byte
	AccessExpiry  time.Duration
	RefreshSecret []byte
	RefreshExpiry time.Duration
}

// AccessClaims is the payload of an access token.
type AccessClaims struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"fullname"`
	jwt.RegisteredClaims
}

type refreshClaims struct {
	jwt.RegisteredClaims
}

// TokenService mints and verifies signed tokens. It holds no state besides
// its keys.
type TokenService struct {
	keys TokenKeys
	now  func() time.Time
}

func NewTokenService(keys TokenKeys) *TokenService {
	return &TokenService{keys: keys, now: time.Now}
}

func (s *TokenService) IssueAccessToken(user *domain.User) (string, error) {
	now := s.now()
	claims := AccessClaims{
		Username:         user.Username,
		Email:            user.Email,
		FullName:         user.FullName,
		RegisteredClaims: s.registered(user.ID, now, s.keys.AccessExpiry),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.keys.AccessSecret)
	if err != nil {
		return "", fmt.Errorf("signing access token: %w", err)
	}
	return signed, nil
}

// IssueRefreshToken encodes only the user id. Each token carries a random
// jti so two tokens minted in the same second still differ.
func (s *TokenService) IssueRefreshToken(userID uuid.UUID) (string, error) {
	claims := refreshClaims{
		RegisteredClaims: s.registered(userID, s.now(), s.keys.RefreshExpiry),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.keys.RefreshSecret)
	if err != nil {
		return "", fmt.Errorf("signing refresh token: %w", err)
	}
	return signed, nil
}

func (s *TokenService) VerifyRefreshToken(tokenString string) (uuid.UUID, error) {
	var claims refreshClaims
	if err := s.parse(tokenString, &claims, s.keys.RefreshSecret); err != nil {
		return uuid.Nil, ErrInvalidToken.Wrap(err)
	}
	id, err := subjectID(&claims.RegisteredClaims)
	if err != nil {
		return uuid.Nil, ErrInvalidToken.Wrap(err)
	}
	return id, nil
}

func (s *TokenService) VerifyAccessToken(tokenString string) (*AccessClaims, uuid.UUID, error) {
	var claims AccessClaims
	if err := s.parse(tokenString, &claims, s.keys.AccessSecret); err != nil {
		return nil, uuid.Nil, ErrInvalidAccessToken.Wrap(err)
	}
	id, err := subjectID(&claims.RegisteredClaims)
	if err != nil {
		return nil, uuid.Nil, ErrInvalidAccessToken.Wrap(err)
	}
	return &claims, id, nil
}

func (s *TokenService) registered(userID uuid.UUID, now time.Time, ttl time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   userID.String(),
		Issuer:    tokenIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

func (s *TokenService) parse(tokenString string, claims jwt.Claims, secret []byte) error {
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	return err
}

func subjectID(claims *jwt.RegisteredClaims) (uuid.UUID, error) {
	if claims.Subject == "" {
		return uuid.Nil, errors.New("token has no subject")
	}
	return uuid.Parse(claims.Subject)
}
