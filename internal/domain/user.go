package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrInvalidUsername = errors.New("username is required")
	ErrInvalidEmail    = errors.New("email is required")
	ErrInvalidFullName = errors.New("full name is required")
	ErrMissingAvatar   = errors.New("avatar is required")
	ErrMissingPassword = errors.New("password hash is required")
)

// User is the only persistent account document. Password and RefreshToken
// never leave the process.
type User struct {
	ID           uuid.UUID                     `json:"_id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Username     string                        `json:"username" gorm:"uniqueIndex;not null"`
	Email        string                        `json:"email" gorm:"uniqueIndex;not null"`
	FullName     string                        `json:"fullname" gorm:"column:fullname;index;not null"`
	Avatar       string                        `json:"avatar" gorm:"not null"`
	CoverImage   string                        `json:"coverImage" gorm:"not null;default:''"`
	WatchHistory datatypes.JSONSlice[uuid.UUID] `json:"watchHistory"`
	Password     string                        `json:"-" gorm:"not null"`
	RefreshToken *string                       `json:"-"`
	CreatedAt    time.Time                     `json:"createdAt"`
	UpdatedAt    time.Time                     `json:"updatedAt"`
}

// Normalize trims identifying fields and lowercases the username.
func (u *User) Normalize() {
	u.Username = strings.ToLower(strings.TrimSpace(u.Username))
	u.Email = strings.TrimSpace(u.Email)
	u.FullName = strings.TrimSpace(u.FullName)
	if u.WatchHistory == nil {
		u.WatchHistory = datatypes.JSONSlice[uuid.UUID]{}
	}
}

// Validate enforces the document invariants checked on every save.
func (u *User) Validate() error {
	switch {
	case u.Username == "":
		return ErrInvalidUsername
	case u.Email == "":
		return ErrInvalidEmail
	case u.FullName == "":
		return ErrInvalidFullName
	case u.Avatar == "":
		return ErrMissingAvatar
	case u.Password == "":
		return ErrMissingPassword
	}
	return nil
}

// BeforeSave runs on Create and Save. Column updates (UpdateColumn) skip it.
func (u *User) BeforeSave(tx *gorm.DB) error {
	u.Normalize()
	return u.Validate()
}

// OwnerSummary is the denormalized uploader shown next to a video.
type OwnerSummary struct {
	ID       uuid.UUID `json:"_id"`
	FullName string    `json:"fullname"`
	Username string    `json:"username"`
	Avatar   string    `json:"avatar"`
}

// ChannelProfile is a user viewed as the target of subscriptions.
type ChannelProfile struct {
	ID                        uuid.UUID `json:"_id"`
	FullName                  string    `json:"fullname"`
	Username                  string    `json:"username"`
	SubscribersCount          int64     `json:"subscribersCount"`
	ChannelsSubscribedToCount int64     `json:"channelsSubscribedToCount"`
	IsSubscribed              bool      `json:"isSubscribed"`
	Avatar                    string    `json:"avatar"`
	Email                     string    `json:"email"`
	CoverImage                string    `json:"coverImage"`
}
