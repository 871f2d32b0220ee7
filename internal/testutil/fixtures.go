package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"testing"
	"time"

	"github.com/dom/videotube/internal/domain"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	username   string
	email      string
	fullName   string
	password   string
	avatar     string
	coverImage string
}

// NewUserBuilder creates a new UserBuilder with unique default values
func NewUserBuilder() *UserBuilder {
	suffix := uuid.New().String()[:8]
	return &UserBuilder{
		username: "user_" + suffix,
		email:    fmt.Sprintf("user_%s@example.com", suffix),
		fullName: "Test User " + suffix,
		password: "testpassword123",
		avatar:   "https://media.test/avatar-" + suffix + ".png",
	}
}

func (b *UserBuilder) WithUsername(username string) *UserBuilder {
	b.username = username
	return b
}

func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.email = email
	return b
}

func (b *UserBuilder) WithFullName(fullName string) *UserBuilder {
	b.fullName = fullName
	return b
}

func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

func (b *UserBuilder) WithCoverImage(url string) *UserBuilder {
	b.coverImage = url
	return b
}

// Build inserts the user directly and returns it with the raw password.
func (b *UserBuilder) Build(t *testing.T, db *gorm.DB) (*domain.User, string) {
	t.Helper()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &domain.User{
		ID:         uuid.New(),
		Username:   b.username,
		Email:      b.email,
		FullName:   b.fullName,
		Avatar:     b.avatar,
		CoverImage: b.coverImage,
		Password:   string(hashedPassword),
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user, b.password
}

// Session is what a successful login hands back to the client.
type Session struct {
	User         domain.User `json:"user"`
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
}

// RegisterRequest builds the multipart registration request for this user.
// The avatar is attached only when withAvatar is set.
func (b *UserBuilder) RegisterRequest(t *testing.T, ts *TestServer, withAvatar bool) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for field, value := range map[string]string{
		"fullname": b.fullName,
		"email":    b.email,
		"username": b.username,
		"password": b.password,
	} {
		if err := mw.WriteField(field, value); err != nil {
			t.Fatalf("failed to write field %s: %v", field, err)
		}
	}
	if withAvatar {
		AttachFile(t, mw, "avatar", "avatar.png", []byte("fake-png-bytes"))
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, ts.APIURL("/users/register"), &body)
	if err != nil {
		t.Fatalf("failed to build register request: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

// BuildAndAuthenticate registers the user through the API, logs in, and
// returns the session.
func (b *UserBuilder) BuildAndAuthenticate(t *testing.T, ts *TestServer) *Session {
	t.Helper()

	resp, err := http.DefaultClient.Do(b.RegisterRequest(t, ts, true))
	if err != nil {
		t.Fatalf("failed to register user: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("unexpected register status code: %d", resp.StatusCode)
	}

	return Login(t, ts, b.username, b.password)
}

// Login posts JSON credentials and decodes the session from the envelope.
func Login(t *testing.T, ts *TestServer, username, password string) *Session {
	t.Helper()

	body, _ := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	resp, err := http.Post(ts.APIURL("/users/login"), "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("failed to login: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected login status code: %d", resp.StatusCode)
	}

	var session Session
	DecodeData(t, resp, &session)
	return &session
}

// AttachFile adds a file part to a multipart body.
func AttachFile(t *testing.T, mw *multipart.Writer, field, filename string, content []byte) {
	t.Helper()

	part, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("failed to write form file: %v", err)
	}
}

// VideoBuilder creates test videos with a builder pattern
type VideoBuilder struct {
	owner *domain.User
	title string
}

func NewVideoBuilder() *VideoBuilder {
	return &VideoBuilder{title: "Video " + uuid.New().String()[:8]}
}

func (b *VideoBuilder) WithOwner(user *domain.User) *VideoBuilder {
	b.owner = user
	return b
}

func (b *VideoBuilder) WithTitle(title string) *VideoBuilder {
	b.title = title
	return b
}

// Build inserts the video, creating an owner when none was set.
func (b *VideoBuilder) Build(t *testing.T, db *gorm.DB) *domain.Video {
	t.Helper()

	if b.owner == nil {
		b.owner, _ = NewUserBuilder().Build(t, db)
	}

	video := &domain.Video{
		ID:          uuid.New(),
		OwnerID:     b.owner.ID,
		VideoFile:   "https://media.test/" + b.title + ".mp4",
		Thumbnail:   "https://media.test/" + b.title + ".png",
		Title:       b.title,
		Description: "description of " + b.title,
		Duration:    42.5,
		IsPublished: true,
	}

	if err := db.Create(video).Error; err != nil {
		t.Fatalf("failed to create video: %v", err)
	}

	return video
}

// Subscribe inserts a subscriber -> channel relation directly.
func Subscribe(t *testing.T, db *gorm.DB, subscriber, channel *domain.User) {
	t.Helper()

	sub := &domain.Subscription{
		ID:           uuid.New(),
		SubscriberID: subscriber.ID,
		ChannelID:    channel.ID,
	}
	if err := db.Create(sub).Error; err != nil {
		t.Fatalf("failed to create subscription: %v", err)
	}
}
