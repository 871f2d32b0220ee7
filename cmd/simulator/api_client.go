package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// APIClient handles HTTP communication with the backend
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIClient creates a new API client
func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/") + "/api/v1",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Response types matching backend

type envelope struct {
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Success    bool            `json:"success"`
}

type User struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"fullname"`
}

type Session struct {
	User         User   `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type ChannelProfile struct {
	ID               string `json:"_id"`
	Username         string `json:"username"`
	SubscribersCount int64  `json:"subscribersCount"`
}

type SubscriptionState struct {
	Subscribed       bool  `json:"subscribed"`
	SubscribersCount int64 `json:"subscribersCount"`
}

// placeholderAvatar is a 1x1 transparent PNG.
var placeholderAvatar = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0a, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

// RegisterUser creates an account with a placeholder avatar.
func (c *APIClient) RegisterUser(username, password string) (*User, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fields := map[string]string{
		"fullname": "Simulated " + username,
		"email":    username + "@sim.local",
		"username": username,
		"password": password,
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, err
		}
	}
	part, err := mw.CreateFormFile("avatar", "avatar.png")
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(placeholderAvatar); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/users/register", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var user User
	if err := c.do(req, http.StatusCreated, &user); err != nil {
		return nil, fmt.Errorf("register %s: %w", username, err)
	}
	return &user, nil
}

func (c *APIClient) Login(username, password string) (*Session, error) {
	var session Session
	err := c.doJSON(http.MethodPost, "/users/login", map[string]string{
		"username": username,
		"password": password,
	}, "", &session)
	if err != nil {
		return nil, fmt.Errorf("login %s: %w", username, err)
	}
	return &session, nil
}

func (c *APIClient) GetChannel(username, token string) (*ChannelProfile, error) {
	var profile ChannelProfile
	if err := c.doJSON(http.MethodGet, "/users/c/"+url.PathEscape(username), nil, token, &profile); err != nil {
		return nil, fmt.Errorf("get channel %s: %w", username, err)
	}
	return &profile, nil
}

func (c *APIClient) ToggleSubscription(token, channelID string) (*SubscriptionState, error) {
	var state SubscriptionState
	if err := c.doJSON(http.MethodPost, "/subscriptions/c/"+channelID, nil, token, &state); err != nil {
		return nil, fmt.Errorf("toggle subscription: %w", err)
	}
	return &state, nil
}

// WebSocketURL returns the live feed URL for a channel.
func (c *APIClient) WebSocketURL(channel, token string) string {
	base := c.baseURL
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	return fmt.Sprintf("%s/ws/channels/%s?token=%s", base, url.PathEscape(channel), url.QueryEscape(token))
}

// HTTP helpers

func (c *APIClient) doJSON(method, path string, body interface{}, token string, out interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return err
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, http.StatusOK, out)
}

func (c *APIClient) do(req *http.Request, want int, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("status %d: undecodable body: %w", resp.StatusCode, err)
	}
	if resp.StatusCode != want {
		return fmt.Errorf("status %d: %s", resp.StatusCode, env.Message)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}
