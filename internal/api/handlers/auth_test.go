package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/dom/videotube/internal/domain"
	"github.com/dom/videotube/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cookieByName(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func postJSON(t *testing.T, url string, body interface{}, cookies ...*http.Cookie) *http.Response {
	t.Helper()

	data, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(data))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestAuthHandler_Register(t *testing.T) {
	ts := testutil.NewTestServer(t)

	tests := []struct {
		name           string
		builder        func() *testutil.UserBuilder
		withAvatar     bool
		setup          func()
		expectedStatus int
		expectedMsg    string
		checkResponse  func(*testing.T, *http.Response)
	}{
		{
			name:           "successful registration",
			builder:        func() *testutil.UserBuilder { return testutil.NewUserBuilder().WithUsername("NewUser") },
			withAvatar:     true,
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, resp *http.Response) {
				env := testutil.DecodeEnvelope(t, resp)
				assert.True(t, env.Success)
				assert.Equal(t, "User registered successfully", env.Message)
				testutil.AssertNoCredentials(t, env.Data)

				var user domain.User
				require.NoError(t, json.Unmarshal(env.Data, &user))
				assert.Equal(t, "newuser", user.Username)
				assert.True(t, strings.HasPrefix(user.Avatar, "https://media.test/"))
			},
		},
		{
			name:           "missing avatar",
			builder:        testutil.NewUserBuilder,
			withAvatar:     false,
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "Avatar file is required",
		},
		{
			name:           "missing field",
			builder:        func() *testutil.UserBuilder { return testutil.NewUserBuilder().WithFullName("") },
			withAvatar:     true,
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "All fields are required",
		},
		{
			name:    "duplicate username",
			builder: func() *testutil.UserBuilder { return testutil.NewUserBuilder().WithUsername("existing") },
			setup: func() {
				testutil.NewUserBuilder().WithUsername("existing").Build(t, ts.DB.DB)
			},
			withAvatar:     true,
			expectedStatus: http.StatusConflict,
			expectedMsg:    "User with username or email exists",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts.DB.Truncate(t)
			if tt.setup != nil {
				tt.setup()
			}
			attempts := ts.Media.Attempts()

			resp, err := http.DefaultClient.Do(tt.builder().RegisterRequest(t, ts, tt.withAvatar))
			require.NoError(t, err)
			defer resp.Body.Close()

			if tt.checkResponse != nil {
				assert.Equal(t, tt.expectedStatus, resp.StatusCode)
				tt.checkResponse(t, resp)
			} else {
				testutil.AssertErrorResponse(t, resp, tt.expectedStatus, tt.expectedMsg)
				assert.Equal(t, attempts, ts.Media.Attempts(), "rejected registration must not upload")
			}

			entries, err := os.ReadDir(ts.Config.UploadDir)
			if err == nil {
				assert.Empty(t, entries, "staged uploads must be cleaned up")
			}
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	ts := testutil.NewTestServer(t)
	user, password := testutil.NewUserBuilder().WithUsername("alice").Build(t, ts.DB.DB)

	t.Run("json body sets cookies", func(t *testing.T) {
		resp := postJSON(t, ts.APIURL("/users/login"), map[string]string{
			"email":    user.Email,
			"password": password,
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		access := cookieByName(resp, "accessToken")
		refresh := cookieByName(resp, "refreshToken")
		require.NotNil(t, access)
		require.NotNil(t, refresh)
		assert.True(t, access.HttpOnly)
		assert.True(t, access.Secure)
		assert.Equal(t, "/", access.Path)

		var session testutil.Session
		env := testutil.DecodeData(t, resp, &session)
		assert.Equal(t, "User logged In Successfully", env.Message)
		assert.Equal(t, access.Value, session.AccessToken)
		assert.Equal(t, refresh.Value, session.RefreshToken)
		assert.Equal(t, "alice", session.User.Username)
	})

	t.Run("form body", func(t *testing.T) {
		form := url.Values{"username": {"ALICE"}, "password": {password}}
		resp, err := http.PostForm(ts.APIURL("/users/login"), form)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("wrong password", func(t *testing.T) {
		resp := postJSON(t, ts.APIURL("/users/login"), map[string]string{
			"username": "alice",
			"password": "wrong",
		})
		testutil.AssertErrorResponse(t, resp, http.StatusUnauthorized, "Invalid user credentials")
		assert.Nil(t, cookieByName(resp, "accessToken"))
	})

	t.Run("unknown user", func(t *testing.T) {
		resp := postJSON(t, ts.APIURL("/users/login"), map[string]string{
			"username": "ghost",
			"password": password,
		})
		testutil.AssertErrorResponse(t, resp, http.StatusNotFound, "User does not exist")
	})

	t.Run("no identifier", func(t *testing.T) {
		resp := postJSON(t, ts.APIURL("/users/login"), map[string]string{"password": password})
		testutil.AssertErrorResponse(t, resp, http.StatusBadRequest, "username or email is required")
	})
}

func TestAuthHandler_RefreshAndLogout(t *testing.T) {
	ts := testutil.NewTestServer(t)
	session := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)

	// Refresh from the cookie.
	resp := postJSON(t, ts.APIURL("/users/refresh-token"), map[string]string{},
		&http.Cookie{Name: "refreshToken", Value: session.RefreshToken})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var pair struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	env := testutil.DecodeData(t, resp, &pair)
	assert.Equal(t, "Access token refreshed", env.Message)
	assert.NotEqual(t, session.RefreshToken, pair.RefreshToken)
	require.NotNil(t, cookieByName(resp, "refreshToken"))
	assert.Equal(t, pair.RefreshToken, cookieByName(resp, "refreshToken").Value)
	assert.Equal(t, pair.AccessToken, cookieByName(resp, "accessToken").Value)

	// Replaying the rotated-out token fails.
	resp = postJSON(t, ts.APIURL("/users/refresh-token"), map[string]string{"refreshToken": session.RefreshToken})
	testutil.AssertErrorResponse(t, resp, http.StatusUnauthorized, "Refresh token is expired or used")

	// Missing token.
	resp = postJSON(t, ts.APIURL("/users/refresh-token"), map[string]string{})
	testutil.AssertErrorResponse(t, resp, http.StatusUnauthorized, "Unauthorized request")

	// Logout clears cookies and the stored token.
	req, err := http.NewRequest(http.MethodPost, ts.APIURL("/users/logout"), nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	logout, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer logout.Body.Close()
	require.Equal(t, http.StatusOK, logout.StatusCode)

	cleared := cookieByName(logout, "accessToken")
	require.NotNil(t, cleared)
	assert.Equal(t, "", cleared.Value)
	assert.True(t, cleared.MaxAge < 0)

	resp = postJSON(t, ts.APIURL("/users/refresh-token"), map[string]string{"refreshToken": pair.RefreshToken})
	testutil.AssertErrorResponse(t, resp, http.StatusUnauthorized, "Refresh token is expired or used")

	// Logout requires authentication.
	unauth, err := http.Post(ts.APIURL("/users/logout"), "application/json", nil)
	require.NoError(t, err)
	defer unauth.Body.Close()
	testutil.AssertErrorResponse(t, unauth, http.StatusUnauthorized, "Unauthorized request")
}
