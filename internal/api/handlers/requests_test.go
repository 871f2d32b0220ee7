package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRequest(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		contentType string
		want        LoginRequest
		wantErr     bool
	}{
		{
			name:        "json",
			body:        `{"username":"alice","password":"pw","extra":1}`,
			contentType: "application/json; charset=utf-8",
			want:        LoginRequest{Username: "alice", Password: "pw"},
		},
		{
			name:        "empty json body",
			body:        ``,
			contentType: "application/json",
		},
		{
			name:        "form",
			body:        "email=alice%40example.com&password=pw",
			contentType: "application/x-www-form-urlencoded",
			want:        LoginRequest{Email: "alice@example.com", Password: "pw"},
		},
		{
			name:        "json with non-string value",
			body:        `{"username":42}`,
			contentType: "application/json",
			wantErr:     true,
		},
		{
			name:        "malformed json",
			body:        `{"username":`,
			contentType: "application/json",
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", tt.contentType)

			var got LoginRequest
			err := decodeRequest(req, &got)
			if tt.wantErr {
				assert.ErrorIs(t, err, errInvalidBody)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeRequest_AccountForms(t *testing.T) {
	req := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"fullname":"New Name","email":"new@example.com"}`))
	req.Header.Set("Content-Type", "application/json")

	var update UpdateAccountRequest
	require.NoError(t, decodeRequest(req, &update))
	assert.Equal(t, UpdateAccountRequest{FullName: "New Name", Email: "new@example.com"}, update)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("oldPassword=a&newPassword=b"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var change ChangePasswordRequest
	require.NoError(t, decodeRequest(req, &change))
	assert.Equal(t, ChangePasswordRequest{OldPassword: "a", NewPassword: "b"}, change)
}
