package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Envelope mirrors the response body every endpoint writes, with data left
// raw for the caller to decode.
type Envelope struct {
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Success    bool            `json:"success"`
	Errors     []string        `json:"errors"`
}

// AssertStatusCode verifies the HTTP response status code
func AssertStatusCode(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	assert.Equal(t, expected, resp.StatusCode, "unexpected status code")
}

// DecodeEnvelope reads the whole body as an envelope and checks that its
// statusCode matches the HTTP status.
func DecodeEnvelope(t *testing.T, resp *http.Response) *Envelope {
	t.Helper()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")

	var env Envelope
	require.NoError(t, json.Unmarshal(body, &env), "failed to unmarshal response: %s", string(body))
	assert.Equal(t, resp.StatusCode, env.StatusCode, "envelope status mismatch")
	return &env
}

// DecodeData decodes a success envelope's data into v.
func DecodeData(t *testing.T, resp *http.Response, v interface{}) *Envelope {
	t.Helper()

	env := DecodeEnvelope(t, resp)
	require.True(t, env.Success, "expected success envelope, got %q", env.Message)
	require.NoError(t, json.Unmarshal(env.Data, v), "failed to unmarshal data: %s", string(env.Data))
	return env
}

// AssertErrorResponse verifies an error envelope with the expected status
// and message.
func AssertErrorResponse(t *testing.T, resp *http.Response, expectedStatus int, expectedMessage string) {
	t.Helper()

	assert.Equal(t, expectedStatus, resp.StatusCode, "unexpected status code")

	env := DecodeEnvelope(t, resp)
	assert.False(t, env.Success)
	assert.Equal(t, "null", string(env.Data))
	assert.Equal(t, expectedMessage, env.Message, "error message mismatch")
	assert.NotNil(t, env.Errors)
}

// AssertNoCredentials fails if a raw JSON user object carries a password or
// refresh token.
func AssertNoCredentials(t *testing.T, raw json.RawMessage) {
	t.Helper()

	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.NotContains(t, fields, "password")
	assert.NotContains(t, fields, "refreshToken")
}
