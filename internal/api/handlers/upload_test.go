package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dom/videotube/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func multipartRequest(t *testing.T, files map[string]string, content []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("username", "alice"))
	for field, filename := range files {
		part, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploads_Stage(t *testing.T) {
	uploads := Uploads{Dir: filepath.Join(t.TempDir(), "temp"), MaxBytes: 1 << 20}

	req := multipartRequest(t, map[string]string{"avatar": "Me.JPG"}, []byte("jpeg-bytes"))
	require.NoError(t, uploads.parseForm(httptest.NewRecorder(), req))

	path, err := uploads.stage(req, "avatar")
	require.NoError(t, err)
	assert.Equal(t, uploads.Dir, filepath.Dir(path))
	assert.True(t, strings.HasSuffix(path, ".jpg"))
	assert.NotContains(t, filepath.Base(path), "Me")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))
	assert.Equal(t, "alice", req.FormValue("username"))

	missing, err := uploads.stage(req, "coverImage")
	require.NoError(t, err)
	assert.Empty(t, missing)

	discard(path, missing)
	_, err = os.Stat(path)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestUploads_TooLarge(t *testing.T) {
	uploads := Uploads{Dir: t.TempDir(), MaxBytes: 64}

	req := multipartRequest(t, map[string]string{"avatar": "big.png"}, bytes.Repeat([]byte("x"), 4096))
	err := uploads.parseForm(httptest.NewRecorder(), req)
	assert.ErrorIs(t, err, errFileTooLarge)
	assert.Equal(t, http.StatusBadRequest, domain.StatusCode(err))
}

func TestUploads_PlainForm(t *testing.T) {
	uploads := Uploads{Dir: t.TempDir(), MaxBytes: 1 << 20}

	req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("username=bob"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	require.NoError(t, uploads.parseForm(httptest.NewRecorder(), req))

	path, err := uploads.stage(req, "avatar")
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Equal(t, "bob", req.FormValue("username"))
}
