package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/dom/videotube/internal/domain"
	"github.com/google/uuid"
)

var (
	errInvalidBody   = domain.BadRequest("Invalid request body")
	errFileTooLarge  = domain.BadRequest("Uploaded file is too large")
	errStagingFailed = domain.Internal("Something went wrong while receiving the file")
)

// Uploads configures where multipart files are staged before they are handed
// to the media store.
type Uploads struct {
	Dir      string
	MaxBytes int64
}

// parseForm reads a multipart or urlencoded body, capped at MaxBytes.
// Requests without a multipart body are still parsed as plain forms.
func (u Uploads) parseForm(w http.ResponseWriter, r *http.Request) error {
	if r.ContentLength > u.MaxBytes {
		return errFileTooLarge
	}
	r.Body = http.MaxBytesReader(w, r.Body, u.MaxBytes)

	err := r.ParseMultipartForm(u.MaxBytes)
	if errors.Is(err, http.ErrNotMultipart) {
		err = r.ParseForm()
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errFileTooLarge.Wrap(err)
		}
		return errInvalidBody.Wrap(err)
	}
	return nil
}

// stage copies the file in field to a randomly named file under Dir and
// returns its path. A missing file yields an empty path and no error.
func (u Uploads) stage(r *http.Request, field string) (string, error) {
	if r.MultipartForm == nil {
		return "", nil
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil
		}
		return "", errInvalidBody.Wrap(err)
	}
	defer file.Close()

	if err := os.MkdirAll(u.Dir, 0o755); err != nil {
		return "", errStagingFailed.Wrap(err)
	}

	path := filepath.Join(u.Dir, uuid.NewString()+stagedExt(header.Filename, header.Header.Get("Content-Type")))
	dst, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return "", errStagingFailed.Wrap(err)
	}

	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		os.Remove(path)
		return "", errStagingFailed.Wrap(fmt.Errorf("copy %s: %w", field, err))
	}
	if err := dst.Close(); err != nil {
		os.Remove(path)
		return "", errStagingFailed.Wrap(err)
	}
	return path, nil
}

// discard removes staged files the media store never consumed.
func discard(paths ...string) {
	for _, p := range paths {
		if p != "" {
			os.Remove(p)
		}
	}
}

func stagedExt(filename, contentType string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	if ext != "" && len(ext) <= 8 && !strings.ContainsAny(ext, `/\`) {
		return ext
	}
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ""
}
