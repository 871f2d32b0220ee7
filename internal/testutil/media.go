package testutil

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/dom/videotube/internal/media"
)

// FakeMediaStore records uploads in memory. Like the real store it always
// removes the staged file.
type FakeMediaStore struct {
	mu       sync.Mutex
	attempts int
	uploads  []string
	fail     error
}

func NewFakeMediaStore() *FakeMediaStore {
	return &FakeMediaStore{}
}

func (f *FakeMediaStore) Upload(ctx context.Context, localPath string) (string, error) {
	if localPath == "" {
		return "", media.ErrNoFile
	}
	defer os.Remove(localPath)

	f.mu.Lock()
	defer f.mu.Unlock()

	f.attempts++
	if f.fail != nil {
		return "", f.fail
	}
	if _, err := os.Stat(localPath); err != nil {
		return "", errors.Join(media.ErrNoFile, err)
	}

	f.uploads = append(f.uploads, localPath)
	return "https://media.test/" + filepath.Base(localPath), nil
}

// FailWith makes every following upload return err. Passing nil restores
// success.
func (f *FakeMediaStore) FailWith(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = err
}

// Uploads returns the staged paths that were uploaded successfully.
func (f *FakeMediaStore) Uploads() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.uploads...)
}

func (f *FakeMediaStore) UploadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.uploads)
}

// Attempts counts every Upload call, failed or not.
func (f *FakeMediaStore) Attempts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.attempts
}
