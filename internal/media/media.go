// Package media uploads staged local files to object storage and returns
// their public URLs.
package media

import (
	"context"
	"errors"
)

var ErrNoFile = errors.New("media: no local file")

// Store accepts a staged local file and returns a publicly addressable URL.
// The staged file is removed whether or not the upload succeeds.
type Store interface {
	Upload(ctx context.Context, localPath string) (string, error)
}
