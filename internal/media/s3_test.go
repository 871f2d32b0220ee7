package media

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakePutter struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakePutter) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = params
	if params.Body != nil {
		f.body, _ = io.ReadAll(params.Body)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func stageFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestS3Store_Upload(t *testing.T) {
	putter := &fakePutter{}
	store := newS3Store(putter, "videotube", "https://cdn.example.com/", zap.NewNop())
	store.now = func() time.Time { return time.Date(2024, 3, 7, 12, 0, 0, 0, time.UTC) }

	path := stageFile(t, "avatar.PNG", "png-bytes")

	url, err := store.Upload(context.Background(), path)
	require.NoError(t, err)

	require.NotNil(t, putter.input)
	key := aws.ToString(putter.input.Key)
	assert.Equal(t, "videotube", aws.ToString(putter.input.Bucket))
	assert.Regexp(t, `^uploads/2024/03/07/[0-9a-f-]{36}\.png$`, key)
	assert.Equal(t, "image/png", aws.ToString(putter.input.ContentType))
	assert.Equal(t, "png-bytes", string(putter.body))
	assert.Equal(t, "https://cdn.example.com/"+key, url)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "staged file should be removed after upload")
}

func TestS3Store_UploadFailureRemovesStagedFile(t *testing.T) {
	putter := &fakePutter{err: errors.New("bucket unavailable")}
	store := newS3Store(putter, "videotube", "https://cdn.example.com", zap.NewNop())

	path := stageFile(t, "cover.jpg", "jpeg-bytes")

	url, err := store.Upload(context.Background(), path)
	assert.Error(t, err)
	assert.Empty(t, url)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestS3Store_UploadWithoutFile(t *testing.T) {
	store := newS3Store(&fakePutter{}, "videotube", "https://cdn.example.com", zap.NewNop())

	_, err := store.Upload(context.Background(), "")
	assert.ErrorIs(t, err, ErrNoFile)

	_, err = store.Upload(context.Background(), filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}
