package service_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dom/videotube/internal/domain"
	"github.com/dom/videotube/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// loadUser reads the full row, credentials included.
func loadUser(t *testing.T, testDB *testutil.TestDB, id uuid.UUID) *domain.User {
	t.Helper()

	var user domain.User
	require.NoError(t, testDB.DB.First(&user, "id = ?", id).Error)
	return &user
}

// stageFile writes a file the way the upload handler would leave it.
func stageFile(t *testing.T, name string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("image-bytes"), 0o600))
	return path
}

func assertRemoved(t *testing.T, path string) {
	t.Helper()

	_, err := os.Stat(path)
	require.ErrorIs(t, err, os.ErrNotExist, "staged file %s was left behind", path)
}
