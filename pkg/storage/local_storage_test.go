package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	path, err := s.Upload(ctx, strings.NewReader("lecture notes"), "Physics.PDF", "application/pdf")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, ".pdf"))

	rc, err := s.Download(ctx, path)
	require.NoError(t, err)
	require.NotNil(t, rc)
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "lecture notes", string(b))

	require.NoError(t, s.Delete(ctx, path))
	rc, err = s.Download(ctx, path)
	assert.NoError(t, err)
	assert.Nil(t, rc)

	assert.NoError(t, s.Delete(ctx, path), "deleting twice is not an error")
}

func TestLocalStorageUniquePaths(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	a, err := s.Upload(ctx, strings.NewReader("a"), "same.txt", "text/plain")
	require.NoError(t, err)
	b, err := s.Upload(ctx, strings.NewReader("b"), "same.txt", "text/plain")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestLocalStorageDoesNotEscapeBaseDir(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	rc, err := s.Download(ctx, "../../etc/passwd")
	assert.NoError(t, err)
	assert.Nil(t, rc)
}
