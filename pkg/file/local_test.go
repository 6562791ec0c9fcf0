package file_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cobaemon/portfolio/pkg/file"
)

func TestNewLocalStorage(t *testing.T) {
	t.Parallel()

	t.Run("creates base directory", func(t *testing.T) {
		t.Parallel()

		base := filepath.Join(t.TempDir(), "assets")
		_, err := file.NewLocalStorage(base, "/static/")
		require.NoError(t, err)

		info, err := os.Stat(base)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("rejects empty base directory", func(t *testing.T) {
		t.Parallel()

		_, err := file.NewLocalStorage("", "/static/")
		assert.ErrorIs(t, err, file.ErrInvalidConfig)
	})
}

func TestLocalStorage_Put(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("writes file and returns metadata", func(t *testing.T) {
		t.Parallel()

		s, err := file.NewLocalStorage(t.TempDir(), "/static/")
		require.NoError(t, err)

		obj, err := s.Put(ctx, "css/site.css", strings.NewReader("body{}"), "")
		require.NoError(t, err)
		assert.Equal(t, "css/site.css", obj.Path)
		assert.Equal(t, int64(6), obj.Size)
		assert.Contains(t, obj.ContentType, "text/css")

		assert.True(t, s.Exists(ctx, "css/site.css"))
	})

	t.Run("overwrites existing file", func(t *testing.T) {
		t.Parallel()

		s, err := file.NewLocalStorage(t.TempDir(), "/static/")
		require.NoError(t, err)

		_, err = s.Put(ctx, "a.txt", strings.NewReader("old content"), "text/plain")
		require.NoError(t, err)
		obj, err := s.Put(ctx, "a.txt", strings.NewReader("new"), "text/plain")
		require.NoError(t, err)
		assert.Equal(t, int64(3), obj.Size)
	})

	t.Run("rejects traversal", func(t *testing.T) {
		t.Parallel()

		s, err := file.NewLocalStorage(t.TempDir(), "/static/")
		require.NoError(t, err)

		_, err = s.Put(ctx, "../escape.txt", strings.NewReader("x"), "")
		assert.ErrorIs(t, err, file.ErrInvalidPath)
	})

	t.Run("honors context cancellation", func(t *testing.T) {
		t.Parallel()

		s, err := file.NewLocalStorage(t.TempDir(), "/static/")
		require.NoError(t, err)

		canceled, cancel := context.WithCancel(ctx)
		cancel()

		_, err = s.Put(canceled, "a.txt", strings.NewReader("x"), "")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestLocalStorage_DeleteAndList(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, err := file.NewLocalStorage(t.TempDir(), "/static/")
	require.NoError(t, err)

	_, err = s.Put(ctx, "css/site.css", strings.NewReader("body{}"), "")
	require.NoError(t, err)
	_, err = s.Put(ctx, "css/extra.css", strings.NewReader("p{}"), "")
	require.NoError(t, err)
	_, err = s.Put(ctx, "js/app.js", strings.NewReader("void 0"), "")
	require.NoError(t, err)

	entries, err := s.List(ctx, "css")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	names := []string{entries[0].Name, entries[1].Name}
	assert.Contains(t, names, "site.css")
	assert.Contains(t, names, "extra.css")

	require.NoError(t, s.Delete(ctx, "css/site.css"))
	assert.False(t, s.Exists(ctx, "css/site.css"))

	err = s.Delete(ctx, "css/site.css")
	assert.ErrorIs(t, err, file.ErrFileNotFound)

	err = s.Delete(ctx, "js")
	assert.ErrorIs(t, err, file.ErrIsDirectory)

	require.NoError(t, s.DeleteDir(ctx, "js"))
	assert.False(t, s.Exists(ctx, "js"))

	err = s.DeleteDir(ctx, "js")
	assert.ErrorIs(t, err, file.ErrDirectoryNotFound)
}

func TestLocalStorage_URL(t *testing.T) {
	t.Parallel()

	s, err := file.NewLocalStorage(t.TempDir(), "/static")
	require.NoError(t, err)

	assert.Equal(t, "/static/css/site.css", s.URL("css/site.css"))
	assert.Equal(t, "/already/absolute", s.URL("/already/absolute"))
}

func TestContentType(t *testing.T) {
	t.Parallel()

	assert.Contains(t, file.ContentType("site.css"), "text/css")
	assert.Contains(t, file.ContentType("img/logo.png"), "image/png")
	assert.Equal(t, "application/octet-stream", file.ContentType("blob.unknownext"))
}
