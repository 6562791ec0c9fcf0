package webapp_test

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cobaemon/portfolio/internal/webapp"
	"github.com/cobaemon/portfolio/pkg/file"
)

type memStore struct {
	objects map[string][]byte
	types   map[string]string
}

func newMemStore() *memStore {
	return &memStore{
		objects: make(map[string][]byte),
		types:   make(map[string]string),
	}
}

func (m *memStore) Put(ctx context.Context, path string, r io.Reader, contentType string) (*file.Object, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	m.objects[path] = data
	m.types[path] = contentType
	return &file.Object{Path: path, Size: int64(len(data)), ContentType: contentType}, nil
}

func (m *memStore) Delete(ctx context.Context, path string) error     { return nil }
func (m *memStore) DeleteDir(ctx context.Context, dir string) error   { return nil }
func (m *memStore) Exists(ctx context.Context, path string) bool      { _, ok := m.objects[path]; return ok }
func (m *memStore) List(ctx context.Context, dir string) ([]file.Entry, error) {
	return nil, nil
}
func (m *memStore) URL(path string) string { return "/static/" + path }

func TestCollectStatic(t *testing.T) {
	t.Parallel()

	src := fstest.MapFS{
		"css/site.css": &fstest.MapFile{Data: []byte("body{margin:0}")},
		"js/app.js":    &fstest.MapFile{Data: []byte("void 0;")},
	}

	store := newMemStore()
	manifest, err := webapp.CollectStatic(context.Background(), src, store)
	require.NoError(t, err)

	require.Len(t, manifest.Paths, 2)

	for logical, hashed := range manifest.Paths {
		assert.True(t, store.Exists(context.Background(), logical), "logical path %s missing", logical)
		assert.True(t, store.Exists(context.Background(), hashed), "hashed path %s missing", hashed)
		assert.Equal(t, store.objects[logical], store.objects[hashed])
		assert.NotEqual(t, logical, hashed)
	}

	assert.Contains(t, store.types["css/site.css"], "text/css")

	// Manifest is published next to the assets and round-trips.
	raw, ok := store.objects[webapp.ManifestName]
	require.True(t, ok)
	var decoded webapp.Manifest
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, manifest.Paths, decoded.Paths)
	assert.NotEmpty(t, decoded.Version)
}

func TestCollectStatic_StableHashes(t *testing.T) {
	t.Parallel()

	src := fstest.MapFS{
		"css/site.css": &fstest.MapFile{Data: []byte("body{margin:0}")},
	}

	first, err := webapp.CollectStatic(context.Background(), src, newMemStore())
	require.NoError(t, err)
	second, err := webapp.CollectStatic(context.Background(), src, newMemStore())
	require.NoError(t, err)

	assert.Equal(t, first.Paths, second.Paths)
}

func TestCollectStatic_EmbeddedAssets(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	manifest, err := webapp.CollectStatic(context.Background(), webapp.StaticFS(), store)
	require.NoError(t, err)
	assert.NotEmpty(t, manifest.Paths)
}
