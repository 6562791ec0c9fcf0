package webapp

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"

	"github.com/cobaemon/portfolio/pkg/file"
)

// ManifestName is the object the published asset manifest is stored under.
const ManifestName = "staticfiles.json"

// manifestVersion tags the manifest format.
const manifestVersion = "1.0"

// Manifest maps logical asset paths to their content-hashed counterparts.
type Manifest struct {
	Version string            `json:"version"`
	Paths   map[string]string `json:"paths"`
}

// CollectStatic walks src and publishes every file to store twice: once
// under its logical path and once under a content-hashed path suitable
// for far-future caching. The resulting manifest is stored alongside the
// assets under ManifestName and returned to the caller.
func CollectStatic(ctx context.Context, src fs.FS, store file.Storage) (*Manifest, error) {
	manifest := &Manifest{
		Version: manifestVersion,
		Paths:   make(map[string]string),
	}

	err := fs.WalkDir(src, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		data, err := fs.ReadFile(src, p)
		if err != nil {
			return fmt.Errorf("read %s: %w", p, err)
		}

		hashed := hashedPath(p, data)
		contentType := file.ContentType(p)

		if _, err := store.Put(ctx, p, bytes.NewReader(data), contentType); err != nil {
			return fmt.Errorf("publish %s: %w", p, err)
		}
		if _, err := store.Put(ctx, hashed, bytes.NewReader(data), contentType); err != nil {
			return fmt.Errorf("publish %s: %w", hashed, err)
		}

		manifest.Paths[p] = hashed
		return nil
	})
	if err != nil {
		return nil, err
	}

	encoded, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	if _, err := store.Put(ctx, ManifestName, bytes.NewReader(encoded), "application/json"); err != nil {
		return nil, fmt.Errorf("publish manifest: %w", err)
	}

	return manifest, nil
}

// hashedPath inserts a short content hash before the file extension, so
// "css/site.css" becomes "css/site.3b2f81a09c4d.css".
func hashedPath(p string, data []byte) string {
	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:6])

	ext := path.Ext(p)
	base := p[:len(p)-len(ext)]
	return base + "." + hash + ext
}
