package file

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
)

// Object describes a stored blob.
type Object struct {
	Path        string
	Size        int64
	ContentType string
}

// Entry is a single item in a directory listing.
type Entry struct {
	Name  string
	Path  string
	IsDir bool
	Size  int64
}

// Storage abstracts the asset store. Published static files go through
// this interface so deployments can target S3 or the local filesystem.
type Storage interface {
	// Put writes the contents of r under path, overwriting any existing
	// object, and returns the stored object's metadata.
	Put(ctx context.Context, path string, r io.Reader, contentType string) (*Object, error)
	// Delete removes a single object.
	Delete(ctx context.Context, path string) error
	// DeleteDir removes every object under the given prefix.
	DeleteDir(ctx context.Context, dir string) error
	// Exists reports whether an object is present.
	Exists(ctx context.Context, path string) bool
	// List returns the entries directly under dir.
	List(ctx context.Context, dir string) ([]Entry, error)
	// URL returns the public URL an object is served from.
	URL(path string) string
}

// ContentType resolves a content type from the file extension, falling
// back to application/octet-stream for unknown extensions.
func ContentType(path string) string {
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// cleanPath normalizes an object path and rejects traversal attempts.
func cleanPath(path string) (string, error) {
	path = strings.TrimPrefix(path, "/")
	if strings.Contains(path, "..") {
		return "", fmt.Errorf("%w: %s", ErrInvalidPath, path)
	}
	return path, nil
}
