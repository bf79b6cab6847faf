// Package storage keeps uploaded trip cover images and hands out their public URLs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// ErrUnsupportedType is returned for uploads that are not an accepted image format.
var ErrUnsupportedType = errors.New("storage: unsupported content type")

// allowedTypes maps accepted MIME types to the file extension they are stored with.
var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// Object describes a stored file.
type Object struct {
	Path        string // key relative to the store root
	URL         string // public URL
	ContentType string
}

// Store persists and removes objects.
type Store interface {
	Put(ctx context.Context, prefix string, data []byte) (Object, error)
	Delete(ctx context.Context, path string) error
}

// LocalStore writes objects under a directory on disk. The directory is
// expected to be served at BaseURL.
type LocalStore struct {
	root    string
	baseURL string
}

// NewLocalStore creates root if needed and returns a store that serves it at baseURL.
func NewLocalStore(root, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("storage.NewLocalStore: %w", err)
	}
	return &LocalStore{root: root, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Root returns the directory objects are written to.
func (s *LocalStore) Root() string { return s.root }

// Put sniffs the content type, rejects anything but images, and writes data
// to <prefix>/<nanoid><ext>.
func (s *LocalStore) Put(_ context.Context, prefix string, data []byte) (Object, error) {
	mt := mimetype.Detect(data)
	ext, ok := allowedTypes[mt.String()]
	if !ok {
		return Object{}, fmt.Errorf("%w: %s", ErrUnsupportedType, mt.String())
	}

	id, err := gonanoid.New()
	if err != nil {
		return Object{}, fmt.Errorf("storage.LocalStore.Put: generate key: %w", err)
	}
	key := filepath.ToSlash(filepath.Join(cleanPrefix(prefix), id+ext))

	full := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return Object{}, fmt.Errorf("storage.LocalStore.Put: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return Object{}, fmt.Errorf("storage.LocalStore.Put: %w", err)
	}

	return Object{Path: key, URL: s.baseURL + "/" + key, ContentType: mt.String()}, nil
}

// Delete removes the object at path. A missing object is not an error.
func (s *LocalStore) Delete(_ context.Context, path string) error {
	clean := filepath.Clean("/" + filepath.FromSlash(path))
	err := os.Remove(filepath.Join(s.root, clean))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage.LocalStore.Delete: %w", err)
	}
	return nil
}

// cleanPrefix keeps prefixes inside the store root.
func cleanPrefix(prefix string) string {
	p := strings.TrimPrefix(filepath.Clean("/"+prefix), string(filepath.Separator))
	if p == "." {
		return ""
	}
	return p
}
