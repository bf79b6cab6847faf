package storage_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moonwavetravel/backend/internal/storage"
)

// pngHeader is enough of a PNG file for content sniffing.
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func TestLocalStore_PutAndDelete(t *testing.T) {
	root := t.TempDir()
	s, err := storage.NewLocalStore(root, "http://localhost:8080/media/")
	require.NoError(t, err)

	obj, err := s.Put(context.Background(), "trips/abc", pngHeader)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(obj.Path, "trips/abc/"))
	assert.True(t, strings.HasSuffix(obj.Path, ".png"))
	assert.Equal(t, "http://localhost:8080/media/"+obj.Path, obj.URL)
	assert.Equal(t, "image/png", obj.ContentType)

	written, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(obj.Path)))
	require.NoError(t, err)
	assert.True(t, bytes.Equal(pngHeader, written))

	require.NoError(t, s.Delete(context.Background(), obj.Path))
	require.NoError(t, s.Delete(context.Background(), obj.Path), "deleting twice is fine")
}

func TestLocalStore_RejectsNonImage(t *testing.T) {
	s, err := storage.NewLocalStore(t.TempDir(), "/media")
	require.NoError(t, err)

	_, err = s.Put(context.Background(), "trips", []byte("#!/bin/sh\necho hi\n"))
	assert.ErrorIs(t, err, storage.ErrUnsupportedType)
}

func TestLocalStore_PrefixStaysInsideRoot(t *testing.T) {
	root := t.TempDir()
	s, err := storage.NewLocalStore(root, "/media")
	require.NoError(t, err)

	obj, err := s.Put(context.Background(), "../../etc", pngHeader)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(obj.Path, "etc/"))
	_, err = os.Stat(filepath.Join(root, filepath.FromSlash(obj.Path)))
	assert.NoError(t, err)
}
