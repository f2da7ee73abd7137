package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadImage(t *testing.T) {
	t.Run("png", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "shot.png")
		require.NoError(t, os.WriteFile(path, []byte("not really a png"), 0o600))

		img, err := readImage(path)
		require.NoError(t, err)
		require.Equal(t, "image/png", img.MimeType)
		require.Equal(t, "shot.png", img.Filename)
		require.Equal(t, []byte("not really a png"), img.Data)
	})

	t.Run("jpeg extensions", func(t *testing.T) {
		for _, name := range []string{"photo.jpg", "photo.jpeg", "PHOTO.JPG"} {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
			img, err := readImage(path)
			require.NoError(t, err)
			require.Equal(t, "image/jpeg", img.MimeType)
		}
	})

	t.Run("unsupported type", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "notes.txt")
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
		_, err := readImage(path)
		require.ErrorContains(t, err, "unsupported image type")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := readImage(filepath.Join(t.TempDir(), "nope.png"))
		require.Error(t, err)
	})

	t.Run("too large", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "huge.png")
		require.NoError(t, os.WriteFile(path, make([]byte, maxImageBytes+1), 0o600))
		_, err := readImage(path)
		require.ErrorContains(t, err, "too large")
	})
}
