package cmd

import (
	"bytes"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestImageDataURL(t *testing.T) {
	dir := t.TempDir()

	t.Run("ExtensionMimeType", func(t *testing.T) {
		path := filepath.Join(dir, "id.PNG")
		data := []byte("\x89PNG\r\n\x1a\nrest")
		require.NoError(t, os.WriteFile(path, data, 0o600))

		got, err := imageDataURL(path)
		require.NoError(t, err)
		require.Equal(t, "data:image/png;base64,"+base64.StdEncoding.EncodeToString(data), got)
	})

	t.Run("SniffedMimeType", func(t *testing.T) {
		path := filepath.Join(dir, "scan")
		data := []byte("\xff\xd8\xff\xe0\x00\x10JFIF")
		require.NoError(t, os.WriteFile(path, data, 0o600))

		got, err := imageDataURL(path)
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(got, "data:image/jpeg;base64,"), got)
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := imageDataURL(filepath.Join(dir, "nope.jpg"))
		require.ErrorContains(t, err, "read image")
	})
}

func TestWriteOutput(t *testing.T) {
	t.Run("Stdout", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeOutput(&buf, "-", "guide text"))
		require.Equal(t, "guide text\n", buf.String())
	})

	t.Run("FileInNewDirectory", func(t *testing.T) {
		var buf bytes.Buffer
		path := filepath.Join(t.TempDir(), "out", "guide.md")
		require.NoError(t, writeOutput(&buf, path, "# Passport renewal"))
		require.Empty(t, buf.String())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		require.Equal(t, "# Passport renewal\n", string(data))

		entries, err := os.ReadDir(filepath.Dir(path))
		require.NoError(t, err)
		require.Len(t, entries, 1, "temporary file is cleaned up")
	})
}
