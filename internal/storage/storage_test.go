package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskSave(t *testing.T) {
	dir := t.TempDir()
	disk, err := NewDisk(dir, "http://localhost:8080/images/")
	require.NoError(t, err)

	url, err := disk.Save(context.Background(), []byte("jpeg-bytes"), "image/jpeg")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(url, "http://localhost:8080/images/"))
	assert.True(t, strings.HasSuffix(url, ".jpg"))

	name := url[strings.LastIndex(url, "/")+1:]
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg-bytes"), data)
}

func TestDiskSaveUniqueNames(t *testing.T) {
	disk, err := NewDisk(t.TempDir(), "/images")
	require.NoError(t, err)

	a, err := disk.Save(context.Background(), []byte("one"), "image/png")
	require.NoError(t, err)
	b, err := disk.Save(context.Background(), []byte("two"), "image/png")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestExtFor(t *testing.T) {
	assert.Equal(t, ".jpg", extFor("image/jpeg"))
	assert.Equal(t, ".png", extFor("image/png"))
	assert.Equal(t, ".bin", extFor("application/x-unknown-thing"))
}
