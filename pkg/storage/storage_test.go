package storage

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageRejectsEscapingPaths(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	assert.ErrorIs(t, store.Save("../outside.txt", []byte("x")), ErrInvalidPath)
	assert.ErrorIs(t, store.Save("/etc/passwd", []byte("x")), ErrInvalidPath)
	assert.ErrorIs(t, store.Delete("courses/../../x"), ErrInvalidPath)

	require.NoError(t, store.Save("courses/a.txt", []byte("x")))
	assert.True(t, store.Exists("courses/a.txt"))
	require.NoError(t, store.Delete("courses/a.txt"))
	assert.False(t, store.Exists("courses/a.txt"))
	assert.NoError(t, store.Delete("courses/a.txt"))
}

func TestImageStoreSaveDataURL(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	images := NewImageStore(store, "courses", 1024)

	data := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte("fake-jpeg-bytes"))
	name, err := images.SaveBase64(data)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, ".jpg"))
	assert.True(t, images.Exists(name))

	require.NoError(t, images.Delete(name))
	assert.False(t, images.Exists(name))
}

func TestImageStoreLimitsAndFormats(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	images := NewImageStore(store, "courses", 8)

	_, err = images.SaveBase64(base64.StdEncoding.EncodeToString([]byte(strings.Repeat("a", 64))))
	assert.ErrorIs(t, err, ErrImageTooLarge)

	_, err = images.SaveBase64("data:image/tiff;base64,AAAA")
	assert.ErrorIs(t, err, ErrInvalidImage)

	name, err := images.SaveBase64(base64.StdEncoding.EncodeToString([]byte("tiny")))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, ".png"))
}

func TestIsBase64Image(t *testing.T) {
	assert.True(t, IsBase64Image("data:image/png;base64,AAAA"))
	assert.True(t, IsBase64Image("QUJDRA=="))
	assert.False(t, IsBase64Image(""))
	assert.False(t, IsBase64Image("3f2a-course.png"))
}
