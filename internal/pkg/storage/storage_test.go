package storage

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	return buf.Bytes()
}

func TestLocalStorageRoundTrip(t *testing.T) {
	ctx := context.Background()
	st, err := New(Config{Driver: DriverLocal, LocalPath: t.TempDir(), LocalURL: "http://localhost:8080/static/"})
	require.NoError(t, err)

	key := "uploads/u1/object/a.png"
	data := pngBytes(t)
	require.NoError(t, st.Put(ctx, key, bytes.NewReader(data), "image/png"))

	ok, err := st.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)

	info, err := st.GetInfo(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), info.Size)
	assert.Equal(t, "image/png", info.ContentType)
	assert.Equal(t, "http://localhost:8080/static/"+key, info.URL)

	rc, err := st.Get(ctx, key)
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, data, got)

	require.NoError(t, st.Delete(ctx, key))
	require.NoError(t, st.Delete(ctx, key))

	_, err = st.Get(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStorageRejectsTraversal(t *testing.T) {
	base := t.TempDir()
	st, err := NewLocalStorage(base, "http://localhost")
	require.NoError(t, err)

	full, err := st.path("../../etc/passwd")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(full, base))
}

func TestNewUnknownDriver(t *testing.T) {
	_, err := New(Config{Driver: "ftp"})
	assert.Error(t, err)
}

func TestValidateFile(t *testing.T) {
	data := pngBytes(t)

	got, mime, err := ValidateFile(bytes.NewReader(data), AllowedImageTypes, MaxImageSize)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)
	assert.Equal(t, data, got)

	_, _, err = ValidateFile(bytes.NewReader(nil), AllowedImageTypes, MaxImageSize)
	assert.ErrorIs(t, err, ErrEmptyFile)

	_, _, err = ValidateFile(bytes.NewReader(data), AllowedImageTypes, 10)
	assert.ErrorIs(t, err, ErrFileTooLarge)

	_, _, err = ValidateFile(strings.NewReader("plain text, not an image"), AllowedImageTypes, MaxImageSize)
	assert.ErrorIs(t, err, ErrInvalidMimeType)

	assert.Equal(t, ".webp", GetExtensionForMime("image/webp"))
}
