package sales_test

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-sales-api/sales"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngDataURI(t *testing.T, w, h int) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 255, A: 255})
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

// oversizedPNGDataURI encodes a 1x1 png whose header claims w x h pixels.
func oversizedPNGDataURI(t *testing.T, w, h uint32) string {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 1, 1))))
	b := buf.Bytes()

	// IHDR data starts after the signature, chunk length and chunk type.
	binary.BigEndian.PutUint32(b[16:20], w)
	binary.BigEndian.PutUint32(b[20:24], h)
	binary.BigEndian.PutUint32(b[29:33], crc32.ChecksumIEEE(b[12:29]))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(b)
}

func TestParseDataURI(t *testing.T) {
	mediaType, data, err := sales.ParseDataURI(pixel)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mediaType)
	assert.NotEmpty(t, data)

	for _, bad := range []string{
		"",
		"Imagem1.png",
		"data:text/plain;base64,aGVsbG8=",
		"data:image/png,raw",
		"data:image/png;base64,",
		"data:image/png;base64,***",
	} {
		_, _, err := sales.ParseDataURI(bad)
		assert.True(t, errors.Is(err, sales.ErrInvalidImage), "input %q", bad)
	}
}

func TestImageStore_Save(t *testing.T) {
	store := sales.NewImageStore(filepath.Join(t.TempDir(), "images"), 100)

	t.Run("keeps small images", func(t *testing.T) {
		name, err := store.Save(pngDataURI(t, 40, 20))
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(name, ".png"))

		cfg := decodeConfig(t, filepath.Join(store.Dir(), name))
		assert.Equal(t, 40, cfg.Width)
	})

	t.Run("downscales wide images", func(t *testing.T) {
		name, err := store.Save(pngDataURI(t, 400, 200))
		require.NoError(t, err)

		cfg := decodeConfig(t, filepath.Join(store.Dir(), name))
		assert.Equal(t, 100, cfg.Width)
		assert.Equal(t, 50, cfg.Height)
	})

	t.Run("rejects undecodable payload", func(t *testing.T) {
		_, err := store.Save("data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("not an image")))
		assert.ErrorIs(t, err, sales.ErrInvalidImage)
	})

	t.Run("rejects oversized dimensions before decoding", func(t *testing.T) {
		_, err := store.Save(oversizedPNGDataURI(t, 100_000, 100_000))
		assert.ErrorIs(t, err, sales.ErrInvalidImage)
		assert.Contains(t, err.Error(), "exceeds")
	})

	t.Run("unique names", func(t *testing.T) {
		a, err := store.Save(pixel)
		require.NoError(t, err)
		b, err := store.Save(pixel)
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})
}

func TestImageStore_Remove(t *testing.T) {
	store := sales.NewImageStore(t.TempDir(), 0)

	name, err := store.Save(pixel)
	require.NoError(t, err)

	require.NoError(t, store.Remove(name))
	_, err = os.Stat(filepath.Join(store.Dir(), name))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, store.Remove(name), "missing file")
	assert.NoError(t, store.Remove(""))
	assert.NoError(t, store.Remove("../outside.png"))
}

func decodeConfig(t *testing.T, path string) image.Config {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	require.NoError(t, err)
	return cfg
}
