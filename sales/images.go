package sales

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/nfnt/resize"
)

const (
	dataURIPrefix  = "data:image/"
	base64Marker   = ";base64,"
	DefaultMaxSide = 1024
	// MaxPixels bounds the declared size of an uploaded image. Larger
	// payloads are rejected before any pixel data is decoded.
	MaxPixels = 40_000_000
)

// ErrInvalidImage is returned for payloads that are not a base64 image data URI.
var ErrInvalidImage = errors.New("invalid image data URI")

// ParseDataURI splits "data:image/<type>;base64,<payload>" into its media type
// and decoded bytes.
func ParseDataURI(uri string) (string, []byte, error) {
	if !strings.HasPrefix(uri, dataURIPrefix) {
		return "", nil, fmt.Errorf("%w: missing %q prefix", ErrInvalidImage, dataURIPrefix)
	}

	idx := strings.Index(uri, base64Marker)
	if idx < 0 {
		return "", nil, fmt.Errorf("%w: not base64 encoded", ErrInvalidImage)
	}

	mediaType := uri[len("data:"):idx]
	payload := uri[idx+len(base64Marker):]
	if payload == "" {
		return "", nil, fmt.Errorf("%w: empty payload", ErrInvalidImage)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	return mediaType, data, nil
}

// ImageStore writes product pictures to a directory, downscaling anything
// wider than MaxWidth.
type ImageStore struct {
	dir      string
	maxWidth uint
}

func NewImageStore(dir string, maxWidth uint) *ImageStore {
	if maxWidth == 0 {
		maxWidth = DefaultMaxSide
	}
	return &ImageStore{dir: dir, maxWidth: maxWidth}
}

// Dir is the directory images are written to.
func (s *ImageStore) Dir() string {
	return s.dir
}

// Save decodes the data URI and writes the image under a random name. It
// returns the file name, not the full path.
func (s *ImageStore) Save(dataURI string) (string, error) {
	_, data, err := ParseDataURI(dataURI)
	if err != nil {
		return "", err
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width > MaxPixels/cfg.Height {
		return "", fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrInvalidImage, cfg.Width, cfg.Height, MaxPixels)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	if uint(img.Bounds().Dx()) > s.maxWidth {
		img = resize.Resize(s.maxWidth, 0, img, resize.Lanczos3)
	}

	var (
		buf bytes.Buffer
		ext string
	)
	switch format {
	case "jpeg":
		ext = ".jpg"
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85})
	default:
		ext = ".png"
		err = png.Encode(&buf, img)
	}
	if err != nil {
		return "", fmt.Errorf("encode image: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create image dir: %w", err)
	}

	name := uuid.NewString() + ext
	if err := os.WriteFile(filepath.Join(s.dir, name), buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return name, nil
}

// Remove deletes a stored image. Missing files are not an error.
func (s *ImageStore) Remove(name string) error {
	if name == "" || name != filepath.Base(name) {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
