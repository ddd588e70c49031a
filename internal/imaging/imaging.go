// Package imaging shrinks embedded images before they are stored.
package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"strings"

	"github.com/nfnt/resize"
)

const (
	DefaultMaxWidth = 400
	DefaultQuality  = 70
)

var ErrNotDataURL = errors.New("not a base64 data url")

// Compressor downscales data-URL images to MaxWidth and re-encodes them as
// JPEG at Quality.
type Compressor struct {
	MaxWidth uint
	Quality  int
}

func NewCompressor(maxWidth int, quality int) Compressor {
	if maxWidth <= 0 {
		maxWidth = DefaultMaxWidth
	}
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}
	return Compressor{MaxWidth: uint(maxWidth), Quality: quality}
}

// Compress returns the re-encoded data URL. Empty input and non-data URLs
// (plain links) come back unchanged with a nil error. On a decode or encode
// failure the original payload is returned together with the error.
func (c Compressor) Compress(payload string) (string, error) {
	if payload == "" || !strings.HasPrefix(payload, "data:") {
		return payload, nil
	}

	raw, err := decodeDataURL(payload)
	if err != nil {
		return payload, err
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return payload, fmt.Errorf("decode image: %w", err)
	}

	if uint(img.Bounds().Dx()) > c.MaxWidth {
		img = resize.Resize(c.MaxWidth, 0, img, resize.Lanczos3)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: c.Quality}); err != nil {
		return payload, fmt.Errorf("encode jpeg: %w", err)
	}

	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// Decode returns the raw bytes of a base64 data URL.
func Decode(payload string) ([]byte, error) {
	return decodeDataURL(payload)
}

func decodeDataURL(payload string) ([]byte, error) {
	header, data, ok := strings.Cut(payload, ",")
	if !ok || !strings.HasPrefix(header, "data:") || !strings.HasSuffix(header, ";base64") {
		return nil, ErrNotDataURL
	}
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("decode base64: %w", err)
	}
	return raw, nil
}
