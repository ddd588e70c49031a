package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngDataURL(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func decodedWidth(t *testing.T, dataURL string) int {
	t.Helper()
	raw, err := Decode(dataURL)
	require.NoError(t, err)
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	require.NoError(t, err)
	return cfg.Width
}

func TestCompressDownscalesWideImage(t *testing.T) {
	c := NewCompressor(400, 70)

	out, err := c.Compress(pngDataURL(t, 800, 200))

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "data:image/jpeg;base64,"))
	assert.Equal(t, 400, decodedWidth(t, out))
}

func TestCompressKeepsNarrowImageWidth(t *testing.T) {
	c := NewCompressor(400, 70)

	out, err := c.Compress(pngDataURL(t, 120, 80))

	require.NoError(t, err)
	assert.Equal(t, 120, decodedWidth(t, out))
}

func TestCompressFallsBackToOriginal(t *testing.T) {
	c := NewCompressor(0, 0)
	broken := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("not an image"))

	out, err := c.Compress(broken)

	assert.Error(t, err)
	assert.Equal(t, broken, out)
}

func TestCompressPassesThroughLinksAndEmpty(t *testing.T) {
	c := NewCompressor(400, 70)

	for _, in := range []string{"", "https://cdn.example.com/latte.jpg"} {
		out, err := c.Compress(in)
		require.NoError(t, err)
		assert.Equal(t, in, out)
	}
}
