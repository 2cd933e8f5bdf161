package imaging

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noisePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	rng := rand.New(rand.NewSource(42))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(rng.Intn(256)), uint8(rng.Intn(256)), uint8(rng.Intn(256)), 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestCompressToSize(t *testing.T) {
	raw := noisePNG(t, 400, 300)
	maxBytes := 10 * 1024

	out, err := CompressToSize(raw, maxBytes)
	require.NoError(t, err)

	assert.LessOrEqual(t, len(out), maxBytes)
	_, err = jpeg.Decode(bytes.NewReader(out))
	assert.NoError(t, err)
}

func TestCompressToSizeKeepsSmallImages(t *testing.T) {
	raw := noisePNG(t, 20, 20)

	out, err := CompressToSize(raw, 1<<20)
	require.NoError(t, err)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Width)
	assert.Equal(t, 20, cfg.Height)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode([]byte("definitely not an image"))
	assert.Error(t, err)

	_, err = Decode(nil)
	assert.ErrorIs(t, err, ErrEmptyImage)
}

func pngHeader(width, height uint32) []byte {
	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	chunk := func(kind string, data []byte) {
		var n [4]byte
		binary.BigEndian.PutUint32(n[:], uint32(len(data)))
		buf.Write(n[:])
		body := append([]byte(kind), data...)
		buf.Write(body)
		binary.BigEndian.PutUint32(n[:], crc32.ChecksumIEEE(body))
		buf.Write(n[:])
	}
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], width)
	binary.BigEndian.PutUint32(ihdr[4:8], height)
	ihdr[8], ihdr[9] = 8, 6
	chunk("IHDR", ihdr)
	chunk("IEND", nil)
	return buf.Bytes()
}

func TestDecodeRejectsOversizedHeader(t *testing.T) {
	tests := []struct {
		name   string
		width  uint32
		height uint32
	}{
		{name: "square bomb", width: 60000, height: 60000},
		{name: "one pixel over", width: MaxPixels/1000 + 1, height: 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := pngHeader(tt.width, tt.height)

			_, err := Decode(raw)
			assert.ErrorIs(t, err, ErrImageTooLarge)

			_, err = CompressToSize(raw, 10*1024)
			assert.ErrorIs(t, err, ErrImageTooLarge)
		})
	}
}
