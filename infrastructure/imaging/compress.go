// Package imaging shrinks evidence photos to a byte budget before upload.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	stddraw "image/draw"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/webp"
)

const (
	ContentType = "image/jpeg"

	maxQuality  = 100
	minQuality  = 10
	qualityStep = 10
	minEdge     = 16

	// MaxPixels caps the decoded canvas; headers claiming more are refused
	// before any pixel buffer is allocated.
	MaxPixels = 40_000_000
)

var (
	ErrEmptyImage    = errors.New("image is empty")
	ErrImageTooLarge = errors.New("image dimensions exceed the pixel limit")
)

// Decode reads any registered format, falling back to WebP.
func Decode(raw []byte) (image.Image, error) {
	if len(raw) == 0 {
		return nil, ErrEmptyImage
	}
	if err := checkDimensions(raw); err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err == nil {
		return img, nil
	}
	if decoded, webpErr := webp.Decode(bytes.NewReader(raw)); webpErr == nil {
		return decoded, nil
	}
	return nil, err
}

// checkDimensions reads only the header. Formats the header parser does not
// recognise are left for Decode to reject.
func checkDimensions(raw []byte) error {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		webpCfg, webpErr := webp.DecodeConfig(bytes.NewReader(raw))
		if webpErr != nil {
			return nil
		}
		cfg = webpCfg
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return fmt.Errorf("%w: %dx%d", ErrImageTooLarge, cfg.Width, cfg.Height)
	}
	return nil
}

// CompressToSize re-encodes raw as JPEG no larger than maxBytes.
// Quality drops in steps of 10; once the lowest quality is still too big
// the image is halved and the ladder restarts. If even the smallest edge
// does not fit, the smallest encoding produced is returned.
func CompressToSize(raw []byte, maxBytes int) ([]byte, error) {
	img, err := Decode(raw)
	if err != nil {
		return nil, err
	}

	var smallest []byte
	for {
		for quality := maxQuality; quality >= minQuality; quality -= qualityStep {
			encoded, err := encodeJPEG(img, quality)
			if err != nil {
				return nil, err
			}
			if smallest == nil || len(encoded) < len(smallest) {
				smallest = encoded
			}
			if maxBytes <= 0 || len(encoded) <= maxBytes {
				return encoded, nil
			}
		}

		b := img.Bounds()
		if b.Dx()/2 < minEdge || b.Dy()/2 < minEdge {
			return smallest, nil
		}
		img = scale(img, b.Dx()/2, b.Dy()/2)
	}
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	var out bytes.Buffer
	if err := jpeg.Encode(&out, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func scale(src image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), stddraw.Src, nil)
	return dst
}
