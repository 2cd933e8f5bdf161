package handlers

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
)

// MaxUploadBytes bounds a single evidence photo before compression.
const MaxUploadBytes = 20 << 20

var (
	ErrNoImage  = errors.New("image is required")
	dataURLExpr = regexp.MustCompile(`^data:([A-Za-z-+/]+);base64,(.+)$`)
)

// ReadImage returns the photo sent as a multipart "image" file or, failing
// that, as an "image" form field holding a base64 data URL.
func ReadImage(c *gin.Context) ([]byte, error) {
	if file, err := c.FormFile("image"); err == nil {
		if file.Size > MaxUploadBytes {
			return nil, fmt.Errorf("image exceeds %d bytes", MaxUploadBytes)
		}
		f, err := file.Open()
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return io.ReadAll(io.LimitReader(f, MaxUploadBytes))
	} else if !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
		return nil, err
	}

	raw := c.PostForm("image")
	if raw == "" {
		return nil, ErrNoImage
	}
	return DecodeDataURL(raw)
}

// DecodeDataURL decodes "data:<mime>;base64,<payload>". A bare base64
// payload is accepted too.
func DecodeDataURL(raw string) ([]byte, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrNoImage
	}
	payload := raw
	if strings.HasPrefix(raw, "data:") {
		m := dataURLExpr.FindStringSubmatch(raw)
		if m == nil {
			return nil, errors.New("image data URL is malformed")
		}
		if !strings.HasPrefix(m[1], "image/") {
			return nil, fmt.Errorf("image data URL has unsupported type %q", m[1])
		}
		payload = m[2]
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("image is not valid base64: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrNoImage
	}
	return data, nil
}
