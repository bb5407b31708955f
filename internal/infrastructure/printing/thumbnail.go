package printing

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/disintegration/imaging"
)

// DefaultThumbnailWidth is the pixel width thumbnails are downscaled to
const DefaultThumbnailWidth = 120

var errEmptyImage = errors.New("empty image payload")

// Thumbnail is a re-encoded JPEG ready to be placed on a page
type Thumbnail struct {
	JPEG   []byte
	Width  int
	Height int
}

// DecodeThumbnail decodes a base64 or data URI image, flattens it onto
// white, downscales it to at most maxWidth pixels and re-encodes it as JPEG.
func DecodeThumbnail(payload string, maxWidth int) (*Thumbnail, error) {
	raw, err := decodeImagePayload(payload)
	if err != nil {
		return nil, err
	}
	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	if maxWidth <= 0 {
		maxWidth = DefaultThumbnailWidth
	}
	if img.Bounds().Dx() > maxWidth {
		img = imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
	}

	b := img.Bounds()
	flat := imaging.New(b.Dx(), b.Dy(), color.White)
	flat = imaging.Overlay(flat, img, image.Pt(0, 0), 1.0)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, flat, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return &Thumbnail{JPEG: buf.Bytes(), Width: b.Dx(), Height: b.Dy()}, nil
}

func decodeImagePayload(payload string) ([]byte, error) {
	payload = strings.TrimSpace(payload)
	if strings.HasPrefix(payload, "data:") {
		comma := strings.IndexByte(payload, ',')
		if comma < 0 {
			return nil, errors.New("malformed data URI")
		}
		payload = payload[comma+1:]
	}
	if payload == "" {
		return nil, errEmptyImage
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		raw, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		if err != nil {
			return nil, fmt.Errorf("decode base64: %w", err)
		}
	}
	return raw, nil
}

// fitBox scales w x h to fit inside boxW x boxH keeping the aspect ratio
func fitBox(w, h int, boxW, boxH float64) (float64, float64) {
	if w <= 0 || h <= 0 {
		return boxW, boxH
	}
	scale := boxW / float64(w)
	if s := boxH / float64(h); s < scale {
		scale = s
	}
	return float64(w) * scale, float64(h) * scale
}
