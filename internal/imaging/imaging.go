// Package imaging normalizes uploaded photos before they are handed to a
// generation provider and derives thumbnails from generated posters.
package imaging

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
)

const (
	maxUploadDim = 1600
	uploadJPEGQ  = 85

	thumbDim   = 300
	thumbJPEGQ = 80
)

// AllowedContentType reports whether an upload MIME type is accepted.
func AllowedContentType(mime string) bool {
	switch mime {
	case "image/jpeg", "image/jpg", "image/png":
		return true
	}
	return false
}

// Preprocess scales an uploaded image down to fit within 1600x1600 (never
// enlarging) and re-encodes it as JPEG.
func Preprocess(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("imaging: decode upload: %w", err)
	}
	img = imaging.Fit(img, maxUploadDim, maxUploadDim, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(uploadJPEGQ)); err != nil {
		return nil, fmt.Errorf("imaging: encode upload: %w", err)
	}
	return buf.Bytes(), nil
}

// Thumbnail derives a 300x300 center-cropped JPEG from a generated image.
func Thumbnail(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("imaging: decode output: %w", err)
	}
	img = imaging.Fill(img, thumbDim, thumbDim, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(thumbJPEGQ)); err != nil {
		return nil, fmt.Errorf("imaging: encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
