// Package imaging turns uploaded product photos into small inline JPEGs.
package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"

	"golang.org/x/image/draw"
)

// MaxDimension is the maximum width or height of a card image.
const MaxDimension = 480

// JPEGQuality is the compression quality for JPEG output.
const JPEGQuality = 80

// MaxUploadBytes caps how much of an upload is read.
const MaxUploadBytes = 8 << 20

// ErrUnsupportedFormat is returned for anything other than JPEG or PNG.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// ErrTooLarge is returned when the upload exceeds MaxUploadBytes.
var ErrTooLarge = errors.New("image too large")

var allowedMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// Thumbnail is a processed image.
type Thumbnail struct {
	Data   []byte
	Width  int
	Height int
}

// DataURI returns the image as a data: URI suitable for an item's image field.
func (t *Thumbnail) DataURI() string {
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(t.Data)
}

// Process sniffs, decodes, downscales and re-encodes an upload as JPEG.
func Process(r io.Reader) (*Thumbnail, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading image data: %w", err)
	}
	if len(data) > MaxUploadBytes {
		return nil, ErrTooLarge
	}

	// Client-supplied content types are ignored.
	detected := http.DetectContentType(data)
	if !allowedMIME[detected] {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, detected)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	img = fit(img, MaxDimension)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encoding JPEG: %w", err)
	}

	b := img.Bounds()
	return &Thumbnail{Data: buf.Bytes(), Width: b.Dx(), Height: b.Dy()}, nil
}

// ToDataURI processes an upload and returns it as a data URI.
func ToDataURI(r io.Reader) (string, error) {
	t, err := Process(r)
	if err != nil {
		return "", err
	}
	return t.DataURI(), nil
}

// fit scales img down so neither side exceeds maxDim, keeping aspect ratio.
func fit(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxDim && h <= maxDim {
		return img
	}

	newW, newH := maxDim, maxDim
	if w > h {
		newH = max(1, h*maxDim/w)
	} else {
		newW = max(1, w*maxDim/h)
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

func init() {
	image.RegisterFormat("jpeg", "\xff\xd8", jpeg.Decode, jpeg.DecodeConfig)
	image.RegisterFormat("png", "\x89PNG", png.Decode, png.DecodeConfig)
}
