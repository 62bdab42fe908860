package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"
)

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func createTestJPEG(w, h int) []byte {
	var buf bytes.Buffer
	jpeg.Encode(&buf, solid(w, h, color.RGBA{255, 0, 0, 255}), &jpeg.Options{Quality: 90})
	return buf.Bytes()
}

func createTestPNG(w, h int) []byte {
	var buf bytes.Buffer
	png.Encode(&buf, solid(w, h, color.RGBA{0, 0, 255, 255}))
	return buf.Bytes()
}

func TestProcessKeepsSmallImages(t *testing.T) {
	th, err := Process(bytes.NewReader(createTestJPEG(100, 60)))
	if err != nil {
		t.Fatalf("Process JPEG: %v", err)
	}
	if th.Width != 100 || th.Height != 60 {
		t.Errorf("expected 100x60, got %dx%d", th.Width, th.Height)
	}
}

func TestProcessDownscalesLandscape(t *testing.T) {
	th, err := Process(bytes.NewReader(createTestPNG(1200, 600)))
	if err != nil {
		t.Fatalf("Process PNG: %v", err)
	}
	if th.Width != MaxDimension || th.Height != MaxDimension/2 {
		t.Errorf("expected %dx%d, got %dx%d", MaxDimension, MaxDimension/2, th.Width, th.Height)
	}

	// Output is always JPEG.
	if _, err := jpeg.Decode(bytes.NewReader(th.Data)); err != nil {
		t.Errorf("output is not a JPEG: %v", err)
	}
}

func TestProcessDownscalesPortrait(t *testing.T) {
	th, err := Process(bytes.NewReader(createTestJPEG(300, 960)))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if th.Height != MaxDimension || th.Width != 150 {
		t.Errorf("expected 150x%d, got %dx%d", MaxDimension, th.Width, th.Height)
	}
}

func TestProcessRejectsUnsupported(t *testing.T) {
	_, err := Process(strings.NewReader("GIF89a not really"))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestToDataURI(t *testing.T) {
	uri, err := ToDataURI(bytes.NewReader(createTestPNG(20, 20)))
	if err != nil {
		t.Fatalf("ToDataURI: %v", err)
	}
	const prefix = "data:image/jpeg;base64,"
	if !strings.HasPrefix(uri, prefix) {
		t.Fatalf("unexpected prefix: %.40s", uri)
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, prefix))
	if err != nil {
		t.Fatalf("decoding base64: %v", err)
	}
	if _, err := jpeg.Decode(bytes.NewReader(raw)); err != nil {
		t.Errorf("payload is not a JPEG: %v", err)
	}
}
