// Package capture grabs the watched screen region as a decoded image
package capture

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"time"
)

// Region is the watched area in device pixels.
type Region struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Valid reports whether the region has positive dimensions.
func (r Region) Valid() bool {
	return r.Width > 0 && r.Height > 0
}

func (r Region) String() string {
	return fmt.Sprintf("%d,%d,%d,%d", r.X, r.Y, r.Width, r.Height)
}

// Capture is one raw grab of the region. Immutable; owned by the
// episode that requested it.
type Capture struct {
	Image  image.Image
	Raw    []byte // PNG encoding of Image
	Taken  time.Time
	Region Region
}

// Source produces captures of a region.
type Source interface {
	Capture(ctx context.Context, r Region) (*Capture, error)
	Close()
}

// backend implements platform-specific raw region capture
type backend interface {
	captureRaw(ctx context.Context, r Region) ([]byte, error)
	cleanup()
}

// baseSource wraps a backend with decode and lifecycle handling.
type baseSource struct {
	backend
	tempDir string
}

func newBase(b backend, tempDir string) *baseSource {
	return &baseSource{backend: b, tempDir: tempDir}
}

func (s *baseSource) Capture(ctx context.Context, r Region) (*Capture, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("capture: invalid region %s", r)
	}
	data, err := s.captureRaw(ctx, r)
	if err != nil {
		return nil, err
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("capture: decode screenshot: %w", err)
	}
	return &Capture{Image: img, Raw: data, Taken: time.Now(), Region: r}, nil
}

func (s *baseSource) Close() {
	s.cleanup()
	if s.tempDir != "" {
		os.RemoveAll(s.tempDir)
	}
}

// cropPNG re-encodes the region cut out of a full-screen PNG. Used by
// backends whose screenshot tool cannot capture a region natively.
func cropPNG(data []byte, r Region) ([]byte, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("capture: decode full screenshot: %w", err)
	}
	rect := image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
	if !rect.In(img.Bounds()) {
		return nil, fmt.Errorf("capture: region %s outside screen %v", r, img.Bounds())
	}
	type subImager interface {
		SubImage(image.Rectangle) image.Image
	}
	si, ok := img.(subImager)
	if !ok {
		return nil, fmt.Errorf("capture: screenshot format %T does not support cropping", img)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, si.SubImage(rect)); err != nil {
		return nil, fmt.Errorf("capture: encode crop: %w", err)
	}
	return buf.Bytes(), nil
}
