package capture

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// createScreen builds a screen whose pixel color encodes its coordinates.
func createScreen(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), 0, 255})
		}
	}
	return img
}

type failingSource struct{ err error }

func (f failingSource) Capture(image.Rectangle) (image.Image, error) { return nil, f.err }

type fixedSource struct{ img image.Image }

func (f fixedSource) Capture(image.Rectangle) (image.Image, error) { return f.img, nil }

func TestRegion_Validate(t *testing.T) {
	tests := []struct {
		name    string
		region  Region
		wantErr bool
	}{
		{"valid", Region{X: 10, Y: 10, Width: 5, Height: 5}, false},
		{"zero width", Region{X: 10, Y: 10, Width: 0, Height: 5}, true},
		{"negative height", Region{X: 10, Y: 10, Width: 5, Height: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.region.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate: got err=%v, wantErr=%v", err, tt.wantErr)
			}
		})
	}
}

func TestCapture_Dimensions(t *testing.T) {
	src := NewImageSource(createScreen(200, 100))
	region := Region{X: 30, Y: 20, Width: 40, Height: 25}

	img, err := Capture(src, region)
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}

	if img.Bounds() != image.Rect(0, 0, 40, 25) {
		t.Fatalf("bounds: got %v, want (0,0)-(40,25)", img.Bounds())
	}

	// Top-left of the capture is screen pixel (30,20)
	r, g, _, _ := img.At(0, 0).RGBA()
	if r>>8 != 30 || g>>8 != 20 {
		t.Errorf("origin pixel: got (%d,%d), want (30,20)", r>>8, g>>8)
	}
}

func TestCapture_NotCached(t *testing.T) {
	src := NewImageSource(createScreen(50, 50))
	region := Region{X: 0, Y: 0, Width: 10, Height: 10}

	first, err := Capture(src, region)
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}

	blank := image.NewRGBA(image.Rect(0, 0, 50, 50))
	src.SetScreen(blank)

	second, err := Capture(src, region)
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}

	r1, g1, _, _ := first.At(5, 5).RGBA()
	r2, g2, _, _ := second.At(5, 5).RGBA()
	if r1>>8 != 5 || g1>>8 != 5 {
		t.Errorf("first capture changed after screen update: got (%d,%d)", r1>>8, g1>>8)
	}
	if r2 != 0 || g2 != 0 {
		t.Errorf("second capture did not re-sample: got (%d,%d)", r2>>8, g2>>8)
	}
}

func TestCapture_Unavailable(t *testing.T) {
	tests := []struct {
		name   string
		src    Source
		region Region
	}{
		{"out of bounds", NewImageSource(createScreen(50, 50)), Region{X: 40, Y: 40, Width: 20, Height: 20}},
		{"no screen", NewImageSource(nil), Region{X: 0, Y: 0, Width: 5, Height: 5}},
		{"invalid region", NewImageSource(createScreen(50, 50)), Region{X: 0, Y: 0, Width: 0, Height: 5}},
		{"source error", failingSource{errors.New("display lost")}, Region{X: 0, Y: 0, Width: 5, Height: 5}},
		{"wrong size", fixedSource{image.NewRGBA(image.Rect(0, 0, 4, 5))}, Region{X: 0, Y: 0, Width: 5, Height: 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Capture(tt.src, tt.region)
			if !errors.Is(err, ErrCaptureUnavailable) {
				t.Errorf("got err=%v, want ErrCaptureUnavailable", err)
			}
		})
	}
}

func TestCapture_RebasesSourceImage(t *testing.T) {
	offset := image.NewRGBA(image.Rect(100, 100, 110, 105))
	img, err := Capture(fixedSource{offset}, Region{X: 100, Y: 100, Width: 10, Height: 5})
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if img.Bounds().Min != (image.Point{}) {
		t.Errorf("bounds: got %v, want origin at (0,0)", img.Bounds())
	}
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "screen.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	if err := png.Encode(f, createScreen(64, 64)); err != nil {
		t.Fatalf("failed to encode: %v", err)
	}
	f.Close()

	img, err := Capture(FileSource{Path: path}, Region{X: 8, Y: 16, Width: 8, Height: 8})
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	r, g, _, _ := img.At(1, 1).RGBA()
	if r>>8 != 9 || g>>8 != 17 {
		t.Errorf("pixel: got (%d,%d), want (9,17)", r>>8, g>>8)
	}
}

func TestFileSource_Missing(t *testing.T) {
	_, err := Capture(FileSource{Path: "/nonexistent/screen.png"}, Region{X: 0, Y: 0, Width: 1, Height: 1})
	if !errors.Is(err, ErrCaptureUnavailable) {
		t.Errorf("got err=%v, want ErrCaptureUnavailable", err)
	}
}
