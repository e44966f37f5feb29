// Package capture samples fixed screen regions into fresh pixel buffers.
package capture

import (
	"errors"
	"fmt"
	"image"

	"github.com/ironsheep/cardsight/internal/imaging"
)

// ErrCaptureUnavailable is returned when the pixel source cannot service a
// request: no display surface, coordinates outside the screen, a source
// failure, or a buffer whose size does not match the requested region.
var ErrCaptureUnavailable = errors.New("capture unavailable")

// Region is a rectangle in screen pixel coordinates.
type Region struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Validate rejects regions without a positive area.
func (r Region) Validate() error {
	if r.Width <= 0 || r.Height <= 0 {
		return fmt.Errorf("region %+v must have positive width and height", r)
	}
	return nil
}

// Rect returns the region as an image.Rectangle in screen space.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

func (r Region) String() string {
	return fmt.Sprintf("(%d,%d %dx%d)", r.X, r.Y, r.Width, r.Height)
}

// Source is a screen-pixel source. Capture returns a dense color image of
// exactly rect's dimensions sampled at call time.
type Source interface {
	Capture(rect image.Rectangle) (image.Image, error)
}

// Capture samples region from src.
//
// The returned image is owned by the caller, starts at (0,0) and measures
// region.Width × region.Height. Nothing is cached: every call re-samples the
// source. All failures wrap ErrCaptureUnavailable.
func Capture(src Source, region Region) (image.Image, error) {
	if err := region.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCaptureUnavailable, err)
	}

	img, err := src.Capture(region.Rect())
	if err != nil {
		if errors.Is(err, ErrCaptureUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: region %s: %v", ErrCaptureUnavailable, region, err)
	}

	bounds := img.Bounds()
	if bounds.Dx() != region.Width || bounds.Dy() != region.Height {
		return nil, fmt.Errorf("%w: region %s: source returned %dx%d",
			ErrCaptureUnavailable, region, bounds.Dx(), bounds.Dy())
	}

	if bounds.Min != (image.Point{}) {
		rebased, err := imaging.Crop(img, bounds)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCaptureUnavailable, err)
		}
		return rebased, nil
	}
	return img, nil
}
