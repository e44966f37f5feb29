package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"
)

// RelativeRect describes a sub-rectangle as fractions of an image's width and
// height. (X1, Y1) is the inclusive top-left corner and (X2, Y2) the exclusive
// bottom-right corner, each in the range [0, 1].
type RelativeRect struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// Validate reports whether the fractions describe a non-empty area inside the
// unit square.
func (r RelativeRect) Validate() error {
	for _, v := range []float64{r.X1, r.Y1, r.X2, r.Y2} {
		if v < 0 || v > 1 {
			return fmt.Errorf("relative rect %+v has a fraction outside [0,1]", r)
		}
	}
	if r.X1 >= r.X2 || r.Y1 >= r.Y2 {
		return fmt.Errorf("relative rect %+v is empty", r)
	}
	return nil
}

// Resolve converts the fractions to pixel coordinates for a width×height image.
// Fractions are truncated toward zero.
func (r RelativeRect) Resolve(width, height int) image.Rectangle {
	return image.Rect(
		int(float64(width)*r.X1),
		int(float64(height)*r.Y1),
		int(float64(width)*r.X2),
		int(float64(height)*r.Y2),
	)
}

// Crop extracts a rectangular region from an image.
//
// The rectangle is expressed in the image's own coordinate space and must lie
// within its bounds. The returned image always starts at (0,0).
func Crop(img image.Image, r image.Rectangle) (*image.NRGBA, error) {
	bounds := img.Bounds()

	if !r.In(bounds) {
		return nil, fmt.Errorf("crop region %v outside image bounds %v", r, bounds)
	}
	if r.Empty() {
		return nil, fmt.Errorf("invalid crop region %v: x1 must be < x2, y1 must be < y2", r)
	}

	return imaging.Crop(img, r), nil
}

// CropRelative extracts the sub-rectangle described by rr, resolved against the
// image's dimensions.
func CropRelative(img image.Image, rr RelativeRect) (*image.NRGBA, error) {
	bounds := img.Bounds()
	r := rr.Resolve(bounds.Dx(), bounds.Dy()).Add(bounds.Min)
	if r.Empty() {
		return nil, fmt.Errorf("relative crop %+v of %dx%d image is empty", rr, bounds.Dx(), bounds.Dy())
	}
	return Crop(img, r)
}

// Resize scales an image to width×height using a Lanczos filter.
func Resize(img image.Image, width, height int) *image.NRGBA {
	return imaging.Resize(img, width, height, imaging.Lanczos)
}

// EncodePNG encodes an image as PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodeBase64PNG encodes an image as a base64 PNG string.
func EncodeBase64PNG(img image.Image) (string, error) {
	data, err := EncodePNG(img)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}
