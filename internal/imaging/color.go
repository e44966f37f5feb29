package imaging

import (
	"fmt"
	"image"
	"image/color"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// HSV is a color in 8-bit OpenCV HSV space.
//
//   - H: 0-180 (0=red, 60=green, 120=blue)
//   - S: 0-255 (0=gray, 255=vivid)
//   - V: 0-255 (0=black, 255=full brightness)
type HSV struct {
	H uint8 `json:"h"`
	S uint8 `json:"s"`
	V uint8 `json:"v"`
}

// HSVRange is an inclusive box in HSV space.
type HSVRange struct {
	Lower HSV `json:"lower"`
	Upper HSV `json:"upper"`
}

// Validate rejects ranges whose lower bound exceeds the upper bound on any
// channel, or whose hue leaves the 0-180 scale.
func (r HSVRange) Validate() error {
	if r.Lower.H > r.Upper.H || r.Lower.S > r.Upper.S || r.Lower.V > r.Upper.V {
		return fmt.Errorf("hsv range lower %+v exceeds upper %+v", r.Lower, r.Upper)
	}
	if r.Upper.H > 180 {
		return fmt.Errorf("hsv range hue %d outside 0-180", r.Upper.H)
	}
	return nil
}

// Contains reports whether c lies within the range, bounds included.
func (r HSVRange) Contains(c HSV) bool {
	return c.H >= r.Lower.H && c.H <= r.Upper.H &&
		c.S >= r.Lower.S && c.S <= r.Upper.S &&
		c.V >= r.Lower.V && c.V <= r.Upper.V
}

// ToHSV converts any color to OpenCV-scaled HSV.
//
// Alpha is ignored: the color is treated as if it were fully opaque, which is
// what screen captures always are.
func ToHSV(c color.Color) HSV {
	r, g, b, _ := c.RGBA()
	cf := colorful.Color{
		R: float64(r>>8) / 255.0,
		G: float64(g>>8) / 255.0,
		B: float64(b>>8) / 255.0,
	}
	h, s, v := cf.Hsv()
	return HSV{
		H: uint8(math.Min(math.Round(h/2), 180)),
		S: uint8(math.Round(s * 255)),
		V: uint8(math.Round(v * 255)),
	}
}

// HSVImage is an image already converted to HSV, stored row-major.
type HSVImage struct {
	Width  int
	Height int
	Pix    []HSV
}

// At returns the HSV value at (x, y), with (0,0) the top-left pixel.
func (h *HSVImage) At(x, y int) HSV {
	return h.Pix[y*h.Width+x]
}

// ConvertHSV converts every pixel of img to HSV.
func ConvertHSV(img image.Image) *HSVImage {
	bounds := img.Bounds()
	out := &HSVImage{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Pix:    make([]HSV, bounds.Dx()*bounds.Dy()),
	}
	for y := 0; y < out.Height; y++ {
		for x := 0; x < out.Width; x++ {
			out.Pix[y*out.Width+x] = ToHSV(img.At(bounds.Min.X+x, bounds.Min.Y+y))
		}
	}
	return out
}

// InRange counts the pixels of h that fall within rng and returns the binary
// mask (255 inside, 0 outside) alongside the count.
func InRange(h *HSVImage, rng HSVRange) (int, *image.Gray) {
	mask := image.NewGray(image.Rect(0, 0, h.Width, h.Height))
	count := 0
	for i, px := range h.Pix {
		if rng.Contains(px) {
			mask.Pix[(i/h.Width)*mask.Stride+i%h.Width] = 255
			count++
		}
	}
	return count, mask
}
