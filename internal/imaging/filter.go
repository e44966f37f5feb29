package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
)

// Grayscale converts an image to 8-bit luminance with the BT.601 weights
// (0.299 R + 0.587 G + 0.114 B) used by OpenCV's cvtColor.
func Grayscale(img image.Image) *image.Gray {
	rgba := effect.GrayscaleWithWeights(img, 0.299, 0.587, 0.114)
	bounds := rgba.Bounds()
	gray := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := 0; y < bounds.Dy(); y++ {
		src := rgba.Pix[y*rgba.Stride:]
		dst := gray.Pix[y*gray.Stride:]
		for x := 0; x < bounds.Dx(); x++ {
			dst[x] = src[x*4]
		}
	}
	return gray
}

// BlurHSV applies a gaussian blur to each HSV channel independently, the way
// OpenCV blurs a 3-channel HSV matrix. A radius of zero or less returns a copy.
func BlurHSV(h *HSVImage, radius float64) *HSVImage {
	packed := image.NewRGBA(image.Rect(0, 0, h.Width, h.Height))
	for i, px := range h.Pix {
		o := (i/h.Width)*packed.Stride + (i%h.Width)*4
		packed.Pix[o], packed.Pix[o+1], packed.Pix[o+2], packed.Pix[o+3] = px.H, px.S, px.V, 255
	}

	blurred := packed
	if radius > 0 {
		blurred = blur.Gaussian(packed, radius)
	}

	out := &HSVImage{Width: h.Width, Height: h.Height, Pix: make([]HSV, len(h.Pix))}
	for i := range out.Pix {
		o := (i/h.Width)*blurred.Stride + (i%h.Width)*4
		out.Pix[i] = HSV{H: blurred.Pix[o], S: blurred.Pix[o+1], V: blurred.Pix[o+2]}
	}
	return out
}
