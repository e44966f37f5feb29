package recognition

import (
	"errors"
	"fmt"
	"image"

	"github.com/ironsheep/cardsight/internal/imaging"
)

// ErrInvalidSplit is returned when split offsets do not describe non-empty
// slices inside the image.
var ErrInvalidSplit = errors.New("invalid split")

// SplitAt cuts img vertically at the given x offsets, measured from the
// image's left edge. Offsets must be strictly increasing and strictly inside
// the width, so every slice is non-empty. The slices partition the width
// exactly: k offsets yield k+1 images of full height.
func SplitAt(img image.Image, offsets ...int) ([]image.Image, error) {
	b := img.Bounds()
	if err := validateOffsets(b.Dx(), offsets); err != nil {
		return nil, err
	}

	edges := make([]int, 0, len(offsets)+2)
	edges = append(edges, 0)
	edges = append(edges, offsets...)
	edges = append(edges, b.Dx())

	slices := make([]image.Image, 0, len(edges)-1)
	for i := 0; i+1 < len(edges); i++ {
		r := image.Rect(b.Min.X+edges[i], b.Min.Y, b.Min.X+edges[i+1], b.Max.Y)
		slice, err := imaging.Crop(img, r)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSplit, err)
		}
		slices = append(slices, slice)
	}
	return slices, nil
}

// SplitEven cuts img into n slices of width W/n (integer division). The last
// slice also takes the remainder, so no column is dropped.
func SplitEven(img image.Image, n int) ([]image.Image, error) {
	w := img.Bounds().Dx()
	if n < 1 {
		return nil, fmt.Errorf("%w: slice count %d must be >= 1", ErrInvalidSplit, n)
	}
	if w < n {
		return nil, fmt.Errorf("%w: width %d too small for %d slices", ErrInvalidSplit, w, n)
	}
	return SplitAt(img, EvenOffsets(w, n)...)
}

// EvenOffsets returns the n-1 cut positions SplitEven uses for a width w.
func EvenOffsets(w, n int) []int {
	if n < 2 {
		return nil
	}
	step := w / n
	offsets := make([]int, n-1)
	for i := range offsets {
		offsets[i] = step * (i + 1)
	}
	return offsets
}

func validateOffsets(width int, offsets []int) error {
	prev := 0
	for i, off := range offsets {
		if off <= prev || off >= width {
			return fmt.Errorf("%w: offset %d (index %d) must lie in (%d,%d)", ErrInvalidSplit, off, i, prev, width)
		}
		prev = off
	}
	return nil
}
