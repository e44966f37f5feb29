package capture

import (
	"fmt"
	"image"

	"github.com/kbinani/screenshot"
)

// Screen captures live pixels from the attached displays.
type Screen struct{}

// Capture grabs rect from the virtual desktop formed by all active displays.
func (Screen) Capture(rect image.Rectangle) (image.Image, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return nil, fmt.Errorf("%w: no active display", ErrCaptureUnavailable)
	}

	var desktop image.Rectangle
	for i := 0; i < n; i++ {
		desktop = desktop.Union(screenshot.GetDisplayBounds(i))
	}
	if !rect.In(desktop) {
		return nil, fmt.Errorf("%w: %v outside desktop %v", ErrCaptureUnavailable, rect, desktop)
	}

	img, err := screenshot.CaptureRect(rect)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCaptureUnavailable, err)
	}
	return img, nil
}
