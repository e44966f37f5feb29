package debugsink

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/ironsheep/cardsight/internal/imaging"
	"github.com/ironsheep/cardsight/internal/recognition"
)

// Dir writes crops as PNG files into a directory.
//
// Each submission produces up to three files sharing a prefix built from the
// capture time, slot name, result and a short unique suffix:
//
//	20260114T101500.123_left_As_1a2b3c4d_card.png
//	20260114T101500.123_left_As_1a2b3c4d_suit_region.png
//	20260114T101500.123_left_As_1a2b3c4d_suit_mask.png
type Dir struct {
	path string
}

// NewDir creates the directory if needed.
func NewDir(path string) (*Dir, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create debug directory: %w", err)
	}
	return &Dir{path: path}, nil
}

// Path returns the directory the sink writes to.
func (d *Dir) Path() string {
	return d.path
}

// Submit implements recognition.DebugSink.
func (d *Dir) Submit(crop recognition.DebugCrop) error {
	prefix := filePrefix(crop)

	var errs []error
	for suffix, img := range map[string]image.Image{
		"card":        crop.Card,
		"suit_region": crop.SuitRegion,
		"suit_mask":   grayOrNil(crop.SuitMask),
	} {
		if img == nil {
			continue
		}
		if err := writePNG(filepath.Join(d.path, prefix+"_"+suffix+".png"), img); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func filePrefix(crop recognition.DebugCrop) string {
	label := "unresolved"
	if crop.Result.Card != nil {
		label = crop.Result.Card.String()
	}
	slot := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == ' ' {
			return '-'
		}
		return r
	}, crop.Slot)
	return fmt.Sprintf("%s_%s_%s_%s", crop.Time.UTC().Format("20060102T150405.000"), slot, label, uuid.NewString()[:8])
}

// grayOrNil keeps a nil mask from becoming a non-nil image.Image.
func grayOrNil(g *image.Gray) image.Image {
	if g == nil {
		return nil
	}
	return g
}

func writePNG(path string, img image.Image) error {
	data, err := imaging.EncodePNG(img)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}
