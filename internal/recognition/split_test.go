package recognition

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

// createColumnImage encodes each column's x coordinate in its red channel.
func createColumnImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{uint8(x), 0, 0, 255})
		}
	}
	return img
}

// checkPartition verifies that slices tile the source columns in order.
func checkPartition(t *testing.T, slices []image.Image, width, height int) {
	t.Helper()
	col := 0
	for i, s := range slices {
		b := s.Bounds()
		if b.Dy() != height {
			t.Errorf("slice %d height: got %d, want %d", i, b.Dy(), height)
		}
		for x := 0; x < b.Dx(); x++ {
			r, _, _, _ := s.At(b.Min.X+x, b.Min.Y).RGBA()
			if int(r>>8) != col%256 {
				t.Fatalf("slice %d column %d: got source column %d, want %d", i, x, r>>8, col%256)
			}
			col++
		}
	}
	if col != width {
		t.Errorf("total width: got %d, want %d", col, width)
	}
}

func TestSplitAt_EveryOffset(t *testing.T) {
	const width, height = 200, 12
	img := createColumnImage(width, height)

	for x := 1; x < width; x++ {
		slices, err := SplitAt(img, x)
		if err != nil {
			t.Fatalf("SplitAt(%d) failed: %v", x, err)
		}
		if len(slices) != 2 {
			t.Fatalf("SplitAt(%d): got %d slices, want 2", x, len(slices))
		}
		if slices[0].Bounds().Dx() != x || slices[1].Bounds().Dx() != width-x {
			t.Errorf("SplitAt(%d) widths: got %d+%d", x, slices[0].Bounds().Dx(), slices[1].Bounds().Dx())
		}
		checkPartition(t, slices, width, height)
	}
}

func TestSplitAt_Invalid(t *testing.T) {
	img := createColumnImage(100, 10)

	tests := []struct {
		name    string
		offsets []int
	}{
		{"zero", []int{0}},
		{"negative", []int{-5}},
		{"at width", []int{100}},
		{"beyond width", []int{150}},
		{"not increasing", []int{50, 50}},
		{"decreasing", []int{60, 40}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SplitAt(img, tt.offsets...)
			if !errors.Is(err, ErrInvalidSplit) {
				t.Errorf("SplitAt(%v): got err=%v, want ErrInvalidSplit", tt.offsets, err)
			}
		})
	}
}

func TestSplitAt_NoOffsets(t *testing.T) {
	img := createColumnImage(30, 5)

	slices, err := SplitAt(img)
	if err != nil {
		t.Fatalf("SplitAt failed: %v", err)
	}
	if len(slices) != 1 || slices[0].Bounds().Dx() != 30 {
		t.Errorf("got %d slices, want the whole image", len(slices))
	}
}

func TestSplitAt_OffsetOrigin(t *testing.T) {
	// Offsets are measured from the image's left edge, not from x=0.
	img := createColumnImage(100, 10).SubImage(image.Rect(20, 0, 80, 10))

	slices, err := SplitAt(img, 10)
	if err != nil {
		t.Fatalf("SplitAt failed: %v", err)
	}
	if slices[0].Bounds().Dx() != 10 || slices[1].Bounds().Dx() != 50 {
		t.Errorf("widths: got %d+%d, want 10+50", slices[0].Bounds().Dx(), slices[1].Bounds().Dx())
	}
	r, _, _, _ := slices[1].At(0, 0).RGBA()
	if r>>8 != 30 {
		t.Errorf("second slice starts at source column %d, want 30", r>>8)
	}
}

func TestSplitEven(t *testing.T) {
	for _, width := range []int{5, 9, 100, 700, 703, 704} {
		img := createColumnImage(width, 8)

		slices, err := SplitEven(img, 5)
		if err != nil {
			t.Fatalf("SplitEven(width=%d) failed: %v", width, err)
		}
		if len(slices) != 5 {
			t.Fatalf("SplitEven(width=%d): got %d slices, want 5", width, len(slices))
		}
		step := width / 5
		for i, s := range slices[:4] {
			if s.Bounds().Dx() != step {
				t.Errorf("width=%d slice %d: got %d, want %d", width, i, s.Bounds().Dx(), step)
			}
		}
		if got, want := slices[4].Bounds().Dx(), step+width%5; got != want {
			t.Errorf("width=%d last slice: got %d, want %d", width, got, want)
		}
		checkPartition(t, slices, width, 8)
	}
}

func TestSplitEven_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		width int
		n     int
	}{
		{"zero slices", 100, 0},
		{"narrower than slice count", 4, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SplitEven(createColumnImage(tt.width, 4), tt.n)
			if !errors.Is(err, ErrInvalidSplit) {
				t.Errorf("got err=%v, want ErrInvalidSplit", err)
			}
		})
	}
}

func TestEvenOffsets(t *testing.T) {
	got := EvenOffsets(700, 5)
	want := []int{140, 280, 420, 560}
	if len(got) != len(want) {
		t.Fatalf("EvenOffsets: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("EvenOffsets[%d]: got %d, want %d", i, got[i], want[i])
		}
	}
	if EvenOffsets(700, 1) != nil {
		t.Error("EvenOffsets with one slice should be empty")
	}
}
