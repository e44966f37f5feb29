package recognition

import (
	"image"
	"math"

	"github.com/ironsheep/cardsight/internal/imaging"
	"github.com/ironsheep/cardsight/internal/templates"
)

// varianceEpsilon is the smallest sum of squared deviations treated as
// non-flat. Flat windows or templates score zero.
const varianceEpsilon = 1e-9

// RankClassifier identifies a card's rank by template matching.
type RankClassifier struct {
	templates []preparedTemplate
}

// preparedTemplate caches the zero-mean pixels of one template.
type preparedTemplate struct {
	label  string
	source *image.Gray
	width  int
	height int
	dev    []float64 // pixel minus template mean, row-major
	sumSq  float64   // sum of dev squared
}

// NewRankClassifier prepares every template in the repository. Templates keep
// the repository's enumeration order.
func NewRankClassifier(repo *templates.Repository) *RankClassifier {
	c := &RankClassifier{}
	for _, t := range repo.Templates() {
		c.templates = append(c.templates, prepareTemplate(t.Label, t.Image))
	}
	return c
}

func prepareTemplate(label string, img *image.Gray) preparedTemplate {
	px := grayFloats(img)
	w, h := img.Bounds().Dx(), img.Bounds().Dy()

	mean := 0.0
	for _, v := range px {
		mean += v
	}
	mean /= float64(len(px))

	p := preparedTemplate{label: label, source: img, width: w, height: h, dev: px}
	for i, v := range px {
		d := v - mean
		p.dev[i] = d
		p.sumSq += d * d
	}
	return p
}

// fitTo returns the template itself when it fits inside a w×h crop, or a
// Lanczos-downscaled copy with the same aspect ratio otherwise.
func (p preparedTemplate) fitTo(w, h int) preparedTemplate {
	if p.width <= w && p.height <= h {
		return p
	}
	scale := math.Min(float64(w)/float64(p.width), float64(h)/float64(p.height))
	nw := max(1, int(float64(p.width)*scale))
	nh := max(1, int(float64(p.height)*scale))
	return prepareTemplate(p.label, imaging.Grayscale(imaging.Resize(p.source, nw, nh)))
}

// Classify scores every template against the card crop and returns the best
// rank. A blank or featureless crop returns an empty label with zero
// confidence.
func (c *RankClassifier) Classify(card image.Image) ClassificationResult {
	scores := c.Scores(card)

	best := -1
	bestScore := 0.0
	for i, s := range scores {
		if s > bestScore {
			best, bestScore = i, s
		}
	}
	if best < 0 {
		return ClassificationResult{}
	}

	result := ClassificationResult{Label: c.templates[best].label, Confidence: bestScore, Margin: bestScore}
	runnerScore := 0.0
	for i, s := range scores {
		if i == best {
			continue
		}
		if s > runnerScore {
			result.RunnerUp, runnerScore = c.templates[i].label, s
		}
	}
	if result.RunnerUp != "" {
		result.Margin = bestScore - runnerScore
	}
	return result
}

// Scores returns each template's best correlation score in enumeration order.
func (c *RankClassifier) Scores(card image.Image) []float64 {
	gray := imaging.Grayscale(card)
	integral := newIntegralImage(gray)

	scores := make([]float64, len(c.templates))
	for i, t := range c.templates {
		scores[i] = matchTemplate(integral, t.fitTo(integral.width, integral.height))
	}
	return scores
}

// Labels returns the template labels in enumeration order.
func (c *RankClassifier) Labels() []string {
	labels := make([]string, len(c.templates))
	for i, t := range c.templates {
		labels[i] = t.label
	}
	return labels
}

// matchTemplate slides t over every position where it fits entirely inside
// the image and returns the maximum TM_CCOEFF_NORMED score.
func matchTemplate(img *integralImage, t preparedTemplate) float64 {
	if t.sumSq <= varianceEpsilon {
		return 0
	}
	n := float64(t.width * t.height)
	best := math.Inf(-1)

	for y := 0; y+t.height <= img.height; y++ {
		for x := 0; x+t.width <= img.width; x++ {
			sum, sumSq := img.window(x, y, t.width, t.height)
			windowVar := sumSq - sum*sum/n
			score := 0.0
			if windowVar > varianceEpsilon {
				// The template deviations sum to zero, so correlating them
				// with raw pixels equals correlating with deviations.
				num := 0.0
				for ty := 0; ty < t.height; ty++ {
					row := img.pix[(y+ty)*img.width+x : (y+ty)*img.width+x+t.width]
					dev := t.dev[ty*t.width : (ty+1)*t.width]
					for tx, v := range row {
						num += dev[tx] * v
					}
				}
				score = num / math.Sqrt(t.sumSq*windowVar)
			}
			if score > best {
				best = score
			}
		}
	}
	if math.IsInf(best, -1) {
		return 0
	}
	return math.Max(-1, math.Min(1, best))
}

// integralImage holds grayscale pixels alongside summed-area tables of the
// values and their squares, each padded with a leading zero row and column.
type integralImage struct {
	width  int
	height int
	pix    []float64
	sum    []float64
	sumSq  []float64
}

func newIntegralImage(img *image.Gray) *integralImage {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	ii := &integralImage{
		width:  w,
		height: h,
		pix:    grayFloats(img),
		sum:    make([]float64, (w+1)*(h+1)),
		sumSq:  make([]float64, (w+1)*(h+1)),
	}
	stride := w + 1
	for y := 0; y < h; y++ {
		rowSum, rowSq := 0.0, 0.0
		for x := 0; x < w; x++ {
			v := ii.pix[y*w+x]
			rowSum += v
			rowSq += v * v
			ii.sum[(y+1)*stride+x+1] = ii.sum[y*stride+x+1] + rowSum
			ii.sumSq[(y+1)*stride+x+1] = ii.sumSq[y*stride+x+1] + rowSq
		}
	}
	return ii
}

// window returns the sum and sum of squares of the w×h block at (x, y).
func (ii *integralImage) window(x, y, w, h int) (float64, float64) {
	stride := ii.width + 1
	a, b := y*stride+x, y*stride+x+w
	c, d := (y+h)*stride+x, (y+h)*stride+x+w
	return ii.sum[d] - ii.sum[b] - ii.sum[c] + ii.sum[a],
		ii.sumSq[d] - ii.sumSq[b] - ii.sumSq[c] + ii.sumSq[a]
}

// grayFloats copies a grayscale image's pixels into a dense row-major slice.
func grayFloats(img *image.Gray) []float64 {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := make([]float64, w*h)
	for y := 0; y < h; y++ {
		off := img.PixOffset(b.Min.X, b.Min.Y+y)
		for x, v := range img.Pix[off : off+w] {
			out[y*w+x] = float64(v)
		}
	}
	return out
}
