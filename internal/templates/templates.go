// Package templates holds the read-only set of reference rank images.
//
// A Repository is built once at startup and shared by every recognition call.
// It is never mutated after construction, so concurrent readers need no
// locking.
package templates

import (
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/ironsheep/cardsight/internal/imaging"
)

// ErrTemplateMissing is returned when a configured rank template cannot be
// loaded, or when a rank has no configured template at all.
var ErrTemplateMissing = errors.New("template missing")

// Ranks lists every rank label in enumeration order. Classifiers walk
// templates in this order, so it is also the tie-break order.
var Ranks = []string{"A", "K", "Q", "J", "10", "9", "8", "7", "6", "5", "4", "3", "2"}

// rankFiles maps rank labels to the numeric file stems used by template packs.
var rankFiles = map[string]string{
	"A": "14", "K": "13", "Q": "12", "J": "11",
	"10": "10", "9": "9", "8": "8", "7": "7", "6": "6",
	"5": "5", "4": "4", "3": "3", "2": "2",
}

// NormalizeRank upper-cases a rank label and reports whether it is valid.
func NormalizeRank(label string) (string, bool) {
	l := strings.ToUpper(strings.TrimSpace(label))
	_, ok := rankFiles[l]
	return l, ok
}

// DefaultPaths returns the conventional template layout under dir:
// A=14.png, K=13.png, Q=12.png, J=11.png, then 10.png down to 2.png.
func DefaultPaths(dir string) map[string]string {
	paths := make(map[string]string, len(rankFiles))
	for label, stem := range rankFiles {
		paths[label] = filepath.Join(dir, stem+".png")
	}
	return paths
}

// Template is one reference rank image.
type Template struct {
	Label string
	Image *image.Gray
}

// Repository is an immutable, label-keyed set of rank templates.
type Repository struct {
	templates []Template
	byLabel   map[string]int
}

// New builds a repository from in-memory templates. Labels are normalized;
// invalid or duplicate labels and empty images are rejected. Templates are
// stored in rank enumeration order regardless of input order.
func New(templates []Template) (*Repository, error) {
	byInput := make(map[string]*image.Gray, len(templates))
	for _, t := range templates {
		label, ok := NormalizeRank(t.Label)
		if !ok {
			return nil, fmt.Errorf("invalid rank label %q", t.Label)
		}
		if _, dup := byInput[label]; dup {
			return nil, fmt.Errorf("duplicate template for rank %s", label)
		}
		if t.Image == nil || t.Image.Bounds().Empty() {
			return nil, fmt.Errorf("%w: rank %s has an empty image", ErrTemplateMissing, label)
		}
		byInput[label] = t.Image
	}

	repo := &Repository{byLabel: make(map[string]int, len(byInput))}
	for _, label := range Ranks {
		img, ok := byInput[label]
		if !ok {
			continue
		}
		repo.byLabel[label] = len(repo.templates)
		repo.templates = append(repo.templates, Template{Label: label, Image: img})
	}
	return repo, nil
}

// Load reads one grayscale template per rank from paths (label → file).
//
// Every rank in Ranks must be configured and every file must decode; the
// first failure is returned wrapping ErrTemplateMissing. Load is meant to
// run once at startup and its failure is fatal.
func Load(cache *imaging.ImageCache, paths map[string]string) (*Repository, error) {
	normalized := make(map[string]string, len(paths))
	for label, path := range paths {
		l, ok := NormalizeRank(label)
		if !ok {
			return nil, fmt.Errorf("invalid rank label %q", label)
		}
		normalized[l] = path
	}

	templates := make([]Template, 0, len(Ranks))
	for _, label := range Ranks {
		path, ok := normalized[label]
		if !ok {
			return nil, fmt.Errorf("%w: rank %s is not configured", ErrTemplateMissing, label)
		}
		img, err := cache.Load(path)
		if err != nil {
			return nil, fmt.Errorf("%w: rank %s (%s): %v", ErrTemplateMissing, label, path, err)
		}
		templates = append(templates, Template{Label: label, Image: imaging.Grayscale(img)})
	}

	repo, err := New(templates)
	if err != nil {
		return nil, err
	}
	log.WithField("count", repo.Len()).Debug("rank templates loaded")
	return repo, nil
}

// Get returns the reference image for label.
func (r *Repository) Get(label string) (*image.Gray, bool) {
	l, _ := NormalizeRank(label)
	i, ok := r.byLabel[l]
	if !ok {
		return nil, false
	}
	return r.templates[i].Image, true
}

// Templates returns the templates in enumeration order. The slice is a copy;
// the images are shared and must be treated as read-only.
func (r *Repository) Templates() []Template {
	out := make([]Template, len(r.templates))
	copy(out, r.templates)
	return out
}

// Labels returns the configured rank labels in enumeration order.
func (r *Repository) Labels() []string {
	labels := make([]string, len(r.templates))
	for i, t := range r.templates {
		labels[i] = t.Label
	}
	return labels
}

// Len returns the number of templates.
func (r *Repository) Len() int {
	return len(r.templates)
}
