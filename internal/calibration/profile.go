// Package calibration holds the static table geometry and color calibration
// that the recognition pipeline is built from.
//
// A Profile is keyed by table skin and resolution. Profiles come from the
// built-in set or from a JSON file, are validated once at startup and are
// never mutated afterwards.
package calibration

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/ironsheep/cardsight/internal/capture"
	"github.com/ironsheep/cardsight/internal/imaging"
	"github.com/ironsheep/cardsight/internal/recognition"
	"github.com/ironsheep/cardsight/internal/templates"
)

var (
	// ErrUnknownProfile is returned when a profile name is not registered.
	ErrUnknownProfile = errors.New("unknown calibration profile")

	// ErrInvalidProfile is returned when a profile fails validation.
	ErrInvalidProfile = errors.New("invalid calibration profile")
)

// DefaultProfileName is the profile used when none is configured.
const DefaultProfileName = "default-1920x1080"

// DefaultTemplateDir is where template packs live unless configured.
const DefaultTemplateDir = "templates"

// TemplateConfig locates the rank template images.
type TemplateConfig struct {
	Dir string `json:"dir"`

	// Files overrides individual ranks; relative paths resolve against Dir.
	Files map[string]string `json:"files,omitempty"`
}

// Paths returns the label to file mapping for every rank.
func (t TemplateConfig) Paths() map[string]string {
	dir := t.Dir
	if dir == "" {
		dir = DefaultTemplateDir
	}
	paths := templates.DefaultPaths(dir)
	for label, file := range t.Files {
		if l, ok := templates.NormalizeRank(label); ok {
			label = l
		}
		if !filepath.IsAbs(file) {
			file = filepath.Join(dir, file)
		}
		paths[label] = file
	}
	return paths
}

// Profile is one complete table calibration.
type Profile struct {
	Name        string                      `json:"name"`
	Description string                      `json:"description,omitempty"`
	Hole        recognition.HoleLayout      `json:"hole"`
	Community   recognition.CommunityLayout `json:"community"`
	Suits       []recognition.SuitProfile   `json:"suits,omitempty"`
	SuitWindow  *imaging.RelativeRect       `json:"suit_window,omitempty"`
	BlurRadius  *float64                    `json:"blur_radius,omitempty"`
	Templates   TemplateConfig              `json:"templates"`
	Policy      recognition.Policy          `json:"policy"`
}

// Validate checks every field. All failures wrap ErrInvalidProfile.
func (p Profile) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProfile)
	}
	if err := p.Hole.Validate(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidProfile, p.Name, err)
	}
	if err := p.Community.Validate(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidProfile, p.Name, err)
	}
	if _, err := recognition.NewSuitClassifier(p.suitConfig()); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidProfile, p.Name, err)
	}
	if err := p.Policy.Validate(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidProfile, p.Name, err)
	}
	for label := range p.Templates.Files {
		if _, ok := templates.NormalizeRank(label); !ok {
			return fmt.Errorf("%w: %s: template for unknown rank %q", ErrInvalidProfile, p.Name, label)
		}
	}
	return nil
}

func (p Profile) suitConfig() recognition.SuitConfig {
	return recognition.SuitConfig{
		Profiles:   p.Suits,
		Window:     p.SuitWindow,
		BlurRadius: p.BlurRadius,
	}
}

// WithTemplateDir returns a copy of the profile that loads templates from dir.
func (p Profile) WithTemplateDir(dir string) Profile {
	p.Templates.Dir = dir
	return p
}

// NewRecognizer loads the profile's templates through cache and builds the
// classifiers. A missing template is fatal and wraps
// templates.ErrTemplateMissing.
func (p Profile) NewRecognizer(cache *imaging.ImageCache) (*recognition.Recognizer, error) {
	repo, err := templates.Load(cache, p.Templates.Paths())
	if err != nil {
		return nil, err
	}
	suit, err := recognition.NewSuitClassifier(p.suitConfig())
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidProfile, p.Name, err)
	}
	return recognition.NewRecognizer(recognition.NewRankClassifier(repo), suit, p.Policy)
}

// NewSession binds the profile's layouts to a pixel source.
func (p Profile) NewSession(src capture.Source, recognizer *recognition.Recognizer) (*recognition.Session, error) {
	return recognition.NewSession(src, recognizer, p.Hole, p.Community)
}

// Registry is a name-keyed set of validated profiles.
type Registry struct {
	profiles map[string]Profile
}

// NewRegistry validates and registers profiles. A later profile replaces an
// earlier one with the same name.
func NewRegistry(profiles ...Profile) (*Registry, error) {
	r := &Registry{profiles: make(map[string]Profile, len(profiles))}
	for _, p := range profiles {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		r.profiles[p.Name] = p
	}
	return r, nil
}

// Get returns the named profile.
func (r *Registry) Get(name string) (Profile, error) {
	p, ok := r.profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q (available: %v)", ErrUnknownProfile, name, r.Names())
	}
	return p, nil
}

// Names returns the registered profile names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.profiles))
	for n := range r.profiles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// profileFile is the on-disk format: a list of profiles.
type profileFile struct {
	Profiles []Profile `json:"profiles"`
}

// LoadFile reads profiles from a JSON file of the form {"profiles": [...]}.
func LoadFile(path string) ([]Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read calibration file: %w", err)
	}
	var f profileFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %v", ErrInvalidProfile, path, err)
	}
	if len(f.Profiles) == 0 {
		return nil, fmt.Errorf("%w: %s defines no profiles", ErrInvalidProfile, path)
	}
	return f.Profiles, nil
}
