package calibration

import (
	"fmt"
	"os"
	"strconv"

	"github.com/ironsheep/cardsight/internal/equity"
)

// Environment variables read by ParseSettings.
const (
	EnvConfig     = "CARDSIGHT_CONFIG"
	EnvProfile    = "CARDSIGHT_PROFILE"
	EnvTemplates  = "CARDSIGHT_TEMPLATES"
	EnvDebugDir   = "CARDSIGHT_DEBUG_DIR"
	EnvDebugDB    = "CARDSIGHT_DEBUG_DB"
	EnvLogLevel   = "CARDSIGHT_LOG_LEVEL"
	EnvOpponents  = "CARDSIGHT_OPPONENTS"
	EnvIterations = "CARDSIGHT_ITERATIONS"
	EnvSeed       = "CARDSIGHT_SEED"
)

// DefaultSeed seeds simulations when CARDSIGHT_SEED is unset.
const DefaultSeed = 420

// Settings is the process configuration resolved at startup.
type Settings struct {
	ConfigPath  string
	ProfileName string
	TemplateDir string
	DebugDir    string
	DebugDB     string
	LogLevel    string
	Opponents   int
	Iterations  int
	Seed        uint64
}

// SettingsFromEnv reads Settings from the process environment.
func SettingsFromEnv() (Settings, error) {
	return ParseSettings(os.Getenv)
}

// ParseSettings reads Settings through getenv, filling defaults for unset
// variables.
func ParseSettings(getenv func(string) string) (Settings, error) {
	s := Settings{
		ConfigPath:  getenv(EnvConfig),
		ProfileName: getenv(EnvProfile),
		TemplateDir: getenv(EnvTemplates),
		DebugDir:    getenv(EnvDebugDir),
		DebugDB:     getenv(EnvDebugDB),
		LogLevel:    getenv(EnvLogLevel),
		Opponents:   equity.DefaultOpponents,
		Iterations:  equity.DefaultIterations,
		Seed:        DefaultSeed,
	}
	if s.ProfileName == "" {
		s.ProfileName = DefaultProfileName
	}
	if s.LogLevel == "" {
		s.LogLevel = "info"
	}

	var err error
	if v := getenv(EnvOpponents); v != "" {
		if s.Opponents, err = strconv.Atoi(v); err != nil || s.Opponents < 1 {
			return Settings{}, fmt.Errorf("%s=%q: must be a positive integer", EnvOpponents, v)
		}
	}
	if v := getenv(EnvIterations); v != "" {
		if s.Iterations, err = strconv.Atoi(v); err != nil || s.Iterations < 1 {
			return Settings{}, fmt.Errorf("%s=%q: must be a positive integer", EnvIterations, v)
		}
	}
	if v := getenv(EnvSeed); v != "" {
		if s.Seed, err = strconv.ParseUint(v, 10, 64); err != nil {
			return Settings{}, fmt.Errorf("%s=%q: must be an unsigned integer", EnvSeed, v)
		}
	}
	return s, nil
}

// Registry returns the built-in profiles plus any defined in ConfigPath.
// File profiles replace built-ins of the same name.
func (s Settings) Registry() (*Registry, error) {
	profiles := Builtin()
	if s.ConfigPath != "" {
		extra, err := LoadFile(s.ConfigPath)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, extra...)
	}
	return NewRegistry(profiles...)
}

// Profile resolves the active profile, applying the template directory
// override.
func (s Settings) Profile() (Profile, error) {
	reg, err := s.Registry()
	if err != nil {
		return Profile{}, err
	}
	p, err := reg.Get(s.ProfileName)
	if err != nil {
		return Profile{}, err
	}
	if s.TemplateDir != "" {
		p = p.WithTemplateDir(s.TemplateDir)
	}
	return p, nil
}
