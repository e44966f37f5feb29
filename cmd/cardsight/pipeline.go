package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/ironsheep/cardsight/internal/calibration"
	"github.com/ironsheep/cardsight/internal/capture"
	"github.com/ironsheep/cardsight/internal/debugsink"
	"github.com/ironsheep/cardsight/internal/imaging"
	"github.com/ironsheep/cardsight/internal/recognition"
)

// pipeline holds everything resolved once at startup.
type pipeline struct {
	settings   calibration.Settings
	profile    calibration.Profile
	cache      *imaging.ImageCache
	source     capture.Source
	recognizer *recognition.Recognizer

	// archive is also served by the debug_crops tool.
	archive *debugsink.Archive

	closers []func()
}

func setup() (*pipeline, error) {
	settings, err := calibration.SettingsFromEnv()
	if err != nil {
		return nil, err
	}

	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	level, err := log.ParseLevel(settings.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", calibration.EnvLogLevel, err)
	}
	log.SetLevel(level)

	profile, err := settings.Profile()
	if err != nil {
		return nil, err
	}

	p := &pipeline{
		settings: settings,
		profile:  profile,
		cache:    imaging.NewImageCache(),
		source:   capture.Screen{},
	}

	recognizer, err := profile.NewRecognizer(p.cache)
	if err != nil {
		return nil, err
	}

	sink, err := p.debugSink()
	if err != nil {
		p.Close()
		return nil, err
	}
	if sink != nil {
		recognizer = recognizer.WithDebugSink(sink)
	}
	p.recognizer = recognizer

	log.WithFields(log.Fields{
		"profile":   profile.Name,
		"templates": profile.Templates.Dir,
		"debug_dir": settings.DebugDir,
		"debug_db":  settings.DebugDB,
	}).Info("pipeline ready")
	return p, nil
}

// debugSink builds the configured crop sinks behind a single asynchronous
// queue, or returns nil when none are configured.
func (p *pipeline) debugSink() (recognition.DebugSink, error) {
	var sinks debugsink.Multi

	if p.settings.DebugDir != "" {
		dir, err := debugsink.NewDir(p.settings.DebugDir)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, dir)
	}
	if p.settings.DebugDB != "" {
		archive, err := debugsink.NewArchive(p.settings.DebugDB)
		if err != nil {
			return nil, err
		}
		p.closers = append(p.closers, func() {
			if err := archive.Close(); err != nil {
				log.WithError(err).Warn("failed to close debug archive")
			}
		})
		p.archive = archive
		sinks = append(sinks, archive)
	}
	if len(sinks) == 0 {
		return nil, nil
	}

	async := debugsink.NewAsync(sinks, debugsink.DefaultQueueSize)
	// The queue must drain before the archive closes.
	p.closers = append([]func(){func() {
		async.Close()
		if dropped, failed := async.Dropped(), async.Failed(); dropped > 0 || failed > 0 {
			log.WithFields(log.Fields{"dropped": dropped, "failed": failed}).Warn("debug crops lost")
		}
	}}, p.closers...)
	return async, nil
}

// session returns a session on the live screen, or on screenshot when set.
func (p *pipeline) session(screenshot string) (*recognition.Session, error) {
	var src capture.Source = p.source
	if screenshot != "" {
		src = capture.FileSource{Path: screenshot}
	}
	return p.profile.NewSession(src, p.recognizer)
}

// Close flushes and releases the debug sinks. It is safe to call twice.
func (p *pipeline) Close() {
	closers := p.closers
	p.closers = nil
	for _, c := range closers {
		c()
	}
}
