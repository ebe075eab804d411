// Package conf defines the wavecraft settings structure and loads it from
// YAML configuration with viper.
package conf

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/wavecraft-audio/wavecraft/internal/errors"
)

// LogSettings controls an optional rotating log file.
type LogSettings struct {
	Enabled    bool   // true to write a log file
	Path       string // log file path
	MaxSizeMB  int    // rotate after this many megabytes
	MaxBackups int    // retained rotated files
	MaxAgeDays int    // retained age in days
}

// MainSettings contains application-wide settings.
type MainSettings struct {
	Name string      // application instance name
	Log  LogSettings // log file settings
}

// EngineSettings describes the session the processing core runs inside.
type EngineSettings struct {
	SampleRate    int // session frame rate in Hz
	MIDIChannels  int // MIDI-type channel slots
	AudioChannels int // audio-type channel slots
}

// MeteringSettings configures the level metering engine.
type MeteringSettings struct {
	FalloffDB float64 // meter falloff in dB per second, 0 disables falloff
}

// SceneSettings configures the scene automation scheduler.
type SceneSettings struct {
	InterSceneGapMs float64 // marker-matching tolerance in milliseconds
	MarkerPrefix    string  // name prefix for synthesized scene markers
}

// TelemetrySettings configures the optional prometheus endpoint.
type TelemetrySettings struct {
	Enabled bool   // true to expose metrics over HTTP
	Listen  string // listen address, e.g. "localhost:8090"
}

// Settings is the root configuration consumed across the application.
// Processing components receive the sub-structs they need by value rather
// than reading any global state.
type Settings struct {
	Debug     bool
	Main      MainSettings
	Engine    EngineSettings
	Metering  MeteringSettings
	Scene     SceneSettings
	Telemetry TelemetrySettings
}

// Load reads the configuration file (if any) on top of defaults and
// unmarshals it into a Settings struct.
func Load() (*Settings, error) {
	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	settings := &Settings{}
	if err := viper.Unmarshal(settings); err != nil {
		return nil, errors.New(err).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Build()
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}

	return settings, nil
}

// Validate rejects settings no component can operate with.
func (s *Settings) Validate() error {
	if s.Engine.SampleRate <= 0 {
		return errors.Newf("sample rate must be positive, got %d", s.Engine.SampleRate).
			Component("conf").
			Category(errors.CategoryValidation).
			Build()
	}
	if s.Engine.MIDIChannels < 0 || s.Engine.AudioChannels < 0 {
		return errors.Newf("channel counts must be non-negative").
			Component("conf").
			Category(errors.CategoryValidation).
			Context("midi", s.Engine.MIDIChannels).
			Context("audio", s.Engine.AudioChannels).
			Build()
	}
	if s.Metering.FalloffDB < 0 {
		return errors.Newf("meter falloff must be non-negative, got %g", s.Metering.FalloffDB).
			Component("conf").
			Category(errors.CategoryValidation).
			Build()
	}
	if s.Scene.InterSceneGapMs < 0 {
		return errors.Newf("inter-scene gap must be non-negative, got %g", s.Scene.InterSceneGapMs).
			Component("conf").
			Category(errors.CategoryValidation).
			Build()
	}
	return nil
}

// initViper sets defaults, then reads an optional config.yaml from the
// working directory or ~/.config/wavecraft.
func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.config/wavecraft")

	setDefaultConfig()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// no config file, defaults apply
	}

	return nil
}
