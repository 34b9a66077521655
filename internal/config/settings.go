// Package config holds the user settings read through viper, the
// environment read through env, and the persisted speaker selection.
package config

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Settings are the effective settings after flags, env and file.
type Settings struct {
	Model         string          `mapstructure:"model" yaml:"model"`
	Voice         int             `mapstructure:"voice" yaml:"voice"`
	Speaker       SpeakerSettings `mapstructure:"speaker" yaml:"speaker"`
	StripMarkdown bool            `mapstructure:"strip_markdown" yaml:"strip_markdown"`
	Espeak        EspeakSettings  `mapstructure:"espeak" yaml:"espeak"`
	Piper         PiperSettings   `mapstructure:"piper" yaml:"piper"`
	RenderTimeout time.Duration   `mapstructure:"render_timeout" yaml:"-"`
	CacheSize     string          `mapstructure:"cache_size" yaml:"cache_size"`
	Debug         bool            `mapstructure:"debug" yaml:"debug"`
}

// SpeakerSettings pin the output device. An index is only used together
// with a name.
type SpeakerSettings struct {
	Index int    `mapstructure:"index" yaml:"index"`
	Name  string `mapstructure:"name" yaml:"name"`
	// File is the directory holding config_speaker.json.
	File string `mapstructure:"file" yaml:"file"`
}

// EspeakSettings configure the espeak-ng backend.
type EspeakSettings struct {
	Binary string `mapstructure:"binary" yaml:"binary"`
}

// PiperSettings configure the piper backend.
type PiperSettings struct {
	Binary    string   `mapstructure:"binary" yaml:"binary"`
	ModelDirs []string `mapstructure:"model_dirs" yaml:"model_dirs"`
	Speed     float64  `mapstructure:"speed" yaml:"speed"`
}

// Speed bounds accepted by the piper backend.
const (
	MinPiperSpeed = 0.5
	MaxPiperSpeed = 2.0
)

var (
	// ErrInvalidSetting is wrapped by every Validate failure.
	ErrInvalidSetting = errors.New("invalid setting")
)

// SetDefaults registers the default of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("model", "1")
	v.SetDefault("voice", -1)
	v.SetDefault("speaker.index", -1)
	v.SetDefault("speaker.name", "")
	v.SetDefault("speaker.file", "")
	v.SetDefault("strip_markdown", false)
	v.SetDefault("espeak.binary", "")
	v.SetDefault("piper.binary", "")
	v.SetDefault("piper.model_dirs", []string{})
	v.SetDefault("piper.speed", 1.0)
	v.SetDefault("render_timeout", time.Duration(0))
	v.SetDefault("cache_size", "0")
	v.SetDefault("debug", false)
}

// Load decodes and validates the settings held by v.
func Load(v *viper.Viper) (Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("unable to decode settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	s.expandPaths()
	return s, nil
}

// Validate checks value ranges.
func (s Settings) Validate() error {
	if s.Voice < -1 {
		return fmt.Errorf("%w: voice must be -1 or a voice index, got %d", ErrInvalidSetting, s.Voice)
	}
	if s.Speaker.Index < -1 {
		return fmt.Errorf("%w: speaker.index must be -1 or a device index, got %d", ErrInvalidSetting, s.Speaker.Index)
	}
	if s.Piper.Speed < MinPiperSpeed || s.Piper.Speed > MaxPiperSpeed {
		return fmt.Errorf("%w: piper.speed must be between %.1f and %.1f, got %.2f",
			ErrInvalidSetting, MinPiperSpeed, MaxPiperSpeed, s.Piper.Speed)
	}
	if _, err := s.CacheBytes(); err != nil {
		return fmt.Errorf("%w: cache_size: %v", ErrInvalidSetting, err)
	}
	if s.RenderTimeout < 0 {
		return fmt.Errorf("%w: render_timeout must not be negative, got %s", ErrInvalidSetting, s.RenderTimeout)
	}
	return nil
}

// MarshalYAML writes render_timeout in duration notation.
func (s Settings) MarshalYAML() (interface{}, error) {
	type plain Settings
	return struct {
		plain `yaml:",inline"`

		RenderTimeout string `yaml:"render_timeout"`
	}{plain(s), s.RenderTimeout.String()}, nil
}

// CacheBytes parses cache_size, such as "16MB". Empty means zero.
func (s Settings) CacheBytes() (int64, error) {
	if s.CacheSize == "" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(s.CacheSize)
	if err != nil {
		return 0, err //nolint:wrapcheck
	}
	if n > math.MaxInt64 {
		return 0, fmt.Errorf("%s is too large", s.CacheSize)
	}
	return int64(n), nil
}

// ExplicitSpeaker reports whether the settings pin a speaker.
func (s Settings) ExplicitSpeaker() bool {
	return s.Speaker.Name != "" && s.Speaker.Index >= 0
}

// expandPaths resolves a leading ~ in path settings.
func (s *Settings) expandPaths() {
	s.Speaker.File = expand(s.Speaker.File)
	s.Espeak.Binary = expand(s.Espeak.Binary)
	s.Piper.Binary = expand(s.Piper.Binary)
	for i, dir := range s.Piper.ModelDirs {
		s.Piper.ModelDirs[i] = expand(dir)
	}
}

func expand(path string) string {
	if path == "" {
		return path
	}
	if p, err := homedir.Expand(path); err == nil {
		return p
	}
	return path
}
