package engines

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mitchellh/go-homedir"
)

const (
	// DefaultSpeed is the normal speaking speed.
	DefaultSpeed = 1.0
	// MinSpeed is the minimum speaking speed.
	MinSpeed = 0.5
	// MaxSpeed is the maximum speaking speed.
	MaxSpeed = 2.0
)

// DefaultPiperModelDirs are searched for .onnx voice models.
var DefaultPiperModelDirs = []string{
	"~/.local/share/piper-voices",
	"/usr/share/piper-voices",
	"/usr/local/share/piper-voices",
	"~/.config/piper/voices",
	"/opt/piper/voices",
}

// PiperError represents Piper-specific errors.
type PiperError struct {
	Type    string
	Message string
	Cause   error
}

func (e *PiperError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("piper %s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("piper %s: %s", e.Type, e.Message)
}

func (e *PiperError) Unwrap() error {
	return e.Cause
}

// PiperConfig holds configuration for the Piper backend.
type PiperConfig struct {
	// Binary overrides the executable lookup.
	Binary string
	// ModelDirs are searched for voice models; DefaultPiperModelDirs when
	// empty.
	ModelDirs []string
	// Speed multiplier, 1.0 is normal.
	Speed float64
	// Timeout bounds each subprocess run; zero disables it.
	Timeout time.Duration
}

// PiperBackend renders speech with Piper. Each voice is an ONNX model.
type PiperBackend struct {
	binary    string
	modelDirs []string
	speed     float64
	proc      *SubprocessManager

	mu     sync.RWMutex
	model  string
	voices []Voice
}

var (
	piperNames     = []string{"piper"}
	piperFallbacks = []string{"/usr/local/bin/piper", "/usr/bin/piper", "/opt/piper/piper", "~/.local/bin/piper", "~/bin/piper"}
)

// NewPiperBackend locates the piper binary and returns a backend.
func NewPiperBackend(config PiperConfig) (*PiperBackend, error) {
	binary, err := findBinary(config.Binary, piperNames, piperFallbacks)
	if err != nil {
		return nil, &PiperError{
			Type:    "dependency",
			Message: "piper binary not found. Please install piper TTS: https://github.com/rhasspy/piper",
			Cause:   err,
		}
	}

	speed := config.Speed
	if speed == 0 {
		speed = DefaultSpeed
	}
	if speed < MinSpeed || speed > MaxSpeed {
		return nil, &PiperError{
			Type:    "config",
			Message: fmt.Sprintf("speed must be between %.1f and %.1f, got %.2f", MinSpeed, MaxSpeed, speed),
		}
	}

	dirs := config.ModelDirs
	if len(dirs) == 0 {
		dirs = DefaultPiperModelDirs
	}

	return &PiperBackend{
		binary:    binary,
		modelDirs: dirs,
		speed:     speed,
		proc:      NewSubprocessManager(config.Timeout),
	}, nil
}

// Name returns the backend name.
func (e *PiperBackend) Name() string {
	return "piper"
}

// Voices lists the ONNX models found in the model directories.
func (e *PiperBackend) Voices(_ context.Context) ([]Voice, error) {
	e.mu.RLock()
	if e.voices != nil {
		defer e.mu.RUnlock()
		return append([]Voice(nil), e.voices...), nil
	}
	e.mu.RUnlock()

	voices := findPiperModels(e.modelDirs)
	if len(voices) == 0 {
		return nil, &PiperError{
			Type: "model",
			Message: `No ONNX voice models found. Please download a model from:
https://github.com/rhasspy/piper/releases
and place it in ~/.local/share/piper-voices/`,
		}
	}

	e.mu.Lock()
	e.voices = voices
	e.mu.Unlock()

	return append([]Voice(nil), voices...), nil
}

// findPiperModels walks dirs for .onnx files, sorted by name.
func findPiperModels(dirs []string) []Voice {
	seen := make(map[string]bool)
	var voices []Voice

	for _, dir := range dirs {
		expanded, err := homedir.Expand(dir)
		if err != nil {
			continue
		}
		if _, err := os.Stat(expanded); err != nil {
			continue
		}

		_ = filepath.WalkDir(expanded, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil // keep walking
			}
			if d.IsDir() || !strings.HasSuffix(path, ".onnx") || seen[path] {
				return nil
			}
			seen[path] = true

			name := strings.TrimSuffix(filepath.Base(path), ".onnx")
			voices = append(voices, Voice{
				ID:       path,
				Name:     name,
				Language: piperLanguage(name),
			})
			return nil
		})
	}

	sort.Slice(voices, func(i, j int) bool {
		return voices[i].Name < voices[j].Name
	})
	return voices
}

// piperLanguage extracts the locale from names like "en_US-lessac-medium".
func piperLanguage(name string) string {
	if i := strings.IndexByte(name, '-'); i > 0 {
		return name[:i]
	}
	return ""
}

// SetVoice selects the model used by later renders. Any readable .onnx file
// is accepted, even outside the model directories.
func (e *PiperBackend) SetVoice(id string) error {
	path, err := homedir.Expand(id)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrVoiceNotFound, id)
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrVoiceNotFound, id, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.model = path
	return nil
}

// Voice returns the active model path.
func (e *PiperBackend) Voice() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.model
}

// Render synthesizes text into a WAV file at path.
func (e *PiperBackend) Render(ctx context.Context, text, path string) error {
	model := e.Voice()
	if model == "" {
		voices, err := e.Voices(ctx)
		if err != nil {
			return err
		}
		model = voices[0].ID
	}

	args := []string{"--model", model, "--output_file", path}

	// length scale is the inverse of speed
	if e.speed != DefaultSpeed {
		args = append(args, "--length_scale", strconv.FormatFloat(1.0/e.speed, 'f', 2, 64))
	}

	if _, err := e.proc.ExecuteWithStdin(ctx, text, e.binary, args...); err != nil {
		return &PiperError{Type: "synthesis", Message: "render failed", Cause: err}
	}
	return nil
}
