package engines

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// EspeakConfig configures the espeak-ng backend.
type EspeakConfig struct {
	// Binary overrides the executable lookup.
	Binary string
	// Timeout bounds each subprocess run; zero disables it.
	Timeout time.Duration
}

// EspeakBackend renders speech with the espeak-ng command line tool.
type EspeakBackend struct {
	binary string
	proc   *SubprocessManager

	mu     sync.RWMutex
	voice  string
	voices []Voice
}

var (
	espeakNames     = []string{"espeak-ng", "espeak"}
	espeakFallbacks = []string{"/usr/bin/espeak-ng", "/usr/local/bin/espeak-ng", "/opt/homebrew/bin/espeak-ng"}
)

// NewEspeakBackend locates espeak-ng (or espeak) and returns a backend.
func NewEspeakBackend(config EspeakConfig) (*EspeakBackend, error) {
	binary, err := findBinary(config.Binary, espeakNames, espeakFallbacks)
	if err != nil {
		return nil, err
	}

	return &EspeakBackend{
		binary: binary,
		proc:   NewSubprocessManager(config.Timeout),
	}, nil
}

// Name returns the backend name.
func (e *EspeakBackend) Name() string {
	return "espeak"
}

// Voices lists the installed voices. The listing is read once.
func (e *EspeakBackend) Voices(ctx context.Context) ([]Voice, error) {
	e.mu.RLock()
	if e.voices != nil {
		defer e.mu.RUnlock()
		return append([]Voice(nil), e.voices...), nil
	}
	e.mu.RUnlock()

	out, err := e.proc.Execute(ctx, e.binary, "--voices")
	if err != nil {
		return nil, fmt.Errorf("list espeak voices: %w", err)
	}

	voices := parseEspeakVoices(out)

	e.mu.Lock()
	e.voices = voices
	e.mu.Unlock()

	return append([]Voice(nil), voices...), nil
}

// parseEspeakVoices parses the table printed by `espeak-ng --voices`:
//
//	Pty Language       Age/Gender VoiceName          File                 Other Languages
//	 5  af              --/M      Afrikaans          gmw/af
func parseEspeakVoices(out []byte) []Voice {
	voices := []Voice{}

	scanner := bufio.NewScanner(bytes.NewReader(out))
	header := true
	for scanner.Scan() {
		line := scanner.Text()
		if header {
			header = false
			if strings.HasPrefix(strings.TrimSpace(line), "Pty") {
				continue
			}
		}

		fields := strings.Fields(line)
		if len(fields) < 5 {
			continue
		}

		voices = append(voices, Voice{
			ID:       fields[4],
			Name:     strings.ReplaceAll(fields[3], "_", " "),
			Language: fields[1],
		})
	}
	return voices
}

// SetVoice selects the voice used by later renders.
func (e *EspeakBackend) SetVoice(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.voices != nil && !containsVoice(e.voices, id) {
		return fmt.Errorf("%w: %s", ErrVoiceNotFound, id)
	}
	e.voice = id
	return nil
}

// Voice returns the active voice id.
func (e *EspeakBackend) Voice() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.voice
}

// Render synthesizes text into a WAV file at path.
func (e *EspeakBackend) Render(ctx context.Context, text, path string) error {
	args := []string{"-w", path, "--stdin"}
	if voice := e.Voice(); voice != "" {
		args = append([]string{"-v", voice}, args...)
	}

	if _, err := e.proc.ExecuteWithStdin(ctx, text, e.binary, args...); err != nil {
		return fmt.Errorf("espeak render: %w", err)
	}
	return nil
}

func containsVoice(voices []Voice, id string) bool {
	for _, v := range voices {
		if v.ID == id {
			return true
		}
	}
	return false
}
