package engines

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/operavondervollmer/speaks/internal/wav"
)

// MockSampleRate is the rate of the WAV files written by MockBackend.
const MockSampleRate = 22050

// RenderCall records one call to MockBackend.Render.
type RenderCall struct {
	Text  string
	Voice string
	Path  string
}

// MockBackend implements a synthesis backend for testing. It writes a
// short sine tone whose length grows with the text.
type MockBackend struct {
	mu      sync.Mutex
	voices  []Voice
	voice   string
	renders []RenderCall

	// Delay simulates synthesis time.
	Delay time.Duration

	// FailWith, when set, decides the error returned for a render.
	FailWith func(call RenderCall) error

	// PanicWith, when set, decides whether a render panics.
	PanicWith func(call RenderCall) any

	// SkipWrite leaves the output file empty, as a broken backend would.
	SkipWrite bool
}

// DefaultMockVoices are used when NewMockBackend gets no voices.
var DefaultMockVoices = []Voice{
	{ID: "mock/alpha", Name: "Alpha", Language: "en"},
	{ID: "mock/bravo", Name: "Bravo", Language: "en"},
	{ID: "mock/charlie", Name: "Charlie", Language: "de"},
}

// NewMockBackend creates a mock backend with the given voices.
func NewMockBackend(voices ...Voice) *MockBackend {
	if len(voices) == 0 {
		voices = DefaultMockVoices
	}
	return &MockBackend{voices: append([]Voice(nil), voices...)}
}

// Name returns the backend name.
func (m *MockBackend) Name() string {
	return "mock"
}

// Voices returns the configured voices.
func (m *MockBackend) Voices(_ context.Context) ([]Voice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Voice(nil), m.voices...), nil
}

// SetVoice selects a configured voice.
func (m *MockBackend) SetVoice(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !containsVoice(m.voices, id) {
		return fmt.Errorf("%w: %s", ErrVoiceNotFound, id)
	}
	m.voice = id
	return nil
}

// Voice returns the active voice id.
func (m *MockBackend) Voice() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.voice
}

// Render writes a tone for text to path.
func (m *MockBackend) Render(ctx context.Context, text, path string) error {
	call := RenderCall{Text: text, Voice: m.Voice(), Path: path}

	m.mu.Lock()
	m.renders = append(m.renders, call)
	m.mu.Unlock()

	if m.PanicWith != nil {
		if v := m.PanicWith(call); v != nil {
			panic(v)
		}
	}

	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if m.FailWith != nil {
		if err := m.FailWith(call); err != nil {
			return err
		}
	}

	if m.SkipWrite {
		return nil
	}
	return wav.EncodeFile(path, mockTone(len(text)), MockSampleRate, 1)
}

// mockTone returns 10 ms of 440 Hz per character.
func mockTone(chars int) []int16 {
	n := chars * MockSampleRate / 100
	samples := make([]int16, n)
	for i := range samples {
		samples[i] = int16(0.3 * math.MaxInt16 * math.Sin(2*math.Pi*440*float64(i)/MockSampleRate))
	}
	return samples
}

// Renders returns a copy of the recorded render calls.
func (m *MockBackend) Renders() []RenderCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]RenderCall(nil), m.renders...)
}
