package tts

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/operavondervollmer/speaks/internal/audio"
	"github.com/operavondervollmer/speaks/internal/tts/engines"
)

// fakeConsole scripts user input and records every printed line.
type fakeConsole struct {
	mu      sync.Mutex
	inputs  []string
	lines   []string
	prompts []string
}

func newFakeConsole(inputs ...string) *fakeConsole {
	return &fakeConsole{inputs: inputs}
}

func (c *fakeConsole) PrintFrom(origin, message string, _ ...int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = append(c.lines, "["+origin+"] "+message)
}

func (c *fakeConsole) InputFrom(origin, prompt string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prompts = append(c.prompts, prompt)
	if len(c.inputs) == 0 {
		return "", io.EOF
	}
	in := c.inputs[0]
	c.inputs = c.inputs[1:]
	return in, nil
}

func (c *fakeConsole) count(substr string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, l := range c.lines {
		if strings.Contains(l, substr) {
			n++
		}
	}
	return n
}

// spokenLog collects utterance texts in playback order.
type spokenLog struct {
	mu    sync.Mutex
	texts []string
}

func (s *spokenLog) record(u Utterance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.texts = append(s.texts, u.Text)
}

func (s *spokenLog) get() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.texts...)
}

type testRig struct {
	speech  *Speech
	backend *engines.MockBackend
	sink    *audio.MockSink
	spoken  *spokenLog
	console *fakeConsole
	tempDir string
}

func newTestRig(t *testing.T, configure func(*Options)) *testRig {
	t.Helper()

	rig := &testRig{
		backend: engines.NewMockBackend(),
		sink:    audio.NewMockSink(),
		spoken:  &spokenLog{},
		tempDir: t.TempDir(),
	}

	opts := Options{
		Logger:   log.New(io.Discard),
		Sink:     rig.sink,
		TempDir:  rig.tempDir,
		OnSpoken: rig.spoken.record,
		Voice:    VoiceSelection{VoiceIndex: -1, SpeakerIndex: 4},
	}
	if configure != nil {
		configure(&opts)
	}
	if fc, ok := opts.Console.(*fakeConsole); ok {
		rig.console = fc
	}

	s, err := NewSpeech(context.Background(), rig.backend, opts)
	if err != nil {
		t.Fatalf("NewSpeech failed: %v", err)
	}
	rig.speech = s
	t.Cleanup(s.Stop)
	return rig
}

func (r *testRig) wait(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.speech.Wait(ctx); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
}

func assertTempDirEmpty(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected transient files to be removed, found %d", len(entries))
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
