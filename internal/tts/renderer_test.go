package tts

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/operavondervollmer/speaks/internal/tts/engines"
)

func newTestRenderer(t *testing.T, backend Backend, configure func(*Options)) (*Renderer, string) {
	t.Helper()
	dir := t.TempDir()
	opts := Options{Logger: log.New(io.Discard), TempDir: dir}
	if configure != nil {
		configure(&opts)
	}
	return NewRenderer(backend, opts), dir
}

func TestRenderer_Generate(t *testing.T) {
	backend := engines.NewMockBackend()
	r, dir := newTestRenderer(t, backend, nil)

	u, err := r.Generate(context.Background(), "hello world")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if u.ID == "" {
		t.Error("Expected utterance id")
	}
	if u.SampleRate != engines.MockSampleRate || u.Channels != 1 {
		t.Errorf("format = %d Hz %d ch", u.SampleRate, u.Channels)
	}
	if want := 11 * engines.MockSampleRate / 100; len(u.Samples) != want {
		t.Errorf("len(Samples) = %d, want %d", len(u.Samples), want)
	}
	if u.Duration() <= 0 {
		t.Error("Expected positive duration")
	}

	assertTempDirEmpty(t, dir)
}

func TestRenderer_NoContent(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"spaces", "   "},
		{"whitespace", "\n\t \r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := engines.NewMockBackend()
			r, _ := newTestRenderer(t, backend, nil)

			_, err := r.Generate(context.Background(), tt.text)
			if !errors.Is(err, ErrNoContent) {
				t.Errorf("Expected ErrNoContent, got %v", err)
			}
			if errors.Is(err, ErrGenerationFailed) {
				t.Error("No content should not count as a generation failure")
			}
			if len(backend.Renders()) != 0 {
				t.Error("Backend should not be called for empty text")
			}
		})
	}
}

func TestRenderer_NoContentAfterMarkdown(t *testing.T) {
	backend := engines.NewMockBackend()
	r, _ := newTestRenderer(t, backend, func(o *Options) { o.StripMarkdown = true })

	_, err := r.Generate(context.Background(), "```\ncode only\n```")
	if !errors.Is(err, ErrNoContent) {
		t.Errorf("Expected ErrNoContent, got %v", err)
	}
}

func TestRenderer_Failures(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name      string
		configure func(*engines.MockBackend)
		wantCause error
	}{
		{"backend error", func(m *engines.MockBackend) {
			m.FailWith = func(engines.RenderCall) error { return boom }
		}, boom},
		{"backend panic", func(m *engines.MockBackend) {
			m.PanicWith = func(engines.RenderCall) any { return "kaboom" }
		}, nil},
		{"empty output file", func(m *engines.MockBackend) {
			m.SkipWrite = true
		}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := engines.NewMockBackend()
			tt.configure(backend)
			r, dir := newTestRenderer(t, backend, nil)

			_, err := r.Generate(context.Background(), "some text")
			if !errors.Is(err, ErrGenerationFailed) {
				t.Fatalf("Expected ErrGenerationFailed, got %v", err)
			}
			if tt.wantCause != nil && !errors.Is(err, tt.wantCause) {
				t.Errorf("Expected cause %v in %v", tt.wantCause, err)
			}

			var terr *TTSError
			if !errors.As(err, &terr) {
				t.Errorf("Expected *TTSError, got %T", err)
			}

			assertTempDirEmpty(t, dir)
		})
	}
}

func TestRenderer_FailureIsReported(t *testing.T) {
	backend := engines.NewMockBackend()
	backend.FailWith = func(engines.RenderCall) error { return errors.New("boom") }

	c := newFakeConsole()
	r, _ := newTestRenderer(t, backend, func(o *Options) { o.Console = c })

	_, _ = r.Generate(context.Background(), "x")
	if c.count("FAILED: Unexpected error while generating audio") != 1 {
		t.Errorf("Expected failure line, got %v", c.lines)
	}
	if c.count("boom") != 1 {
		t.Errorf("Expected cause in failure line, got %v", c.lines)
	}
}

func TestRenderer_StripMarkdown(t *testing.T) {
	backend := engines.NewMockBackend()
	r, _ := newTestRenderer(t, backend, func(o *Options) { o.StripMarkdown = true })

	if _, err := r.Generate(context.Background(), "# Title\n\nSome **bold** [link](https://example.com)"); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	renders := backend.Renders()
	if len(renders) != 1 {
		t.Fatalf("Expected 1 render, got %d", len(renders))
	}
	if want := "Title. Some bold link"; renders[0].Text != want {
		t.Errorf("rendered text = %q, want %q", renders[0].Text, want)
	}
}

func TestRenderer_Timeout(t *testing.T) {
	backend := engines.NewMockBackend()
	backend.Delay = time.Second
	r, dir := newTestRenderer(t, backend, func(o *Options) { o.RenderTimeout = 20 * time.Millisecond })

	start := time.Now()
	_, err := r.Generate(context.Background(), "slow")
	if !errors.Is(err, ErrGenerationFailed) || !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected generation failure from deadline, got %v", err)
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Error("RenderTimeout was not applied")
	}
	assertTempDirEmpty(t, dir)
}

func TestRenderer_UsesActiveVoice(t *testing.T) {
	backend := engines.NewMockBackend()
	r, _ := newTestRenderer(t, backend, nil)

	if err := backend.SetVoice("mock/charlie"); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Generate(context.Background(), "hi"); err != nil {
		t.Fatal(err)
	}
	if v := backend.Renders()[0].Voice; v != "mock/charlie" {
		t.Errorf("rendered with %q, want mock/charlie", v)
	}
}

func TestRenderer_Cache(t *testing.T) {
	backend := engines.NewMockBackend()
	r, dir := newTestRenderer(t, backend, func(o *Options) { o.CacheSize = 1 << 20 })
	ctx := context.Background()

	first, err := r.Generate(ctx, "again")
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.Generate(ctx, "  again ")
	if err != nil {
		t.Fatal(err)
	}

	if n := len(backend.Renders()); n != 1 {
		t.Errorf("Expected one synthesis for repeated text, got %d", n)
	}
	if first.ID == second.ID {
		t.Error("A reused utterance needs its own id")
	}
	if len(second.Samples) != len(first.Samples) {
		t.Error("Reused audio differs")
	}

	// another voice renders again
	_ = backend.SetVoice("mock/charlie")
	if _, err := r.Generate(ctx, "again"); err != nil {
		t.Fatal(err)
	}
	if n := len(backend.Renders()); n != 2 {
		t.Errorf("Expected a new synthesis after a voice change, got %d", n)
	}
	assertTempDirEmpty(t, dir)
}

func TestRenderer_CacheSkipsFailures(t *testing.T) {
	backend := engines.NewMockBackend()
	fail := true
	backend.FailWith = func(engines.RenderCall) error {
		if fail {
			return errors.New("transient")
		}
		return nil
	}
	r, _ := newTestRenderer(t, backend, func(o *Options) { o.CacheSize = 1 << 20 })

	if _, err := r.Generate(context.Background(), "retry me"); err == nil {
		t.Fatal("Expected failure")
	}
	fail = false
	if _, err := r.Generate(context.Background(), "retry me"); err != nil {
		t.Errorf("A failed render should not be cached: %v", err)
	}
}
