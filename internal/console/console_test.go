package console

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func newTestConsole(in string) (*Console, *bytes.Buffer, *bytes.Buffer) {
	var out, logs bytes.Buffer
	logger := log.New(&logs)
	logger.SetLevel(log.DebugLevel)

	c := New(Options{
		In:      strings.NewReader(in),
		Out:     &out,
		Logger:  logger,
		NoColor: true,
	})
	return c, &out, &logs
}

func TestPrintFrom(t *testing.T) {
	tests := []struct {
		name      string
		severity  []int
		wantLevel string
	}{
		{"default", nil, "INFO"},
		{"info", []int{SeverityInfo}, "INFO"},
		{"warning", []int{SeverityWarning}, "WARN"},
		{"notice", []int{SeverityNotice}, "INFO"},
		{"error", []int{SeverityError}, "ERRO"},
		{"out of range", []int{42}, "INFO"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, out, logs := newTestConsole("")
			c.PrintFrom("Speaks - Main", "hello there", tt.severity...)

			if got := out.String(); got != "[Speaks - Main] hello there\n" {
				t.Errorf("output = %q", got)
			}
			if !strings.Contains(logs.String(), tt.wantLevel) {
				t.Errorf("log %q missing level %s", logs.String(), tt.wantLevel)
			}
			if !strings.Contains(logs.String(), "origin=") || !strings.Contains(logs.String(), "Speaks - Main") {
				t.Errorf("log %q missing origin", logs.String())
			}
		})
	}
}

func TestPrintFromMultiline(t *testing.T) {
	c, out, _ := newTestConsole("")
	c.PrintFrom("Demo", "Available voices:\n1 -> A\n2 -> B")

	want := "[Demo] Available voices:\n1 -> A\n2 -> B\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestInputFrom(t *testing.T) {
	c, out, _ := newTestConsole("first\r\nsecond\nlast")

	for _, want := range []string{"first", "second", "last"} {
		got, err := c.InputFrom("Main", "Input")
		if err != nil {
			t.Fatalf("InputFrom() error = %v", err)
		}
		if got != want {
			t.Errorf("InputFrom() = %q, want %q", got, want)
		}
	}

	if _, err := c.InputFrom("Main", "Input"); !errors.Is(err, io.EOF) {
		t.Errorf("InputFrom() at end error = %v, want io.EOF", err)
	}

	if !strings.HasPrefix(out.String(), "[Main] Input: ") {
		t.Errorf("prompt = %q", out.String())
	}
}

func TestInputFromEmptyLine(t *testing.T) {
	c, _, _ := newTestConsole("\n")

	got, err := c.InputFrom("Main", "Input")
	if err != nil {
		t.Fatalf("InputFrom() error = %v", err)
	}
	if got != "" {
		t.Errorf("InputFrom() = %q, want empty line", got)
	}
}

func TestNoColorOnNonTerminal(t *testing.T) {
	var out bytes.Buffer
	c := New(Options{In: strings.NewReader(""), Out: &out, Logger: log.New(io.Discard)})

	c.PrintFrom("Main", "plain", SeverityError)
	if strings.Contains(out.String(), "\x1b[") {
		t.Errorf("expected no escape codes for a non-terminal writer, got %q", out.String())
	}
}

func TestPrintFromWhileReading(t *testing.T) {
	r, w := io.Pipe()
	defer func() { _ = w.Close() }()

	var out bytes.Buffer
	c := New(Options{In: r, Out: &out, Logger: log.New(io.Discard), NoColor: true})

	go func() { _, _ = c.InputFrom("Main", "Input") }()
	time.Sleep(20 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		c.PrintFrom("Worker", "SUCCESS: Speaking")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("PrintFrom blocked behind a waiting InputFrom")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !strings.Contains(out.String(), "[Worker] SUCCESS: Speaking") {
		t.Errorf("output = %q", out.String())
	}
}

func TestPrompt(t *testing.T) {
	c, _, _ := newTestConsole("yes\n")

	got, err := Prompt(context.Background(), c, "Main", "Input")
	if err != nil || got != "yes" {
		t.Errorf("Prompt() = (%q, %v)", got, err)
	}
}

func TestPromptCanceled(t *testing.T) {
	r, w := io.Pipe()
	defer func() { _ = w.Close() }()
	c := New(Options{In: r, Out: io.Discard, Logger: log.New(io.Discard), NoColor: true})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	if _, err := Prompt(ctx, c, "Main", "Input"); !errors.Is(err, context.Canceled) {
		t.Errorf("Prompt() error = %v, want context.Canceled", err)
	}
	if time.Since(start) > time.Second {
		t.Error("Prompt did not return on cancel")
	}

	// output still works after an abandoned read
	done := make(chan struct{})
	go func() {
		c.PrintFrom("Main", "Stopping Speaks...")
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("PrintFrom blocked after a canceled prompt")
	}
}

func TestPromptAlreadyCanceled(t *testing.T) {
	c, out, _ := newTestConsole("unused\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Prompt(ctx, c, "Main", "Input"); !errors.Is(err, context.Canceled) {
		t.Errorf("Prompt() error = %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("no prompt should be shown, got %q", out.String())
	}
}
