package tts

import (
	"context"

	"github.com/operavondervollmer/speaks/internal/tts/engines"
)

// Voice is a selectable synthesis voice.
type Voice = engines.Voice

// Backend renders text to a WAV file.
type Backend interface {
	// Name identifies the backend in logs.
	Name() string

	// Voices lists the voices the backend can use.
	Voices(ctx context.Context) ([]Voice, error)

	// SetVoice selects the voice used by later renders.
	SetVoice(id string) error

	// Voice returns the active voice id.
	Voice() string

	// Render writes speech for text to path and returns once the file is
	// complete.
	Render(ctx context.Context, text, path string) error
}

// Model is the speech façade used by the CLI.
type Model interface {
	// Say renders text and queues it for playback. It reports whether the
	// text was queued.
	Say(ctx context.Context, text string) bool

	// Demo plays every voice and lets the user pick one. It fails with
	// ErrPlaybackBusy while the worker runs.
	Demo(ctx context.Context) error

	// Start launches the playback worker.
	Start()

	// Stop finishes the current utterance and stops the worker.
	Stop()

	// Wait blocks until every queued utterance was played.
	Wait(ctx context.Context) error

	// Pending returns the number of utterances waiting to play.
	Pending() int

	// Clear drops utterances waiting to play.
	Clear() int

	// Voices returns the voices of the backend.
	Voices() []Voice

	// SelectVoice makes the voice at the zero-based index active.
	SelectVoice(index int) error
}

// Console is the interactive terminal used for prompts and status lines.
type Console interface {
	PrintFrom(origin, message string, severity ...int)
	InputFrom(origin, prompt string) (string, error)
}

var (
	_ Backend = (*engines.EspeakBackend)(nil)
	_ Backend = (*engines.PiperBackend)(nil)
	_ Backend = (*engines.MockBackend)(nil)
)
