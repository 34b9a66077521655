package tts

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/operavondervollmer/speaks/internal/audio"
	"github.com/operavondervollmer/speaks/internal/console"
)

const originInitialize = "Speaks - Initialize"

// Speech is the Model implementation shared by every backend.
type Speech struct {
	backend  Backend
	renderer *Renderer
	worker   *Worker
	sink     audio.Sink
	device   int

	voices []Voice
	voice  int

	report reporter
	logger *log.Logger
}

var _ Model = (*Speech)(nil)

// NewSpeech wires a backend to a renderer, sink and worker. The voice is
// resolved once here: a negative index selects DefaultVoiceIndex and an
// index outside the voice list falls back to the first voice.
func NewSpeech(ctx context.Context, backend Backend, opts Options) (*Speech, error) {
	logger := opts.logger()

	voices, err := backend.Voices(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNoVoices, backend.Name(), err)
	}
	if len(voices) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoVoices, backend.Name())
	}

	sink := opts.Sink
	if sink == nil {
		sink = audio.NewSystemSink(logger)
	}

	s := &Speech{
		backend:  backend,
		renderer: NewRenderer(backend, opts),
		worker:   NewWorker(sink, opts.Voice.SpeakerIndex, opts),
		sink:     sink,
		device:   opts.Voice.SpeakerIndex,
		voices:   voices,
		report:   reporter{console: opts.Console, logger: logger},
		logger:   logger.With("origin", originInitialize),
	}

	index := opts.Voice.VoiceIndex
	explicit := index >= 0
	if !explicit {
		index = DefaultVoiceIndex
	}
	if index >= len(voices) {
		if explicit {
			s.report.print(originInitialize,
				fmt.Sprintf("WARNING: Voice index %d out of range, using voice 0", index),
				console.SeverityWarning)
		}
		index = 0
	}

	if err := s.SelectVoice(index); err != nil {
		return nil, err
	}

	s.report.print(originInitialize,
		fmt.Sprintf("SUCCESS: %s TTS Model initialized", backend.Name()),
		console.SeverityInfo)
	s.logger.Debug("Voice selected", "voice", voices[index].Name, "id", voices[index].ID, "device", s.device)

	return s, nil
}

// Say renders text on the calling goroutine and queues it for playback.
func (s *Speech) Say(ctx context.Context, text string) bool {
	u, err := s.renderer.Generate(ctx, text)
	if err != nil {
		return false
	}

	if err := s.worker.Enqueue(u); err != nil {
		s.report.print(originSpeak, "FAILED: Could not queue audio", console.SeverityError, "err", err)
		return false
	}
	return true
}

// Start launches the playback worker.
func (s *Speech) Start() { s.worker.Start() }

// Stop stops the playback worker after the current utterance.
func (s *Speech) Stop() { s.worker.Stop() }

// Wait blocks until the queue drained.
func (s *Speech) Wait(ctx context.Context) error { return s.worker.Wait(ctx) }

// Pending returns the number of utterances waiting to play.
func (s *Speech) Pending() int { return s.worker.Pending() }

// Clear drops the utterances waiting to play.
func (s *Speech) Clear() int { return s.worker.Clear() }

// Voices returns a copy of the backend voices.
func (s *Speech) Voices() []Voice {
	return append([]Voice(nil), s.voices...)
}

// Voice returns the zero-based index of the active voice.
func (s *Speech) Voice() int {
	return s.voice
}

// SelectVoice makes the voice at index active for later renders.
func (s *Speech) SelectVoice(index int) error {
	if index < 0 || index >= len(s.voices) {
		return fmt.Errorf("%w: index %d of %d", ErrInvalidVoice, index, len(s.voices))
	}
	if err := s.backend.SetVoice(s.voices[index].ID); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidVoice, err)
	}
	s.voice = index
	return nil
}

// speakNow renders and plays text synchronously, bypassing the queue.
// The caller must hold the worker reservation.
func (s *Speech) speakNow(ctx context.Context, text string) error {
	u, err := s.renderer.Generate(ctx, text)
	if err != nil {
		return err
	}
	if err := s.sink.Play(ctx, u.Samples, u.SampleRate, u.Channels, s.device); err != nil {
		s.report.print(originSpeak, "FAILED: Unexpected error while speaking", console.SeverityError, "err", err)
		return err
	}
	return nil
}
