package tts

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/operavondervollmer/speaks/internal/audio"
	"github.com/operavondervollmer/speaks/internal/console"
	"github.com/operavondervollmer/speaks/internal/queue"
)

const (
	originWorker = "Speaks - TTS Thread"
	originStart  = "Speaks - Start"
	originStop   = "Speaks - Stop"
	originSpeak  = "Speaks - Speak"
)

// Worker plays queued utterances one at a time on a single goroutine.
// The queue outlives Start/Stop cycles, so utterances queued while the
// worker is stopped play after the next Start.
type Worker struct {
	queue    *queue.Queue[Utterance]
	sink     audio.Sink
	device   int
	onSpoken func(Utterance)
	report   reporter
	logger   *log.Logger

	mu       sync.Mutex
	running  bool
	reserved bool
	done     chan struct{}
}

// NewWorker creates a stopped worker playing on the given device.
func NewWorker(sink audio.Sink, deviceIndex int, opts Options) *Worker {
	logger := opts.logger()
	return &Worker{
		queue:    queue.New[Utterance](),
		sink:     sink,
		device:   deviceIndex,
		onSpoken: opts.OnSpoken,
		report:   reporter{console: opts.Console, logger: logger},
		logger:   logger.With("origin", originWorker),
	}
}

// Start launches the dequeue loop. It is a no-op while running.
func (w *Worker) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running || w.done != nil {
		return
	}
	if w.reserved {
		w.logger.Warn("Start ignored, the device is in use")
		return
	}

	w.running = true
	w.done = make(chan struct{})
	go w.loop(w.done)

	w.report.print(originStart, "SUCCESS: TTS Thread started", console.SeverityInfo)
}

// Stop lets the current utterance finish, then stops the loop and waits
// for it to exit. Utterances still queued stay queued.
func (w *Worker) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.done == nil {
		return
	}

	w.running = false
	w.queue.PutStop()
	<-w.done
	w.done = nil

	w.report.print(originStop, "SUCCESS: TTS Thread stopped", console.SeverityInfo)
}

// reserve claims the device for synchronous playback. Start is ignored
// until release; it fails while the loop runs.
func (w *Worker) reserve() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running || w.reserved {
		return ErrPlaybackBusy
	}
	w.reserved = true
	return nil
}

func (w *Worker) release() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.reserved = false
}

// Running reports whether the loop is active.
func (w *Worker) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// Enqueue adds an utterance behind those already waiting.
func (w *Worker) Enqueue(u Utterance) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("enqueue: %v", rec)
		}
	}()
	w.queue.Put(u)
	w.logger.Debug("Queued", "id", u.ID, "pending", w.queue.Len())
	return nil
}

// Wait blocks until every queued utterance was played or dropped.
func (w *Worker) Wait(ctx context.Context) error {
	return w.queue.Join(ctx)
}

// Pending returns the number of utterances waiting to play.
func (w *Worker) Pending() int {
	return w.queue.Len()
}

// Clear drops the utterances waiting to play.
func (w *Worker) Clear() int {
	n := w.queue.Clear()
	if n > 0 {
		w.logger.Info("Cleared queue", "dropped", n)
	}
	return n
}

// Stats returns queue statistics.
func (w *Worker) Stats() queue.Stats {
	return w.queue.GetStats()
}

func (w *Worker) loop(done chan struct{}) {
	defer close(done)

	for {
		u, ok := w.queue.Get()
		if !ok {
			return
		}
		w.process(u)
	}
}

// process plays one utterance. Panics are contained so the loop survives.
func (w *Worker) process(u Utterance) {
	defer w.queue.Done()
	defer func() {
		if rec := recover(); rec != nil {
			w.report.print(originSpeak, "FAILED: Unexpected error while speaking", console.SeverityError,
				"id", u.ID, "panic", rec)
		}
	}()

	start := time.Now()

	// playback is never cut short by Stop
	if err := w.sink.Play(context.Background(), u.Samples, u.SampleRate, u.Channels, w.device); err != nil {
		terr := NewTTSError(ErrorCodeAudioDevice, "playback failed", err).
			WithContext("id", u.ID).
			WithContext("device", w.device)
		w.report.print(originSpeak, "FAILED: Unexpected error while speaking", console.SeverityError, terr.keyvals()...)
		return
	}

	w.report.print(originWorker, "SUCCESS: Speaking", console.SeverityInfo)
	w.logger.Debug("Played", "id", u.ID,
		"audio", u.Duration().Round(time.Millisecond),
		"took", time.Since(start).Round(time.Millisecond))

	if w.onSpoken != nil {
		w.onSpoken(u)
	}
}
