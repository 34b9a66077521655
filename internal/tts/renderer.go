package tts

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/operavondervollmer/speaks/internal/cache"
	"github.com/operavondervollmer/speaks/internal/console"
	"github.com/operavondervollmer/speaks/internal/wav"
)

const originGenerate = "Speaks - Generate From Text"

// Renderer turns text into an Utterance through a transient WAV file.
// With a cache, text already rendered with the same voice is reused.
type Renderer struct {
	backend       Backend
	tempDir       string
	stripMarkdown bool
	timeout       time.Duration
	cache         *cache.Memory[Utterance]
	report        reporter
	logger        *log.Logger
}

// NewRenderer creates a renderer over backend.
func NewRenderer(backend Backend, opts Options) *Renderer {
	logger := opts.logger()
	r := &Renderer{
		backend:       backend,
		tempDir:       opts.TempDir,
		stripMarkdown: opts.StripMarkdown,
		timeout:       opts.RenderTimeout,
		report:        reporter{console: opts.Console, logger: logger},
		logger:        logger.With("origin", originGenerate),
	}
	if opts.CacheSize > 0 {
		r.cache = cache.NewMemory(opts.CacheSize, func(u Utterance) int64 { return int64(len(u.Samples) * 2) })
	}
	return r
}

// Generate renders text and decodes the result. The transient file is
// removed before Generate returns, whatever the outcome.
func (r *Renderer) Generate(ctx context.Context, text string) (Utterance, error) {
	if r.stripMarkdown {
		text = StripMarkdown(text)
	}
	text = CleanText(text)

	if strings.TrimSpace(text) == "" {
		r.report.print(originGenerate, "FAILED: No text provided", console.SeverityError)
		return Utterance{}, NewTTSError(ErrorCodeInvalidInput, "nothing to speak", ErrNoContent)
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	id := uuid.NewString()
	start := time.Now()

	var key string
	if r.cache != nil {
		key = cache.Key(r.backend.Name(), r.backend.Voice(), text)
		if u, ok := r.cache.Get(key); ok {
			u.ID = id
			r.logger.Debug("Reused", "id", id, "chars", len(text))
			return u, nil
		}
	}

	f, err := os.CreateTemp(r.tempDir, "speaks-"+id+"-*.wav")
	if err != nil {
		return Utterance{}, r.fail(NewTTSError(ErrorCodeEngineFailure, "create transient file", err).
			WithContext("id", id))
	}
	path := f.Name()
	_ = f.Close()
	defer r.release(path)

	if err := r.render(ctx, text, path); err != nil {
		return Utterance{}, r.fail(NewTTSError(ErrorCodeEngineFailure, "synthesis failed", err).
			WithContext("id", id).
			WithContext("backend", r.backend.Name()).
			WithContext("voice", r.backend.Voice()))
	}

	decoded, err := wav.DecodeFile(path)
	if err != nil {
		return Utterance{}, r.fail(NewTTSError(ErrorCodeAudioFormat, "decode rendered audio", err).
			WithContext("id", id).
			WithContext("backend", r.backend.Name()))
	}
	if len(decoded.Samples) == 0 {
		return Utterance{}, r.fail(NewTTSError(ErrorCodeAudioFormat, "backend produced no audio", nil).
			WithContext("id", id).
			WithContext("backend", r.backend.Name()))
	}

	u := Utterance{
		ID:         id,
		Text:       text,
		Samples:    decoded.Samples,
		SampleRate: decoded.SampleRate,
		Channels:   decoded.Channels,
	}

	r.logger.Debug("Rendered",
		"id", id,
		"chars", len(text),
		"size", humanize.Bytes(uint64(len(u.Samples)*2)),
		"audio", u.Duration().Round(time.Millisecond),
		"took", time.Since(start).Round(time.Millisecond))

	if r.cache != nil {
		if err := r.cache.Put(key, u); err != nil {
			r.logger.Debug("Not cached", "id", id, "err", err)
		}
	}
	return u, nil
}

// render calls the backend, converting a panic into an error.
func (r *Renderer) render(ctx context.Context, text, path string) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("backend panic: %v", rec)
		}
	}()
	return r.backend.Render(ctx, text, path)
}

func (r *Renderer) fail(err *TTSError) error {
	r.report.print(originGenerate, "FAILED: Unexpected error while generating audio", console.SeverityError, err.keyvals()...)
	return err
}

func (r *Renderer) release(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		r.report.print(originGenerate, fmt.Sprintf("WARNING: Failed to delete temp file %s", path), console.SeverityWarning, "err", err)
	}
}
