package tts

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/operavondervollmer/speaks/internal/audio"
	"github.com/operavondervollmer/speaks/internal/console"
	"github.com/operavondervollmer/speaks/internal/tts/engines"
)

// DefaultVoiceIndex is used when VoiceSelection.VoiceIndex is negative.
const DefaultVoiceIndex = 1

// VoiceSelection picks the voice and output device of a model.
type VoiceSelection struct {
	// VoiceIndex is zero-based; negative selects DefaultVoiceIndex.
	VoiceIndex int
	// SpeakerIndex is the output device; negative plays on the system
	// default device.
	SpeakerIndex int
}

// Options configure a speech model.
type Options struct {
	Logger  *log.Logger
	Console Console

	// Sink plays utterances; audio.NewSystemSink when nil.
	Sink audio.Sink

	Voice VoiceSelection

	// StripMarkdown removes markdown syntax before synthesis.
	StripMarkdown bool

	// RenderTimeout bounds each synthesis; zero means no limit.
	RenderTimeout time.Duration

	// CacheSize bounds the in-memory cache of rendered audio, in bytes;
	// zero disables it.
	CacheSize int64

	// TempDir holds the transient WAV files; os.TempDir when empty.
	TempDir string

	// OnSpoken is called after each utterance finished playing.
	OnSpoken func(Utterance)

	Espeak engines.EspeakConfig
	Piper  engines.PiperConfig
}

func (o Options) logger() *log.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return log.Default()
}

// reporter sends status lines to the console when there is one, and to
// the logger otherwise. The console mirrors to its own logger.
type reporter struct {
	console Console
	logger  *log.Logger
}

func (r reporter) print(origin, message string, severity int, keyvals ...interface{}) {
	if r.console != nil {
		r.console.PrintFrom(origin, message+formatKeyvals(keyvals), severity)
		return
	}

	l := r.logger.With("origin", origin)
	switch severity {
	case console.SeverityError:
		l.Error(message, keyvals...)
	case console.SeverityWarning:
		l.Warn(message, keyvals...)
	default:
		l.Info(message, keyvals...)
	}
}

func formatKeyvals(keyvals []interface{}) string {
	if len(keyvals) == 0 {
		return ""
	}
	var b strings.Builder
	for i := 0; i+1 < len(keyvals); i += 2 {
		fmt.Fprintf(&b, " %v=%v", keyvals[i], keyvals[i+1])
	}
	return b.String()
}
