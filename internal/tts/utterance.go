package tts

import (
	"time"

	"github.com/operavondervollmer/speaks/internal/audio"
)

// Utterance is rendered audio waiting to be played. It is never modified
// after the renderer creates it.
type Utterance struct {
	ID         string
	Text       string
	Samples    []int16
	SampleRate int
	Channels   int
}

// Duration returns the playing time.
func (u Utterance) Duration() time.Duration {
	return audio.Duration(len(u.Samples), u.SampleRate, u.Channels)
}
