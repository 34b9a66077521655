package engines

import "errors"

// ErrVoiceNotFound is returned by SetVoice for an id the backend does not
// know.
var ErrVoiceNotFound = errors.New("voice not found")

// Voice is a selectable synthesis voice.
type Voice struct {
	// ID is what the backend needs to select the voice (espeak voice
	// file, piper model path).
	ID string
	// Name is shown to the user.
	Name string
	// Language is informational and may be empty.
	Language string
}
