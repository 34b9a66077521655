package tts

import (
	"errors"
	"fmt"
)

// Common TTS errors
var (
	// ErrNoContent indicates the text to speak was empty or whitespace
	ErrNoContent = errors.New("no text provided")

	// ErrGenerationFailed indicates the backend could not produce audio
	ErrGenerationFailed = errors.New("audio generation failed")

	// ErrUnknownModel indicates an unregistered model identifier
	ErrUnknownModel = errors.New("invalid model selected")

	// ErrNoVoices indicates the backend offers no voices
	ErrNoVoices = errors.New("no voices available")

	// ErrInvalidVoice indicates a voice index or name that does not exist
	ErrInvalidVoice = errors.New("invalid voice")

	// ErrPlaybackBusy indicates the device is already used by the worker
	// or by another synchronous playback
	ErrPlaybackBusy = errors.New("playback already in progress")
)

// TTSError represents a TTS-specific error with additional context
type TTSError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *TTSError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *TTSError) Unwrap() error {
	return e.Cause
}

// Is reports whether the error code stands for target. Engine and audio
// format failures both match ErrGenerationFailed.
func (e *TTSError) Is(target error) bool {
	switch e.Code {
	case ErrorCodeEngineFailure, ErrorCodeAudioFormat:
		return target == ErrGenerationFailed
	}
	return false
}

// ErrorCode identifies specific error types
type ErrorCode string

const (
	ErrorCodeEngineFailure ErrorCode = "ENGINE_FAILURE"
	ErrorCodeAudioDevice   ErrorCode = "AUDIO_DEVICE"
	ErrorCodeAudioFormat   ErrorCode = "AUDIO_FORMAT"
	ErrorCodeInvalidInput  ErrorCode = "INVALID_INPUT"
)

// NewTTSError creates a new TTS error with context
func NewTTSError(code ErrorCode, message string, cause error) *TTSError {
	return &TTSError{
		Code:    code,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// WithContext adds context to the error
func (e *TTSError) WithContext(key string, value interface{}) *TTSError {
	e.Context[key] = value
	return e
}

// keyvals flattens the error context for structured logging.
func (e *TTSError) keyvals() []interface{} {
	kv := make([]interface{}, 0, 2*len(e.Context)+4)
	kv = append(kv, "code", string(e.Code))
	for k, v := range e.Context {
		kv = append(kv, k, v)
	}
	return append(kv, "err", e.Cause)
}
