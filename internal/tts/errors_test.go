package tts

import (
	"errors"
	"strings"
	"testing"
)

func TestTTSError_Is(t *testing.T) {
	cause := errors.New("exit status 1")

	tests := []struct {
		code           ErrorCode
		wantGeneration bool
	}{
		{ErrorCodeEngineFailure, true},
		{ErrorCodeAudioFormat, true},
		{ErrorCodeAudioDevice, false},
		{ErrorCodeInvalidInput, false},
	}
	for _, tt := range tests {
		err := error(NewTTSError(tt.code, "x", cause))
		if got := errors.Is(err, ErrGenerationFailed); got != tt.wantGeneration {
			t.Errorf("%s: Is(ErrGenerationFailed) = %v, want %v", tt.code, got, tt.wantGeneration)
		}
		if !errors.Is(err, cause) {
			t.Errorf("%s: cause not reachable through Unwrap", tt.code)
		}
	}
}

func TestTTSError_NoContent(t *testing.T) {
	err := error(NewTTSError(ErrorCodeInvalidInput, "no text provided", ErrNoContent))
	if !errors.Is(err, ErrNoContent) {
		t.Error("Expected ErrNoContent through Cause")
	}
}

func TestTTSError_Message(t *testing.T) {
	err := NewTTSError(ErrorCodeAudioDevice, "playback failed", errors.New("device gone"))
	if got, want := err.Error(), "AUDIO_DEVICE: playback failed: device gone"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if got := NewTTSError(ErrorCodeInvalidInput, "empty", nil).Error(); got != "INVALID_INPUT: empty" {
		t.Errorf("Error() = %q", got)
	}
}

func TestTTSError_Keyvals(t *testing.T) {
	err := NewTTSError(ErrorCodeEngineFailure, "render", errors.New("boom")).WithContext("id", "42")

	got := formatKeyvals(err.keyvals())
	for _, want := range []string{"code=ENGINE_FAILURE", "id=42", "err=boom"} {
		if !strings.Contains(got, want) {
			t.Errorf("keyvals %q missing %q", got, want)
		}
	}
}
