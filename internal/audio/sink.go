package audio

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
)

var (
	// ErrDeviceNotFound is returned when no device carries the requested index.
	ErrDeviceNotFound = errors.New("audio device not found")
	// ErrNoOutputChannels is returned for input-only devices.
	ErrNoOutputChannels = errors.New("audio device has no output channels")
	// ErrFormatMismatch is returned when samples cannot be converted to a
	// format the device accepts.
	ErrFormatMismatch = errors.New("audio format mismatch")
	// ErrEmptyAudio is returned when there is nothing to play.
	ErrEmptyAudio = errors.New("audio data is empty")
)

// Sink plays interleaved 16-bit samples and blocks until playback is done.
type Sink interface {
	Play(ctx context.Context, samples []int16, sampleRate, channels, deviceIndex int) error
}

// Duration returns the playing time of interleaved samples.
func Duration(samples, sampleRate, channels int) time.Duration {
	if sampleRate <= 0 || channels <= 0 {
		return 0
	}
	frames := samples / channels
	return time.Duration(frames) * time.Second / time.Duration(sampleRate)
}

func validateFormat(samples []int16, sampleRate, channels int) error {
	if len(samples) == 0 {
		return ErrEmptyAudio
	}
	if sampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %d", ErrFormatMismatch, sampleRate)
	}
	if channels <= 0 {
		return fmt.Errorf("%w: %d channels", ErrFormatMismatch, channels)
	}
	return nil
}

// DeviceSink routes playback by device index: a non-negative index goes to
// the indexed sink, a negative one to the default-device sink.
type DeviceSink struct {
	indexed  Sink
	fallback Sink
	logger   *log.Logger
}

// NewDeviceSink creates a router over the given sinks.
func NewDeviceSink(indexed, fallback Sink, logger *log.Logger) *DeviceSink {
	if logger == nil {
		logger = log.Default()
	}
	return &DeviceSink{
		indexed:  indexed,
		fallback: fallback,
		logger:   logger.With("origin", "Speaks - Sink"),
	}
}

// NewSystemSink wires PortAudio for indexed devices and oto for the
// default device.
func NewSystemSink(logger *log.Logger) *DeviceSink {
	return NewDeviceSink(NewPortAudioSink(logger), NewOtoSink(DefaultOtoConfig(), logger), logger)
}

// Play implements Sink.
func (d *DeviceSink) Play(ctx context.Context, samples []int16, sampleRate, channels, deviceIndex int) error {
	if err := validateFormat(samples, sampleRate, channels); err != nil {
		return err
	}

	sink, route := d.indexed, "portaudio"
	if deviceIndex < 0 {
		sink, route = d.fallback, "default"
	}
	if sink == nil {
		return fmt.Errorf("%w: no %s sink configured", ErrDeviceNotFound, route)
	}

	d.logger.Debug("Playing", "route", route, "device", deviceIndex,
		"rate", sampleRate, "channels", channels,
		"duration", Duration(len(samples), sampleRate, channels))

	return sink.Play(ctx, samples, sampleRate, channels, deviceIndex)
}
