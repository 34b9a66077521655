package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ebitengine/oto/v3"
)

// pollInterval is how often a blocking Play checks the oto player.
const pollInterval = 10 * time.Millisecond

// OtoConfig contains the format of the process-wide oto context.
type OtoConfig struct {
	SampleRate int // 44100 or 48000 Hz only
	Channels   int // 1 = mono, 2 = stereo
	BufferSize int // bytes
}

// DefaultOtoConfig returns the default player configuration.
func DefaultOtoConfig() OtoConfig {
	return OtoConfig{
		SampleRate: 44100, // CD quality
		Channels:   1,     // Mono for TTS
		BufferSize: 4096,
	}
}

func (c OtoConfig) validate() error {
	// OTO only supports specific sample rates reliably
	if c.SampleRate != 44100 && c.SampleRate != 48000 {
		return fmt.Errorf("sample rate must be 44100 or 48000 Hz, got %d", c.SampleRate)
	}
	if c.Channels != 1 && c.Channels != 2 {
		return fmt.Errorf("channels must be 1 (mono) or 2 (stereo), got %d", c.Channels)
	}
	if c.BufferSize <= 0 {
		return errors.New("buffer size must be positive")
	}
	return nil
}

// OtoSink plays on the system default output device. oto allows a single
// context per process, so the context is created on first use with a
// fixed format and every utterance is converted to it.
type OtoSink struct {
	config OtoConfig
	logger *log.Logger

	once    sync.Once
	context *oto.Context
	initErr error

	// oto plays one stream at a time per sink
	mu sync.Mutex
}

// NewOtoSink creates a default-device sink.
func NewOtoSink(config OtoConfig, logger *log.Logger) *OtoSink {
	if logger == nil {
		logger = log.Default()
	}
	return &OtoSink{
		config: config,
		logger: logger.With("origin", "Speaks - Oto"),
	}
}

func (s *OtoSink) init() error {
	s.once.Do(func() {
		if err := s.config.validate(); err != nil {
			s.initErr = fmt.Errorf("invalid config: %w", err)
			return
		}

		bytesPerSecond := s.config.SampleRate * s.config.Channels * 2
		op := &oto.NewContextOptions{
			SampleRate:   s.config.SampleRate,
			ChannelCount: s.config.Channels,
			Format:       oto.FormatSignedInt16LE,
			BufferSize:   time.Duration(s.config.BufferSize) * time.Second / time.Duration(bytesPerSecond),
		}

		ctx, ready, err := oto.NewContext(op)
		if err != nil {
			s.initErr = fmt.Errorf("failed to create oto context: %w", err)
			return
		}
		<-ready
		s.context = ctx
	})
	return s.initErr
}

// Play implements Sink. deviceIndex is ignored; oto cannot select devices.
func (s *OtoSink) Play(ctx context.Context, samples []int16, sampleRate, channels, _ int) error {
	if err := validateFormat(samples, sampleRate, channels); err != nil {
		return err
	}
	if err := s.init(); err != nil {
		return err
	}

	if sampleRate != s.config.SampleRate || channels != s.config.Channels {
		s.logger.Debug("Converting for default device",
			"from_rate", sampleRate, "from_channels", channels,
			"to_rate", s.config.SampleRate, "to_channels", s.config.Channels)

		converted, err := Convert(samples, sampleRate, channels, s.config.SampleRate, s.config.Channels)
		if err != nil {
			return err
		}
		samples = converted
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// the reader must keep data alive until the player is closed
	data := Int16ToBytes(samples)
	player := s.context.NewPlayer(bytes.NewReader(data))
	defer player.Close()

	player.Play()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for player.IsPlaying() {
		select {
		case <-ctx.Done():
			player.Pause()
			return ctx.Err()
		case <-ticker.C:
		}
	}

	if err := player.Err(); err != nil {
		return fmt.Errorf("oto playback: %w", err)
	}
	return nil
}
