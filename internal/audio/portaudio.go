package audio

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gordonklaus/portaudio"
)

const framesPerBuffer = 1024

var (
	paOnce sync.Once
	paErr  error
)

// initPortAudio initializes the PortAudio library once per process.
func initPortAudio() error {
	paOnce.Do(func() {
		paErr = portaudio.Initialize()
	})
	return paErr
}

// Device describes an output-capable audio device.
type Device struct {
	Index             int
	Name              string
	MaxOutputChannels int
	DefaultSampleRate float64
	IsDefaultOutput   bool
}

// Devices lists every device known to PortAudio, including input-only
// devices (MaxOutputChannels == 0).
func Devices() ([]Device, error) {
	if err := initPortAudio(); err != nil {
		return nil, fmt.Errorf("initialize portaudio: %w", err)
	}

	infos, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}

	def, _ := portaudio.DefaultOutputDevice()

	// PortAudio lists devices in index order
	devices := make([]Device, 0, len(infos))
	for i, info := range infos {
		devices = append(devices, Device{
			Index:             i,
			Name:              info.Name,
			MaxOutputChannels: info.MaxOutputChannels,
			DefaultSampleRate: info.DefaultSampleRate,
			IsDefaultOutput:   sameDevice(info, def),
		})
	}
	return devices, nil
}

func sameDevice(a, b *portaudio.DeviceInfo) bool {
	if a == nil || b == nil {
		return false
	}
	if a == b {
		return true
	}
	return a.Name == b.Name && a.MaxOutputChannels == b.MaxOutputChannels && a.HostApi != nil && b.HostApi != nil && a.HostApi.Name == b.HostApi.Name
}

// OutputDevices filters devices down to those that can play audio.
func OutputDevices(devices []Device) []Device {
	out := make([]Device, 0, len(devices))
	for _, d := range devices {
		if d.MaxOutputChannels > 0 {
			out = append(out, d)
		}
	}
	return out
}

// PortAudioSink plays on a device selected by PortAudio index using a
// blocking output stream.
type PortAudioSink struct {
	logger *log.Logger
}

// NewPortAudioSink creates a PortAudio sink. The library is initialized
// lazily on the first Play.
func NewPortAudioSink(logger *log.Logger) *PortAudioSink {
	if logger == nil {
		logger = log.Default()
	}
	return &PortAudioSink{logger: logger.With("origin", "Speaks - PortAudio")}
}

func lookupDevice(index int) (*portaudio.DeviceInfo, error) {
	infos, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	if index < 0 || index >= len(infos) {
		return nil, fmt.Errorf("%w: index %d", ErrDeviceNotFound, index)
	}
	return infos[index], nil
}

// Play implements Sink.
func (s *PortAudioSink) Play(ctx context.Context, samples []int16, sampleRate, channels, deviceIndex int) error {
	if err := validateFormat(samples, sampleRate, channels); err != nil {
		return err
	}
	if err := initPortAudio(); err != nil {
		return fmt.Errorf("initialize portaudio: %w", err)
	}

	dev, err := lookupDevice(deviceIndex)
	if err != nil {
		return err
	}
	if dev.MaxOutputChannels <= 0 {
		return fmt.Errorf("%w: %s", ErrNoOutputChannels, dev.Name)
	}

	outChannels := channels
	if outChannels > dev.MaxOutputChannels {
		outChannels = dev.MaxOutputChannels
		samples = MixChannels(samples, channels, outChannels)
	}

	buf := make([]int16, framesPerBuffer*outChannels)
	stream, err := openOutput(dev, outChannels, float64(sampleRate), buf)
	if err != nil && int(dev.DefaultSampleRate) != sampleRate && dev.DefaultSampleRate > 0 {
		// device rejected the rate, retry at its native rate
		s.logger.Debug("Resampling for device", "device", dev.Name,
			"from", sampleRate, "to", int(dev.DefaultSampleRate), "err", err)

		samples, err = Resample(samples, outChannels, sampleRate, int(dev.DefaultSampleRate))
		if err != nil {
			return err
		}
		stream, err = openOutput(dev, outChannels, dev.DefaultSampleRate, buf)
	}
	if err != nil {
		return fmt.Errorf("%w: open stream on %s: %v", ErrFormatMismatch, dev.Name, err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return fmt.Errorf("start stream: %w", err)
	}

	for off := 0; off < len(samples); off += len(buf) {
		if err := ctx.Err(); err != nil {
			_ = stream.Abort()
			return err
		}

		n := copy(buf, samples[off:])
		clear(buf[n:])

		if err := stream.Write(); err != nil && !errors.Is(err, portaudio.OutputUnderflowed) {
			_ = stream.Abort()
			return fmt.Errorf("write stream: %w", err)
		}
	}

	if err := stream.Stop(); err != nil {
		return fmt.Errorf("stop stream: %w", err)
	}
	return nil
}

func openOutput(dev *portaudio.DeviceInfo, channels int, sampleRate float64, buf []int16) (*portaudio.Stream, error) {
	params := portaudio.StreamParameters{
		Output: portaudio.StreamDeviceParameters{
			Device:   dev,
			Channels: channels,
			Latency:  dev.DefaultHighOutputLatency,
		},
		SampleRate:      sampleRate,
		FramesPerBuffer: framesPerBuffer,
	}
	return portaudio.OpenStream(params, buf)
}
