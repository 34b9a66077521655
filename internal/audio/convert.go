package audio

import (
	"encoding/binary"
	"fmt"

	resampling "github.com/tphakala/go-audio-resampling"

	"github.com/operavondervollmer/speaks/internal/wav"
)

// flushFrames of silence are appended before resampling so the filter
// tail of the real signal is emitted.
const flushFrames = 2048

// MixChannels converts interleaved samples between channel counts.
// Downmixing to mono averages all channels; other conversions copy
// channels, repeating the source layout when upmixing.
func MixChannels(samples []int16, from, to int) []int16 {
	if from == to || from <= 0 || to <= 0 {
		return samples
	}

	frames := len(samples) / from
	out := make([]int16, frames*to)

	for f := 0; f < frames; f++ {
		src := samples[f*from : f*from+from]
		dst := out[f*to : f*to+to]

		if to == 1 {
			sum := 0
			for _, s := range src {
				sum += int(s)
			}
			dst[0] = int16(sum / from)
			continue
		}

		for c := range dst {
			dst[c] = src[c%from]
		}
	}
	return out
}

// Resample converts interleaved samples from one sample rate to another.
func Resample(samples []int16, channels, from, to int) ([]int16, error) {
	if from == to {
		return samples, nil
	}
	if from <= 0 || to <= 0 || channels <= 0 {
		return nil, fmt.Errorf("%w: cannot resample %d Hz to %d Hz", ErrFormatMismatch, from, to)
	}

	r, err := resampling.New(&resampling.Config{
		InputRate:  float64(from),
		OutputRate: float64(to),
		Channels:   channels,
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	})
	if err != nil {
		return nil, fmt.Errorf("create resampler: %w", err)
	}

	input := make([]float64, len(samples)+flushFrames*channels)
	for i, s := range samples {
		input[i] = float64(s) / 32768.0
	}

	output, err := r.Process(input)
	if err != nil {
		return nil, fmt.Errorf("resample: %w", err)
	}

	// trim to the expected length so the padding does not play
	want := int(int64(len(samples)/channels)*int64(to)/int64(from)) * channels
	if len(output) > want {
		output = output[:want]
	}
	output = output[:len(output)/channels*channels]

	out := make([]int16, len(output))
	for i, v := range output {
		out[i] = wav.FloatToInt16(v)
	}
	return out, nil
}

// Convert adapts samples to the target format.
func Convert(samples []int16, sampleRate, channels, dstRate, dstChannels int) ([]int16, error) {
	if dstChannels <= 0 || dstRate <= 0 {
		return nil, fmt.Errorf("%w: target %d Hz, %d channels", ErrFormatMismatch, dstRate, dstChannels)
	}

	mixed := MixChannels(samples, channels, dstChannels)
	return Resample(mixed, dstChannels, sampleRate, dstRate)
}

// Int16ToBytes encodes samples as little-endian PCM.
func Int16ToBytes(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}
