// Package wav decodes and encodes the RIFF/WAVE files that synthesis
// backends write to disk.
package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
)

// WAV format constants.
const (
	// HeaderSize is the size of a canonical 44 byte WAV header.
	HeaderSize = 44

	// FormatPCM is the audio format code for uncompressed integer PCM.
	FormatPCM = 1

	// FormatIEEEFloat is the audio format code for 32-bit float samples.
	FormatIEEEFloat = 3

	// FormatExtensible wraps one of the above in a sub-format GUID.
	FormatExtensible = 0xFFFE
)

var (
	// ErrNotWAV is returned when the input has no RIFF/WAVE signature.
	ErrNotWAV = errors.New("not a RIFF/WAVE file")
	// ErrMissingFormat is returned when the data chunk precedes a fmt chunk.
	ErrMissingFormat = errors.New("wav: missing fmt chunk")
	// ErrMissingData is returned when no data chunk was found.
	ErrMissingData = errors.New("wav: missing data chunk")
	// ErrUnsupportedFormat is returned for codecs other than PCM and float.
	ErrUnsupportedFormat = errors.New("wav: unsupported sample format")
)

// Audio is a decoded WAV stream normalized to interleaved 16-bit samples.
type Audio struct {
	Samples    []int16
	SampleRate int
	Channels   int
}

// Frames returns the number of sample frames (samples per channel).
func (a *Audio) Frames() int {
	if a.Channels == 0 {
		return 0
	}
	return len(a.Samples) / a.Channels
}

type format struct {
	audioFormat   uint16
	channels      uint16
	sampleRate    uint32
	bitsPerSample uint16
}

// DecodeFile reads and decodes the WAV file at path.
func DecodeFile(path string) (*Audio, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read wav: %w", err)
	}
	return Decode(data)
}

// Decode parses a complete WAV file held in memory. Chunks other than
// fmt and data (LIST, fact, ...) are skipped. A data chunk whose declared
// size runs past the end of the input, as written by streaming encoders,
// is read to the end.
func Decode(data []byte) (*Audio, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, ErrNotWAV
	}

	var (
		f       *format
		payload []byte
	)

	pos := 12
	for pos+8 <= len(data) {
		id := string(data[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		body := pos + 8
		end := body + size
		if size < 0 || end > len(data) {
			end = len(data)
		}

		switch id {
		case "fmt ":
			parsed, err := parseFormat(data[body:end])
			if err != nil {
				return nil, err
			}
			f = parsed
		case "data":
			if f == nil {
				return nil, ErrMissingFormat
			}
			payload = data[body:end]
		}

		if payload != nil {
			break
		}

		// chunks are word aligned
		pos = end + (size & 1)
	}

	if f == nil {
		return nil, ErrMissingFormat
	}
	if payload == nil {
		return nil, ErrMissingData
	}

	samples, err := toInt16(payload, f)
	if err != nil {
		return nil, err
	}

	return &Audio{
		Samples:    samples,
		SampleRate: int(f.sampleRate),
		Channels:   int(f.channels),
	}, nil
}

func parseFormat(b []byte) (*format, error) {
	if len(b) < 16 {
		return nil, fmt.Errorf("wav: fmt chunk too short (%d bytes)", len(b))
	}
	f := &format{
		audioFormat:   binary.LittleEndian.Uint16(b[0:2]),
		channels:      binary.LittleEndian.Uint16(b[2:4]),
		sampleRate:    binary.LittleEndian.Uint32(b[4:8]),
		bitsPerSample: binary.LittleEndian.Uint16(b[14:16]),
	}
	if f.audioFormat == FormatExtensible && len(b) >= 26 {
		// first two bytes of the sub-format GUID carry the real code
		f.audioFormat = binary.LittleEndian.Uint16(b[24:26])
	}
	if f.channels == 0 {
		return nil, fmt.Errorf("wav: invalid channel count 0")
	}
	if f.sampleRate == 0 {
		return nil, fmt.Errorf("wav: invalid sample rate 0")
	}
	return f, nil
}

func toInt16(payload []byte, f *format) ([]int16, error) {
	switch {
	case f.audioFormat == FormatPCM && f.bitsPerSample == 16:
		out := make([]int16, len(payload)/2)
		for i := range out {
			out[i] = int16(binary.LittleEndian.Uint16(payload[i*2:]))
		}
		return out, nil

	case f.audioFormat == FormatPCM && f.bitsPerSample == 8:
		// 8-bit PCM is unsigned
		out := make([]int16, len(payload))
		for i, b := range payload {
			out[i] = int16(int(b)-128) << 8
		}
		return out, nil

	case f.audioFormat == FormatPCM && f.bitsPerSample == 24:
		out := make([]int16, len(payload)/3)
		for i := range out {
			// keep the two most significant bytes
			out[i] = int16(uint16(payload[i*3+1]) | uint16(payload[i*3+2])<<8)
		}
		return out, nil

	case f.audioFormat == FormatPCM && f.bitsPerSample == 32:
		out := make([]int16, len(payload)/4)
		for i := range out {
			out[i] = int16(int32(binary.LittleEndian.Uint32(payload[i*4:])) >> 16)
		}
		return out, nil

	case f.audioFormat == FormatIEEEFloat && f.bitsPerSample == 32:
		out := make([]int16, len(payload)/4)
		for i := range out {
			v := math.Float32frombits(binary.LittleEndian.Uint32(payload[i*4:]))
			out[i] = FloatToInt16(float64(v))
		}
		return out, nil
	}

	return nil, fmt.Errorf("%w: format %d, %d bits", ErrUnsupportedFormat, f.audioFormat, f.bitsPerSample)
}

// FloatToInt16 converts a normalized sample in [-1, 1] to int16, clipping
// values outside that range.
func FloatToInt16(v float64) int16 {
	switch {
	case v >= 1:
		return math.MaxInt16
	case v <= -1:
		return math.MinInt16
	}
	return int16(v * math.MaxInt16)
}

// Encode writes samples as a canonical 16-bit PCM WAV file.
func Encode(w io.Writer, samples []int16, sampleRate, channels int) error {
	pcm := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(s))
	}
	_, err := w.Write(WrapRawPCM(pcm, sampleRate, channels, 16))
	return err
}

// EncodeFile writes samples to path as a 16-bit PCM WAV file.
func EncodeFile(path string, samples []int16, sampleRate, channels int) error {
	var buf bytes.Buffer
	if err := Encode(&buf, samples, sampleRate, channels); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o600)
}

// WrapRawPCM adds a WAV header to raw little-endian PCM data.
func WrapRawPCM(pcm []byte, sampleRate, channels, bitsPerSample int) []byte {
	dataSize := len(pcm)
	byteRate := sampleRate * channels * bitsPerSample / 8
	blockAlign := channels * bitsPerSample / 8

	header := make([]byte, HeaderSize)

	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], uint32(36+dataSize))
	copy(header[8:12], "WAVE")

	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], FormatPCM)
	binary.LittleEndian.PutUint16(header[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(header[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(header[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(header[34:36], uint16(bitsPerSample))

	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], uint32(dataSize))

	return append(header, pcm...)
}
