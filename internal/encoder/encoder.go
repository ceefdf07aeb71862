package encoder

import (
	"fmt"
	"strings"
)

const (
	BitsPerSample = 16
	BlockSize     = 4096
)

// Params describes the PCM stream a sink accepts
type Params struct {
	SampleRate int
	Channels   int
}

// Sink consumes interleaved signed 16-bit PCM blocks and writes an encoded
// file. Close finalizes the container; a sink is single-use.
type Sink interface {
	Write(block []int16) error
	Close() error

	// Frames returns the number of frames (samples per channel) written
	Frames() uint64
}

// Extension returns the file extension for a supported output format
func Extension(format string) (string, error) {
	switch strings.ToLower(format) {
	case "wav":
		return "wav", nil
	case "flac":
		return "flac", nil
	default:
		return "", fmt.Errorf("unsupported output format: %q (valid: wav, flac)", format)
	}
}

// NewSink creates a file sink for the given format at path
func NewSink(format, path string, params Params) (Sink, error) {
	if params.Channels < 1 || params.Channels > 2 {
		return nil, fmt.Errorf("unsupported channel count: %d (valid: 1, 2)", params.Channels)
	}
	if params.SampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate: %d", params.SampleRate)
	}

	switch strings.ToLower(format) {
	case "wav":
		return NewWav(path, params)
	case "flac":
		return NewFlac(path, params)
	default:
		return nil, fmt.Errorf("unsupported output format: %q (valid: wav, flac)", format)
	}
}
