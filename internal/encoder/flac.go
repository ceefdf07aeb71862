package encoder

import (
	"fmt"
	"os"

	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
	"github.com/mewkiz/flac/meta"
)

// FlacSink writes a flac file using verbatim subframes
type FlacSink struct {
	file   *os.File
	enc    *flac.Encoder
	params Params
	frames uint64
	closed bool
}

// NewFlac creates a flac sink writing to path
func NewFlac(path string, params Params) (*FlacSink, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating flac file: %w", err)
	}

	info := &meta.StreamInfo{
		BlockSizeMin:  BlockSize,
		BlockSizeMax:  BlockSize,
		SampleRate:    uint32(params.SampleRate),
		NChannels:     uint8(params.Channels),
		BitsPerSample: BitsPerSample,
		NSamples:      0,
	}

	enc, err := flac.NewEncoder(file, info)
	if err != nil {
		file.Close()
		os.Remove(path)
		return nil, fmt.Errorf("creating flac encoder: %w", err)
	}
	enc.EnablePredictionAnalysis(true)

	return &FlacSink{file: file, enc: enc, params: params}, nil
}

// Write encodes an interleaved PCM block as one flac frame
func (s *FlacSink) Write(block []int16) error {
	if s.closed {
		return fmt.Errorf("flac sink already closed")
	}
	if len(block) == 0 {
		return nil
	}

	nFrames := len(block) / s.params.Channels
	channels := frame.ChannelsMono
	if s.params.Channels == 2 {
		channels = frame.ChannelsLR
	}

	subframes := make([]*frame.Subframe, s.params.Channels)
	for c := 0; c < s.params.Channels; c++ {
		samples := make([]int32, nFrames)
		for i := 0; i < nFrames; i++ {
			samples[i] = int32(block[i*s.params.Channels+c])
		}
		subframes[c] = &frame.Subframe{
			SubHeader: frame.SubHeader{
				Pred: frame.PredVerbatim,
			},
			Samples:  samples,
			NSamples: nFrames,
		}
	}

	f := &frame.Frame{
		Header: frame.Header{
			BlockSize:     uint16(nFrames),
			SampleRate:    uint32(s.params.SampleRate),
			Channels:      channels,
			BitsPerSample: BitsPerSample,
		},
		Subframes: subframes,
	}

	if err := s.enc.WriteFrame(f); err != nil {
		return fmt.Errorf("writing flac frame: %w", err)
	}

	s.frames += uint64(nFrames)
	return nil
}

// Close finalizes the stream and closes the file
func (s *FlacSink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	if err := s.enc.Close(); err != nil {
		s.file.Close()
		return fmt.Errorf("closing flac encoder: %w", err)
	}
	if err := s.file.Close(); err != nil {
		return fmt.Errorf("closing flac file: %w", err)
	}
	return nil
}

// Frames returns the number of frames written
func (s *FlacSink) Frames() uint64 {
	return s.frames
}
