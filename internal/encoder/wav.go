package encoder

import (
	"encoding/binary"
	"fmt"
	"os"
)

const wavHeaderSize = 44

// WavSink writes a PCM wav file. The header is written with zero sizes up
// front and patched on Close once the data length is known.
type WavSink struct {
	file    *os.File
	params  Params
	frames  uint64
	dataLen uint32
	closed  bool
}

// NewWav creates a wav sink writing to path
func NewWav(path string, params Params) (*WavSink, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating wav file: %w", err)
	}

	s := &WavSink{file: file, params: params}
	if err := s.writeHeader(); err != nil {
		file.Close()
		os.Remove(path)
		return nil, err
	}
	return s, nil
}

func (s *WavSink) writeHeader() error {
	var header [wavHeaderSize]byte

	byteRate := uint32(s.params.SampleRate * s.params.Channels * BitsPerSample / 8)
	blockAlign := uint16(s.params.Channels * BitsPerSample / 8)

	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], 36+s.dataLen)
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16) // PCM chunk size
	binary.LittleEndian.PutUint16(header[20:22], 1)  // PCM format
	binary.LittleEndian.PutUint16(header[22:24], uint16(s.params.Channels))
	binary.LittleEndian.PutUint32(header[24:28], uint32(s.params.SampleRate))
	binary.LittleEndian.PutUint32(header[28:32], byteRate)
	binary.LittleEndian.PutUint16(header[32:34], blockAlign)
	binary.LittleEndian.PutUint16(header[34:36], BitsPerSample)
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], s.dataLen)

	if _, err := s.file.WriteAt(header[:], 0); err != nil {
		return fmt.Errorf("writing wav header: %w", err)
	}
	return nil
}

// Write appends an interleaved PCM block
func (s *WavSink) Write(block []int16) error {
	if s.closed {
		return fmt.Errorf("wav sink already closed")
	}
	if len(block) == 0 {
		return nil
	}

	buf := make([]byte, len(block)*2)
	for i, sample := range block {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(sample))
	}

	if _, err := s.file.WriteAt(buf, int64(wavHeaderSize)+int64(s.dataLen)); err != nil {
		return fmt.Errorf("writing wav data: %w", err)
	}

	s.dataLen += uint32(len(buf))
	s.frames += uint64(len(block) / s.params.Channels)
	return nil
}

// Close patches the header sizes and closes the file
func (s *WavSink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	if err := s.writeHeader(); err != nil {
		s.file.Close()
		return err
	}
	if err := s.file.Close(); err != nil {
		return fmt.Errorf("closing wav file: %w", err)
	}
	return nil
}

// Frames returns the number of frames written
func (s *WavSink) Frames() uint64 {
	return s.frames
}
