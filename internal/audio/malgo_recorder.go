package audio

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gen2brain/malgo"

	"github.com/audiolibrelab/pocketrec/internal/config"
	"github.com/audiolibrelab/pocketrec/internal/encoder"
)

// MalgoRecorder implements the Recorder interface on top of miniaudio.
// The device callback feeds interleaved S16 PCM into an encoder sink; Pause
// stops the device without finalizing the sink, Stop finalizes the file.
type MalgoRecorder struct {
	cfg *config.Config

	mutex      sync.Mutex
	ctx        *malgo.AllocatedContext
	device     *malgo.Device
	sink       encoder.Sink
	outputFile string
	blockSize  int
	pending    []int16
	prepared   bool
}

// NewMalgoRecorder creates a new malgo-based recorder
func NewMalgoRecorder(cfg *config.Config) *MalgoRecorder {
	return &MalgoRecorder{
		cfg:       cfg,
		blockSize: blockSizeForQuality(cfg.Audio.Quality),
	}
}

// blockSizeForQuality maps the configured quality to the number of frames
// buffered before each sink write. Larger blocks encode more efficiently at
// the cost of flush latency.
func blockSizeForQuality(quality string) int {
	switch strings.ToLower(quality) {
	case "low":
		return 1024
	case "medium":
		return 2048
	default:
		return encoder.BlockSize
	}
}

// Prepare configures the backend context and binds the capture device to
// the configured output destination.
func (r *MalgoRecorder) Prepare() error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.prepared {
		return nil
	}

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSessionConfiguration, err)
	}

	if err := os.MkdirAll(r.cfg.Output.Directory, 0755); err != nil {
		ctx.Uninit()
		ctx.Free()
		return fmt.Errorf("%w: creating output directory: %v", ErrResourcePreparation, err)
	}

	ext, err := encoder.Extension(r.cfg.Output.Format)
	if err != nil {
		ctx.Uninit()
		ctx.Free()
		return fmt.Errorf("%w: %v", ErrResourcePreparation, err)
	}
	outputFile := filepath.Join(r.cfg.Output.Directory, r.cfg.Output.FileName+"."+ext)

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatS16
	deviceConfig.Capture.Channels = uint32(r.cfg.Audio.Channels)
	deviceConfig.SampleRate = uint32(r.cfg.Audio.SampleRate)

	if r.cfg.Audio.Device != "" {
		idBytes, err := hex.DecodeString(r.cfg.Audio.Device)
		if err != nil {
			ctx.Uninit()
			ctx.Free()
			return fmt.Errorf("%w: invalid device ID: %v", ErrResourcePreparation, err)
		}
		var devID malgo.DeviceID
		copy(devID[:], idBytes)
		deviceConfig.Capture.DeviceID = devID.Pointer()
	}

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, data []byte, frameCount uint32) {
			r.consume(data, frameCount)
		},
	}

	device, err := malgo.InitDevice(ctx.Context, deviceConfig, callbacks)
	if err != nil {
		ctx.Uninit()
		ctx.Free()
		return fmt.Errorf("%w: %v", ErrResourcePreparation, err)
	}

	r.ctx = ctx
	r.device = device
	r.outputFile = outputFile
	r.prepared = true

	slog.Debug("Capture resource prepared",
		"output", outputFile,
		"sample_rate", r.cfg.Audio.SampleRate,
		"channels", r.cfg.Audio.Channels,
		"quality", r.cfg.Audio.Quality)
	return nil
}

// consume runs on the device callback thread
func (r *MalgoRecorder) consume(data []byte, frameCount uint32) {
	samples := make([]int16, len(data)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.sink == nil {
		return
	}

	r.pending = append(r.pending, samples...)
	blockSamples := r.blockSize * r.cfg.Audio.Channels
	for len(r.pending) >= blockSamples {
		if err := r.sink.Write(r.pending[:blockSamples]); err != nil {
			slog.Error("Failed to write capture block", "error", err)
			return
		}
		r.pending = r.pending[blockSamples:]
	}
}

// Start begins or resumes capturing. After Stop it opens a fresh take over
// the same destination.
func (r *MalgoRecorder) Start() error {
	r.mutex.Lock()

	if !r.prepared {
		r.mutex.Unlock()
		return fmt.Errorf("recorder not prepared")
	}

	if r.sink == nil {
		sink, err := encoder.NewSink(r.cfg.Output.Format, r.outputFile, encoder.Params{
			SampleRate: r.cfg.Audio.SampleRate,
			Channels:   r.cfg.Audio.Channels,
		})
		if err != nil {
			r.mutex.Unlock()
			return fmt.Errorf("%w: %v", ErrResourcePreparation, err)
		}
		r.sink = sink
		r.pending = r.pending[:0]
	}
	device := r.device
	r.mutex.Unlock()

	// Started devices deliver callbacks immediately; do not hold the
	// sink mutex across the start call.
	if err := device.Start(); err != nil {
		return fmt.Errorf("starting capture device: %w", err)
	}
	return nil
}

// Pause suspends capturing without finalizing the output
func (r *MalgoRecorder) Pause() error {
	r.mutex.Lock()
	device := r.device
	prepared := r.prepared
	r.mutex.Unlock()

	if !prepared {
		return fmt.Errorf("recorder not prepared")
	}

	if err := device.Stop(); err != nil {
		return fmt.Errorf("pausing capture device: %w", err)
	}
	return nil
}

// Stop suspends capturing and finalizes the output file
func (r *MalgoRecorder) Stop() error {
	r.mutex.Lock()
	device := r.device
	prepared := r.prepared
	r.mutex.Unlock()

	if !prepared {
		return fmt.Errorf("recorder not prepared")
	}

	if err := device.Stop(); err != nil {
		return fmt.Errorf("stopping capture device: %w", err)
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.sink == nil {
		return nil
	}

	// Flush the remainder that never filled a whole block
	if len(r.pending) > 0 {
		if err := r.sink.Write(r.pending); err != nil {
			slog.Error("Failed to flush capture remainder", "error", err)
		}
		r.pending = r.pending[:0]
	}

	sink := r.sink
	r.sink = nil
	if err := sink.Close(); err != nil {
		return fmt.Errorf("finalizing output file: %w", err)
	}

	slog.Debug("Recording finalized", "output", r.outputFile, "frames", sink.Frames())
	return nil
}

// Cleanup releases the device and backend context
func (r *MalgoRecorder) Cleanup() error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.device != nil {
		r.device.Uninit()
		r.device = nil
	}
	if r.sink != nil {
		r.sink.Close()
		r.sink = nil
	}
	if r.ctx != nil {
		r.ctx.Uninit()
		r.ctx.Free()
		r.ctx = nil
	}
	r.prepared = false
	return nil
}

// OutputFile returns the destination path, empty before Prepare
func (r *MalgoRecorder) OutputFile() string {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.outputFile
}
