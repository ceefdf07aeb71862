package audio

import (
	"encoding/hex"
	"fmt"

	"github.com/gen2brain/malgo"

	"github.com/audiolibrelab/pocketrec/internal/config"
)

// MalgoBackend implements the AudioBackend interface for miniaudio/malgo
type MalgoBackend struct{}

// NewRecorder creates a new malgo recorder
func (b *MalgoBackend) NewRecorder(cfg *config.Config) Recorder {
	return NewMalgoRecorder(cfg)
}

// ListDevices returns available capture devices
func (b *MalgoBackend) ListDevices() ([]DeviceInfo, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionConfiguration, err)
	}
	defer func() {
		ctx.Uninit()
		ctx.Free()
	}()

	devices, err := ctx.Devices(malgo.Capture)
	if err != nil {
		return nil, fmt.Errorf("listing capture devices: %w", err)
	}

	var result []DeviceInfo
	for _, d := range devices {
		result = append(result, DeviceInfo{
			ID:   hex.EncodeToString(d.ID[:]),
			Name: d.Name(),
		})
	}
	return result, nil
}

// GetType returns the backend type
func (b *MalgoBackend) GetType() BackendType {
	return BackendTypeMalgo
}
