package audio

import (
	"strings"

	"github.com/audiolibrelab/pocketrec/internal/config"
)

// BackendType represents the type of audio backend
type BackendType string

const (
	BackendTypeMalgo BackendType = "malgo"
	BackendTypeAuto  BackendType = "auto"
)

// AudioBackend defines the interface for audio backend implementations
type AudioBackend interface {
	// Create a new recorder instance
	NewRecorder(cfg *config.Config) Recorder

	// List available capture devices
	ListDevices() ([]DeviceInfo, error)

	// Get the backend type
	GetType() BackendType
}

// NewRecorder creates a recorder using the appropriate backend based on configuration
func NewRecorder(cfg *config.Config) Recorder {
	backendType := determineBackend(cfg)

	switch backendType {
	case BackendTypeMalgo:
		backend := &MalgoBackend{}
		return backend.NewRecorder(cfg)
	default:
		// Default to malgo as the only available backend
		backend := &MalgoBackend{}
		return backend.NewRecorder(cfg)
	}
}

// determineBackend determines which backend to use based on configuration
func determineBackend(cfg *config.Config) BackendType {
	if cfg.Audio.Backend != "" {
		switch strings.ToLower(cfg.Audio.Backend) {
		case "malgo":
			return BackendTypeMalgo
		case "auto":
			return BackendTypeMalgo // Only malgo is available now
		}
	}

	return BackendTypeMalgo
}

// GetAvailableBackends returns list of available backends on current system
func GetAvailableBackends() []BackendType {
	return []BackendType{BackendTypeMalgo}
}
