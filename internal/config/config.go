package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// RootConfig is the on-disk layout: named profiles plus the active selection
type RootConfig struct {
	ActiveConfig string             `mapstructure:"active_config" yaml:"active_config"`
	Configs      map[string]*Config `mapstructure:"configs" yaml:"configs"`
}

// Config is a fully resolved recording configuration
type Config struct {
	Audio     AudioConfig     `mapstructure:"audio" yaml:"audio"`
	Output    OutputConfig    `mapstructure:"output" yaml:"output"`
	Interrupt InterruptConfig `mapstructure:"interrupt" yaml:"interrupt"`
}

type AudioConfig struct {
	SampleRate int    `mapstructure:"sample_rate" yaml:"sample_rate"`
	Channels   int    `mapstructure:"channels" yaml:"channels"`
	Quality    string `mapstructure:"quality" yaml:"quality"` // "low", "medium", "high"
	Backend    string `mapstructure:"backend" yaml:"backend"` // "malgo", "auto"
	Device     string `mapstructure:"device" yaml:"device"`   // capture device ID, empty = system default
}

type OutputConfig struct {
	Directory string `mapstructure:"directory" yaml:"directory"`
	FileName  string `mapstructure:"file_name" yaml:"file_name"` // base name without extension
	Format    string `mapstructure:"format" yaml:"format"`       // "wav", "flac"
}

type InterruptConfig struct {
	Source string `mapstructure:"source" yaml:"source"` // "signals", "none"
}

var defaultConfig = Config{
	Audio: AudioConfig{
		SampleRate: 12000,
		Channels:   1,
		Quality:    "high",
		Backend:    "auto",
	},
	Output: OutputConfig{
		Directory: filepath.Join(os.Getenv("HOME"), "Audio", "PocketRec"),
		FileName:  "testRecording",
		Format:    "flac",
	},
	Interrupt: InterruptConfig{
		Source: "signals",
	},
}

// Default returns a copy of the built-in configuration
func Default() *Config {
	cfg := defaultConfig
	return &cfg
}

// LoadWithProfile loads the configuration file and resolves the requested
// profile. An empty profile falls back to active_config from the file, then
// to "default". A missing config file yields the built-in defaults.
func LoadWithProfile(configFile, profile string) (*Config, error) {
	if configFile == "" {
		return nil, fmt.Errorf("no config file specified, use --config flag")
	}

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		if profile != "" {
			return nil, fmt.Errorf("config file %s not found, cannot resolve profile '%s'", configFile, profile)
		}
		return Default(), nil
	}

	rootConfig, err := readRootConfig(configFile)
	if err != nil {
		return nil, err
	}

	configName := profile
	if configName == "" {
		configName = rootConfig.ActiveConfig
	}
	if configName == "" {
		configName = "default"
	}

	selected, exists := rootConfig.Configs[configName]
	if !exists {
		if configName == "default" && len(rootConfig.Configs) == 0 {
			// File holds only top-level settings; defaults fill the rest
			selected = &Config{}
		} else {
			return nil, fmt.Errorf("configuration profile '%s' not found", configName)
		}
	}

	// Merge onto the file's default profile first, then the built-ins
	resolved := selected
	if configName != "default" {
		if defaultProfile, exists := rootConfig.Configs["default"]; exists {
			resolved = mergeConfigs(defaultProfile, resolved)
		}
	}
	resolved = mergeConfigs(Default(), resolved)

	resolved.Output.Directory = expandPath(resolved.Output.Directory)

	if err := Validate(resolved); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return resolved, nil
}

func readRootConfig(configFile string) (*RootConfig, error) {
	v := viper.New()
	v.SetConfigFile(configFile)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", configFile, err)
	}

	var rootConfig RootConfig
	if err := v.Unmarshal(&rootConfig); err != nil {
		return nil, fmt.Errorf("error parsing config file %s: %w", configFile, err)
	}

	return &rootConfig, nil
}

// UpdateActiveConfig updates the active_config field in the config file
func UpdateActiveConfig(configFile, newActiveConfig string) error {
	if configFile == "" {
		return fmt.Errorf("no config file specified")
	}

	v := viper.New()
	v.SetConfigFile(configFile)

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("error reading config file %s: %w", configFile, err)
	}

	v.Set("active_config", newActiveConfig)

	if err := v.WriteConfig(); err != nil {
		return fmt.Errorf("error writing config file %s: %w", configFile, err)
	}

	return nil
}

// mergeConfigs fills unset profile fields from the base configuration.
// Zero values mean "inherit": this recorder has no setting where an
// explicit zero is meaningful.
func mergeConfigs(base, profile *Config) *Config {
	result := *profile

	if result.Audio.SampleRate == 0 {
		result.Audio.SampleRate = base.Audio.SampleRate
	}
	if result.Audio.Channels == 0 {
		result.Audio.Channels = base.Audio.Channels
	}
	if result.Audio.Quality == "" {
		result.Audio.Quality = base.Audio.Quality
	}
	if result.Audio.Backend == "" {
		result.Audio.Backend = base.Audio.Backend
	}
	if result.Audio.Device == "" {
		result.Audio.Device = base.Audio.Device
	}

	if result.Output.Directory == "" {
		result.Output.Directory = base.Output.Directory
	}
	if result.Output.FileName == "" {
		result.Output.FileName = base.Output.FileName
	}
	if result.Output.Format == "" {
		result.Output.Format = base.Output.Format
	}

	if result.Interrupt.Source == "" {
		result.Interrupt.Source = base.Interrupt.Source
	}

	return &result
}

// Validate checks a resolved configuration for usable values
func Validate(cfg *Config) error {
	if cfg.Audio.SampleRate < 8000 || cfg.Audio.SampleRate > 192000 {
		return fmt.Errorf("audio.sample_rate %d out of range [8000, 192000]", cfg.Audio.SampleRate)
	}
	if cfg.Audio.Channels < 1 || cfg.Audio.Channels > 2 {
		return fmt.Errorf("audio.channels must be 1 or 2, got %d", cfg.Audio.Channels)
	}

	switch strings.ToLower(cfg.Audio.Quality) {
	case "low", "medium", "high":
	default:
		return fmt.Errorf("audio.quality must be low, medium or high, got %q", cfg.Audio.Quality)
	}

	switch strings.ToLower(cfg.Audio.Backend) {
	case "malgo", "auto":
	default:
		return fmt.Errorf("audio.backend must be malgo or auto, got %q", cfg.Audio.Backend)
	}

	switch strings.ToLower(cfg.Output.Format) {
	case "wav", "flac":
	default:
		return fmt.Errorf("output.format must be wav or flac, got %q", cfg.Output.Format)
	}

	if cfg.Output.FileName == "" {
		return fmt.Errorf("output.file_name must not be empty")
	}
	if strings.ContainsAny(cfg.Output.FileName, `/\`) {
		return fmt.Errorf("output.file_name must not contain path separators: %q", cfg.Output.FileName)
	}

	switch strings.ToLower(cfg.Interrupt.Source) {
	case "signals", "none":
	default:
		return fmt.Errorf("interrupt.source must be signals or none, got %q", cfg.Interrupt.Source)
	}

	return nil
}

// expandPath expands a leading tilde to the user home directory
func expandPath(path string) string {
	if path == "~" {
		return os.Getenv("HOME")
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(os.Getenv("HOME"), path[2:])
	}
	return path
}
