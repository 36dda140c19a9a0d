// Package config loads and validates the TOML configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/BurntSushi/toml"
)

type Config struct {
	SampleRate          int      `toml:"sample_rate"`
	VADThreshold        float64  `toml:"vad_threshold"`
	MaxRecordingSeconds int      `toml:"max_recording_seconds"`
	FlushIntervalMs     int      `toml:"flush_interval_ms"`
	RestoreDelayMs      int      `toml:"paste_restore_delay_ms"`
	Modes               []string `toml:"modes"`
	ActiveMode          string   `toml:"active_mode"`
	STTModel            string   `toml:"stt_model"`
	EnhanceModel        string   `toml:"enhance_model"`
	UploadEncoding      string   `toml:"upload_encoding"`
	Device              string   `toml:"device"`
	Language            string   `toml:"language"`
}

func Default() Config {
	return Config{
		SampleRate:          16000,
		VADThreshold:        0.05,
		MaxRecordingSeconds: 600,
		FlushIntervalMs:     50,
		RestoreDelayMs:      100,
		Modes:               []string{"minimal", "professional", "casual", "code", "funny"},
		ActiveMode:          "professional",
		STTModel:            "whisper-1",
		EnhanceModel:        "claude-haiku-4-5",
		UploadEncoding:      "wav",
	}
}

// DefaultPath is the config file location under the user config directory.
func DefaultPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "murmur", "config.toml"), nil
}

// Load reads path on top of defaults. A missing file returns defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes the config, creating the directory if needed.
func (c Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(c)
}

func (c Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("sample_rate must be positive, got %d", c.SampleRate)
	}
	if c.VADThreshold < 0.01 || c.VADThreshold > 0.5 {
		return fmt.Errorf("vad_threshold must be in [0.01, 0.5], got %g", c.VADThreshold)
	}
	if c.MaxRecordingSeconds <= 0 {
		return fmt.Errorf("max_recording_seconds must be positive, got %d", c.MaxRecordingSeconds)
	}
	if len(c.Modes) == 0 {
		return fmt.Errorf("modes must not be empty")
	}
	if !slices.Contains(c.Modes, c.ActiveMode) {
		return fmt.Errorf("active_mode %q is not in modes %v", c.ActiveMode, c.Modes)
	}
	switch c.UploadEncoding {
	case "", "wav", "flac":
	default:
		return fmt.Errorf("upload_encoding must be wav or flac, got %q", c.UploadEncoding)
	}
	if c.FlushIntervalMs < 0 {
		return fmt.Errorf("flush_interval_ms must not be negative, got %d", c.FlushIntervalMs)
	}
	if c.RestoreDelayMs < 0 {
		return fmt.Errorf("paste_restore_delay_ms must not be negative, got %d", c.RestoreDelayMs)
	}
	return nil
}
