// Package models defines data structures shared across the normalizer pipeline.
package models

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoudnessTargets are the broadcast-standard targets every file is normalized
// and verified against. They are configuration constants, not per-call
// parameters.
type LoudnessTargets struct {
	IntegratedLUFS float64 `yaml:"integrated_lufs"`
	RangeLU        float64 `yaml:"range_lu"`
	TruePeakDBTP   float64 `yaml:"true_peak_dbtp"`
}

// Config holds runtime configuration. Values come from an optional YAML file,
// with CLI flags taking precedence over both the file and the defaults.
type Config struct {
	SourceDir  string          `yaml:"source_dir"`
	OutputDir  string          `yaml:"output_dir"`
	Targets    LoudnessTargets `yaml:"targets"`
	Bitrate    string          `yaml:"bitrate"`
	SampleRate int             `yaml:"sample_rate"`
	Workers    int             `yaml:"workers"`
	FFmpegBin  string          `yaml:"ffmpeg_bin"`
	History    bool            `yaml:"history"`
	HistoryDB  string          `yaml:"history_db"`
}

// DefaultConfigFile is looked for in the working directory when --config is
// not given.
const DefaultConfigFile = "aun.yaml"

// DefaultConfig returns the compiled-in defaults: -16 LUFS broadcast target,
// mp3s/ mirrored into normalized/, MP3 at 192 kbps / 44.1 kHz.
func DefaultConfig() *Config {
	return &Config{
		SourceDir: "mp3s",
		OutputDir: "normalized",
		Targets: LoudnessTargets{
			IntegratedLUFS: -16.0,
			RangeLU:        7.0,
			TruePeakDBTP:   -1.0,
		},
		Bitrate:    "192k",
		SampleRate: 44100,
		Workers:    1,
		FFmpegBin:  "ffmpeg",
		History:    true,
	}
}

// LoadConfig reads a YAML config file over the defaults. A missing file is
// fine when the path is the default one; an explicitly named file must exist.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) && !explicit {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return cfg, nil
}
