// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Dashboard DashboardConfig `toml:"dashboard"`
	Timer     TimerConfig     `toml:"timer"`
	Coach     CoachConfig     `toml:"coach"`
	Log       LogConfig       `toml:"log"`
	Syllabus  SyllabusConfig  `toml:"syllabus"`
}

// DashboardConfig maps dashboard filter defaults.
type DashboardConfig struct {
	Subject     *string `toml:"subject"`
	TrendWindow *int    `toml:"trend-window"`
}

// TimerConfig maps focus timer durations in minutes.
type TimerConfig struct {
	Focus      *int `toml:"focus"`
	ShortBreak *int `toml:"short-break"`
	LongBreak  *int `toml:"long-break"`
}

// CoachConfig maps AI coach settings.
type CoachConfig struct {
	Model *string `toml:"model"`
}

// LogConfig maps log file settings.
type LogConfig struct {
	Level *string `toml:"level"`
	File  *string `toml:"file"`
}

// SyllabusConfig maps the topic list location.
type SyllabusConfig struct {
	Dir *string `toml:"dir"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
