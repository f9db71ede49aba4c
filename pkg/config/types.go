package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the main configuration struct.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
	Assistant AssistantConfig `yaml:"assistant"`
	Sweep     SweepConfig     `yaml:"sweep"`
	Undo      UndoConfig      `yaml:"undo"`
}

// ServerConfig holds listen address and storage path settings.
type ServerConfig struct {
	Address string `yaml:"address"`
	Port    int    `yaml:"port"`
	DBPath  string `yaml:"db_path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// AssistantConfig configures the synthetic assistant participant and its
// reply-generator collaborator.
type AssistantConfig struct {
	// ID is the reserved participant identity for the assistant.
	ID string `yaml:"id"`
	// Model is the completion model requested from the collaborator.
	Model string `yaml:"model"`
	// APIKeyEnv names the env var holding the collaborator API key. When
	// the variable is empty the scripted fallback replier is used.
	APIKeyEnv string `yaml:"api_key_env"`
	// RPS/Burst throttle outbound reply requests.
	RPS     float64  `yaml:"rps"`
	Burst   int      `yaml:"burst"`
	Timeout Duration `yaml:"timeout"`
}

// SweepConfig holds configuration for the expired-story purge runner.
type SweepConfig struct {
	Enabled bool   `yaml:"enabled"`
	Cron    string `yaml:"cron"`
}

// UndoConfig tunes the two-phase delete choreography.
type UndoConfig struct {
	// Grace is the cancellation window before a pending deletion commits.
	Grace Duration `yaml:"grace"`
	// LongPress is the sustained-press threshold that arms a deletion.
	LongPress Duration `yaml:"long_press"`
}

// Duration is a wrapper around time.Duration that supports YAML parsing
// from strings like "100ms" or plain numbers (interpreted as seconds).
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node == nil {
		*d = Duration(0)
		return nil
	}
	raw := strings.TrimSpace(node.Value)
	if raw == "" {
		*d = Duration(0)
		return nil
	}
	if td, err := time.ParseDuration(raw); err == nil {
		*d = Duration(td)
		return nil
	}
	// allow numeric seconds
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		*d = Duration(time.Duration(f * float64(time.Second)))
		return nil
	}
	return fmt.Errorf("invalid duration value: %q", node.Value)
}

func (d Duration) Duration() time.Duration { return time.Duration(d) }
