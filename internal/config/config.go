// Package config provides the configuration structure for the voice-service.
package config

import (
	"fmt"
	"time"

	"github.com/book-expert/configurator"
	"github.com/book-expert/logger"
)

// PathsConfig holds the directories the service works in.
type PathsConfig struct {
	BaseLogsDir string `toml:"base_logs_dir"`
	VoicesDir   string `toml:"voices_dir"`
	StagingDir  string `toml:"staging_dir"`
	OutputDir   string `toml:"output_dir"`
}

// EngineConfig holds the external synthesis engine invocation contract.
type EngineConfig struct {
	PythonBinary           string `toml:"python_binary"`
	GenerateScript         string `toml:"generate_script"`
	ExtractScript          string `toml:"extract_script"`
	GenerateTimeoutSeconds int    `toml:"generate_timeout_seconds"`
	ExtractTimeoutSeconds  int    `toml:"extract_timeout_seconds"`
}

// GenerateTimeout returns the per-generation deadline; zero disables it.
func (e EngineConfig) GenerateTimeout() time.Duration {
	return time.Duration(e.GenerateTimeoutSeconds) * time.Second
}

// ExtractTimeout returns the per-extraction deadline; zero disables it.
func (e EngineConfig) ExtractTimeout() time.Duration {
	return time.Duration(e.ExtractTimeoutSeconds) * time.Second
}

// NATSConfig holds the artifact mirror and notification settings. An empty
// URL disables the NATS side entirely; generation then serves from the local
// output directory only.
type NATSConfig struct {
	URL                        string `toml:"url"`
	GenerationCompletedSubject string `toml:"generation_completed_subject"`
	ArtifactBucket             string `toml:"artifact_bucket"`
	ArtifactTTLSeconds         int    `toml:"artifact_ttl_seconds"`
}

// Enabled reports whether a NATS connection is configured.
func (n NATSConfig) Enabled() bool {
	return n.URL != ""
}

// ArtifactTTL returns the artifact retention period; zero keeps forever.
func (n NATSConfig) ArtifactTTL() time.Duration {
	return time.Duration(n.ArtifactTTLSeconds) * time.Second
}

// HTTPConfig holds the API listener settings.
type HTTPConfig struct {
	Port int `toml:"port"`
}

// Config is the root configuration structure.
type Config struct {
	Paths  PathsConfig  `toml:"paths"`
	Engine EngineConfig `toml:"engine"`
	NATS   NATSConfig   `toml:"nats"`
	HTTP   HTTPConfig   `toml:"http"`
}

// Load loads the configuration for the voice-service.
func Load(log *logger.Logger) (*Config, error) {
	var cfg Config

	err := configurator.Load(&cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration from configurator: %w", err)
	}

	return &cfg, nil
}
