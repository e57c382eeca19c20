package main

import (
	"fmt"

	"github.com/skillsenselab/speechkit/config"
	"github.com/skillsenselab/speechkit/server"
	"github.com/skillsenselab/speechkit/transcription"
	"github.com/skillsenselab/speechkit/transcription/whisper"
	"github.com/skillsenselab/speechkit/transcription/whispercpp"
	"github.com/skillsenselab/speechkit/translation/libre"
)

// Config is the full sttd service configuration. Values come from sttd.yml,
// .env files, and environment variables (see config.LoadConfig).
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Server      server.Config     `yaml:"server" mapstructure:"server"`
	Speech      SpeechConfig      `yaml:"speech" mapstructure:"speech"`
	Translation TranslationConfig `yaml:"translation" mapstructure:"translation"`
	Telemetry   TelemetryConfig   `yaml:"telemetry" mapstructure:"telemetry"`
}

// SpeechConfig selects and configures the transcription backend.
type SpeechConfig struct {
	// Backend picks the transcription engine: "whisper" (sidecar) or
	// "whispercpp" (subprocess).
	Backend string `yaml:"backend" mapstructure:"backend"`
	// ModelSize overrides the WHISPER_MODEL environment variable.
	ModelSize string `yaml:"model_size" mapstructure:"model_size"`
	// TempDir stages uploaded audio. Defaults to the OS temp dir.
	TempDir string `yaml:"temp_dir" mapstructure:"temp_dir"`

	Whisper    whisper.Config    `yaml:"whisper" mapstructure:"whisper"`
	WhisperCPP whispercpp.Config `yaml:"whispercpp" mapstructure:"whispercpp"`
}

// TranslationConfig configures the optional translation provider.
type TranslationConfig struct {
	Enabled bool         `yaml:"enabled" mapstructure:"enabled"`
	Libre   libre.Config `yaml:"libre" mapstructure:"libre"`
}

// TelemetryConfig configures OTLP metric and trace export.
type TelemetryConfig struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure bool   `yaml:"insecure" mapstructure:"insecure"`
}

// ApplyDefaults fills unset fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "sttd"
	}
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()

	if c.Speech.Backend == "" {
		c.Speech.Backend = whisper.BackendName
	}
	if c.Telemetry.Endpoint == "" {
		c.Telemetry.Endpoint = "localhost:4318"
		c.Telemetry.Insecure = true
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return err
	}
	switch c.Speech.Backend {
	case whisper.BackendName, whispercpp.BackendName:
	default:
		return fmt.Errorf("speech.backend must be %q or %q (got: %q)",
			whisper.BackendName, whispercpp.BackendName, c.Speech.Backend)
	}
	return nil
}

// ModelSize resolves the configured model size, falling back to the
// WHISPER_MODEL environment variable and then the default. Invalid values
// fall back rather than fail.
func (c *Config) ModelSize() transcription.ModelSize {
	if c.Speech.ModelSize != "" {
		if size, err := transcription.ParseModelSize(c.Speech.ModelSize); err == nil {
			return size
		}
	}
	return transcription.ModelSizeFromEnv()
}
