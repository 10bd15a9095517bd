// Package config holds the explicit settings struct passed into session
// setup. Defaults live here, not in process-wide state; a YAML file and CLI
// flags layer on top.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Defaults for a local one-shot session.
const (
	DefaultHost     = "127.0.0.1"
	DefaultPort     = 4433
	DefaultMaxChunk = 4096
	DefaultRounds   = 2
)

// Settings is the full configuration surface of a tlstalk run.
type Settings struct {
	// Host is the listen address.
	Host string `yaml:"host"`
	// Port is the listen port.
	Port int `yaml:"port"`
	// CertFile and KeyFile name the PEM pair; both empty means
	// auto-generate a self-signed pair in memory.
	CertFile string `yaml:"cert"`
	KeyFile  string `yaml:"key"`
	// KeyLogFile, when set, receives TLS session key material for
	// passive decryption tooling.
	KeyLogFile string `yaml:"keylog"`
	// LogLevel controls zap verbosity; empty defers to TLSTALK_LOG_LEVEL.
	LogLevel string `yaml:"log_level"`
	// MaxChunk caps single reads from the stream.
	MaxChunk int `yaml:"max_chunk"`
	// Rounds bounds the demo driver's round-trips.
	Rounds int `yaml:"rounds"`
	// Announce advertises the listening endpoint over mDNS.
	Announce bool `yaml:"announce"`
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		Host:     DefaultHost,
		Port:     DefaultPort,
		MaxChunk: DefaultMaxChunk,
		Rounds:   DefaultRounds,
	}
}

// Load reads settings from a YAML file layered over the defaults. A missing
// path returns the defaults unchanged.
func Load(path string) (Settings, error) {
	s := Default()
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parse config: %w", err)
	}

	// Zeroed numeric fields in the file fall back to defaults
	if s.MaxChunk <= 0 {
		s.MaxChunk = DefaultMaxChunk
	}
	if s.Rounds <= 0 {
		s.Rounds = DefaultRounds
	}
	return s, nil
}

// Validate checks the settings for obvious mistakes before any socket is
// bound.
func (s *Settings) Validate() error {
	if s.Port < 1 || s.Port > 65535 {
		return fmt.Errorf("invalid port: %d", s.Port)
	}
	if (s.CertFile == "") != (s.KeyFile == "") {
		return fmt.Errorf("cert and key must be provided together, or neither")
	}
	if s.CertFile != "" {
		if _, err := os.Stat(s.CertFile); os.IsNotExist(err) {
			return fmt.Errorf("certificate file not found: %s", s.CertFile)
		}
		if _, err := os.Stat(s.KeyFile); os.IsNotExist(err) {
			return fmt.Errorf("private key file not found: %s", s.KeyFile)
		}
	}
	return nil
}
