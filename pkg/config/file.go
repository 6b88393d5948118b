package config

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// FileConfig is the YAML config file layout. Empty fields leave the
// environment values in place.
type FileConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogOutput string `yaml:"log_output"`
}

// LoadFile reads and strictly decodes a YAML config file. An empty file is valid.
func LoadFile(path string) (FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return FileConfig{}, fmt.Errorf("read config file: %w", err)
	}

	var file FileConfig
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil && err != io.EOF {
		return FileConfig{}, fmt.Errorf("parse config file %s: %w", path, err)
	}

	return file, nil
}

// ApplyTo overlays the non-empty file values on cfg
func (f FileConfig) ApplyTo(cfg Config) Config {
	if f.LogLevel != "" {
		cfg.LogLevel = f.LogLevel
	}
	if f.LogOutput != "" {
		cfg.LogOutput = f.LogOutput
	}
	return cfg
}
