package subscribeon

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"

	"github.com/rs/zerolog"
	yaml "go.yaml.in/yaml/v3"
)

// Config is the file form of a method registry.
//
//	log_level: info
//	methods:
//	  FetchUsers: io
//	  Score: computation
type Config struct {
	LogLevel string              `yaml:"log_level"`
	Methods  map[string]Strategy `yaml:"methods"`
}

// LoadConfig reads a YAML config file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes YAML, rejecting unknown fields and strategies.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("yaml unmarshal: %w", err)
	}
	if _, err := cfg.Level(); err != nil {
		return Config{}, err
	}
	// Null nodes never reach Strategy.UnmarshalYAML and decode as the zero value.
	for _, name := range slices.Sorted(maps.Keys(cfg.Methods)) {
		if !cfg.Methods[name].Valid() {
			return Config{}, fmt.Errorf("methods.%s: %w", name, ErrUnknownStrategy)
		}
	}
	return cfg, nil
}

// Level parses LogLevel, defaulting to info.
func (c Config) Level() (zerolog.Level, error) {
	if c.LogLevel == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("log_level: %w", err)
	}
	return level, nil
}

// Registry builds a registry holding every configured method.
func (c Config) Registry() *Registry {
	registry := NewRegistry()
	for name, strategy := range c.Methods {
		registry.Annotate(name, strategy)
	}
	return registry
}
