package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Config keeps the settings of the server. It can be read from a YAML file;
// command-line flags take precedence over the file.
type Config struct {
	// File to write debug logs to.
	Log string `yaml:"log"`
	// History database.
	DB string `yaml:"db"`
	// Elvish script evaluated before serving.
	RC string `yaml:"rc"`
	// One of "headless", "native" and "auto".
	Terminal string `yaml:"terminal"`
}

// Values of Config.Terminal.
const (
	TerminalHeadless = "headless"
	TerminalNative   = "native"
	TerminalAuto     = "auto"
)

// LoadConfig reads a Config from the YAML file at path. Unknown keys are
// errors.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, cfg.validate()
}

// Merge returns c with every non-empty field of override applied.
func (c Config) Merge(override Config) Config {
	if override.Log != "" {
		c.Log = override.Log
	}
	if override.DB != "" {
		c.DB = override.DB
	}
	if override.RC != "" {
		c.RC = override.RC
	}
	if override.Terminal != "" {
		c.Terminal = override.Terminal
	}
	return c
}

func (c Config) validate() error {
	switch c.Terminal {
	case "", TerminalHeadless, TerminalNative, TerminalAuto:
		return nil
	default:
		return fmt.Errorf("invalid terminal %q, must be one of %s, %s or %s",
			c.Terminal, TerminalHeadless, TerminalNative, TerminalAuto)
	}
}
