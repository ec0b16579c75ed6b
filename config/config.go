package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Relay   RelayConfig   `yaml:"relay"`
	Gateway GatewayConfig `yaml:"gateway"`
	Speech  SpeechConfig  `yaml:"speech"`
	Log     LogConfig     `yaml:"log"`
}

type RelayConfig struct {
	URL string `yaml:"url"`
}

type GatewayConfig struct {
	Addr string `yaml:"addr"`
}

type SpeechConfig struct {
	SynthURL   string `yaml:"synth_url"`
	Voice      string `yaml:"voice"`
	Muted      bool   `yaml:"muted"`
	SampleRate int    `yaml:"sample_rate"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.setDefaults()

	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Relay.URL == "" {
		c.Relay.URL = "http://localhost:4000"
	}
	if c.Gateway.Addr == "" {
		c.Gateway.Addr = ":8080"
	}
	if c.Speech.SynthURL == "" {
		c.Speech.SynthURL = "http://localhost:5002"
	}
	if c.Speech.SampleRate == 0 {
		c.Speech.SampleRate = 22050
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}
