package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileConfig is the optional YAML service configuration. Environment
// variables override every field.
type fileConfig struct {
	Port     string `yaml:"port"`
	LogLevel string `yaml:"log_level"`

	Extractor struct {
		// Endpoint of the content-reconstruction service. When set, the
		// HTTP client is used.
		Endpoint string `yaml:"endpoint"`

		// OpenAI-compatible fallback when no endpoint is configured.
		OpenAIAPIKey  string `yaml:"openai_api_key"`
		OpenAIBaseURL string `yaml:"openai_base_url"`
		OpenAIModel   string `yaml:"openai_model"`
	} `yaml:"extractor"`

	Browser struct {
		// RemoteURL of an external Chrome instance; empty launches a
		// local headless one.
		RemoteURL string `yaml:"remote_url"`
	} `yaml:"browser"`
}

// loadConfig reads the YAML file (if any) and applies env overrides.
func loadConfig(path string) (*fileConfig, error) {
	cfg := &fileConfig{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.Port = env("PORT", defaultStr(cfg.Port, "8090"))
	cfg.LogLevel = env("LOG_LEVEL", defaultStr(cfg.LogLevel, "info"))
	cfg.Extractor.Endpoint = env("EXTRACTOR_URL", cfg.Extractor.Endpoint)
	cfg.Extractor.OpenAIAPIKey = env("OPENAI_API_KEY", cfg.Extractor.OpenAIAPIKey)
	cfg.Extractor.OpenAIBaseURL = env("OPENAI_BASE_URL", cfg.Extractor.OpenAIBaseURL)
	cfg.Extractor.OpenAIModel = env("OPENAI_MODEL", cfg.Extractor.OpenAIModel)
	cfg.Browser.RemoteURL = env("BROWSER_REMOTE_URL", cfg.Browser.RemoteURL)

	return cfg, nil
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func defaultStr(v, def string) string {
	if v != "" {
		return v
	}
	return def
}
