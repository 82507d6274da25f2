package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFile overlays the YAML document at path onto base. Keys absent from the
// file keep their base values.
func LoadFile(path string, base Config) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	cfg := base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
	}
	cfg.Storage = normalizeKeyword(cfg.Storage)
	cfg.PasswordScheme = normalizeKeyword(cfg.PasswordScheme)
	cfg.LogLevel = normalizeKeyword(cfg.LogLevel)
	cfg.LogFormat = normalizeKeyword(cfg.LogFormat)
	return cfg, nil
}

func normalizeKeyword(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
