// Package config manages persistent user preferences for the bancho
// client. Settings are stored as JSON at os.UserConfigDir()/banchoclient/config.json.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Config holds every preference the facade needs across runs (§6).
type Config struct {
	Username             string `json:"username"`
	Server               string `json:"server"`
	Stream               string `json:"stream"`
	Version              string `json:"version"`
	Tournament           bool   `json:"tournament"`
	UseTCP               bool   `json:"use_tcp"`
	TCPAddr              string `json:"tcp_addr"`
	DisableChatLogging   bool   `json:"disable_chat_logging"`
	DisableLogging       bool   `json:"disable_logging"`
	MinIdleSeconds       float64 `json:"min_idle_seconds"`
	MaxIdleSeconds       float64 `json:"max_idle_seconds"`
}

// Default returns a Config populated with the historical client's defaults.
func Default() Config {
	return Config{
		Server:         "ppy.sh",
		Stream:         "stable40",
		MinIdleSeconds: 1,
		MaxIdleSeconds: 4,
	}
}

// Path returns the absolute path to the config file.
func Path() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "banchoclient", "config.json"), nil
}

// Load reads the config file and returns it. If the file is missing or
// unreadable, the default config is returned — never an error.
func Load() Config {
	path, err := Path()
	if err != nil {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Default()
	}
	cfg := Default()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Default()
	}
	return cfg
}

// Save writes cfg to disk, creating the directory if needed.
func Save(cfg Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
