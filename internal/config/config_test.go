package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"bancho/internal/config"
)

func TestDefault(t *testing.T) {
	cfg := config.Default()
	if cfg.Server != "ppy.sh" {
		t.Errorf("expected server 'ppy.sh', got %q", cfg.Server)
	}
	if cfg.Stream != "stable40" {
		t.Errorf("expected stream 'stable40', got %q", cfg.Stream)
	}
	if cfg.MinIdleSeconds != 1 || cfg.MaxIdleSeconds != 4 {
		t.Errorf("expected idle bounds 1/4, got %v/%v", cfg.MinIdleSeconds, cfg.MaxIdleSeconds)
	}
	if cfg.Tournament || cfg.UseTCP || cfg.DisableChatLogging || cfg.DisableLogging {
		t.Error("expected all boolean flags to default false")
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	cfg := config.Config{
		Username:       "alice",
		Server:         "osu.example.com",
		Stream:         "cuttingedge",
		Tournament:     true,
		UseTCP:         true,
		TCPAddr:        "osu.example.com:13381",
		MinIdleSeconds: 2,
		MaxIdleSeconds: 6,
	}

	if err := config.Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded := config.Load()
	if loaded.Username != cfg.Username {
		t.Errorf("username: want %q got %q", cfg.Username, loaded.Username)
	}
	if loaded.Server != cfg.Server {
		t.Errorf("server: want %q got %q", cfg.Server, loaded.Server)
	}
	if loaded.UseTCP != cfg.UseTCP {
		t.Errorf("use_tcp: want %v got %v", cfg.UseTCP, loaded.UseTCP)
	}
	if loaded.MinIdleSeconds != cfg.MinIdleSeconds {
		t.Errorf("min idle: want %v got %v", cfg.MinIdleSeconds, loaded.MinIdleSeconds)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg := config.Load()
	if cfg.Server != "ppy.sh" {
		t.Errorf("expected default server from missing file, got %q", cfg.Server)
	}
}

func TestLoadCorruptFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	path := filepath.Join(dir, "banchoclient", "config.json")
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("not json {{{"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := config.Load()
	if cfg.Server != "ppy.sh" {
		t.Errorf("expected default config on corrupt file, got %q", cfg.Server)
	}
}

func TestSaveCreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	if err := config.Save(config.Default()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	path := filepath.Join(dir, "banchoclient", "config.json")
	if _, err := os.Stat(path); err != nil {
		t.Errorf("config file not created: %v", err)
	}
}
