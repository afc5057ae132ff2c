package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestGetConfigDir(t *testing.T) {
	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}

	if !strings.Contains(configDir, "lanscan") {
		t.Errorf("GetConfigDir() = %v, should contain 'lanscan'", configDir)
	}

	switch runtime.GOOS {
	case "windows":
		if !strings.Contains(configDir, "AppData") && !strings.Contains(configDir, "Local") {
			t.Errorf("Windows config dir should contain 'AppData' or 'Local', got: %v", configDir)
		}
	case "darwin":
		if !strings.Contains(configDir, ".config") {
			t.Errorf("macOS config dir should contain '.config', got: %v", configDir)
		}
	}
}

func TestGetConfigDir_XDG(t *testing.T) {
	if runtime.GOOS == "windows" || runtime.GOOS == "darwin" {
		t.Skip("XDG_CONFIG_HOME only applies to Linux and other Unix systems")
	}
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")

	got, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}
	if want := filepath.Join("/tmp/xdg", "lanscan"); got != want {
		t.Errorf("GetConfigDir() = %v, want %v", got, want)
	}
}

func TestGetConfigPath(t *testing.T) {
	configPath, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}

	if filepath.Base(configPath) != "config.yaml" {
		t.Errorf("GetConfigPath() should end with 'config.yaml', got: %v", configPath)
	}
}

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Version != 1 {
		t.Errorf("New().Version = %v, want 1", cfg.Version)
	}
	p := cfg.Preferences
	if p == nil {
		t.Fatal("New().Preferences should not be nil")
	}
	if p.TimeoutSeconds != 60 {
		t.Errorf("TimeoutSeconds = %v, want 60", p.TimeoutSeconds)
	}
	if p.Port != 17500 {
		t.Errorf("Port = %v, want 17500", p.Port)
	}
	if !p.ResolveNames {
		t.Error("ResolveNames should be true by default")
	}
	if p.Format != FormatTable {
		t.Errorf("Format = %q, want %q", p.Format, FormatTable)
	}
	if p.AssumeYes {
		t.Error("AssumeYes should be false by default")
	}
	if err := p.Validate(); err != nil {
		t.Errorf("defaults should validate, got %v", err)
	}
}

func TestPreferencesValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *Preferences)
		wantErr bool
	}{
		{"defaults", func(*Preferences) {}, false},
		{"zero timeout", func(p *Preferences) { p.TimeoutSeconds = 0 }, false},
		{"negative timeout", func(p *Preferences) { p.TimeoutSeconds = -1 }, true},
		{"port zero", func(p *Preferences) { p.Port = 0 }, true},
		{"port too large", func(p *Preferences) { p.Port = 70000 }, true},
		{"json format", func(p *Preferences) { p.Format = FormatJSON }, false},
		{"unknown format", func(p *Preferences) { p.Format = "xml" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultPreferences()
			tt.mutate(p)
			if err := p.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := New()
	cfg.Preferences.TimeoutSeconds = 15
	cfg.Preferences.DNSServer = "192.168.1.1:53"
	cfg.Preferences.Format = FormatYAML
	cfg.Preferences.AssumeYes = true

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file should not remain after save")
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if *loaded.Preferences != *cfg.Preferences {
		t.Errorf("loaded preferences = %+v, want %+v", *loaded.Preferences, *cfg.Preferences)
	}
}

func TestLoadFrom_Missing(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if *cfg.Preferences != *DefaultPreferences() {
		t.Errorf("missing file should yield defaults, got %+v", *cfg.Preferences)
	}
}

func TestLoadFrom_PartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "version: 1\npreferences:\n  timeout_seconds: 5\n")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Preferences.TimeoutSeconds != 5 {
		t.Errorf("TimeoutSeconds = %d, want 5", cfg.Preferences.TimeoutSeconds)
	}
	if cfg.Preferences.Port != 17500 || !cfg.Preferences.ResolveNames {
		t.Errorf("unset keys should keep defaults, got %+v", *cfg.Preferences)
	}
}

func TestLoadFrom_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", "version: [1\n"},
		{"wrong version", "version: 2\n"},
		{"invalid port", "version: 1\npreferences:\n  port: 0\n"},
		{"invalid format", "version: 1\npreferences:\n  format: csv\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadFrom(writeConfig(t, tt.content)); err == nil {
				t.Error("LoadFrom() error = nil, want error")
			}
		})
	}
}

func TestInit(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Setenv("LOCALAPPDATA", t.TempDir())
	} else {
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())
		t.Setenv("HOME", t.TempDir())
	}

	path, created, err := Init()
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if !created {
		t.Error("first Init() should create the file")
	}

	again, created, err := Init()
	if err != nil {
		t.Fatalf("second Init() error = %v", err)
	}
	if created || again != path {
		t.Errorf("second Init() = (%s, %v), want (%s, false)", again, created, path)
	}

	if _, err := Load(); err != nil {
		t.Errorf("Load() after Init() error = %v", err)
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func BenchmarkGetConfigDir(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = GetConfigDir()
	}
}

func TestInitAt_LeavesExistingFileAlone(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	created, err := InitAt(path)
	if err != nil {
		t.Fatalf("InitAt() error = %v", err)
	}
	if !created {
		t.Fatal("InitAt() on a missing file should create it")
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	cfg.Preferences.TimeoutSeconds = 15
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}

	created, err = InitAt(path)
	if err != nil {
		t.Fatalf("second InitAt() error = %v", err)
	}
	if created {
		t.Error("InitAt() should not report creating an existing file")
	}

	cfg, err = LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Preferences.TimeoutSeconds != 15 {
		t.Errorf("TimeoutSeconds = %d, want 15 (preserved)", cfg.Preferences.TimeoutSeconds)
	}
}
