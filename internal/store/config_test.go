package store

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	t.Setenv("DONEIT_CONFIG_DIR", t.TempDir())
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DataDir != "" || cfg.LogLevel != "" {
		t.Fatalf("missing file should yield zero config: %+v", cfg)
	}
}

func TestConfigSaveLoad(t *testing.T) {
	t.Setenv("DONEIT_CONFIG_DIR", t.TempDir())
	want := &Config{DataDir: "/tmp/doneit-data", LogLevel: "debug", Theme: "/tmp/theme.yaml"}
	if err := SaveConfig(want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := LoadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if *got != *want {
		t.Fatalf("config = %+v, want %+v", got, want)
	}
}

func TestDefaultDirPrecedence(t *testing.T) {
	cfgDir := t.TempDir()
	t.Setenv("DONEIT_CONFIG_DIR", cfgDir)
	if err := SaveConfig(&Config{DataDir: "/from/config"}); err != nil {
		t.Fatalf("save config: %v", err)
	}

	t.Setenv("DONEIT_DIR", "/from/env")
	dir, err := DefaultDir()
	if err != nil {
		t.Fatalf("default dir: %v", err)
	}
	if dir != "/from/env" {
		t.Fatalf("dir = %q, want env override", dir)
	}

	t.Setenv("DONEIT_DIR", "")
	dir, err = DefaultDir()
	if err != nil {
		t.Fatalf("default dir: %v", err)
	}
	if dir != "/from/config" {
		t.Fatalf("dir = %q, want config data_dir", dir)
	}
}

func TestLoadThemeDefaultsAndOverride(t *testing.T) {
	theme, err := LoadTheme(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if theme != DefaultTheme() {
		t.Fatalf("missing theme file should yield defaults")
	}

	path := filepath.Join(t.TempDir(), "theme.yaml")
	body := "text: \"#ffffff\"\nitem_highlight: \"#ff00ff\"\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	theme, err = LoadTheme(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if theme.Text != "#ffffff" || theme.ItemHighlight != "#ff00ff" {
		t.Fatalf("overrides not applied: %+v", theme)
	}
	if theme.TextDark != DefaultTheme().TextDark {
		t.Fatalf("unset keys should keep defaults: %+v", theme)
	}
}
