package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func TestWriteDefaultConfig(t *testing.T) {
	dir := t.TempDir()

	t.Run("creates missing file", func(t *testing.T) {
		path := filepath.Join(dir, "nested", "voiceover.yml")
		created, err := writeDefaultConfig(path)
		if err != nil {
			t.Fatalf("writeDefaultConfig() error = %v", err)
		}
		if !created {
			t.Error("created = false, want true")
		}
		b, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if string(b) != defaultConfig {
			t.Error("file does not hold the default settings")
		}
	})

	t.Run("keeps existing file", func(t *testing.T) {
		path := filepath.Join(dir, "mine.yaml")
		if err := os.WriteFile(path, []byte("engine: mock\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		created, err := writeDefaultConfig(path)
		if err != nil || created {
			t.Fatalf("writeDefaultConfig() = %v, %v; want false, nil", created, err)
		}
		b, _ := os.ReadFile(path)
		if string(b) != "engine: mock\n" {
			t.Errorf("existing file overwritten: %q", b)
		}
	})

	t.Run("rejects other formats", func(t *testing.T) {
		if _, err := writeDefaultConfig(filepath.Join(dir, "voiceover.json")); err == nil {
			t.Error("expected error for .json")
		}
	})
}

func TestDefaultConfigParses(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(strings.NewReader(defaultConfig)); err != nil {
		t.Fatalf("default settings are not valid YAML: %v", err)
	}

	tests := map[string]any{
		"engine":                "auto",
		"pitch":                 1.0,
		"rate":                  1.0,
		"piper.sample_rate":     22050,
		"mock.words_per_minute": 150,
		"log_level":             "info",
	}
	for key, want := range tests {
		switch want := want.(type) {
		case string:
			if got := v.GetString(key); got != want {
				t.Errorf("%s = %q, want %q", key, got, want)
			}
		case float64:
			if got := v.GetFloat64(key); got != want {
				t.Errorf("%s = %v, want %v", key, got, want)
			}
		case int:
			if got := v.GetInt(key); got != want {
				t.Errorf("%s = %v, want %v", key, got, want)
			}
		}
	}
}

func TestCheckConfig(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.yml")
	if err := os.WriteFile(good, []byte("engine: espeak\nrate: 1.5\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := checkConfig(good); err != nil {
		t.Errorf("checkConfig(good) error = %v", err)
	}

	bad := filepath.Join(dir, "bad.yml")
	if err := os.WriteFile(bad, []byte("engine: [espeak\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := checkConfig(bad); err == nil {
		t.Error("checkConfig(bad) should fail")
	}
}

func TestConfigPrint(t *testing.T) {
	var buf bytes.Buffer
	configCmd.SetOut(&buf)
	t.Cleanup(func() {
		configPrint = false
		configCmd.SetOut(nil)
	})

	configPrint = true
	if err := configCmd.RunE(configCmd, nil); err != nil {
		t.Fatal(err)
	}
	if buf.String() != defaultConfig {
		t.Error("--print should write the default settings")
	}
}
