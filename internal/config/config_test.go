package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoad_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nonexistent", "config.json")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(&Config{}, cfg); diff != "" {
		t.Errorf("expected zero config (-want +got):\n%s", diff)
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flexctl", "config.json")

	want := &Config{
		Endpoint:  "https://api.example.com:4442/user/",
		APIUser:   "6a1c2e9f-0000-4000-8000-000000000001/ops@example.com",
		CloudFile: "/etc/flexctl/cloud.yaml",
		LogLevel:  "debug",
		LogFormat: "json",
	}
	if err := want.SaveTo(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestSave_OverwritesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	if err := (&Config{Endpoint: "https://a.example.com/user/"}).SaveTo(path); err != nil {
		t.Fatalf("first Save failed: %v", err)
	}
	if err := (&Config{Endpoint: "https://b.example.com/user/"}).SaveTo(path); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	got, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.Endpoint != "https://b.example.com/user/" {
		t.Errorf("expected second endpoint, got %q", got.Endpoint)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json}"), 0o644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	if _, err := LoadFrom(path); err == nil {
		t.Fatal("expected error for invalid JSON, got nil")
	}
}

func TestLoad_UsesPathOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	SetPath(path)
	t.Cleanup(ResetPath)

	if err := (&Config{APIUser: "c/u"}).Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.APIUser != "c/u" {
		t.Errorf("APIUser = %q", cfg.APIUser)
	}
}
