package config

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"nathanbeddoewebdev/flexctl/internal/config"
)

// setupTestConfig points the config package at a temp file.
func setupTestConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	config.SetPath(path)
	t.Cleanup(config.ResetPath)
	return path
}

// execConfig creates the config command, wires up output buffers, runs with the
// given args, and returns what was written to stdout and stderr.
func execConfig(t *testing.T, args ...string) (stdout, stderr string) {
	t.Helper()
	var outBuf, errBuf bytes.Buffer
	cmd := NewCommand()
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)
	cmd.Execute()
	return outBuf.String(), errBuf.String()
}

func TestSet_Endpoint(t *testing.T) {
	setupTestConfig(t)

	stdout, stderr := execConfig(t, "set", "endpoint", "https://api.example.com:4442/user/")

	if stderr != "" {
		t.Errorf("unexpected stderr: %s", stderr)
	}
	if !strings.Contains(stdout, `endpoint set to "https://api.example.com:4442/user/"`) {
		t.Errorf("unexpected confirmation: %s", stdout)
	}

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Endpoint != "https://api.example.com:4442/user/" {
		t.Errorf("Endpoint = %q", cfg.Endpoint)
	}
}

func TestSet_LogLevelNormalized(t *testing.T) {
	setupTestConfig(t)

	stdout, stderr := execConfig(t, "set", "LOG-LEVEL", "DEBUG")

	if stderr != "" {
		t.Errorf("unexpected stderr: %s", stderr)
	}
	if !strings.Contains(stdout, `log-level set to "debug"`) {
		t.Errorf("expected normalized value, got: %s", stdout)
	}
}

func TestSet_InvalidValue(t *testing.T) {
	setupTestConfig(t)

	_, stderr := execConfig(t, "set", "endpoint", "ftp://files.example.com/")

	if !strings.Contains(stderr, "must use http or https") {
		t.Errorf("expected validation error, got: %s", stderr)
	}
	cfg, _ := config.Load()
	if cfg.Endpoint != "" {
		t.Errorf("invalid value was saved: %q", cfg.Endpoint)
	}
}

func TestSet_UnknownKey(t *testing.T) {
	setupTestConfig(t)

	_, stderr := execConfig(t, "set", "bogus-key", "value")

	if !strings.Contains(stderr, "unknown configuration key") {
		t.Errorf("expected 'unknown configuration key' error, got: %s", stderr)
	}
}
