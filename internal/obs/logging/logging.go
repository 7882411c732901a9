// Package logging builds the structured logger shared by the CLI and the
// provisioning packages. Components accept a logr.Logger; this package backs
// it with zap.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Environment variables consulted by DefaultConfig.
const (
	EnvLevel  = "FLEXCTL_LOG_LEVEL"
	EnvFormat = "FLEXCTL_LOG_FORMAT"
)

// Config holds logging configuration.
type Config struct {
	Level  string // debug, info, warn, error
	Format string // console or json
}

// DefaultConfig returns the configuration taken from the environment,
// falling back to warn-level console output.
func DefaultConfig() Config {
	return Config{
		Level:  getEnvWithDefault(EnvLevel, "warn"),
		Format: getEnvWithDefault(EnvFormat, "console"),
	}
}

// New returns a logger writing to stderr.
func New(cfg Config) (logr.Logger, error) {
	return NewWithWriter(cfg, os.Stderr)
}

// NewWithWriter returns a logger writing to w.
func NewWithWriter(cfg Config, w io.Writer) (logr.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return logr.Discard(), err
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	switch strings.ToLower(cfg.Format) {
	case "", "console":
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	case "json":
		encCfg.EncodeLevel = zapcore.LowercaseLevelEncoder
		enc = zapcore.NewJSONEncoder(encCfg)
	default:
		return logr.Discard(), fmt.Errorf("logging: unknown format %q (want console or json)", cfg.Format)
	}

	core := zapcore.NewCore(enc, zapcore.AddSync(w), zap.NewAtomicLevelAt(level))
	return zapr.NewLogger(zap.New(core)), nil
}

// ParseLevel maps a level name onto a zap level. logr's V(1) corresponds to
// debug.
func ParseLevel(s string) (zapcore.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return zap.DebugLevel, nil
	case "", "info":
		return zap.InfoLevel, nil
	case "warn", "warning":
		return zap.WarnLevel, nil
	case "error":
		return zap.ErrorLevel, nil
	default:
		return zap.InfoLevel, fmt.Errorf("logging: unknown level %q (want debug, info, warn or error)", s)
	}
}

// Redact masks a secret for display. Empty values stay empty so that
// "not set" remains visible.
func Redact(secret string) string {
	if secret == "" {
		return ""
	}
	return "*****"
}

// IsSensitiveKey reports whether a configuration or override key names a secret.
func IsSensitiveKey(key string) bool {
	k := strings.ToLower(key)
	for _, s := range []string{"password", "passwd", "secret", "token", "apikey", "api-key", "api_key"} {
		if strings.Contains(k, s) {
			return true
		}
	}
	return false
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
