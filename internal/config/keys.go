package config

import (
	"fmt"
	"net/url"
	"strings"

	"nathanbeddoewebdev/flexctl/internal/obs/logging"
	"nathanbeddoewebdev/flexctl/internal/util"
)

// KeySpec describes a single configuration key.
type KeySpec struct {
	// Name is the CLI-facing key name (e.g. "endpoint").
	Name string

	// Description is a short human-readable explanation shown in help text.
	Description string

	// Get returns the current value for this key from a loaded Config.
	Get func(cfg *Config) string

	// Set applies a value for this key to the given Config (in memory only;
	// the caller is responsible for calling Save).
	Set func(cfg *Config, value string)

	// Validate rejects values Set should not accept. Nil accepts anything.
	Validate func(value string) error
}

// Keys is the authoritative list of all supported configuration keys.
// To add a new option: add a field to Config and append a KeySpec here.
var Keys = []KeySpec{
	{
		Name:        "endpoint",
		Description: "Extility user API endpoint URL",
		Get:         func(cfg *Config) string { return cfg.Endpoint },
		Set:         func(cfg *Config, v string) { cfg.Endpoint = v },
		Validate:    validateEndpoint,
	},
	{
		Name:        "api-user",
		Description: "API user in customerUUID/login form",
		Get:         func(cfg *Config) string { return cfg.APIUser },
		Set:         func(cfg *Config, v string) { cfg.APIUser = v },
		Validate:    validateAPIUser,
	},
	{
		Name:        "cloud-file",
		Description: "Cloud description used when --cloud is not specified",
		Get:         func(cfg *Config) string { return cfg.CloudFile },
		Set:         func(cfg *Config, v string) { cfg.CloudFile = v },
	},
	{
		Name:        "log-level",
		Description: "Log level: debug, info, warn or error",
		Get:         func(cfg *Config) string { return cfg.LogLevel },
		Set:         func(cfg *Config, v string) { cfg.LogLevel = util.NormalizeKey(v) },
		Validate: func(v string) error {
			_, err := logging.ParseLevel(v)
			return err
		},
	},
	{
		Name:        "log-format",
		Description: "Log format: console or json",
		Get:         func(cfg *Config) string { return cfg.LogFormat },
		Set:         func(cfg *Config, v string) { cfg.LogFormat = util.NormalizeKey(v) },
		Validate: func(v string) error {
			switch util.NormalizeKey(v) {
			case "console", "json":
				return nil
			}
			return fmt.Errorf("unknown log format %q (want console or json)", v)
		},
	},
}

func validateEndpoint(v string) error {
	u, err := url.Parse(v)
	if err != nil {
		return fmt.Errorf("endpoint %q is malformed: %w", v, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("endpoint %q must use http or https", v)
	}
	if u.Host == "" {
		return fmt.Errorf("endpoint %q has no host", v)
	}
	return nil
}

func validateAPIUser(v string) error {
	uuid, login, ok := strings.Cut(v, "/")
	if !ok || uuid == "" || login == "" {
		return fmt.Errorf("api user %q must have the form customerUUID/login", v)
	}
	return nil
}

// Lookup returns the KeySpec for the given name, or nil if not found.
// The name is matched case-insensitively after trimming whitespace.
func Lookup(name string) *KeySpec {
	normalized := util.NormalizeKey(name)
	for i := range Keys {
		if Keys[i].Name == normalized {
			return &Keys[i]
		}
	}
	return nil
}

// KeyNames returns the names of all registered keys.
func KeyNames() []string {
	names := make([]string, len(Keys))
	for i, k := range Keys {
		names[i] = k.Name
	}
	return names
}

// KeysHelp builds a formatted block listing all available keys and their
// descriptions, suitable for inclusion in Cobra Long help text.
func KeysHelp() string {
	if len(Keys) == 0 {
		return ""
	}

	width := 0
	for _, k := range Keys {
		width = max(width, len(k.Name))
	}

	var b strings.Builder
	b.WriteString("Available keys:\n")
	for _, k := range Keys {
		fmt.Fprintf(&b, "  %-*s   %s\n", width, k.Name, k.Description)
	}
	return b.String()
}
