package server

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"nathanbeddoewebdev/flexctl/cmd/commands/cmdutil/cmdtest"
	"nathanbeddoewebdev/flexctl/internal/config"
	"nathanbeddoewebdev/flexctl/internal/domain"
)

func execServer(t *testing.T, args ...string) (stdout, stderr string) {
	t.Helper()
	return cmdtest.Exec(t, NewCommand(), args...)
}

func TestListCommand_Table(t *testing.T) {
	env := cmdtest.Setup(t)
	env.Fake.AddServer("agent-1", "10.1.0.1", "ubuntu", "")
	env.Fake.AddServer("mgmt-0", "10.1.0.2", "ubuntu", "")

	stdout, stderr := execServer(t, "list")

	if stderr != "" {
		t.Fatalf("unexpected stderr: %s", stderr)
	}
	for _, want := range []string{"ID", "NAME", "PUBLIC IP", "agent-1", "mgmt-0", "10.1.0.1", "RUNNING"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("expected %q in output:\n%s", want, stdout)
		}
	}
}

func TestListCommand_Prefix(t *testing.T) {
	env := cmdtest.Setup(t)
	env.Fake.AddServer("agent-1", "10.1.0.1", "ubuntu", "")
	env.Fake.AddServer("mgmt-0", "10.1.0.2", "ubuntu", "")

	stdout, _ := execServer(t, "list", "--prefix", "agent-")

	if !strings.Contains(stdout, "agent-1") || strings.Contains(stdout, "mgmt-0") {
		t.Errorf("expected only agent-1, got:\n%s", stdout)
	}
}

func TestListCommand_JSON(t *testing.T) {
	env := cmdtest.Setup(t)
	id := env.Fake.AddServer("agent-1", "10.1.0.1", "ubuntu", "secret")

	stdout, _ := execServer(t, "list", "-o", "json")

	var servers []domain.Server
	if err := json.Unmarshal([]byte(stdout), &servers); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, stdout)
	}
	if len(servers) != 1 || servers[0].ID != id || servers[0].PublicIP != "10.1.0.1" {
		t.Errorf("unexpected servers %+v", servers)
	}
	if strings.Contains(stdout, "secret") {
		t.Error("initial password must not appear in JSON output")
	}
}

func TestListCommand_Empty(t *testing.T) {
	cmdtest.Setup(t)

	stdout, _ := execServer(t, "list")

	if !strings.Contains(stdout, "No servers found.") {
		t.Errorf("expected empty message, got:\n%s", stdout)
	}
}

func TestListCommand_Fault(t *testing.T) {
	env := cmdtest.Setup(t)
	env.Fake.FailOperation("listResources", "backend unavailable")

	_, stderr := execServer(t, "list")

	if !strings.Contains(stderr, "Error listing servers") || !strings.Contains(stderr, "backend unavailable") {
		t.Errorf("expected fault on stderr, got:\n%s", stderr)
	}
}

func TestListCommand_NotConfigured(t *testing.T) {
	cmdtest.Setup(t)
	config.SetPath(filepath.Join(t.TempDir(), "empty.json"))

	_, stderr := execServer(t, "list")

	if !strings.Contains(stderr, "no endpoint configured") {
		t.Errorf("expected configuration hint, got:\n%s", stderr)
	}
}

func TestListCommand_UnsupportedOutput(t *testing.T) {
	cmdtest.Setup(t)

	_, stderr := execServer(t, "list", "-o", "yaml")

	if !strings.Contains(stderr, `unsupported output format "yaml"`) {
		t.Errorf("expected output format error, got:\n%s", stderr)
	}
}
