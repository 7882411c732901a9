package server

import (
	"strings"
	"testing"

	"nathanbeddoewebdev/flexctl/cmd/commands/cmdutil/cmdtest"
)

func TestDeleteCommand_WithYes(t *testing.T) {
	env := cmdtest.Setup(t)
	id := env.Fake.AddServer("agent-1", "10.1.0.1", "ubuntu", "")

	stdout, stderr := execServer(t, "delete", "--id", id, "--yes")

	if !strings.Contains(stderr, `Deleting server "agent-1"`) {
		t.Errorf("expected progress message, got:\n%s", stderr)
	}
	if !strings.Contains(stdout, "deleted successfully") {
		t.Errorf("expected success message, got:\n%s", stdout)
	}
	if _, ok := env.Fake.Resource(id); ok {
		t.Error("server still present after delete")
	}
}

func TestDeleteCommand_RequiresConfirmation(t *testing.T) {
	env := cmdtest.Setup(t)
	id := env.Fake.AddServer("agent-1", "10.1.0.1", "ubuntu", "")

	_, stderr := execServer(t, "delete", "--id", id)

	if !strings.Contains(stderr, "pass --yes") {
		t.Errorf("expected confirmation error, got:\n%s", stderr)
	}
	if env.Fake.CountCalls("deleteResource") != 0 {
		t.Error("deleteResource must not be called without confirmation")
	}
}

func TestDeleteCommand_NotFound(t *testing.T) {
	env := cmdtest.Setup(t)

	_, stderr := execServer(t, "delete", "--id", "6a1c2e9f-0000-4000-8000-0000000000ff", "--yes")

	if !strings.Contains(stderr, "not found") {
		t.Errorf("expected not found error, got:\n%s", stderr)
	}
	if env.Fake.CountCalls("deleteResource") != 0 {
		t.Error("deleteResource must not be called for a missing server")
	}
}

func TestDeleteCommand_JobFails(t *testing.T) {
	env := cmdtest.Setup(t)
	id := env.Fake.AddServer("agent-1", "10.1.0.1", "ubuntu", "")
	env.Fake.FailJobs("deleteResource", "resource locked")

	_, stderr := execServer(t, "delete", "--id", id, "--yes")

	if !strings.Contains(stderr, "Error deleting server") || !strings.Contains(stderr, "resource locked") {
		t.Errorf("expected job failure, got:\n%s", stderr)
	}
}
