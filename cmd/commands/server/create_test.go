package server

import (
	"strings"
	"testing"

	"nathanbeddoewebdev/flexctl/cmd/commands/cmdutil/cmdtest"
	"nathanbeddoewebdev/flexctl/internal/extility"
	"nathanbeddoewebdev/flexctl/internal/jobstore"
)

var createArgs = []string{
	"create", "--name", "agent-1",
	"--offer", "po-small", "--disk-offer", "po-disk",
	"--vdc", "vdc-1", "--network", "net-1", "--image", "img-1",
}

func TestCreateCommand(t *testing.T) {
	env := cmdtest.Setup(t)
	env.Fake.AddImage("img-1", "ubuntu", "ubuntu", true)

	stdout, stderr := execServer(t, createArgs...)

	if !strings.Contains(stderr, `Creating server "agent-1"`) {
		t.Errorf("expected progress on stderr, got:\n%s", stderr)
	}
	if !strings.Contains(stdout, "Server created:") || !strings.Contains(stdout, "STOPPED") {
		t.Errorf("unexpected stdout:\n%s", stdout)
	}
	if !strings.Contains(stdout, "Initial password:  gen-") {
		t.Errorf("expected generated password, got:\n%s", stdout)
	}

	servers := env.Fake.Servers()
	if len(servers) != 1 || servers[0].ResourceName != "agent-1" {
		t.Fatalf("unexpected servers %+v", servers)
	}
	if servers[0].CustomerUUID != strings.Split(cmdtest.APIUser, "/")[0] {
		t.Errorf("CustomerUUID = %q", servers[0].CustomerUUID)
	}
}

func TestCreateCommand_Start(t *testing.T) {
	env := cmdtest.Setup(t)
	env.Fake.AddImage("img-1", "ubuntu", "ubuntu", true)

	stdout, _ := execServer(t, append(createArgs, "--start")...)

	if !strings.Contains(stdout, "RUNNING") || !strings.Contains(stdout, "Initial password:") {
		t.Errorf("expected running server with password, got:\n%s", stdout)
	}
	if got := env.Fake.Servers()[0].Status; got != string(extility.ServerStatusRunning) {
		t.Errorf("status = %q", got)
	}

	repo, err := jobstore.Open()
	if err != nil {
		t.Fatalf("jobstore.Open failed: %v", err)
	}
	defer repo.Close()
	recent, _ := repo.ListRecent(10)
	if len(recent) != 2 {
		t.Fatalf("expected 2 recorded jobs, got %d", len(recent))
	}
}

func TestCreateCommand_InvalidName(t *testing.T) {
	env := cmdtest.Setup(t)

	args := append([]string{}, createArgs...)
	args[2] = "agent_1"
	_, stderr := execServer(t, args...)

	if !strings.Contains(stderr, "invalid characters") {
		t.Errorf("expected name validation error, got:\n%s", stderr)
	}
	if env.Fake.CountCalls("createServer") != 0 {
		t.Error("createServer must not be called for an invalid name")
	}
}

func TestCreateCommand_JobFails(t *testing.T) {
	env := cmdtest.Setup(t)
	env.Fake.FailJobs("createServer", "quota exceeded")

	_, stderr := execServer(t, createArgs...)

	if !strings.Contains(stderr, "Could not create server") || !strings.Contains(stderr, "quota exceeded") {
		t.Errorf("expected provisioning error, got:\n%s", stderr)
	}
}
