package auth

import (
	"strings"
	"testing"

	"github.com/zalando/go-keyring"

	"nathanbeddoewebdev/flexctl/cmd/commands/cmdutil/cmdtest"
	"nathanbeddoewebdev/flexctl/internal/config"
	"nathanbeddoewebdev/flexctl/internal/services/auth"
)

func TestLogin_WithPasswordFlag(t *testing.T) {
	cmdtest.Setup(t)
	keyring.MockInit()

	user := "11111111-2222-4333-8444-555555555555/ops"
	stdout, stderr := cmdtest.Exec(t, NewCommand(), "login", user, "--password", "s3cret")

	if stderr != "" {
		t.Fatalf("unexpected stderr: %s", stderr)
	}
	if !strings.Contains(stdout, "Saved password for "+user) {
		t.Errorf("unexpected stdout: %s", stdout)
	}

	got, err := auth.DefaultStore().GetPassword(user)
	if err != nil || got != "s3cret" {
		t.Errorf("stored password = %q, %v", got, err)
	}
	cfg, _ := config.Load()
	if cfg.APIUser != user {
		t.Errorf("config api user = %q", cfg.APIUser)
	}
}

func TestLogin_RejectsMalformedUser(t *testing.T) {
	cmdtest.Setup(t)

	_, stderr := cmdtest.Exec(t, NewCommand(), "login", "ops@example.com", "--password", "x")

	if !strings.Contains(stderr, "customerUUID/login") {
		t.Errorf("expected format error, got: %s", stderr)
	}
}

func TestStatus(t *testing.T) {
	env := cmdtest.Setup(t)

	stdout, _ := cmdtest.Exec(t, NewCommand(), "status")
	if !strings.Contains(stdout, "endpoint: "+env.Endpoint) {
		t.Errorf("expected endpoint line, got: %s", stdout)
	}
	if !strings.Contains(stdout, cmdtest.APIUser+": logged in") {
		t.Errorf("expected logged in, got: %s", stdout)
	}

	keyring.MockInit()
	stdout, _ = cmdtest.Exec(t, NewCommand(), "status")
	if !strings.Contains(stdout, cmdtest.APIUser+": not logged in") {
		t.Errorf("expected not logged in, got: %s", stdout)
	}
}
