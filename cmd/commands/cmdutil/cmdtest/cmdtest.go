// Package cmdtest wires a command under test to a fake Extility endpoint
// and to throwaway config, keychain and database locations.
package cmdtest

import (
	"bytes"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/zalando/go-keyring"

	"nathanbeddoewebdev/flexctl/internal/config"
	"nathanbeddoewebdev/flexctl/internal/database"
	"nathanbeddoewebdev/flexctl/internal/extility/extilityfake"
	"nathanbeddoewebdev/flexctl/internal/services/auth"
)

// Test credentials accepted by the fake.
const (
	APIUser  = "6a1c2e9f-0000-4000-8000-000000000001/tester"
	Password = "pw"
)

// Env is a prepared command environment.
type Env struct {
	Fake     *extilityfake.Server
	Endpoint string
	Dir      string
}

// Setup starts a fake endpoint and points config, keychain and job history
// at temporary locations for the duration of t.
func Setup(t *testing.T) *Env {
	t.Helper()

	fake := extilityfake.NewServer()
	fake.Username = APIUser
	fake.Password = Password
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	config.SetPath(filepath.Join(dir, "config.json"))
	t.Cleanup(config.ResetPath)
	database.SetPath(filepath.Join(dir, "flexctl.db"))
	t.Cleanup(database.ResetPath)

	env := &Env{Fake: fake, Endpoint: srv.URL + "/user/", Dir: dir}
	cfg := &config.Config{Endpoint: env.Endpoint, APIUser: APIUser}
	if err := cfg.Save(); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	keyring.MockInit()
	if err := auth.DefaultStore().SetPassword(APIUser, Password); err != nil {
		t.Fatalf("failed to store password: %v", err)
	}
	return env
}

// Exec runs cmd with args and returns what was written to stdout and stderr.
func Exec(t *testing.T, cmd *cobra.Command, args ...string) (stdout, stderr string) {
	t.Helper()
	var outBuf, errBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)
	cmd.Execute()
	return outBuf.String(), errBuf.String()
}
