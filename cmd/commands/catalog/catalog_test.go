package catalog

import (
	"strings"
	"testing"

	"nathanbeddoewebdev/flexctl/cmd/commands/cmdutil/cmdtest"
)

func TestCatalog_AllFound(t *testing.T) {
	env := cmdtest.Setup(t)
	env.Fake.AddImage("img-1", "ubuntu-24.04", "ubuntu", true)
	env.Fake.AddProductOffer("po-small", "2 vCPU / 4 GB")
	env.Fake.AddVDC("vdc-1", "Cluster 1")

	stdout, stderr := cmdtest.Exec(t, NewCommand(), "--image", "img-1", "--hardware", "po-small", "--location", "vdc-1")

	if stderr != "" {
		t.Fatalf("unexpected stderr: %s", stderr)
	}
	for _, want := range []string{"ubuntu-24.04", "default user ubuntu, generated password true", "2 vCPU / 4 GB", "Cluster 1"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("expected %q in output:\n%s", want, stdout)
		}
	}
	if got := env.Fake.CountCalls("listResources"); got != 3 {
		t.Errorf("expected 3 lookups, got %d", got)
	}
}

func TestCatalog_Missing(t *testing.T) {
	env := cmdtest.Setup(t)
	env.Fake.AddImage("img-1", "ubuntu-24.04", "", false)

	stdout, stderr := cmdtest.Exec(t, NewCommand(), "--image", "img-1", "--location", "vdc-missing")

	if !strings.Contains(stdout, "default user (none), generated password false") {
		t.Errorf("unexpected image row:\n%s", stdout)
	}
	if !strings.Contains(stdout, "vdc-missing") || !strings.Contains(stdout, "not found") {
		t.Errorf("expected missing location row:\n%s", stdout)
	}
	if !strings.Contains(stderr, "1 catalog entr(y/ies) not found") {
		t.Errorf("expected missing count on stderr, got:\n%s", stderr)
	}
}

func TestCatalog_RequiresFlag(t *testing.T) {
	cmdtest.Setup(t)

	_, stderr := cmdtest.Exec(t, NewCommand())

	if !strings.Contains(stderr, "at least one of the flags") {
		t.Errorf("expected flag error, got:\n%s", stderr)
	}
}

func TestCatalog_LookupFault(t *testing.T) {
	env := cmdtest.Setup(t)
	env.Fake.FailOperation("listResources", "backend down")

	_, stderr := cmdtest.Exec(t, NewCommand(), "--hardware", "po-small")

	if !strings.Contains(stderr, "failed to look up hardware") {
		t.Errorf("expected lookup error, got:\n%s", stderr)
	}
}
