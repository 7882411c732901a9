package driver

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"nathanbeddoewebdev/flexctl/internal/domain"
	"nathanbeddoewebdev/flexctl/internal/extility/extilityfake"
)

const (
	testUser   = "cust-1/ops"
	testAPIKey = "key"
)

func testCloud(endpoint string) *Cloud {
	return &Cloud{
		Name: "flexiant",
		User: CloudUser{User: testUser, APIKey: testAPIKey},
		Provider: CloudProvider{
			ManagementGroup:            "mgmt-",
			MachineNamePrefix:          "agent-",
			NumberOfManagementMachines: 2,
		},
		Configuration: CloudConfiguration{ManagementMachineTemplate: "SMALL"},
		Templates: map[string]*ComputeTemplate{
			"SMALL": {
				HardwareID:     "po-small",
				LocationID:     "vdc-1",
				ImageID:        "img-1",
				Username:       "ubuntu",
				OpenFilesLimit: 4096,
				ComputeNetwork: []string{"net-1"},
				Overrides: map[string]string{
					OverrideEndpoint:         endpoint,
					OverrideDiskProductOffer: "po-disk",
				},
			},
		},
	}
}

type recordedEvents struct {
	events []string
}

func (r *recordedEvents) PublishEvent(event string, _ ...any) {
	r.events = append(r.events, event)
}

// newTestDriver returns an initialized Driver talking to a fake endpoint
// seeded with the catalog entries used by testCloud.
func newTestDriver(t *testing.T, opts ...Option) (*Driver, *extilityfake.Server) {
	t.Helper()
	fake := extilityfake.NewServer()
	fake.Username = testUser
	fake.Password = testAPIKey
	fake.AddImage("img-1", "ubuntu-22.04", "ubuntu", true)
	fake.AddProductOffer("po-small", "small")
	fake.AddVDC("vdc-1", "vdc one")
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	d := New(opts...)
	if err := d.InitDeployer(context.Background(), testCloud(srv.URL+"/user/")); err != nil {
		t.Fatalf("InitDeployer failed: %v", err)
	}
	return d, fake
}

func TestInitDeployer_Errors(t *testing.T) {
	if err := New().InitDeployer(context.Background(), nil); err == nil {
		t.Error("expected error for nil cloud")
	}

	empty := testCloud("https://api.example.com/user/")
	empty.Templates["EMPTY"] = nil
	if err := New().InitDeployer(context.Background(), empty); err == nil || !strings.Contains(err.Error(), `template "EMPTY" is empty`) {
		t.Errorf("expected empty template error, got %v", err)
	}

	cloud := testCloud("not a url")
	err := New().InitDeployer(context.Background(), cloud)
	var provErr *domain.ProvisioningError
	if !errors.As(err, &provErr) {
		t.Fatalf("expected *domain.ProvisioningError, got %T: %v", err, err)
	}
	if !strings.Contains(err.Error(), "malformed") {
		t.Errorf("expected malformed endpoint error, got %q", err)
	}
}

func TestOperations_RequireInit(t *testing.T) {
	d := New()
	ctx := context.Background()

	if _, err := d.CreateServer(ctx, "x", "SMALL"); !errors.Is(err, errNotInitialized) {
		t.Errorf("CreateServer: expected errNotInitialized, got %v", err)
	}
	if _, err := d.StopMachine(ctx, "10.0.0.1", 0); !errors.Is(err, errNotInitialized) {
		t.Errorf("StopMachine: expected errNotInitialized, got %v", err)
	}
	if err := d.SetConfig(Config{}); !errors.Is(err, errNotInitialized) {
		t.Errorf("SetConfig: expected errNotInitialized, got %v", err)
	}
}

func TestCreateServer_StartsAndMaps(t *testing.T) {
	d, fake := newTestDriver(t)

	md, err := d.CreateServer(context.Background(), "web-1", "SMALL")
	if err != nil {
		t.Fatalf("CreateServer failed: %v", err)
	}

	r, ok := fake.Resource(md.MachineID)
	if !ok {
		t.Fatalf("machine %s not on fake", md.MachineID)
	}
	if r.Status != "RUNNING" {
		t.Errorf("expected server to be started, status = %q", r.Status)
	}
	if r.ProductOfferUUID != "po-small" || r.VdcUUID != "vdc-1" || r.ImageUUID != "img-1" {
		t.Errorf("server built from wrong template values: %+v", r)
	}
	if len(r.Disks) != 1 || r.Disks[0].ProductOfferUUID != "po-disk" {
		t.Errorf("disk offer not taken from overrides: %+v", r.Disks)
	}

	if md.CloudifyInstalled || md.InstallationDirectory != "" {
		t.Errorf("unexpected agent install fields: %+v", md)
	}
	if md.OpenFilesLimit != 4096 || md.TemplateName != "SMALL" {
		t.Errorf("template fields not copied: %+v", md)
	}
	if md.PublicAddress == "" || md.PublicAddress != md.PrivateAddress {
		t.Errorf("addresses = %q / %q", md.PublicAddress, md.PrivateAddress)
	}
	if md.RemoteUsername != "ubuntu" || md.RemotePassword == "" {
		t.Errorf("credentials = %q / %q", md.RemoteUsername, md.RemotePassword)
	}
}

func TestCreateServer_Failures(t *testing.T) {
	t.Run("create job", func(t *testing.T) {
		d, fake := newTestDriver(t)
		fake.FailJobs("createServer", "no capacity")

		_, err := d.CreateServer(context.Background(), "web-1", "SMALL")
		var provErr *domain.ProvisioningError
		if !errors.As(err, &provErr) || provErr.Message != "Could not create server" {
			t.Fatalf("expected ProvisioningError(Could not create server), got %v", err)
		}
	})

	t.Run("start job", func(t *testing.T) {
		d, fake := newTestDriver(t)
		fake.FailJobs("changeServerStatus", "boot failure")

		_, err := d.CreateServer(context.Background(), "web-1", "SMALL")
		var provErr *domain.ProvisioningError
		if !errors.As(err, &provErr) || provErr.Message != "Could not create server" {
			t.Fatalf("expected ProvisioningError(Could not create server), got %v", err)
		}
		var jobErr *domain.RemoteJobError
		if !errors.As(err, &jobErr) {
			t.Errorf("expected RemoteJobError in chain, got %v", err)
		}
	})

	t.Run("unknown template", func(t *testing.T) {
		d, fake := newTestDriver(t)
		if _, err := d.CreateServer(context.Background(), "web-1", "NOPE"); err == nil {
			t.Fatal("expected error for unknown template")
		}
		if fake.CountCalls("createServer") != 0 {
			t.Error("expected no createServer call")
		}
	})
}

func TestStartMachine_Naming(t *testing.T) {
	d, fake := newTestDriver(t)
	if err := d.SetConfig(Config{CloudTemplateName: "SMALL", ServiceName: "tomcat"}); err != nil {
		t.Fatalf("SetConfig failed: %v", err)
	}

	for i := 0; i < 2; i++ {
		if _, err := d.StartMachine(context.Background(), ProvisioningContext{}, time.Minute); err != nil {
			t.Fatalf("StartMachine failed: %v", err)
		}
	}

	var names []string
	for _, s := range fake.Servers() {
		names = append(names, s.ResourceName)
	}
	if diff := cmp.Diff([]string{"agent-tomcat-1", "agent-tomcat-2"}, names); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestStartMachine_DeadlineBoundsWait(t *testing.T) {
	d, fake := newTestDriver(t)
	fake.WaitDelay = 10 * time.Second
	if err := d.SetConfig(Config{CloudTemplateName: "SMALL", ServiceName: "svc"}); err != nil {
		t.Fatalf("SetConfig failed: %v", err)
	}

	start := time.Now()
	_, err := d.StartMachine(context.Background(), ProvisioningContext{}, 100*time.Millisecond)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context.DeadlineExceeded in chain, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("StartMachine was not bounded by its duration: %v", elapsed)
	}
}

func TestStartManagementMachines(t *testing.T) {
	events := &recordedEvents{}
	d, fake := newTestDriver(t, WithEventPublisher(events))

	mds, err := d.StartManagementMachines(context.Background(), ManagementProvisioningContext{}, time.Minute)
	if err != nil {
		t.Fatalf("StartManagementMachines failed: %v", err)
	}
	if len(mds) != 2 {
		t.Fatalf("expected 2 machines, got %d", len(mds))
	}

	var names []string
	for _, s := range fake.Servers() {
		names = append(names, s.ResourceName)
		if s.Status != "RUNNING" {
			t.Errorf("%s not started: %s", s.ResourceName, s.Status)
		}
	}
	if diff := cmp.Diff([]string{"mgmt-1", "mgmt-2"}, names); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{EventAttemptStartManagementVMs, EventManagementVMsStarted}, events.events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestStartManagementMachines_CountOverride(t *testing.T) {
	d, fake := newTestDriver(t)

	if _, err := d.StartManagementMachines(context.Background(), ManagementProvisioningContext{Count: 1}, 0); err != nil {
		t.Fatalf("StartManagementMachines failed: %v", err)
	}
	if n := len(fake.Servers()); n != 1 {
		t.Errorf("expected 1 server, got %d", n)
	}
}

func TestStartManagementMachines_ExistingServers(t *testing.T) {
	events := &recordedEvents{}
	d, fake := newTestDriver(t, WithEventPublisher(events))
	fake.AddServer("mgmt-1", "10.0.0.9", "root", "")

	_, err := d.StartManagementMachines(context.Background(), ManagementProvisioningContext{}, time.Minute)
	if err == nil || !strings.Contains(err.Error(), "Found existing servers matching group mgmt-") {
		t.Fatalf("expected existing servers error, got %v", err)
	}
	if fake.CountCalls("createServer") != 0 {
		t.Error("expected no createServer call")
	}
	if len(events.events) != 0 {
		t.Errorf("expected no events, got %v", events.events)
	}
}

func TestStartManagementMachines_FailureTearsDown(t *testing.T) {
	events := &recordedEvents{}
	d, fake := newTestDriver(t, WithEventPublisher(events))
	// Starting fails, so the first machine is created but never started.
	fake.FailJobs("changeServerStatus", "boot failure")

	_, err := d.StartManagementMachines(context.Background(), ManagementProvisioningContext{}, time.Minute)
	var provErr *domain.ProvisioningError
	if !errors.As(err, &provErr) {
		t.Fatalf("expected *domain.ProvisioningError, got %T: %v", err, err)
	}

	if n := fake.CountCalls("createServer"); n != 1 {
		t.Errorf("expected creation to stop after the first failure, got %d createServer calls", n)
	}
	if n := len(fake.Servers()); n != 0 {
		t.Errorf("expected failure handling to delete created machines, %d remain", n)
	}
	if diff := cmp.Diff([]string{EventAttemptStartManagementVMs}, events.events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestStopMachine(t *testing.T) {
	d, fake := newTestDriver(t)
	fake.AddServer("agent-a-1", "10.0.0.5", "root", "")
	keep := fake.AddServer("agent-a-2", "10.0.0.6", "root", "")

	ok, err := d.StopMachine(context.Background(), "10.0.0.5", time.Minute)
	if err != nil || !ok {
		t.Fatalf("StopMachine = %v, %v", ok, err)
	}

	servers := fake.Servers()
	if len(servers) != 1 || servers[0].ResourceUUID != keep {
		t.Errorf("expected only %s to remain, got %+v", keep, servers)
	}
}

func TestStopMachine_NotFound(t *testing.T) {
	d, fake := newTestDriver(t)
	fake.AddServer("agent-a-1", "10.0.0.6", "root", "")

	ok, err := d.StopMachine(context.Background(), "10.0.0.5", time.Minute)
	if ok {
		t.Error("expected false")
	}
	if err == nil || err.Error() != "Could not find a server with ip 10.0.0.5" {
		t.Fatalf("unexpected error: %v", err)
	}
	if fake.CountCalls("deleteResource") != 0 {
		t.Error("expected no delete attempt")
	}
}

func TestStopMachine_LookupAndDeleteErrors(t *testing.T) {
	t.Run("lookup", func(t *testing.T) {
		d, fake := newTestDriver(t)
		fake.FailOperation("listResources", "backend down")

		_, err := d.StopMachine(context.Background(), "10.0.0.5", time.Minute)
		if err == nil || !strings.HasPrefix(err.Error(), "Error while retrieving server with ip 10.0.0.5") {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("delete", func(t *testing.T) {
		d, fake := newTestDriver(t)
		fake.AddServer("agent-a-1", "10.0.0.5", "root", "")
		fake.FailJobs("deleteResource", "locked")

		_, err := d.StopMachine(context.Background(), "10.0.0.5", time.Minute)
		if err == nil || !strings.HasPrefix(err.Error(), "Could not delete server with ip 10.0.0.5") {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestStopManagementMachines(t *testing.T) {
	d, fake := newTestDriver(t)
	fake.AddServer("mgmt-1", "10.0.0.1", "root", "")
	fake.AddServer("mgmt-2", "10.0.0.2", "root", "")
	agent := fake.AddServer("agent-x-1", "10.0.0.3", "root", "")

	if err := d.StopManagementMachines(context.Background()); err != nil {
		t.Fatalf("StopManagementMachines failed: %v", err)
	}
	servers := fake.Servers()
	if len(servers) != 1 || servers[0].ResourceUUID != agent {
		t.Errorf("expected only the agent to remain, got %+v", servers)
	}
}

func TestStopManagementMachines_AbortsOnFirstFailure(t *testing.T) {
	d, fake := newTestDriver(t)
	first := fake.AddServer("mgmt-1", "10.0.0.1", "root", "")
	fake.AddServer("mgmt-2", "10.0.0.2", "root", "")
	fake.FailJobs("deleteResource", "locked")

	err := d.StopManagementMachines(context.Background())
	if err == nil || !strings.HasPrefix(err.Error(), "Could not stop server with id "+first) {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := fake.CountCalls("deleteResource"); n != 1 {
		t.Errorf("expected loop to stop after one delete, got %d", n)
	}
}

func TestGetExistingManagementServers(t *testing.T) {
	d, fake := newTestDriver(t)
	id := fake.AddServer("mgmt-1", "10.0.0.1", "root", "pw")
	fake.AddServer("agent-x-1", "10.0.0.3", "root", "")

	mds, err := d.GetExistingManagementServers(context.Background())
	if err != nil {
		t.Fatalf("GetExistingManagementServers failed: %v", err)
	}
	want := []MachineDetails{{
		MachineID:      id,
		TemplateName:   "SMALL",
		OpenFilesLimit: 4096,
		PublicAddress:  "10.0.0.1",
		PrivateAddress: "10.0.0.1",
		RemoteUsername: "root",
		RemotePassword: "pw",
	}}
	if diff := cmp.Diff(want, mds); diff != "" {
		t.Errorf("machines mismatch (-want +got):\n%s", diff)
	}
}
