// Package driver adapts the compute client to the machine lifecycle contract
// of the orchestration host: starting and stopping management machines and
// agent machines, and validating a cloud description against the provider.
//
// The driver is configured once with InitDeployer and SetConfig. After that it
// holds no mutable state beyond a machine counter, and every operation is a
// sequence of blocking calls to the provider.
package driver

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/go-logr/logr"

	"nathanbeddoewebdev/flexctl/internal/compute"
	"nathanbeddoewebdev/flexctl/internal/domain"
	"nathanbeddoewebdev/flexctl/internal/extility"
)

// Lifecycle events published while starting management machines.
const (
	EventAttemptStartManagementVMs = "attempt-start-management-vms"
	EventManagementVMsStarted      = "management-vms-started"
)

// ProvisioningDriver is the lifecycle contract the orchestration host calls.
type ProvisioningDriver interface {
	InitDeployer(ctx context.Context, cloud *Cloud) error
	SetConfig(cfg Config) error
	CreateServer(ctx context.Context, serverName, templateName string) (*MachineDetails, error)
	StartMachine(ctx context.Context, pc ProvisioningContext, duration time.Duration) (*MachineDetails, error)
	StartManagementMachines(ctx context.Context, mpc ManagementProvisioningContext, duration time.Duration) ([]MachineDetails, error)
	StopMachine(ctx context.Context, ip string, duration time.Duration) (bool, error)
	StopManagementMachines(ctx context.Context) error
	GetExistingManagementServers(ctx context.Context) ([]MachineDetails, error)
	HandleProvisioningFailure(ctx context.Context, failure ProvisioningFailure) error
	ValidateCloudConfiguration(ctx context.Context, vc ValidationContext) error
}

// Compute is the subset of *compute.Client the driver uses.
type Compute interface {
	CreateServer(ctx context.Context, opts compute.CreateServerOpts) (*domain.Server, error)
	StartServer(ctx context.Context, id string) error
	DeleteServer(ctx context.Context, id string) error
	GetServers(ctx context.Context, prefix string) ([]domain.Server, error)
	GetServerByIP(ctx context.Context, ip, prefix string) (*domain.Server, error)
	GetImage(ctx context.Context, id string) (*domain.Image, error)
	GetHardware(ctx context.Context, id string) (*domain.Hardware, error)
	GetLocation(ctx context.Context, id string) (*domain.Location, error)
}

// Config is the per-deployment setting supplied by the host.
type Config struct {
	// CloudTemplateName is the template used by StartMachine.
	CloudTemplateName string
	// ServiceName is embedded in agent machine names.
	ServiceName string
	// Management is set when the driver provisions management machines.
	Management bool
}

// ProvisioningContext accompanies a StartMachine request.
type ProvisioningContext struct {
	// Template overrides Config.CloudTemplateName when set.
	Template string
}

// ManagementProvisioningContext accompanies a StartManagementMachines request.
type ManagementProvisioningContext struct {
	// Count overrides provider.numberOfManagementMachines when positive.
	Count int
}

// ProvisioningFailure describes a failed management bootstrap.
type ProvisioningFailure struct {
	Requested  int
	Errors     int
	FirstError error
	Created    []MachineDetails
}

// MachineDetails is what the host learns about a provisioned machine.
type MachineDetails struct {
	MachineID    string `json:"machine_id"`
	TemplateName string `json:"template"`

	// CloudifyInstalled is always false and InstallationDirectory always
	// empty: the driver never installs the management agent itself.
	CloudifyInstalled     bool   `json:"cloudify_installed"`
	InstallationDirectory string `json:"installation_directory,omitempty"`

	OpenFilesLimit int    `json:"open_files_limit,omitempty"`
	PublicAddress  string `json:"public_address"`
	PrivateAddress string `json:"private_address"`
	RemoteUsername string `json:"remote_username,omitempty"`
	RemotePassword string `json:"-"`
	KeyFile        string `json:"key_file,omitempty"`
}

// EventPublisher receives lifecycle events.
type EventPublisher interface {
	PublishEvent(event string, args ...any)
}

// EventFunc adapts a function to EventPublisher.
type EventFunc func(event string, args ...any)

// PublishEvent calls f.
func (f EventFunc) PublishEvent(event string, args ...any) { f(event, args...) }

type nopPublisher struct{}

func (nopPublisher) PublishEvent(string, ...any) {}

// Option configures a Driver.
type Option func(*Driver)

// WithLogger sets the logger used by the driver and the compute client it builds.
func WithLogger(log logr.Logger) Option {
	return func(d *Driver) { d.log = log }
}

// WithEventPublisher sets the receiver of lifecycle events.
func WithEventPublisher(p EventPublisher) Option {
	return func(d *Driver) {
		if p != nil {
			d.events = p
		}
	}
}

// WithMessages replaces the validation message table.
func WithMessages(m Messages) Option {
	return func(d *Driver) { d.messages = m }
}

// WithJobObserver is passed through to the compute client.
func WithJobObserver(o compute.JobObserver) Option {
	return func(d *Driver) { d.observer = o }
}

// WithHTTPClient sets the HTTP client used to reach the provider.
func WithHTTPClient(c *http.Client) Option {
	return func(d *Driver) { d.httpClient = c }
}

// Driver implements ProvisioningDriver for Flexiant Cloud Orchestrator.
type Driver struct {
	cloud              *Cloud
	managementTemplate *ComputeTemplate
	compute            Compute
	config             Config
	serverNamePrefix   string
	counter            atomic.Int64

	events     EventPublisher
	messages   Messages
	observer   compute.JobObserver
	httpClient *http.Client
	log        logr.Logger
}

var _ ProvisioningDriver = (*Driver)(nil)

// New returns an unconfigured Driver. Call InitDeployer before anything else.
func New(opts ...Option) *Driver {
	d := &Driver{
		events:   nopPublisher{},
		messages: DefaultMessages(),
		log:      logr.Discard(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// InitDeployer connects the driver to the provider. The endpoint comes from
// the flexiant.endpoint override of the management machine template; the
// credentials come from the cloud user.
func (d *Driver) InitDeployer(_ context.Context, cloud *Cloud) error {
	if cloud == nil {
		return fmt.Errorf("driver: cloud is nil")
	}
	if err := cloud.Validate(); err != nil {
		return domain.NewProvisioningError("Could not initialize the deployer", err)
	}
	mt, err := cloud.ManagementTemplate()
	if err != nil {
		return domain.NewProvisioningError("Could not initialize the deployer", err)
	}

	d.cloud = cloud
	d.managementTemplate = mt
	d.serverNamePrefix = cloud.Provider.MachineNamePrefix

	endpoint := mt.Endpoint()
	d.log.V(1).Info("Creating connection to Flexiant endpoint", "endpoint", endpoint, "user", cloud.User.User)

	api, err := extility.NewClient(extility.Config{
		Endpoint:   endpoint,
		Username:   cloud.User.User,
		Password:   cloud.User.APIKey,
		HTTPClient: d.httpClient,
	})
	if err != nil {
		return domain.NewProvisioningError("Could not initialize the deployer", err)
	}
	d.compute = compute.NewClient(api, compute.WithLogger(d.log), compute.WithJobObserver(d.observer))
	return nil
}

// SetConfig records the host-supplied deployment settings.
func (d *Driver) SetConfig(cfg Config) error {
	if d.cloud == nil {
		return errNotInitialized
	}
	d.config = cfg
	if cfg.Management {
		d.serverNamePrefix = d.cloud.Provider.ManagementGroup
	} else {
		d.serverNamePrefix = d.cloud.Provider.MachineNamePrefix
	}
	return nil
}

// CreateServer creates a server from the named template, starts it, and
// describes it for the host.
func (d *Driver) CreateServer(ctx context.Context, serverName, templateName string) (*MachineDetails, error) {
	if err := d.ready(); err != nil {
		return nil, err
	}
	t, err := d.cloud.Template(templateName)
	if err != nil {
		return nil, domain.NewProvisioningError("Could not create server", err)
	}

	d.log.V(1).Info("Creating new server", "name", serverName, "template", templateName)

	server, err := d.compute.CreateServer(ctx, compute.CreateServerOpts{
		Name:        serverName,
		ServerOffer: t.HardwareID,
		DiskOffer:   t.DiskProductOffer(),
		VDC:         t.LocationID,
		Network:     t.Network(),
		Image:       t.ImageID,
	})
	if err != nil {
		return nil, asProvisioningError("Could not create server", err)
	}
	if err := d.compute.StartServer(ctx, server.ID); err != nil {
		return nil, domain.NewProvisioningError("Could not create server", err)
	}

	d.log.Info("Created new server", "id", server.ID, "name", serverName)
	md := machineDetails(templateName, t, *server)
	return &md, nil
}

// StartMachine creates and starts one agent machine named
// <machineNamePrefix><service>-<n>. The whole operation is bounded by duration.
func (d *Driver) StartMachine(ctx context.Context, pc ProvisioningContext, duration time.Duration) (*MachineDetails, error) {
	if err := d.ready(); err != nil {
		return nil, err
	}
	templateName := d.config.CloudTemplateName
	if pc.Template != "" {
		templateName = pc.Template
	}

	ctx, cancel := withDuration(ctx, duration)
	defer cancel()

	name := d.serverNamePrefix + d.config.ServiceName + "-" + strconv.FormatInt(d.counter.Add(1), 10)
	return d.CreateServer(ctx, name, templateName)
}

// StartManagementMachines creates the management machines one after another.
// It refuses to run while any server already carries the management prefix.
// If a machine cannot be created, the ones already built are torn down
// before the error is returned.
func (d *Driver) StartManagementMachines(ctx context.Context, mpc ManagementProvisioningContext, duration time.Duration) ([]MachineDetails, error) {
	if err := d.ready(); err != nil {
		return nil, err
	}
	prefix := d.managementPrefix()

	existing, err := d.GetExistingManagementServers(ctx)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, domain.NewProvisioningError(fmt.Sprintf("Found existing servers matching group %s", prefix), nil)
	}

	count := d.cloud.Provider.NumberOfManagementMachines
	if mpc.Count > 0 {
		count = mpc.Count
	}

	opCtx, cancel := withDuration(ctx, duration)
	defer cancel()

	d.events.PublishEvent(EventAttemptStartManagementVMs)

	created := make([]MachineDetails, 0, count)
	for i := 1; i <= count; i++ {
		md, err := d.CreateServer(opCtx, prefix+strconv.Itoa(i), d.cloud.Configuration.ManagementMachineTemplate)
		if err != nil {
			d.log.Error(err, "Failed to start management machine", "index", i, "of", count)
			// The operation deadline may already be spent; clean up under the caller's context.
			failure := ProvisioningFailure{Requested: count, Errors: 1, FirstError: err, Created: created}
			if herr := d.HandleProvisioningFailure(ctx, failure); herr != nil {
				d.log.Error(herr, "Failed to clean up after provisioning failure")
			}
			return nil, err
		}
		created = append(created, *md)
	}

	d.events.PublishEvent(EventManagementVMsStarted)
	return created, nil
}

// StopMachine deletes the server with the given address.
func (d *Driver) StopMachine(ctx context.Context, ip string, duration time.Duration) (bool, error) {
	if err := d.ready(); err != nil {
		return false, err
	}
	ctx, cancel := withDuration(ctx, duration)
	defer cancel()

	server, err := d.compute.GetServerByIP(ctx, ip, "")
	if err != nil {
		return false, domain.NewProvisioningError(fmt.Sprintf("Error while retrieving server with ip %s", ip), err)
	}
	if server == nil {
		return false, domain.NewProvisioningError(fmt.Sprintf("Could not find a server with ip %s", ip), nil)
	}

	if err := d.compute.DeleteServer(ctx, server.ID); err != nil {
		return false, domain.NewProvisioningError(fmt.Sprintf("Could not delete server with ip %s", ip), err)
	}
	d.log.Info("Stopped machine", "ip", ip, "id", server.ID)
	return true, nil
}

// StopManagementMachines deletes every management server in provider order
// and stops at the first failure.
func (d *Driver) StopManagementMachines(ctx context.Context) error {
	if err := d.ready(); err != nil {
		return err
	}
	machines, err := d.GetExistingManagementServers(ctx)
	if err != nil {
		return err
	}
	for _, md := range machines {
		if err := d.compute.DeleteServer(ctx, md.MachineID); err != nil {
			return domain.NewProvisioningError(fmt.Sprintf("Could not stop server with id %s", md.MachineID), err)
		}
		d.log.Info("Stopped management machine", "id", md.MachineID)
	}
	return nil
}

// GetExistingManagementServers describes every server whose name carries
// the management prefix.
func (d *Driver) GetExistingManagementServers(ctx context.Context) ([]MachineDetails, error) {
	if err := d.ready(); err != nil {
		return nil, err
	}
	servers, err := d.compute.GetServers(ctx, d.managementPrefix())
	if err != nil {
		return nil, domain.NewProvisioningError("Could not retrieve existing management servers", err)
	}

	name := d.cloud.Configuration.ManagementMachineTemplate
	mds := make([]MachineDetails, 0, len(servers))
	for _, s := range servers {
		mds = append(mds, machineDetails(name, d.managementTemplate, s))
	}
	return mds, nil
}

// HandleProvisioningFailure tears down all management machines.
func (d *Driver) HandleProvisioningFailure(ctx context.Context, failure ProvisioningFailure) error {
	d.log.Info("Handling provisioning failure", "requested", failure.Requested, "created", len(failure.Created), "errors", failure.Errors)
	if err := d.StopManagementMachines(ctx); err != nil {
		return domain.NewProvisioningError("Could not clean up after the provisioning failure", err)
	}
	return nil
}

// Cloud returns the cloud description passed to InitDeployer.
func (d *Driver) Cloud() *Cloud { return d.cloud }

var errNotInitialized = fmt.Errorf("driver: InitDeployer has not been called")

func (d *Driver) ready() error {
	if d.cloud == nil || d.compute == nil {
		return errNotInitialized
	}
	return nil
}

func (d *Driver) managementPrefix() string {
	return d.cloud.Provider.ManagementGroup
}

func machineDetails(templateName string, t *ComputeTemplate, s domain.Server) MachineDetails {
	md := MachineDetails{
		MachineID:      s.ID,
		TemplateName:   templateName,
		OpenFilesLimit: t.OpenFilesLimit,
		PublicAddress:  s.PublicIP,
		PrivateAddress: s.PrivateIP,
		RemoteUsername: s.InitialUser,
		RemotePassword: s.InitialPassword,
		KeyFile:        t.KeyFile,
	}
	if md.RemoteUsername == "" {
		md.RemoteUsername = t.Username
	}
	return md
}

// asProvisioningError keeps an existing ProvisioningError and wraps anything else.
func asProvisioningError(message string, err error) error {
	if _, ok := err.(*domain.ProvisioningError); ok {
		return err
	}
	return domain.NewProvisioningError(message, err)
}

// withDuration bounds ctx by d. A non-positive d leaves ctx unbounded.
func withDuration(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
