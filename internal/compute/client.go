// Package compute maps Extility resources onto the server, image, hardware,
// and location records used by the CLI and the provisioning driver.
package compute

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"

	"nathanbeddoewebdev/flexctl/internal/domain"
	"nathanbeddoewebdev/flexctl/internal/extility"
	"nathanbeddoewebdev/flexctl/internal/obs/metrics"
)

// Command names recorded for submitted jobs.
const (
	CommandCreateServer = "create_server"
	CommandStartServer  = "start_server"
	CommandStopServer   = "stop_server"
	CommandDeleteServer = "delete_server"
)

// API is the subset of the Extility user API used by this package.
// *extility.Client satisfies it.
type API interface {
	ListResources(ctx context.Context, filter *extility.SearchFilter, rt extility.ResourceType) (*extility.ListResult, error)
	CreateServer(ctx context.Context, skeleton extility.Server) (*extility.Job, error)
	ChangeServerStatus(ctx context.Context, serverUUID string, status extility.ServerStatus, safe bool) (*extility.Job, error)
	DeleteResource(ctx context.Context, resourceUUID string, cascade bool) (*extility.Job, error)
	WaitForJob(ctx context.Context, jobUUID string, throwOnFail bool) (*extility.Job, error)
	CustomerUUID() string
}

// JobObserver is told about every job a Client submits. Implementations
// must not block for long; they run inline with the operation.
type JobObserver interface {
	JobSubmitted(ctx context.Context, command string, job extility.Job)
	JobFinished(ctx context.Context, command string, job extility.Job, err error)
}

type nopObserver struct{}

func (nopObserver) JobSubmitted(context.Context, string, extility.Job) {}
func (nopObserver) JobFinished(context.Context, string, extility.Job, error) {}

// CreateServerOpts holds the UUIDs of everything a new server is built from.
type CreateServerOpts struct {
	Name        string
	ServerOffer string
	DiskOffer   string
	VDC         string
	Network     string
	Image       string
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log logr.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithJobObserver registers an observer for submitted jobs.
func WithJobObserver(o JobObserver) Option {
	return func(c *Client) {
		if o != nil {
			c.observer = o
		}
	}
}

// Client performs server lifecycle operations. Every mutating call submits
// a provider job and blocks until it finishes.
type Client struct {
	api      API
	lookup   *Lookup
	jobs     *JobAwaiter
	observer JobObserver
	log      logr.Logger
}

// NewClient returns a Client backed by api.
func NewClient(api API, opts ...Option) *Client {
	c := &Client{
		api:      api,
		lookup:   NewLookup(api),
		jobs:     NewJobAwaiter(api),
		observer: nopObserver{},
		log:      logr.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Lookup exposes the underlying resource lookup.
func (c *Client) Lookup() *Lookup { return c.lookup }

// CreateServer builds a server with one disk and one NIC, waits for the
// creation job, and returns the new server as the provider reports it.
// The server is left in whatever state the provider creates it in.
func (c *Client) CreateServer(ctx context.Context, opts CreateServerOpts) (*domain.Server, error) {
	skeleton := extility.Server{
		ResourceName:     opts.Name,
		CustomerUUID:     c.api.CustomerUUID(),
		ProductOfferUUID: opts.ServerOffer,
		VdcUUID:          opts.VDC,
		ImageUUID:        opts.Image,
		Disks:            []extility.Disk{{ProductOfferUUID: opts.DiskOffer, Index: 0}},
		Nics:             []extility.Nic{{NetworkUUID: opts.Network}},
	}

	c.log.Info("Creating server", "name", opts.Name, "image", opts.Image, "offer", opts.ServerOffer, "vdc", opts.VDC)

	job, err := c.runJob(ctx, CommandCreateServer, opts.Name, func() (*extility.Job, error) {
		return c.api.CreateServer(ctx, skeleton)
	})
	if err != nil {
		return nil, domain.NewProvisioningError("Could not create server", err)
	}

	server, err := c.GetServer(ctx, job.ItemUUID)
	if err != nil {
		return nil, domain.NewProvisioningError("Could not create server", err)
	}
	if server == nil {
		return nil, domain.NewProvisioningError("Could not create server",
			fmt.Errorf("server %s not found after creation: %w", job.ItemUUID, domain.ErrNotFound))
	}
	return server, nil
}

// StartServer moves the server to RUNNING and waits for the job.
func (c *Client) StartServer(ctx context.Context, id string) error {
	return c.changeStatus(ctx, CommandStartServer, id, extility.ServerStatusRunning)
}

// StopServer moves the server to STOPPED and waits for the job.
func (c *Client) StopServer(ctx context.Context, id string) error {
	return c.changeStatus(ctx, CommandStopServer, id, extility.ServerStatusStopped)
}

// DeleteServer deletes the server and its attached resources and waits for
// the job.
func (c *Client) DeleteServer(ctx context.Context, id string) error {
	c.log.Info("Deleting server", "id", id)
	_, err := c.runJob(ctx, CommandDeleteServer, id, func() (*extility.Job, error) {
		return c.api.DeleteResource(ctx, id, true)
	})
	return err
}

// StartServerRecord is StartServer for an already fetched server.
func (c *Client) StartServerRecord(ctx context.Context, server *domain.Server) error {
	if server == nil {
		return fmt.Errorf("compute: cannot start a nil server")
	}
	return c.StartServer(ctx, server.ID)
}

// StopServerRecord is StopServer for an already fetched server.
func (c *Client) StopServerRecord(ctx context.Context, server *domain.Server) error {
	if server == nil {
		return fmt.Errorf("compute: cannot stop a nil server")
	}
	return c.StopServer(ctx, server.ID)
}

// DeleteServerRecord is DeleteServer for an already fetched server.
func (c *Client) DeleteServerRecord(ctx context.Context, server *domain.Server) error {
	if server == nil {
		return fmt.Errorf("compute: cannot delete a nil server")
	}
	return c.DeleteServer(ctx, server.ID)
}

// GetServer returns the server with the given UUID, or nil if it does not exist.
func (c *Client) GetServer(ctx context.Context, id string) (*domain.Server, error) {
	r, err := c.lookup.FindByUUID(ctx, id, extility.ResourceTypeServer)
	if err != nil || r == nil {
		return nil, err
	}
	s := toServer(*r)
	return &s, nil
}

// GetServers returns every server whose name starts with prefix, in
// provider order. An empty prefix returns all servers.
func (c *Client) GetServers(ctx context.Context, prefix string) ([]domain.Server, error) {
	var (
		resources []extility.Resource
		err       error
	)
	if prefix == "" {
		resources, err = c.lookup.ListAll(ctx, extility.ResourceTypeServer)
	} else {
		resources, err = c.lookup.FindByPrefix(ctx, prefix, FieldResourceName, extility.ResourceTypeServer)
	}
	if err != nil {
		return nil, err
	}

	servers := make([]domain.Server, 0, len(resources))
	for _, r := range resources {
		servers = append(servers, toServer(r))
	}
	return servers, nil
}

// GetServerByIP returns the first server, among those matching prefix, whose
// public or private address equals ip. The provider cannot search by
// address, so this lists the candidates and scans them locally.
func (c *Client) GetServerByIP(ctx context.Context, ip, prefix string) (*domain.Server, error) {
	if ip == "" {
		return nil, nil
	}
	servers, err := c.GetServers(ctx, prefix)
	if err != nil {
		return nil, err
	}
	for i := range servers {
		if servers[i].PublicIP == ip || servers[i].PrivateIP == ip {
			return &servers[i], nil
		}
	}
	return nil, nil
}

// GetImage returns the image with the given UUID, or nil.
func (c *Client) GetImage(ctx context.Context, id string) (*domain.Image, error) {
	r, err := c.lookup.FindByUUID(ctx, id, extility.ResourceTypeImage)
	if err != nil || r == nil {
		return nil, err
	}
	return &domain.Image{
		ID:          r.ResourceUUID,
		Name:        r.ResourceName,
		DefaultUser: r.DefaultUser,
		GenPassword: r.GenPassword,
	}, nil
}

// GetHardware returns the server product offer with the given UUID, or nil.
func (c *Client) GetHardware(ctx context.Context, id string) (*domain.Hardware, error) {
	r, err := c.lookup.FindByUUID(ctx, id, extility.ResourceTypeProductOffer)
	if err != nil || r == nil {
		return nil, err
	}
	return &domain.Hardware{ID: r.ResourceUUID, Name: r.ResourceName}, nil
}

// GetLocation returns the VDC with the given UUID, or nil.
func (c *Client) GetLocation(ctx context.Context, id string) (*domain.Location, error) {
	r, err := c.lookup.FindByUUID(ctx, id, extility.ResourceTypeVDC)
	if err != nil || r == nil {
		return nil, err
	}
	return &domain.Location{ID: r.ResourceUUID, Name: r.ResourceName}, nil
}

func (c *Client) changeStatus(ctx context.Context, command, id string, status extility.ServerStatus) error {
	c.log.Info("Changing server status", "id", id, "status", status)
	_, err := c.runJob(ctx, command, id, func() (*extility.Job, error) {
		return c.api.ChangeServerStatus(ctx, id, status, true)
	})
	return err
}

// runJob submits a job, reports it to the observer, and waits for it.
func (c *Client) runJob(ctx context.Context, command, target string, submit func() (*extility.Job, error)) (*extility.Job, error) {
	job, err := submit()
	if err != nil {
		metrics.ObserveJob(command, metrics.OutcomeError)
		return nil, &domain.RemoteCallError{
			Op:      command,
			Message: fmt.Sprintf("failed to submit %s for %s", command, target),
			Err:     err,
		}
	}

	c.log.V(1).Info("Job submitted", "command", command, "job", job.ResourceUUID, "target", target)
	c.observer.JobSubmitted(ctx, command, *job)

	done, err := c.jobs.AwaitCompletion(ctx, job)

	final := *job
	if done != nil {
		final = *done
	}
	c.observer.JobFinished(ctx, command, final, err)

	if err != nil {
		metrics.ObserveJob(command, metrics.OutcomeError)
		c.log.Error(err, "Job failed", "command", command, "job", job.ResourceUUID)
		return nil, err
	}
	metrics.ObserveJob(command, metrics.OutcomeSuccess)
	c.log.V(1).Info("Job finished", "command", command, "job", job.ResourceUUID, "item", done.ItemUUID)

	// Some providers leave itemUUID off the completed job.
	if done.ItemUUID == "" {
		done.ItemUUID = job.ItemUUID
	}
	return done, nil
}

// toServer projects a server resource. Both addresses come from the first
// IPv4 entry found across the NICs attached to an IP network.
func toServer(r extility.Resource) domain.Server {
	ip := firstIPv4(r.Nics)
	return domain.Server{
		ID:              r.ResourceUUID,
		Name:            r.ResourceName,
		Status:          r.Status,
		PublicIP:        ip,
		PrivateIP:       ip,
		InitialUser:     r.InitialUser,
		InitialPassword: r.InitialPassword,
	}
}

func firstIPv4(nics []extility.Nic) string {
	for _, nic := range nics {
		if nic.NetworkType != extility.NetworkTypeIP {
			continue
		}
		for _, ip := range nic.IPAddresses {
			if ip.Type == extility.IPTypeV4 {
				return ip.IPAddress
			}
		}
	}
	return ""
}
