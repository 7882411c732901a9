// Package extility is a SOAP client for the Flexiant Extility user API.
//
// Only the operations needed for server provisioning are implemented:
// listResources, createServer, changeServerStatus, deleteResource and
// waitForJob. Requests are SOAP 1.1 document/literal envelopes POSTed to
// the configured endpoint with HTTP Basic authentication.
package extility

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"nathanbeddoewebdev/flexctl/internal/domain"
	"nathanbeddoewebdev/flexctl/internal/obs/metrics"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 32 << 20

// Config holds the connection settings for a Client.
type Config struct {
	// Endpoint is the URL of the user API, e.g. https://api.example.com:4442/user/.
	Endpoint string

	// Username has the form "<customerUUID>/<login>".
	Username string
	Password string

	// HTTPClient is optional. It must not set a Timeout shorter than the
	// longest expected waitForJob call; deadlines are expected to come from
	// the request context.
	HTTPClient *http.Client
}

// Client talks to the Extility API. It is safe for concurrent use; its
// configuration is fixed at construction.
type Client struct {
	endpoint     string
	username     string
	password     string
	customerUUID string
	httpClient   *http.Client
}

// HTTPError is returned for non-2xx responses that do not carry a SOAP fault.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("extility: unexpected HTTP status %d", e.StatusCode)
	}
	return fmt.Sprintf("extility: unexpected HTTP status %d: %s", e.StatusCode, e.Body)
}

// NewClient validates cfg and returns a Client.
func NewClient(cfg Config) (*Client, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	u, err := url.Parse(endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("extility: the endpoint URL %q is malformed, check your endpoint", cfg.Endpoint)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("extility: unsupported endpoint scheme %q", u.Scheme)
	}
	if cfg.Username == "" {
		return nil, fmt.Errorf("extility: username is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &Client{
		endpoint:     endpoint,
		username:     cfg.Username,
		password:     cfg.Password,
		customerUUID: CustomerUUIDFromUsername(cfg.Username),
		httpClient:   httpClient,
	}, nil
}

// CustomerUUIDFromUsername extracts the customer UUID from an API username
// of the form "<customerUUID>/<login>".
func CustomerUUIDFromUsername(username string) string {
	customer, _, _ := strings.Cut(username, "/")
	return customer
}

// Endpoint returns the configured API endpoint.
func (c *Client) Endpoint() string { return c.endpoint }

// CustomerUUID returns the customer UUID of the authenticated user.
func (c *Client) CustomerUUID() string { return c.customerUUID }

// ListResources returns all resources of type rt matching filter. A nil
// filter lists every resource of the type.
func (c *Client) ListResources(ctx context.Context, filter *SearchFilter, rt ResourceType) (*ListResult, error) {
	var resp listResourcesResponse
	req := listResourcesRequest{SearchFilter: filter, ResourceType: rt}
	if err := c.call(ctx, "listResources", req, &resp); err != nil {
		return nil, err
	}
	return &resp.Result, nil
}

// CreateServer submits a createServer job for the given skeleton.
func (c *Client) CreateServer(ctx context.Context, skeleton Server) (*Job, error) {
	var resp jobResponse
	if err := c.call(ctx, "createServer", createServerRequest{SkeletonServer: skeleton}, &resp); err != nil {
		return nil, err
	}
	return &resp.Job, nil
}

// ChangeServerStatus submits a job moving the server to status.
func (c *Client) ChangeServerStatus(ctx context.Context, serverUUID string, status ServerStatus, safe bool) (*Job, error) {
	var resp jobResponse
	req := changeServerStatusRequest{ServerUUID: serverUUID, NewStatus: status, Safe: safe}
	if err := c.call(ctx, "changeServerStatus", req, &resp); err != nil {
		return nil, err
	}
	return &resp.Job, nil
}

// DeleteResource submits a job deleting the resource and, when cascade is
// set, everything attached to it.
func (c *Client) DeleteResource(ctx context.Context, resourceUUID string, cascade bool) (*Job, error) {
	var resp jobResponse
	req := deleteResourceRequest{ResourceUUID: resourceUUID, Cascade: cascade}
	if err := c.call(ctx, "deleteResource", req, &resp); err != nil {
		return nil, err
	}
	return &resp.Job, nil
}

// WaitForJob blocks on the provider until the job finishes. With
// throwOnFail set the provider answers with a fault if the job failed.
// The call has no local timeout; bound it with ctx.
func (c *Client) WaitForJob(ctx context.Context, jobUUID string, throwOnFail bool) (*Job, error) {
	var resp jobResponse
	req := waitForJobRequest{JobUUID: jobUUID, ThrowOnFail: throwOnFail}
	if err := c.call(ctx, "waitForJob", req, &resp); err != nil {
		return nil, err
	}
	return &resp.Job, nil
}

func (c *Client) call(ctx context.Context, operation string, payload, out any) (err error) {
	start := time.Now()
	defer func() {
		outcome := metrics.OutcomeSuccess
		var fault *Fault
		switch {
		case errors.As(err, &fault):
			outcome = metrics.OutcomeFault
		case err != nil:
			outcome = metrics.OutcomeError
		}
		metrics.ObserveRemoteCall(operation, outcome, time.Since(start))
	}()

	body, err := encodeRequest(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("extility: failed to build %s request: %w", operation, err)
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", `"`+operation+`"`)
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("extility: %s request failed: %w", operation, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("extility: failed to read %s response: %w", operation, err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("extility: %s rejected: %w", operation, domain.ErrUnauthorized)
	}

	// SOAP 1.1 reports faults with HTTP 500, so the envelope is decoded
	// before the status code is judged.
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return decodeResponse(data, out)
	}
	if decErr := decodeResponse(data, nil); decErr != nil {
		var fault *Fault
		if errors.As(decErr, &fault) {
			return fault
		}
	}
	return &HTTPError{StatusCode: resp.StatusCode, Body: truncate(strings.TrimSpace(string(data)), 256)}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
