// Package session turns the persisted configuration and stored credentials
// into a ready-to-use compute client.
package session

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-logr/logr"

	"nathanbeddoewebdev/flexctl/internal/compute"
	"nathanbeddoewebdev/flexctl/internal/config"
	"nathanbeddoewebdev/flexctl/internal/extility"
	"nathanbeddoewebdev/flexctl/internal/jobstore"
	"nathanbeddoewebdev/flexctl/internal/services/auth"
	"nathanbeddoewebdev/flexctl/internal/services/jobs"
)

// Session bundles the clients a command needs for one invocation.
type Session struct {
	Compute *compute.Client
	Jobs    *jobs.Service
	API     *extility.Client
}

// Options tune Open.
type Options struct {
	Log        logr.Logger
	HTTPClient *http.Client

	// Repository overrides the job history store. When nil the default
	// database is opened; if that fails, history is disabled.
	Repository jobstore.Repository
}

// Open builds a Session from cfg, reading the password for cfg.APIUser from
// store.
func Open(cfg *config.Config, store auth.Store, opts Options) (*Session, error) {
	if cfg == nil {
		cfg = &config.Config{}
	}
	if cfg.Endpoint == "" {
		return nil, errors.New("no endpoint configured: set one with 'flexctl config set endpoint <url>'")
	}
	if cfg.APIUser == "" {
		return nil, errors.New("no API user configured: set one with 'flexctl config set api-user <customerUUID/login>'")
	}

	password, err := store.GetPassword(cfg.APIUser)
	if errors.Is(err, auth.ErrPasswordNotFound) {
		return nil, fmt.Errorf("not logged in as %s: run 'flexctl auth login %s'", cfg.APIUser, cfg.APIUser)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials: %w", err)
	}

	api, err := extility.NewClient(extility.Config{
		Endpoint:   cfg.Endpoint,
		Username:   cfg.APIUser,
		Password:   password,
		HTTPClient: opts.HTTPClient,
	})
	if err != nil {
		return nil, err
	}

	log := opts.Log
	if log.GetSink() == nil {
		log = logr.Discard()
	}

	repo := opts.Repository
	if repo == nil {
		r, err := jobstore.Open()
		if err != nil {
			log.V(1).Info("Job history disabled", "error", err.Error())
		} else {
			repo = r
		}
	}
	history := jobs.NewService(repo, api.Endpoint(), log)

	return &Session{
		Compute: compute.NewClient(api, compute.WithLogger(log), compute.WithJobObserver(history)),
		Jobs:    history,
		API:     api,
	}, nil
}

// Close releases the job history store.
func (s *Session) Close() error {
	if s == nil || s.Jobs == nil {
		return nil
	}
	return s.Jobs.Close()
}
