// Package telemetry reports server-side failures to Sentry.
package telemetry

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
)

type Config struct {
	DSN         string
	Environment string
	Release     string
	// Transport overrides delivery, mainly for tests.
	Transport sentry.Transport
}

// Reporter sends errors to its own Sentry hub. A nil or disabled Reporter
// discards everything.
type Reporter struct {
	hub *sentry.Hub
}

// New returns a Reporter, or a disabled one when neither a DSN nor a
// transport is configured.
func New(cfg Config) (*Reporter, error) {
	if cfg.DSN == "" && cfg.Transport == nil {
		return &Reporter{}, nil
	}

	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		Release:          cfg.Release,
		Transport:        cfg.Transport,
		SampleRate:       1.0,
		AttachStacktrace: true,
		ServerName:       "",
	})
	if err != nil {
		return nil, fmt.Errorf("sentry initialization failed: %w", err)
	}
	return &Reporter{hub: sentry.NewHub(client, sentry.NewScope())}, nil
}

func (r *Reporter) Enabled() bool {
	return r != nil && r.hub != nil
}

// Capture reports err with the given tags.
func (r *Reporter) Capture(err error, tags map[string]string) {
	if !r.Enabled() || err == nil {
		return
	}
	r.hub.WithScope(func(scope *sentry.Scope) {
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		r.hub.CaptureException(err)
	})
}

// Flush waits up to timeout for queued events to be delivered.
func (r *Reporter) Flush(timeout time.Duration) bool {
	if !r.Enabled() {
		return true
	}
	return r.hub.Flush(timeout)
}
