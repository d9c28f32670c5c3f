package session

import (
	"context"
	"time"
)

const (
	// DefaultInterval is the period between identity revalidations.
	DefaultInterval = 10 * time.Minute
	// DefaultFetchTimeout bounds a single identity fetch.
	DefaultFetchTimeout = 10 * time.Second
)

// Option configures a Provider.
type Option func(*Provider)

// WithInterval sets the revalidation period. Non-positive values are ignored.
func WithInterval(d time.Duration) Option {
	return func(p *Provider) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithFetchTimeout bounds each identity fetch. Non-positive values are ignored.
func WithFetchTimeout(d time.Duration) Option {
	return func(p *Provider) {
		if d > 0 {
			p.fetchTimeout = d
		}
	}
}

// WithLogoutRedirect sets the hook invoked after Logout has cleared the
// session, typically navigating the user to the login entry point.
func WithLogoutRedirect(fn func(ctx context.Context) error) Option {
	return func(p *Provider) {
		p.onLogout = fn
	}
}
