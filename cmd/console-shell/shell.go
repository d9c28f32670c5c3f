package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/upb/ops-console/config"
	"github.com/upb/ops-console/credentials"
	"github.com/upb/ops-console/internal/auth"
	"github.com/upb/ops-console/services/identity"
	"github.com/upb/ops-console/services/session"
	"go.uber.org/zap"
)

// shell hosts one session provider and renders its navigation as text
type shell struct {
	cfg        *config.Config
	store      credentials.Store
	httpClient *http.Client
	out        io.Writer
	logger     *zap.Logger
}

func newShell(cfg *config.Config, store credentials.Store, httpClient *http.Client, out io.Writer, logger *zap.Logger) *shell {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Session.HTTPTimeout}
	}
	return &shell{
		cfg:        cfg,
		store:      store,
		httpClient: httpClient,
		out:        out,
		logger:     logger,
	}
}

func (s *shell) newProvider() *session.Provider {
	client := identity.NewClient(s.cfg.Session.IdentityURL, s.httpClient, s.logger)
	provider := session.NewProvider(client, s.store, s.logger,
		session.WithInterval(s.cfg.Session.RevalidateInterval),
		session.WithFetchTimeout(s.cfg.Session.HTTPTimeout),
		session.WithLogoutRedirect(func(ctx context.Context) error {
			_, err := fmt.Fprintf(s.out, "signed out, sign in again at %s\n", s.cfg.Auth.LoginURL)
			return err
		}),
	)
	return provider
}

// Login stores token as the credential for later runs
func (s *shell) Login(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("login requires --token")
	}
	if err := s.store.Save(token); err != nil {
		return err
	}
	_, err := fmt.Fprintln(s.out, "credential stored")
	return err
}

// Status resolves the session once and prints it
func (s *shell) Status(ctx context.Context) error {
	provider := s.newProvider()
	defer provider.Close()

	if err := provider.Start(ctx); err != nil {
		return err
	}
	return s.render(provider.Snapshot())
}

// Watch prints the navigation every time the session changes, until ctx
// is cancelled.
func (s *shell) Watch(ctx context.Context) error {
	provider := s.newProvider()
	defer provider.Close()

	updates := provider.Subscribe()
	if err := provider.Start(ctx); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case snap, ok := <-updates:
			if !ok {
				return nil
			}
			if snap.Loading || snap.State == session.StateUnresolved {
				continue
			}
			if err := s.render(snap); err != nil {
				return err
			}
		}
	}
}

// Logout clears the stored credential and points at the login page
func (s *shell) Logout(ctx context.Context) error {
	provider := s.newProvider()
	defer provider.Close()
	return provider.Logout(ctx)
}

// render prints snap. The views are derived from the snapshot's own role so
// the line never mixes two sessions.
func (s *shell) render(snap session.Snapshot) error {
	if snap.Role() == auth.RoleNone {
		_, err := fmt.Fprintf(s.out, "not signed in, sign in at %s\n", s.cfg.Auth.LoginURL)
		return err
	}

	views := session.NewAccessor(snap, nil, nil).VisibleViews()
	_, err := fmt.Fprintf(s.out, "%s (%s)\nviews: %s\n",
		snap.User.Email, snap.User.Role, strings.Join(views, ", "))
	return err
}
