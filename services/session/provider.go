package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/upb/ops-console/credentials"
	"github.com/upb/ops-console/internal/auth"
	"github.com/upb/ops-console/models"
	"github.com/upb/ops-console/services"
	"go.uber.org/zap"
)

// IdentityFetcher performs the identity fetch for a credential.
type IdentityFetcher interface {
	FetchIdentity(ctx context.Context, token string) (*models.Identity, error)
}

// Provider holds the current session and its lifecycle state.
//
// Every fetch captures the generation at issue. Applied transitions, Logout
// and Close bump it, and a fetch that completes under a newer generation is
// discarded.
type Provider struct {
	fetcher      IdentityFetcher
	store        credentials.Store
	logger       *zap.Logger
	interval     time.Duration
	fetchTimeout time.Duration
	onLogout     func(ctx context.Context) error

	mu          sync.Mutex
	state       State
	user        *models.Identity
	generation  uint64
	started     bool
	closed      bool
	cancel      context.CancelFunc
	done        chan struct{}
	subscribers []chan Snapshot
}

// NewProvider creates a provider in the Unresolved state. Nothing is fetched
// until Start.
func NewProvider(fetcher IdentityFetcher, store credentials.Store, logger *zap.Logger, opts ...Option) *Provider {
	p := &Provider{
		fetcher:      fetcher,
		store:        store,
		logger:       logger,
		interval:     DefaultInterval,
		fetchTimeout: DefaultFetchTimeout,
		state:        StateUnresolved,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start resolves the session from the stored credential and then starts the
// periodic revalidation. It blocks for the initial fetch. Fetch failures leave
// the session Unauthenticated and are not returned.
func (p *Provider) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	if p.started {
		p.mu.Unlock()
		return ErrAlreadyStarted
	}
	p.started = true
	gen := p.transitionLocked(StateLoading, nil)
	p.mu.Unlock()

	p.resolve(ctx, gen)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	loopCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	go p.run(loopCtx, p.done)

	return nil
}

func (p *Provider) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Revalidate(ctx)
		}
	}
}

// Revalidate re-fetches the identity once. It does nothing unless the session
// is Authenticated, so it never revives a logged out session.
func (p *Provider) Revalidate(ctx context.Context) {
	p.mu.Lock()
	if p.state != StateAuthenticated {
		p.mu.Unlock()
		return
	}
	gen := p.generation
	p.mu.Unlock()

	p.resolve(ctx, gen)
}

// Logout clears the session, deletes the stored credential and invokes the
// redirect hook. The session is cleared even when deletion or the hook fails;
// those errors are returned joined.
func (p *Provider) Logout(ctx context.Context) error {
	p.mu.Lock()
	gen := p.transitionLocked(StateUnauthenticated, nil)
	p.mu.Unlock()

	p.logger.Info("session logged out", zap.Uint64("generation", gen))

	var errs []error
	if err := p.store.Delete(); err != nil {
		p.logger.Error("failed to delete stored credential", zap.Error(err))
		errs = append(errs, err)
	}
	if p.onLogout != nil {
		if err := p.onLogout(ctx); err != nil {
			p.logger.Warn("logout redirect failed", zap.Error(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close stops the revalidation task, waits for it to exit and closes every
// subscription channel. A session that never resolved is left
// Unauthenticated; a fetch still in flight is discarded. Close is idempotent.
func (p *Provider) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	if p.state == StateUnresolved || p.state == StateLoading {
		p.transitionLocked(StateUnauthenticated, nil)
	} else {
		p.generation++
	}
	cancel, done := p.cancel, p.done
	subs := p.subscribers
	p.subscribers = nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	for _, ch := range subs {
		close(ch)
	}
}

// Snapshot returns the current session state.
func (p *Provider) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

// Role returns the role of the authenticated user, or auth.RoleNone while the
// session is unresolved, loading or unauthenticated.
func (p *Provider) Role() auth.Role {
	return p.Snapshot().Role()
}

// Subscribe returns a channel that receives the current snapshot and then a
// snapshot after every applied transition. Slow readers only see the latest
// one. The channel is closed by Close.
func (p *Provider) Subscribe() <-chan Snapshot {
	ch := make(chan Snapshot, 1)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		close(ch)
		return ch
	}
	ch <- p.snapshotLocked()
	p.subscribers = append(p.subscribers, ch)
	return ch
}

func (p *Provider) resolve(ctx context.Context, gen uint64) {
	identity, err := p.fetchIdentity(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()

	if gen != p.generation {
		p.logger.Debug("discarding stale identity fetch",
			zap.Uint64("generation", gen),
			zap.Uint64("current_generation", p.generation))
		return
	}

	if err != nil {
		p.logger.Warn("identity fetch failed",
			zap.Stringer("previous_state", p.state),
			zap.Error(err))
		p.transitionLocked(StateUnauthenticated, nil)
		return
	}

	p.transitionLocked(StateAuthenticated, identity)
	p.logger.Info("session resolved",
		zap.String("user_id", identity.ID),
		zap.Stringer("role", identity.Role))
}

func (p *Provider) fetchIdentity(ctx context.Context) (*models.Identity, error) {
	token, err := p.store.Load()
	if err != nil {
		if errors.Is(err, credentials.ErrNoCredential) {
			return nil, services.WrapSessionFetch("no stored credential", err)
		}
		return nil, services.WrapSessionFetch("failed to load stored credential", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.fetchTimeout)
	defer cancel()

	identity, err := p.fetcher.FetchIdentity(ctx, token)
	if err != nil {
		return nil, err
	}
	if identity == nil {
		return nil, services.WrapSessionFetch("empty identity", nil)
	}
	return identity, nil
}

// transitionLocked applies a state change, bumps the generation and notifies
// subscribers. p.mu must be held.
func (p *Provider) transitionLocked(state State, user *models.Identity) uint64 {
	p.generation++
	p.state = state
	p.user = nil
	if state == StateAuthenticated && user != nil {
		u := *user
		p.user = &u
	}

	p.logger.Debug("session transition",
		zap.Stringer("state", state),
		zap.Uint64("generation", p.generation))

	snap := p.snapshotLocked()
	for _, ch := range p.subscribers {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
	return p.generation
}

func (p *Provider) snapshotLocked() Snapshot {
	snap := Snapshot{
		State:   p.state,
		Loading: p.state == StateLoading,
	}
	if p.user != nil {
		u := *p.user
		snap.User = &u
	}
	return snap
}
