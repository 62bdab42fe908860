package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/erazemk/sweetshop/internal/model"
)

// State is the provider's lifecycle state.
type State int

const (
	Hydrating State = iota
	Anonymous
	Authenticated
)

func (s State) String() string {
	switch s {
	case Hydrating:
		return "hydrating"
	case Anonymous:
		return "anonymous"
	case Authenticated:
		return "authenticated"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Session is a snapshot of the session state.
// User is non-nil exactly when Token is non-empty.
type Session struct {
	Token   string
	User    *model.Identity
	Loading bool
}

// State derives the lifecycle state from the snapshot.
func (s Session) State() State {
	switch {
	case s.Loading:
		return Hydrating
	case s.Token != "" && s.User != nil:
		return Authenticated
	default:
		return Anonymous
	}
}

// IsAdmin reports whether the session identity has the admin role.
func (s Session) IsAdmin() bool {
	return s.User != nil && s.User.IsAdmin()
}

// Authenticator exchanges credentials for a token with the remote API.
type Authenticator interface {
	Login(ctx context.Context, in model.LoginInput) (*model.AuthResult, error)
	Register(ctx context.Context, in model.RegisterInput) (*model.AuthResult, error)
}

// Provider owns one client's session. All mutations go through Login,
// Register, Logout and the hydration done by NewProvider.
//
// Concurrent Login/Register calls are allowed; whichever response is applied
// last wins.
type Provider struct {
	storage Storage
	auth    Authenticator
	logger  *slog.Logger

	mu      sync.Mutex
	current Session
	subs    map[int]func(Session)
	nextSub int
}

// Option configures a Provider.
type Option func(*Provider)

// WithLogger sets the logger used for session transitions.
func WithLogger(l *slog.Logger) Option {
	return func(p *Provider) { p.logger = l }
}

// NewProvider creates a provider and hydrates it from storage.
func NewProvider(storage Storage, auth Authenticator, opts ...Option) *Provider {
	p := &Provider{
		storage: storage,
		auth:    auth,
		logger:  slog.Default(),
		current: Session{Loading: true},
		subs:    make(map[int]func(Session)),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.hydrate()
	return p
}

func (p *Provider) hydrate() {
	token, ok := p.storage.Read()
	if !ok || token == "" {
		p.set(Session{})
		return
	}

	identity, err := Decode(token)
	if err != nil {
		p.logger.Debug("dropping undecodable stored token", "error", err)
		if cerr := p.storage.Clear(); cerr != nil {
			p.logger.Warn("failed to clear stored token", "error", cerr)
		}
		p.set(Session{})
		return
	}

	p.set(Session{Token: token, User: &identity})
}

// Snapshot returns the current session.
func (p *Provider) Snapshot() Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Subscribe registers fn to be called with every new session snapshot.
// The returned function removes the subscription.
func (p *Provider) Subscribe(fn func(Session)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextSub
	p.nextSub++
	p.subs[id] = fn
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.subs, id)
	}
}

// Login exchanges email and password for a session.
// On failure the state is left unchanged and a *CredentialError wrapping
// ErrAuthenticationFailed is returned.
func (p *Provider) Login(ctx context.Context, email, password string) error {
	res, err := p.auth.Login(ctx, model.LoginInput{Email: email, Password: password})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return newCredentialError(ErrAuthenticationFailed, "Login failed", err)
	}
	return p.establish(ctx, res, ErrAuthenticationFailed, "Login failed")
}

// Register creates an account and signs in with it. An empty role means
// model.RoleUser.
func (p *Provider) Register(ctx context.Context, name, email, password, role string) error {
	if role == "" {
		role = model.RoleUser
	}
	res, err := p.auth.Register(ctx, model.RegisterInput{Name: name, Email: email, Password: password, Role: role})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return newCredentialError(ErrRegistrationFailed, "Registration failed", err)
	}
	return p.establish(ctx, res, ErrRegistrationFailed, "Registration failed")
}

// establish persists a fresh token and identity. The server's user object
// is preferred; the token's claims are only used when the server sent none.
func (p *Provider) establish(ctx context.Context, res *model.AuthResult, kind error, fallback string) error {
	// The caller is gone; don't touch state on its behalf.
	if err := ctx.Err(); err != nil {
		return err
	}
	if res == nil || res.Token == "" {
		return newCredentialError(kind, fallback, errors.New("response carried no token"))
	}

	var identity model.Identity
	if res.User != nil {
		identity = *res.User
		identity.Role = model.NormalizeRole(identity.Role)
	} else {
		decoded, err := Decode(res.Token)
		if err != nil {
			return newCredentialError(kind, fallback, err)
		}
		identity = decoded
	}

	return p.transition(Session{Token: res.Token, User: &identity}, func() error {
		if err := p.storage.Write(res.Token); err != nil {
			return fmt.Errorf("persisting token: %w", err)
		}
		return nil
	})
}

// Logout clears storage and the in-memory session. It never fails and is
// safe to call repeatedly.
func (p *Provider) Logout() {
	p.transition(Session{}, func() error {
		if err := p.storage.Clear(); err != nil {
			p.logger.Warn("failed to clear stored token", "error", err)
		}
		return nil
	})
}

func (p *Provider) set(s Session) {
	p.transition(s, nil)
}

// transition runs persist and swaps in s under one lock, so storage and
// memory always agree on the last write. Subscribers run after the lock is
// released.
func (p *Provider) transition(s Session, persist func() error) error {
	p.mu.Lock()
	if persist != nil {
		if err := persist(); err != nil {
			p.mu.Unlock()
			return err
		}
	}
	prev := p.current.State()
	p.current = s
	subs := make([]func(Session), 0, len(p.subs))
	for _, fn := range p.subs {
		subs = append(subs, fn)
	}
	p.mu.Unlock()

	if next := s.State(); next != prev {
		p.logger.Debug("session state changed", "from", prev.String(), "to", next.String())
	}
	for _, fn := range subs {
		fn(s)
	}
	return nil
}
