// Package session tracks whether a user is currently signed in, as a
// push-updated boolean derived from the gateway's session events, and wraps
// the credential operations with normalized error reporting.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"caixamei/internal/gateway"
	"caixamei/internal/log"
)

// Session owns the authenticated/not-authenticated boolean for the process.
// It checks once at construction and then follows the gateway's session
// change events for its lifetime.
type Session struct {
	auth          gateway.Auth
	logger        *log.Logger
	navigateLogin func() // invoked after logout, success or not
	cancelWatch   func()

	mu       sync.Mutex
	loggedIn bool
	subs     map[int]func(bool)
	nextSub  int
}

// New derives the initial state from the gateway and subscribes to session
// changes. navigateLogin is the caller's routing hook; it may be nil.
func New(ctx context.Context, auth gateway.Auth, logger *log.Logger, navigateLogin func()) *Session {
	s := &Session{
		auth:          auth,
		logger:        logger.WithComponent(log.ComponentSession),
		navigateLogin: navigateLogin,
		subs:          map[int]func(bool){},
	}
	_, ok := auth.CurrentUserID(ctx)
	s.loggedIn = ok
	s.cancelWatch = auth.OnSessionChange(func(loggedIn bool) {
		s.set(loggedIn)
	})
	return s
}

// Close detaches from the gateway's session events.
func (s *Session) Close() {
	if s.cancelWatch != nil {
		s.cancelWatch()
	}
}

// IsLoggedIn returns the last pushed state without touching the gateway.
func (s *Session) IsLoggedIn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loggedIn
}

// Subscribe registers fn for session state pushes. fn fires immediately with
// the current value, then on every change until cancel runs.
func (s *Session) Subscribe(fn func(bool)) (cancel func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	current := s.loggedIn
	s.mu.Unlock()

	fn(current)
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// Check asks the gateway for the session state right now, bypassing the
// cached boolean. Used by the route guard.
func (s *Session) Check(ctx context.Context) bool {
	_, ok := s.auth.CurrentUserID(ctx)
	return ok
}

// Login signs in through the gateway. Failures are surfaced to the caller,
// never swallowed; navigation after success is the caller's business.
func (s *Session) Login(ctx context.Context, email, password string) error {
	if err := s.auth.SignIn(ctx, email, password); err != nil {
		s.logger.Error("sign-in failed", log.FieldOperation, log.OpSignIn, log.FieldError, err)
		if errors.Is(err, gateway.ErrInvalidCredentials) {
			return err
		}
		return fmt.Errorf("sign in: %w", err)
	}
	return nil
}

// Logout signs out and unconditionally routes back to the login surface.
// Sign-out errors are logged, not propagated: the local session is gone
// either way.
func (s *Session) Logout(ctx context.Context) {
	if err := s.auth.SignOut(ctx); err != nil {
		s.logger.Error("sign-out failed", log.FieldOperation, log.OpSignOut, log.FieldError, err)
	}
	if s.navigateLogin != nil {
		s.navigateLogin()
	}
}

// Register creates a new account. It does not sign the user in; the hosted
// backend sends its confirmation mail and a database trigger creates the
// profile row, so fullName is recorded there, not here.
func (s *Session) Register(ctx context.Context, email, password, fullName string) error {
	if err := s.auth.SignUp(ctx, email, password); err != nil {
		s.logger.Error("sign-up failed", log.FieldOperation, log.OpSignUp, log.FieldError, err)
		return err
	}
	return nil
}

// SendPasswordReset asks the gateway to mail a reset link.
func (s *Session) SendPasswordReset(ctx context.Context, email string) error {
	if err := s.auth.RequestPasswordReset(ctx, email); err != nil {
		s.logger.Error("password reset failed", log.FieldOperation, log.OpReset, log.FieldError, err)
		return err
	}
	return nil
}

// set re-broadcasts on every auth event, even when the logged-in state did
// not change, so subscribers see token refreshes too.
func (s *Session) set(loggedIn bool) {
	s.mu.Lock()
	s.loggedIn = loggedIn
	fns := make([]func(bool), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(loggedIn)
	}
}

// FriendlyLoginMessage maps a Login error to the message shown to the user:
// wrong credentials get a specific hint, everything else a generic
// try-again-later line.
func FriendlyLoginMessage(err error) string {
	if errors.Is(err, gateway.ErrInvalidCredentials) {
		return "Email ou senha inválidos. Por favor, tente novamente."
	}
	return "Falha ao realizar login. Tente mais tarde."
}
