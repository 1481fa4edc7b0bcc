package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"caixamei/internal/gateway"
	"caixamei/internal/gateway/memory"
	"caixamei/internal/log"
)

func testLogger() *log.Logger {
	return log.New(log.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
}

func TestLoginStateFollowsGateway(t *testing.T) {
	backend := memory.New()
	backend.AddUser("mei@example.com", "secret")

	s := New(context.Background(), backend, testLogger(), nil)
	defer s.Close()

	if s.IsLoggedIn() {
		t.Fatalf("expected logged out initially")
	}

	var pushes []bool
	cancel := s.Subscribe(func(v bool) { pushes = append(pushes, v) })
	defer cancel()
	if len(pushes) != 1 || pushes[0] != false {
		t.Fatalf("expected immediate false push, got %v", pushes)
	}

	if err := s.Login(context.Background(), "mei@example.com", "secret"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if !s.IsLoggedIn() {
		t.Fatalf("expected logged in after login")
	}
	if len(pushes) != 2 || pushes[1] != true {
		t.Fatalf("expected true push after login, got %v", pushes)
	}

	s.Logout(context.Background())
	if s.IsLoggedIn() {
		t.Fatalf("expected logged out after logout")
	}
	if len(pushes) != 3 || pushes[2] != false {
		t.Fatalf("expected false push after logout, got %v", pushes)
	}
}

func TestRepeatedSessionEventsReBroadcast(t *testing.T) {
	backend := memory.New()
	backend.AddUser("mei@example.com", "secret")

	s := New(context.Background(), backend, testLogger(), nil)
	defer s.Close()

	var pushes []bool
	cancel := s.Subscribe(func(v bool) { pushes = append(pushes, v) })
	defer cancel()

	// A session event that repeats the current state, like a token refresh,
	// still reaches subscribers.
	if err := backend.SignOut(context.Background()); err != nil {
		t.Fatalf("sign out: %v", err)
	}
	if err := backend.SignOut(context.Background()); err != nil {
		t.Fatalf("sign out: %v", err)
	}
	if len(pushes) != 3 || pushes[1] != false || pushes[2] != false {
		t.Fatalf("expected repeated false pushes, got %v", pushes)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	backend := memory.New()
	backend.AddUser("mei@example.com", "secret")

	s := New(context.Background(), backend, testLogger(), nil)
	defer s.Close()

	err := s.Login(context.Background(), "mei@example.com", "wrong")
	if !errors.Is(err, gateway.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if s.IsLoggedIn() {
		t.Fatalf("expected logged out after failed login")
	}
}

// failingSignOut wraps the memory backend so SignOut always errors.
type failingSignOut struct{ *memory.Store }

func (f failingSignOut) SignOut(context.Context) error { return errors.New("boom") }

func TestLogoutAlwaysNavigates(t *testing.T) {
	backend := memory.New()
	backend.AddUser("mei@example.com", "secret")
	if err := backend.SignIn(context.Background(), "mei@example.com", "secret"); err != nil {
		t.Fatalf("sign in: %v", err)
	}

	navigated := 0
	s := New(context.Background(), backend, testLogger(), func() { navigated++ })
	defer s.Close()

	s.Logout(context.Background())
	if navigated != 1 {
		t.Fatalf("expected navigation after logout")
	}

	// Sign-out failures still navigate.
	failing := New(context.Background(), failingSignOut{backend}, testLogger(), func() { navigated++ })
	defer failing.Close()
	failing.Logout(context.Background())
	if navigated != 2 {
		t.Fatalf("expected navigation even when sign-out fails")
	}
}

func TestInitialStateSignedIn(t *testing.T) {
	backend := memory.New()
	backend.AddUser("mei@example.com", "secret")
	if err := backend.SignIn(context.Background(), "mei@example.com", "secret"); err != nil {
		t.Fatalf("sign in: %v", err)
	}

	s := New(context.Background(), backend, testLogger(), nil)
	defer s.Close()
	if !s.IsLoggedIn() {
		t.Fatalf("expected signed-in initial state")
	}
	if !s.Check(context.Background()) {
		t.Fatalf("expected Check to confirm the session")
	}
}

func TestGuardResolve(t *testing.T) {
	backend := memory.New()
	backend.AddUser("mei@example.com", "secret")

	s := New(context.Background(), backend, testLogger(), nil)
	defer s.Close()
	g := Guard{Session: s}

	allowed, redirect := g.Resolve(context.Background())
	if allowed || redirect != "/login" {
		t.Fatalf("expected redirect to /login, got allowed=%v redirect=%q", allowed, redirect)
	}

	if err := s.Login(context.Background(), "mei@example.com", "secret"); err != nil {
		t.Fatalf("login: %v", err)
	}
	allowed, redirect = g.Resolve(context.Background())
	if !allowed || redirect != "" {
		t.Fatalf("expected access, got allowed=%v redirect=%q", allowed, redirect)
	}
}

func TestFriendlyLoginMessage(t *testing.T) {
	if got := FriendlyLoginMessage(gateway.ErrInvalidCredentials); got != "Email ou senha inválidos. Por favor, tente novamente." {
		t.Fatalf("unexpected credentials message: %q", got)
	}
	if got := FriendlyLoginMessage(errors.New("network down")); got != "Falha ao realizar login. Tente mais tarde." {
		t.Fatalf("unexpected generic message: %q", got)
	}
}
