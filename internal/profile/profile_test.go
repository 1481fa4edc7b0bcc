package profile

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"caixamei/internal/core"
	"caixamei/internal/gateway"
	"caixamei/internal/gateway/memory"
	"caixamei/internal/log"
)

func testLogger() *log.Logger {
	return log.New(log.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
}

func TestLoadAndSave(t *testing.T) {
	backend := memory.New()
	backend.AddUser("mei@example.com", "secret")
	if err := backend.SignIn(context.Background(), "mei@example.com", "secret"); err != nil {
		t.Fatalf("sign in: %v", err)
	}

	m := NewManager(backend, backend.Profiles(), testLogger())

	p, err := m.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if p.UserID == "" || p.FullName != "" {
		t.Fatalf("expected empty profile with user id, got %+v", p)
	}

	if err := m.Save(context.Background(), "Maria da Silva", "Silva Doces MEI"); err != nil {
		t.Fatalf("save: %v", err)
	}
	p, err = m.Load(context.Background())
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if p.FullName != "Maria da Silva" || p.CompanyName != "Silva Doces MEI" {
		t.Fatalf("unexpected profile after save: %+v", p)
	}
}

func TestLoadRequiresUser(t *testing.T) {
	backend := memory.New()
	m := NewManager(backend, backend.Profiles(), testLogger())
	if _, err := m.Load(context.Background()); !errors.Is(err, gateway.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
	if err := m.Save(context.Background(), "a", "b"); !errors.Is(err, gateway.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated on save, got %v", err)
	}
}

func TestFirstName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Maria da Silva", "Maria"},
		{"  João  ", "João"},
		{"", ""},
		{"   ", ""},
	}
	for _, tc := range cases {
		if got := FirstName(core.Profile{FullName: tc.in}); got != tc.want {
			t.Fatalf("%q: expected %q, got %q", tc.in, tc.want, got)
		}
	}
}
