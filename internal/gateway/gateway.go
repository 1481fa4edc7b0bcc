// Package gateway defines the contract every remote data backend has to
// satisfy: authentication, owner-scoped CRUD on the two record collections,
// and profile upsert. Concrete implementations live in the subpackages
// (supabase, sqlite, memory) and are selected through the factory.
package gateway

import (
	"context"

	"caixamei/internal/core"
)

// Ports for the remote backend.
type (
	// Auth covers session management. OnSessionChange registers a callback
	// fired on every login, logout and token refresh; the returned cancel
	// func removes the registration.
	Auth interface {
		CurrentUserID(ctx context.Context) (string, bool)
		SignIn(ctx context.Context, email, password string) error
		SignOut(ctx context.Context) error
		SignUp(ctx context.Context, email, password string) error
		RequestPasswordReset(ctx context.Context, email string) error
		OnSessionChange(fn func(loggedIn bool)) (cancel func())
	}

	// Collection is owner-scoped CRUD over one record type. List returns
	// records belonging to ownerID in the backend's deterministic order;
	// Update patches only the given fields, keyed by column name.
	Collection[T any] interface {
		List(ctx context.Context, ownerID string) ([]T, error)
		Insert(ctx context.Context, record T) error
		Update(ctx context.Context, id int64, fields map[string]any) error
		Delete(ctx context.Context, id int64) error
	}

	// Profiles reads and upserts the per-user profile row. Get reports
	// found=false when no row exists yet, which is not an error.
	Profiles interface {
		Get(ctx context.Context, userID string) (p core.Profile, found bool, err error)
		Upsert(ctx context.Context, p core.Profile) error
	}
)

// Gateway bundles every port a backend provides.
type Gateway interface {
	Auth
	Transactions() Collection[core.Transaction]
	Categories() Collection[core.Category]
	Profiles() Profiles
}

// CleanupFunc releases backend resources at shutdown.
type CleanupFunc func() error
