// Package store keeps a locally cached, push-updated view of one remotely
// stored collection. Both the transaction and the category store are the
// same generic type instantiated per record.
//
// The cache is the single source of truth for every consumer: views receive
// defensive copies and never patch the cache themselves. After a successful
// write the whole collection is re-fetched rather than patched locally, so
// the cache cannot drift from the backend.
package store

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"caixamei/internal/gateway"
	"caixamei/internal/log"
)

// Record is what the store needs from a cached type: the backend-assigned id
// and a way to stamp the owning user before an insert.
type Record[T any] interface {
	RecordID() int64
	WithOwner(ownerID string) T
}

// Ops reported to the ChangeNotifier.
const (
	OpInsert = "insert"
	OpUpdate = "update"
	OpDelete = "delete"
)

// ChangeNotifier receives a callback after every successful mutation. id is
// the mutated record's backend id; inserts report zero because the backend
// assigns ids and does not echo them back. record carries the inserted
// record or the update's patch fields, nil for deletes. The store treats
// publish failures as non-fatal; they are logged and dropped.
type ChangeNotifier interface {
	RecordChanged(ctx context.Context, collection, op string, id int64, record any) error
}

// Store caches one owner-scoped collection and pushes full snapshots to
// subscribers whenever the cache is replaced.
type Store[T Record[T]] struct {
	name     string
	auth     gateway.Auth
	coll     gateway.Collection[T]
	notifier ChangeNotifier // optional
	logger   *log.Logger

	flight singleflight.Group

	mu      sync.Mutex
	cache   []T
	subs    map[int]func([]T)
	nextSub int
}

// New builds a store over the given collection. notifier may be nil.
func New[T Record[T]](name string, auth gateway.Auth, coll gateway.Collection[T], notifier ChangeNotifier, logger *log.Logger) *Store[T] {
	return &Store[T]{
		name:     name,
		auth:     auth,
		coll:     coll,
		notifier: notifier,
		logger:   logger.WithComponent(log.ComponentStore).With(log.FieldCollection, name),
		subs:     map[int]func([]T){},
	}
}

// Subscribe registers fn to receive a fresh snapshot on every cache
// replacement. fn is invoked immediately with the current snapshot, then on
// each change until the returned cancel func runs.
func (s *Store[T]) Subscribe(fn func([]T)) (cancel func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	current := cloneSlice(s.cache)
	s.mu.Unlock()

	fn(current)
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// Snapshot returns a defensive copy of the current cache.
func (s *Store[T]) Snapshot() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneSlice(s.cache)
}

// FetchAll replaces the cache with the backend's current view of the
// collection. Without a signed-in user the cache becomes empty; a backend
// failure is logged and also degrades to an empty cache instead of
// propagating, so "no data" and "fetch failed" look the same here.
func (s *Store[T]) FetchAll(ctx context.Context) {
	userID, ok := s.auth.CurrentUserID(ctx)
	if !ok {
		s.replace(nil)
		return
	}

	// Concurrent resyncs for the same store collapse into one backend call.
	recs, err, _ := s.flight.Do("fetch", func() (any, error) {
		return s.coll.List(ctx, userID)
	})
	if err != nil {
		s.logger.Error("fetch failed, degrading to empty cache",
			log.FieldOperation, log.OpFetch, log.FieldError, err)
		s.replace(nil)
		return
	}
	s.replace(recs.([]T))
}

// Add inserts a record owned by the signed-in user, then resyncs the cache.
// Without a user it fails before any backend call. A backend failure is
// logged and dropped without a resync, so the cache keeps its last state.
func (s *Store[T]) Add(ctx context.Context, record T) error {
	userID, ok := s.auth.CurrentUserID(ctx)
	if !ok {
		return gateway.ErrNotAuthenticated
	}

	owned := record.WithOwner(userID)
	if err := s.coll.Insert(ctx, owned); err != nil {
		s.logger.Error("insert failed",
			log.FieldOperation, log.OpInsert, log.FieldError, err)
		return nil
	}
	s.changed(ctx, OpInsert, owned.RecordID(), owned)
	s.FetchAll(ctx)
	return nil
}

// Update patches the given fields of the record with this id, then resyncs.
// Same failure policy as Add.
func (s *Store[T]) Update(ctx context.Context, id int64, fields map[string]any) error {
	if err := s.coll.Update(ctx, id, fields); err != nil {
		s.logger.Error("update failed",
			log.FieldOperation, log.OpUpdate, log.FieldRecordID, id, log.FieldError, err)
		return nil
	}
	s.changed(ctx, OpUpdate, id, fields)
	s.FetchAll(ctx)
	return nil
}

// Delete removes the record with this id, then resyncs. Same failure policy
// as Add.
func (s *Store[T]) Delete(ctx context.Context, id int64) error {
	if err := s.coll.Delete(ctx, id); err != nil {
		s.logger.Error("delete failed",
			log.FieldOperation, log.OpDelete, log.FieldRecordID, id, log.FieldError, err)
		return nil
	}
	s.changed(ctx, OpDelete, id, nil)
	s.FetchAll(ctx)
	return nil
}

// replace swaps the whole cache and pushes fresh snapshots to every
// subscriber. Each subscriber gets its own copy.
func (s *Store[T]) replace(recs []T) {
	s.mu.Lock()
	s.cache = cloneSlice(recs)
	fns := make([]func([]T), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(cloneSlice(recs))
	}
}

func (s *Store[T]) changed(ctx context.Context, op string, id int64, record any) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.RecordChanged(ctx, s.name, op, id, record); err != nil {
		s.logger.Warn("change notification failed",
			log.FieldOperation, log.OpPublish, log.FieldError, err)
	}
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}
