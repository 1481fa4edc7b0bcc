// Package memory is an in-process gateway used by tests and as the default
// backend when no remote service is configured. It keeps every collection in
// plain slices behind a mutex and counts calls so tests can assert exactly
// which operations hit the backend.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"caixamei/internal/core"
	"caixamei/internal/gateway"
)

type Store struct {
	mu sync.Mutex

	users     map[string]string // email -> password
	userIDs   map[string]string // email -> user id
	current   string            // signed-in user id, empty when logged out
	nextUser  int
	listeners map[int]func(bool)
	nextSub   int

	nextID   int64
	txs      []core.Transaction
	cats     []core.Category
	profiles map[string]core.Profile

	// Fault injection for tests: when set, the corresponding operations
	// fail with this error.
	ListErr  error
	WriteErr error

	calls map[string]int
}

var _ gateway.Gateway = (*Store)(nil)

func New() *Store {
	return &Store{
		users:     map[string]string{},
		userIDs:   map[string]string{},
		listeners: map[int]func(bool){},
		profiles:  map[string]core.Profile{},
		nextID:    1,
		calls:     map[string]int{},
	}
}

// AddUser registers an account without signing it in and returns its id.
func (s *Store) AddUser(email, password string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUserLocked(email, password)
}

func (s *Store) addUserLocked(email, password string) string {
	s.nextUser++
	id := fmt.Sprintf("user-%d", s.nextUser)
	s.users[email] = password
	s.userIDs[email] = id
	// The hosted backend creates the profile row via a database trigger;
	// mirror that here.
	s.profiles[id] = core.Profile{UserID: id}
	return id
}

// Seed inserts records directly, bypassing auth. Test and demo helper.
func (s *Store) Seed(txs []core.Transaction, cats []core.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tx := range txs {
		tx.ID = s.nextID
		s.nextID++
		s.txs = append(s.txs, tx)
	}
	for _, c := range cats {
		c.ID = s.nextID
		s.nextID++
		s.cats = append(s.cats, c)
	}
}

// Calls returns how many times the named operation ran, e.g.
// "transactions.insert" or "sign_in".
func (s *Store) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

func (s *Store) count(op string) {
	s.calls[op]++
}

// --- Auth ---

func (s *Store) CurrentUserID(_ context.Context) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count("current_user")
	return s.current, s.current != ""
}

func (s *Store) SignIn(_ context.Context, email, password string) error {
	s.mu.Lock()
	s.count("sign_in")
	pass, ok := s.users[email]
	if !ok || pass != password {
		s.mu.Unlock()
		return gateway.ErrInvalidCredentials
	}
	s.current = s.userIDs[email]
	fns := s.listenersLocked()
	s.mu.Unlock()
	for _, fn := range fns {
		fn(true)
	}
	return nil
}

func (s *Store) SignOut(_ context.Context) error {
	s.mu.Lock()
	s.count("sign_out")
	s.current = ""
	fns := s.listenersLocked()
	s.mu.Unlock()
	for _, fn := range fns {
		fn(false)
	}
	return nil
}

func (s *Store) SignUp(_ context.Context, email, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count("sign_up")
	if _, exists := s.users[email]; exists {
		return errors.New("user already registered")
	}
	if !strings.Contains(email, "@") {
		return errors.New("invalid email address")
	}
	s.addUserLocked(email, password)
	return nil
}

func (s *Store) RequestPasswordReset(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count("password_reset")
	// The hosted service accepts reset requests for unknown addresses too,
	// to avoid leaking which accounts exist.
	return nil
}

func (s *Store) OnSessionChange(fn func(loggedIn bool)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Store) listenersLocked() []func(bool) {
	fns := make([]func(bool), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	return fns
}

// --- Collections ---

func (s *Store) Transactions() gateway.Collection[core.Transaction] {
	return txCollection{s}
}

func (s *Store) Categories() gateway.Collection[core.Category] {
	return catCollection{s}
}

type txCollection struct{ s *Store }

func (c txCollection) List(_ context.Context, ownerID string) ([]core.Transaction, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	c.s.count("transactions.list")
	if c.s.ListErr != nil {
		return nil, c.s.ListErr
	}
	var out []core.Transaction
	for _, tx := range c.s.txs {
		if tx.OwnerID == ownerID {
			out = append(out, tx)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (c txCollection) Insert(_ context.Context, record core.Transaction) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	c.s.count("transactions.insert")
	if c.s.WriteErr != nil {
		return c.s.WriteErr
	}
	if err := record.Validate(); err != nil {
		return err
	}
	record.ID = c.s.nextID
	c.s.nextID++
	c.s.txs = append(c.s.txs, record)
	return nil
}

func (c txCollection) Update(_ context.Context, id int64, fields map[string]any) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	c.s.count("transactions.update")
	if c.s.WriteErr != nil {
		return c.s.WriteErr
	}
	for i := range c.s.txs {
		if c.s.txs[i].ID != id {
			continue
		}
		tx := &c.s.txs[i]
		for k, v := range fields {
			switch k {
			case "date":
				tx.Date, _ = v.(string)
			case "type":
				if kind, ok := v.(core.Kind); ok {
					tx.Kind = kind
				} else if str, ok := v.(string); ok {
					tx.Kind = core.Kind(str)
				}
			case "category":
				tx.Category, _ = v.(string)
			case "description":
				tx.Description, _ = v.(string)
			case "amount":
				tx.Amount, _ = v.(float64)
			}
		}
		return nil
	}
	// Patching a missing row is a no-op, matching the remote semantics.
	return nil
}

func (c txCollection) Delete(_ context.Context, id int64) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	c.s.count("transactions.delete")
	if c.s.WriteErr != nil {
		return c.s.WriteErr
	}
	for i := range c.s.txs {
		if c.s.txs[i].ID == id {
			c.s.txs = append(c.s.txs[:i], c.s.txs[i+1:]...)
			return nil
		}
	}
	return nil
}

type catCollection struct{ s *Store }

func (c catCollection) List(_ context.Context, ownerID string) ([]core.Category, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	c.s.count("categories.list")
	if c.s.ListErr != nil {
		return nil, c.s.ListErr
	}
	var out []core.Category
	for _, cat := range c.s.cats {
		if cat.OwnerID == ownerID {
			out = append(out, cat)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (c catCollection) Insert(_ context.Context, record core.Category) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	c.s.count("categories.insert")
	if c.s.WriteErr != nil {
		return c.s.WriteErr
	}
	if err := record.Validate(); err != nil {
		return err
	}
	record.ID = c.s.nextID
	c.s.nextID++
	c.s.cats = append(c.s.cats, record)
	return nil
}

func (c catCollection) Update(_ context.Context, id int64, fields map[string]any) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	c.s.count("categories.update")
	if c.s.WriteErr != nil {
		return c.s.WriteErr
	}
	for i := range c.s.cats {
		if c.s.cats[i].ID != id {
			continue
		}
		cat := &c.s.cats[i]
		for k, v := range fields {
			switch k {
			case "name":
				cat.Name, _ = v.(string)
			case "type":
				if kind, ok := v.(core.Kind); ok {
					cat.Kind = kind
				} else if str, ok := v.(string); ok {
					cat.Kind = core.Kind(str)
				}
			}
		}
		return nil
	}
	return nil
}

func (c catCollection) Delete(_ context.Context, id int64) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	c.s.count("categories.delete")
	if c.s.WriteErr != nil {
		return c.s.WriteErr
	}
	for i := range c.s.cats {
		if c.s.cats[i].ID == id {
			c.s.cats = append(c.s.cats[:i], c.s.cats[i+1:]...)
			return nil
		}
	}
	return nil
}

// --- Profiles ---

func (s *Store) Profiles() gateway.Profiles {
	return profileStore{s}
}

type profileStore struct{ s *Store }

func (p profileStore) Get(_ context.Context, userID string) (core.Profile, bool, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	p.s.count("profiles.get")
	if p.s.ListErr != nil {
		return core.Profile{}, false, p.s.ListErr
	}
	prof, ok := p.s.profiles[userID]
	return prof, ok, nil
}

func (p profileStore) Upsert(_ context.Context, prof core.Profile) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	p.s.count("profiles.upsert")
	if p.s.WriteErr != nil {
		return p.s.WriteErr
	}
	p.s.profiles[prof.UserID] = prof
	return nil
}
