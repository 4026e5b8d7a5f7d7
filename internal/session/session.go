package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// RemoteLogin announces the identity claim to the store. A successful
// call is the only verification the client performs.
type RemoteLogin interface {
	Login(ctx context.Context, username string) error
}

// Session is the injected identity abstraction: the persisted claim, a
// remote login check, and change notification. The zero value is not
// usable; construct with New.
type Session struct {
	store  Store
	remote RemoteLogin

	mu        sync.Mutex
	current   string
	nextID    int
	observers map[int]func(username string)
}

// New loads any persisted claim from store and returns a ready session.
func New(ctx context.Context, store Store, remote RemoteLogin) (*Session, error) {
	s := &Session{
		store:     store,
		remote:    remote,
		observers: make(map[int]func(string)),
	}

	current, err := store.Current(ctx)
	if err != nil && !errors.Is(err, ErrNoSession) {
		return nil, fmt.Errorf("load session: %w", err)
	}
	s.current = current
	return s, nil
}

// CurrentUser returns the claimed username. ok is false when logged out.
func (s *Session) CurrentUser() (username string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.current != ""
}

// Login announces username to the store, persists the claim and notifies
// observers. A failed remote call leaves the claim untouched.
func (s *Session) Login(ctx context.Context, username string) error {
	if err := s.remote.Login(ctx, username); err != nil {
		return err
	}
	if err := s.store.Save(ctx, username); err != nil {
		return err
	}

	s.mu.Lock()
	s.current = username
	observers := s.observerList()
	s.mu.Unlock()

	for _, fn := range observers {
		fn(username)
	}
	return nil
}

// Logout clears the persisted claim and notifies observers.
func (s *Session) Logout(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	s.current = ""
	observers := s.observerList()
	s.mu.Unlock()

	for _, fn := range observers {
		fn("")
	}
	return nil
}

// Subscribe registers fn to run after every login or logout, with the new
// username (empty on logout). The returned func unsubscribes.
func (s *Session) Subscribe(fn func(username string)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.observers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.observers, id)
	}
}

// observerList snapshots observers so they run outside the lock. Callers
// must hold mu.
func (s *Session) observerList() []func(string) {
	list := make([]func(string), 0, len(s.observers))
	for _, fn := range s.observers {
		list = append(list, fn)
	}
	return list
}
