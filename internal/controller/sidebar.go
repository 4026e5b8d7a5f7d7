package controller

import (
	"context"
	"sync"

	"gossip/client/internal/forum"
	"gossip/client/internal/policy"
	"gossip/client/internal/session"
)

// Sidebar is the topic list. It fetches the full list once per mount and
// derives the active highlight from the externally supplied current
// topic id (nil meaning "all posts").
type Sidebar struct {
	client  *forum.Client
	session *session.Session
	policy  *policy.Policy
	nav     Navigator
	reload  Invalidator
	confirm Confirmer

	batch *BatchDelete

	mu     sync.Mutex
	gen    int
	topics []forum.Topic
	active *int
}

func NewSidebar(client *forum.Client, sess *session.Session, pol *policy.Policy,
	nav Navigator, reload Invalidator, confirm Confirmer) *Sidebar {
	s := &Sidebar{
		client:  client,
		session: sess,
		policy:  pol,
		nav:     nav,
		reload:  reload,
		confirm: confirm,
	}
	s.batch = NewBatchDelete(sess, pol, confirm,
		"Delete all selected circles? Their gossips and chatters go with them.",
		client.DeleteTopic,
		func(ctx context.Context) {
			if err := s.Load(ctx); err != nil {
				logRefresh("sidebar", err)
			}
		},
		nav.GoHome,
	)
	return s
}

// Load fetches the topic list. A response that arrives after a newer
// load started is discarded.
func (s *Sidebar) Load(ctx context.Context) error {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	topics, err := s.client.ListTopics(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return nil
	}
	s.topics = topics
	return nil
}

// Topics returns the current snapshot in store order.
func (s *Sidebar) Topics() []forum.Topic {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]forum.Topic, len(s.topics))
	copy(out, s.topics)
	return out
}

// SetActiveTopic records which topic the route currently selects; nil
// means the unfiltered root.
func (s *Sidebar) SetActiveTopic(id *int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = id
}

// ActiveTopic returns the selected topic id, or nil for "all posts".
func (s *Sidebar) ActiveTopic() *int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// IsActive reports whether the given topic drives the highlight.
func (s *Sidebar) IsActive(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active != nil && *s.active == id
}

// CanManage reports whether topic management controls (rename, delete,
// mass delete) should render. Gated on the admin identity alone.
func (s *Sidebar) CanManage() bool {
	username, _ := s.session.CurrentUser()
	return s.policy.IsAdmin(username)
}

// CreateTopic is open to every user. On success the whole application
// state reloads; this is deliberately stronger than a list refresh.
func (s *Sidebar) CreateTopic(ctx context.Context, name string) error {
	if _, err := s.client.CreateTopic(ctx, name); err != nil {
		return err
	}
	s.reload.ReloadAll(ctx)
	return nil
}

// RenameTopic is admin-only. The list refetches on success.
func (s *Sidebar) RenameTopic(ctx context.Context, id int, name string) error {
	if !s.CanManage() {
		return ErrNotAllowed
	}
	if _, err := s.client.RenameTopic(ctx, id, name); err != nil {
		return err
	}
	return s.Load(ctx)
}

// DeleteTopic is admin-only and asks for confirmation first. On success
// the list refetches and the view navigates home, because the deleted
// topic may be the selected one. The store cascades to the topic's posts
// and comments.
func (s *Sidebar) DeleteTopic(ctx context.Context, id int) error {
	if !s.CanManage() {
		return ErrNotAllowed
	}
	if s.confirm != nil && !s.confirm.Confirm("Delete this circle and everything in it?") {
		return nil
	}
	if err := s.client.DeleteTopic(ctx, id); err != nil {
		return err
	}
	if err := s.Load(ctx); err != nil {
		logRefresh("sidebar", err)
	}
	s.nav.GoHome()
	return nil
}

// Batch is the topic mass-delete coordinator.
func (s *Sidebar) Batch() *BatchDelete {
	return s.batch
}
