package controller

import (
	"context"
	"sync"

	"gossip/client/internal/forum"
	"gossip/client/internal/policy"
	"gossip/client/internal/session"
)

// fallbackTopicID is assigned when a post is created with no topic
// selected. A long-standing quirk of the original deployment, kept on
// purpose; changing it would silently re-home existing workflows.
const fallbackTopicID = 1

// Feed is the post list for the current topic (or all posts). One dialog
// serves both create and edit, discriminated by the edit target id.
type Feed struct {
	client  *forum.Client
	session *session.Session
	policy  *policy.Policy
	confirm Confirmer

	mu      sync.Mutex
	gen     int
	topicID *int
	posts   []forum.Post

	dialogOpen  bool
	editID      *int
	title       string
	description string
}

func NewFeed(client *forum.Client, sess *session.Session, pol *policy.Policy, confirm Confirmer) *Feed {
	return &Feed{
		client:  client,
		session: sess,
		policy:  pol,
		confirm: confirm,
	}
}

// SetTopic narrows the feed to one topic, or to all posts when id is
// nil. Any in-flight load for the previous topic is superseded.
func (f *Feed) SetTopic(id *int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.topicID = id
	f.gen++
}

// Topic returns the current filter, nil meaning all posts.
func (f *Feed) Topic() *int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.topicID
}

// Load fetches posts for the current filter. The response is discarded
// if the filter changed, or a newer load started, while it was in
// flight.
func (f *Feed) Load(ctx context.Context) error {
	f.mu.Lock()
	f.gen++
	gen := f.gen
	topicID := f.topicID
	f.mu.Unlock()

	posts, err := f.client.ListPosts(ctx, topicID)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.gen {
		return nil
	}
	f.posts = posts
	return nil
}

// Posts returns the current snapshot in store order.
func (f *Feed) Posts() []forum.Post {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]forum.Post, len(f.posts))
	copy(out, f.posts)
	return out
}

// Empty reports whether the feed has nothing to show.
func (f *Feed) Empty() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.posts) == 0
}

// OpenCreate opens the dialog with empty buffers and no edit target.
func (f *Feed) OpenCreate() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dialogOpen = true
	f.editID = nil
	f.title = ""
	f.description = ""
}

// OpenEdit opens the dialog pre-filled from an existing post.
func (f *Feed) OpenEdit(post forum.Post) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dialogOpen = true
	id := post.ID
	f.editID = &id
	f.title = post.Title
	f.description = post.Description
}

func (f *Feed) CloseDialog() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dialogOpen = false
}

func (f *Feed) DialogOpen() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dialogOpen
}

// EditTarget returns the post id being edited, or nil in create mode.
func (f *Feed) EditTarget() *int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.editID
}

func (f *Feed) SetTitle(title string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.title = title
}

func (f *Feed) SetDescription(description string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.description = description
}

func (f *Feed) Title() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.title
}

func (f *Feed) Description() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.description
}

// Submit creates or updates depending on the edit target. Empty title or
// description fails validation before any request. New posts are stamped
// with the acting username and, when no topic is selected, homed to the
// fallback topic. On success the dialog closes and the feed refetches.
func (f *Feed) Submit(ctx context.Context) error {
	f.mu.Lock()
	editID := f.editID
	topicID := fallbackTopicID
	if f.topicID != nil {
		topicID = *f.topicID
	}
	username, _ := f.session.CurrentUser()
	draft := forum.PostDraft{
		Title:       f.title,
		Description: f.description,
		TopicID:     topicID,
		Username:    username,
	}
	f.mu.Unlock()

	var err error
	if editID != nil {
		_, err = f.client.UpdatePost(ctx, *editID, draft)
	} else {
		_, err = f.client.CreatePost(ctx, draft)
	}
	if err != nil {
		return err
	}

	f.CloseDialog()
	return f.Load(ctx)
}

// Delete removes a post after confirmation, then refetches. Declining
// the confirmation is not an error.
func (f *Feed) Delete(ctx context.Context, id int) error {
	if f.confirm != nil && !f.confirm.Confirm("Are you sure you want to delete this post?") {
		return nil
	}
	if err := f.client.DeletePost(ctx, id); err != nil {
		return err
	}
	return f.Load(ctx)
}

// CanModify reports whether edit/delete controls render for a post.
func (f *Feed) CanModify(post forum.Post) bool {
	username, _ := f.session.CurrentUser()
	return f.policy.CanModify(username, post.Username)
}
