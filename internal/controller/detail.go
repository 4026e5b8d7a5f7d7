package controller

import (
	"context"
	"sync"

	"gossip/client/internal/forum"
	"gossip/client/internal/policy"
	"gossip/client/internal/session"
)

// Detail is one post plus its comment thread. Post-derived fields are
// unreadable until the post fetch resolves: Post reports ok=false and
// Loaded is false, so rendering before load is unreachable.
type Detail struct {
	client  *forum.Client
	session *session.Session
	policy  *policy.Policy

	batch *BatchDelete

	mu       sync.Mutex
	gen      int
	postID   int
	post     *forum.Post
	comments []forum.Comment
	draft    string
}

func NewDetail(client *forum.Client, sess *session.Session, pol *policy.Policy, confirm Confirmer) *Detail {
	d := &Detail{
		client:  client,
		session: sess,
		policy:  pol,
	}
	d.batch = NewBatchDelete(sess, pol, confirm,
		"Delete all selected chatters?",
		func(ctx context.Context, commentID int) error {
			return client.DeleteComment(ctx, d.currentPostID(), commentID)
		},
		func(ctx context.Context) {
			if err := d.reloadComments(ctx); err != nil {
				logRefresh("detail", err)
			}
		},
		nil,
	)
	return d
}

// Load fetches the post and its comments. Responses are dropped when the
// viewed post changed, or a newer load started, while they were in
// flight.
func (d *Detail) Load(ctx context.Context, postID int) error {
	d.mu.Lock()
	d.gen++
	gen := d.gen
	d.postID = postID
	d.post = nil
	d.comments = nil
	d.mu.Unlock()

	post, err := d.client.GetPost(ctx, postID)
	if err != nil {
		return err
	}
	comments, err := d.client.ListComments(ctx, postID)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if gen != d.gen {
		return nil
	}
	d.post = &post
	d.comments = comments
	return nil
}

// Loaded reports whether the post fetch has resolved.
func (d *Detail) Loaded() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.post != nil
}

// Post returns the post snapshot; ok is false until Load resolves.
func (d *Detail) Post() (post forum.Post, ok bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.post == nil {
		return forum.Post{}, false
	}
	return *d.post, true
}

// Comments returns the thread in store order.
func (d *Detail) Comments() []forum.Comment {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]forum.Comment, len(d.comments))
	copy(out, d.comments)
	return out
}

// CommentCount is the thread size shown in the heading.
func (d *Detail) CommentCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.comments)
}

func (d *Detail) SetDraft(content string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.draft = content
}

func (d *Detail) Draft() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.draft
}

// SubmitComment posts the draft stamped with the current identity. Empty
// drafts fail validation before any request. On success the draft clears
// and the thread refetches.
func (d *Detail) SubmitComment(ctx context.Context) error {
	d.mu.Lock()
	postID := d.postID
	username, _ := d.session.CurrentUser()
	draft := forum.CommentDraft{Content: d.draft, Username: username}
	d.mu.Unlock()

	if _, err := d.client.CreateComment(ctx, postID, draft); err != nil {
		return err
	}

	d.mu.Lock()
	d.draft = ""
	d.mu.Unlock()
	return d.reloadComments(ctx)
}

// EditComment rewrites a comment's content. Only the owner or the admin
// may edit; no request is sent otherwise.
func (d *Detail) EditComment(ctx context.Context, commentID int, content string) error {
	comment, found := d.findComment(commentID)
	if !found {
		return ErrNotAllowed
	}
	username, _ := d.session.CurrentUser()
	if !d.policy.CanModify(username, comment.Username) {
		return ErrNotAllowed
	}
	if _, err := d.client.UpdateComment(ctx, d.currentPostID(), commentID, content); err != nil {
		return err
	}
	return d.reloadComments(ctx)
}

// DeleteComment removes a comment. Only the owner or the admin may
// delete; no request is sent otherwise.
func (d *Detail) DeleteComment(ctx context.Context, commentID int) error {
	comment, found := d.findComment(commentID)
	if !found {
		return ErrNotAllowed
	}
	username, _ := d.session.CurrentUser()
	if !d.policy.CanModify(username, comment.Username) {
		return ErrNotAllowed
	}
	if err := d.client.DeleteComment(ctx, d.currentPostID(), commentID); err != nil {
		return err
	}
	return d.reloadComments(ctx)
}

// ShowCommentControls reports whether a comment's edit/delete controls
// render: never while mass-delete mode is active, otherwise per the
// modify policy for that comment's owner.
func (d *Detail) ShowCommentControls(c forum.Comment) bool {
	if d.batch.Active() {
		return false
	}
	username, _ := d.session.CurrentUser()
	return d.policy.CanModify(username, c.Username)
}

// Batch is the comment mass-delete coordinator.
func (d *Detail) Batch() *BatchDelete {
	return d.batch
}

// reloadComments refetches only the thread, leaving the post snapshot
// alone. Stale responses are dropped the same way Load drops them.
func (d *Detail) reloadComments(ctx context.Context) error {
	d.mu.Lock()
	gen := d.gen
	postID := d.postID
	d.mu.Unlock()

	comments, err := d.client.ListComments(ctx, postID)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if gen != d.gen {
		return nil
	}
	d.comments = comments
	return nil
}

func (d *Detail) currentPostID() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.postID
}

func (d *Detail) findComment(commentID int) (forum.Comment, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, c := range d.comments {
		if c.ID == commentID {
			return c, true
		}
	}
	return forum.Comment{}, false
}
