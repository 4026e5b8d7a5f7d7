package forum

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// ListPosts returns posts in store order, narrowed to one topic when
// topicID is non-nil.
func (c *Client) ListPosts(ctx context.Context, topicID *int) ([]Post, error) {
	path := "/posts"
	if topicID != nil {
		path = fmt.Sprintf("/posts?topic_id=%d", *topicID)
	}
	var posts []Post
	if err := c.do(ctx, http.MethodGet, path, nil, &posts); err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []Post{}
	}
	return posts, nil
}

// GetPost fetches a single post by id.
func (c *Client) GetPost(ctx context.Context, id int) (Post, error) {
	var post Post
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/posts/%d", id), nil, &post); err != nil {
		return Post{}, err
	}
	return post, nil
}

// CreatePost creates a post and returns the snapshot with the
// store-assigned id and timestamp.
func (c *Client) CreatePost(ctx context.Context, draft PostDraft) (Post, error) {
	if err := validatePostDraft(draft); err != nil {
		return Post{}, err
	}
	var created Post
	if err := c.do(ctx, http.MethodPost, "/posts", draft, &created); err != nil {
		return Post{}, err
	}
	return created, nil
}

// UpdatePost replaces a post's client-supplied fields and returns the
// fresh snapshot.
func (c *Client) UpdatePost(ctx context.Context, id int, draft PostDraft) (Post, error) {
	if err := validatePostDraft(draft); err != nil {
		return Post{}, err
	}
	var updated Post
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/posts/%d", id), draft, &updated); err != nil {
		return Post{}, err
	}
	return updated, nil
}

// DeletePost removes a post.
func (c *Client) DeletePost(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/posts/%d", id), nil, nil)
}

func validatePostDraft(draft PostDraft) error {
	if strings.TrimSpace(draft.Title) == "" {
		return &ValidationError{Field: "title"}
	}
	if strings.TrimSpace(draft.Description) == "" {
		return &ValidationError{Field: "description"}
	}
	return nil
}
