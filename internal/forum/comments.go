package forum

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// ListComments returns a post's comments in store order.
func (c *Client) ListComments(ctx context.Context, postID int) ([]Comment, error) {
	var comments []Comment
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/posts/%d/comments", postID), nil, &comments); err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []Comment{}
	}
	return comments, nil
}

// CreateComment adds a comment to a post and returns the snapshot with
// the store-assigned id and timestamp.
func (c *Client) CreateComment(ctx context.Context, postID int, draft CommentDraft) (Comment, error) {
	if strings.TrimSpace(draft.Content) == "" {
		return Comment{}, &ValidationError{Field: "content"}
	}
	var created Comment
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/posts/%d/comments", postID), draft, &created); err != nil {
		return Comment{}, err
	}
	return created, nil
}

// UpdateComment replaces a comment's content and returns the fresh
// snapshot.
func (c *Client) UpdateComment(ctx context.Context, postID, commentID int, content string) (Comment, error) {
	if strings.TrimSpace(content) == "" {
		return Comment{}, &ValidationError{Field: "content"}
	}
	body := struct {
		Content string `json:"content"`
	}{Content: content}
	var updated Comment
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/posts/%d/comments/%d", postID, commentID), body, &updated); err != nil {
		return Comment{}, err
	}
	return updated, nil
}

// DeleteComment removes a comment from a post.
func (c *Client) DeleteComment(ctx context.Context, postID, commentID int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/posts/%d/comments/%d", postID, commentID), nil, nil)
}
