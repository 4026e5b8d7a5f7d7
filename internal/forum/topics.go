package forum

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// ListTopics returns every topic in store order.
func (c *Client) ListTopics(ctx context.Context) ([]Topic, error) {
	var topics []Topic
	if err := c.do(ctx, http.MethodGet, "/topics", nil, &topics); err != nil {
		return nil, err
	}
	if topics == nil {
		topics = []Topic{}
	}
	return topics, nil
}

// CreateTopic creates a topic and returns the snapshot with the
// store-assigned id.
func (c *Client) CreateTopic(ctx context.Context, name string) (Topic, error) {
	if strings.TrimSpace(name) == "" {
		return Topic{}, &ValidationError{Field: "name"}
	}
	body := struct {
		Name string `json:"name"`
	}{Name: name}
	var created Topic
	if err := c.do(ctx, http.MethodPost, "/topics", body, &created); err != nil {
		return Topic{}, err
	}
	return created, nil
}

// RenameTopic updates a topic's name and returns the fresh snapshot.
func (c *Client) RenameTopic(ctx context.Context, id int, name string) (Topic, error) {
	if strings.TrimSpace(name) == "" {
		return Topic{}, &ValidationError{Field: "name"}
	}
	body := struct {
		Name string `json:"name"`
	}{Name: name}
	var updated Topic
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/topics/%d", id), body, &updated); err != nil {
		return Topic{}, err
	}
	return updated, nil
}

// DeleteTopic removes a topic. The store cascades the delete to the
// topic's posts and their comments; the client only reloads afterwards.
func (c *Client) DeleteTopic(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/topics/%d", id), nil, nil)
}
