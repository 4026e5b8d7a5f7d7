// Package controller holds the view controllers: they own view state,
// orchestrate the store client, and consult the authorization policy.
// Rendering is left to the frontend, which reads snapshots.
//
// Consistency is refetch-on-write: no controller patches its own state
// after a mutation; it re-fetches and replaces the snapshot wholesale.
// Every fetch is generation-guarded so a response that arrives after its
// triggering context changed is discarded instead of applied.
package controller

import (
	"context"
	"errors"
	"log"
)

// ErrNotAllowed is returned when the current identity lacks permission
// for an operation. It never reaches the store.
var ErrNotAllowed = errors.New("controller: not allowed")

// Navigator moves the frontend between routes. GoHome returns to the
// unfiltered root view.
type Navigator interface {
	GoHome()
}

// Invalidator forces a full application state reload. Topic creation
// triggers this deliberately stronger invalidation.
type Invalidator interface {
	ReloadAll(ctx context.Context)
}

// Confirmer asks the user to approve a destructive action before any
// request is sent.
type Confirmer interface {
	Confirm(prompt string) bool
}

// logRefresh records a failed post-mutation refetch. The mutation itself
// succeeded; the next successful load repairs the view.
func logRefresh(view string, err error) {
	log.Printf("%s: refresh after mutation: %v", view, err)
}
