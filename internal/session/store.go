// Package session holds the client-local identity claim: one persisted
// slot with the current username, an observer mechanism for state
// changes, and pluggable storage backends.
package session

import (
	"context"
	"errors"
)

// ErrNoSession is returned by Current when no claim is persisted.
var ErrNoSession = errors.New("session: no persisted claim")

// Store persists the claim in a single named slot. The presence of the
// slot is the entirety of the authentication mechanism; its absence means
// logged out.
type Store interface {
	Current(ctx context.Context) (string, error)
	Save(ctx context.Context, username string) error
	Clear(ctx context.Context) error
	Close() error
}
