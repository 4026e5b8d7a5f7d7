package forum

import (
	"errors"
	"fmt"
)

// ValidationError reports a required field that was empty. It is returned
// before any request is built; the store is never contacted.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s must not be empty", e.Field)
}

// ServerError reports a request that reached the store but came back with
// a non-success status.
type ServerError struct {
	Status int
	Body   string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("store returned %d: %s", e.Status, e.Body)
}

// NetworkError reports a transport failure before any status was received.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is a local validation failure.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsServer reports whether err is a non-success response from the store.
func IsServer(err error) bool {
	var s *ServerError
	return errors.As(err, &s)
}

// IsNetwork reports whether err is a transport failure.
func IsNetwork(err error) bool {
	var n *NetworkError
	return errors.As(err, &n)
}
