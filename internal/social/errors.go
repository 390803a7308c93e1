package social

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrEmptyPost          = errors.New("post needs text or media")
	ErrEmptyMessage       = errors.New("message is empty")
	ErrMissingMedia       = errors.New("story needs a media file")
	ErrStoreUnavailable   = errors.New("store unavailable")

	// ErrInvalidInput covers malformed signup and profile fields.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnauthenticated is returned when a session token does not resolve to a user.
	ErrUnauthenticated = errors.New("not logged in")
)

// StoreError wraps a failure of the underlying persistence layer. It matches
// ErrStoreUnavailable under errors.Is.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Is(target error) bool {
	return target == ErrStoreUnavailable
}

// IsValidation reports whether err is a user-facing rejection that left no
// side effects behind.
func IsValidation(err error) bool {
	return errors.Is(err, ErrEmptyPost) ||
		errors.Is(err, ErrEmptyMessage) ||
		errors.Is(err, ErrMissingMedia) ||
		errors.Is(err, ErrInvalidInput)
}
