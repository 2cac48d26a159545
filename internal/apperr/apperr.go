// Package apperr defines the error kinds shared by the storefront layers.
// Every error produced by the repository, media manager and listing service
// matches exactly one kind through errors.Is.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrBackend    = errors.New("backend error")
	ErrUpload     = errors.New("upload error")
	ErrInvalidURL = errors.New("invalid url")
)

// Error carries a kind, a client-safe message and the underlying cause.
type Error struct {
	Kind error
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// Validation reports bad client input.
func Validation(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Msg: fmt.Sprintf(format, args...)}
}

// NotFound reports a missing record.
func NotFound(msg string) error {
	return &Error{Kind: ErrNotFound, Msg: msg}
}

// Backend wraps a storage-layer failure. op names the failed operation.
func Backend(op string, err error) error {
	return &Error{Kind: ErrBackend, Msg: op, Err: err}
}

// Upload wraps an object-storage write failure.
func Upload(err error) error {
	return &Error{Kind: ErrUpload, Msg: "upload media", Err: err}
}

// InvalidURL reports a media URL that does not point into the bucket.
func InvalidURL(raw string) error {
	return &Error{Kind: ErrInvalidURL, Msg: fmt.Sprintf("invalid media url %q", raw)}
}

// Message returns the client-safe message of err, or fallback when err
// does not carry one.
func Message(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Msg != "" {
		return e.Msg
	}
	return fallback
}
