package types

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures for the API error envelope.
type ErrorKind string

const (
	KindConfiguration ErrorKind = "configuration"
	KindScan          ErrorKind = "scan"
	KindRead          ErrorKind = "read"
	KindPersistence   ErrorKind = "persistence"
	KindBadRequest    ErrorKind = "bad_request"
	KindTooLarge      ErrorKind = "too_large"
	KindNotFound      ErrorKind = "not_found"
	KindInternal      ErrorKind = "internal"
)

// Error is a classified failure. Path is optional and names the file or
// directory involved.
type Error struct {
	Kind ErrorKind
	Path string
	Err  error
}

// NewError wraps err with a kind and an optional path.
func NewError(kind ErrorKind, path string, err error) *Error {
	return &Error{Kind: kind, Path: path, Err: err}
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s error: %s: %v", e.Kind, e.Path, e.Err)
	}
	return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf reports the kind of the first *Error in err's chain, or
// KindInternal when there is none.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// ErrorEnvelope is the JSON body returned for failed requests.
type ErrorEnvelope struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}
