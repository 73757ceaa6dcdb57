package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
)

// ErrorKind tags the failure path that produced a result
type ErrorKind string

const (
	ErrorKindNone       ErrorKind = ""
	ErrorKindConfig     ErrorKind = "config"
	ErrorKindAuth       ErrorKind = "auth"
	ErrorKindRate       ErrorKind = "rate"
	ErrorKindAPI        ErrorKind = "api"
	ErrorKindUnexpected ErrorKind = "unexpected"
)

// ErrMissingCredential is reported when no provider credential is configured
var ErrMissingCredential = errors.New("provider credential not configured")

// ProviderError wraps a failure returned by a remote completion provider
type ProviderError struct {
	Kind     ErrorKind
	Provider string
	Status   int
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	if e == nil {
		return "provider error"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s %s error: %v", e.Provider, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s %s error (status=%d)", e.Provider, e.Kind, e.Status)
}

func (e *ProviderError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// KindForStatus maps an HTTP status code onto an error kind.
// A 403 means the key is valid but lacks permission, so it stays an API error.
func KindForStatus(status int) ErrorKind {
	switch {
	case status == 401:
		return ErrorKindAuth
	case status == 429:
		return ErrorKindRate
	default:
		return ErrorKindAPI
	}
}

// IsTransportError reports whether err comes from an aborted or timed-out
// network round-trip rather than from the provider itself.
func IsTransportError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// KindOf returns the error kind carried by err
func KindOf(err error) ErrorKind {
	if err == nil {
		return ErrorKindNone
	}
	if errors.Is(err, ErrMissingCredential) {
		return ErrorKindConfig
	}
	var perr *ProviderError
	if errors.As(err, &perr) {
		return perr.Kind
	}
	return ErrorKindUnexpected
}
