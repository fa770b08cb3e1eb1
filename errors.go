package mau

import (
	"errors"
	"fmt"
)

// ErrMau matches every error produced by this package via errors.Is.
var ErrMau = errors.New("mau")

// ErrAuthRequired is returned by Session methods that need a bearer token
// when no login has succeeded yet. No request is sent in that case.
var ErrAuthRequired = fmt.Errorf("%w: login required before using this endpoint", ErrMau)

// RequestError reports a non-200 response. Text holds the raw response body.
type RequestError struct {
	StatusCode int
	Text       string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("server returned %d status", e.StatusCode)
}

func (e *RequestError) Is(target error) bool { return target == ErrMau }

// ProtocolError reports a 200 response whose body is not JSON.
type ProtocolError struct {
	Err error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("failed to parse response: %v", e.Err)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

func (e *ProtocolError) Is(target error) bool { return target == ErrMau }

// ValidationError reports JSON that does not match the expected entity.
type ValidationError struct {
	Type string
	Err  error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Type, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func (e *ValidationError) Is(target error) bool { return target == ErrMau }
