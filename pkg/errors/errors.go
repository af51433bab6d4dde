// Package errors provides structured error types for motifscope.
//
// Errors carry a machine-readable [Code] so that the CLI, the HTTP server and
// the terminal explorer react to failures uniformly: a malformed payload from
// the provider is a 502 on the server and "provider error" in the explorer,
// an unknown ordering metric is a 400 and "invalid input".
//
// Codes are grouped into a [Kind], which decides the HTTP status and the
// status line label:
//
//	INVALID_INPUT, INVALID_PARTITION, INVALID_FORMAT, ...   KindInput
//	NOT_FOUND, ITEM_NOT_FOUND, SESSION_NOT_FOUND, ...       KindNotFound
//	NETWORK_ERROR, INVALID_MATRIX, INVALID_PAYLOAD          KindUpstream
//	TIMEOUT                                                 KindTimeout
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidPartition, "cluster %d starts at %d", i, c.Start)
//	if errors.Is(err, errors.ErrCodeInvalidPartition) {
//	    // ...
//	}
//	err = errors.Wrap(errors.ErrCodeNetwork, cause, "fetch %s", path)
//	w.WriteHeader(errors.HTTPStatus(err))
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput     Code = "INVALID_INPUT"
	ErrCodeInvalidPartition Code = "INVALID_PARTITION"
	ErrCodeInvalidFormat    Code = "INVALID_FORMAT"
	ErrCodeInvalidOrdering  Code = "INVALID_ORDERING"
	ErrCodeInvalidPath      Code = "INVALID_PATH"

	// Provider data that fails validation
	ErrCodeInvalidMatrix  Code = "INVALID_MATRIX"
	ErrCodeInvalidPayload Code = "INVALID_PAYLOAD"

	// Resource not found errors
	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodeItemNotFound    Code = "ITEM_NOT_FOUND"
	ErrCodeDatasetNotFound Code = "DATASET_NOT_FOUND"
	ErrCodeSessionNotFound Code = "SESSION_NOT_FOUND"

	// Provider transport errors
	ErrCodeNetwork Code = "NETWORK_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"

	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Kind groups codes by who is at fault.
type Kind int

const (
	KindInternal    Kind = iota // a bug or an unclassified failure
	KindInput                   // the caller sent something invalid
	KindNotFound                // a dataset, network, node or session is missing
	KindUpstream                // the provider failed or sent bad data
	KindTimeout                 // the provider did not answer in time
	KindUnsupported             // the operation is not available
)

var kinds = map[Code]Kind{
	ErrCodeInvalidInput:     KindInput,
	ErrCodeInvalidPartition: KindInput,
	ErrCodeInvalidFormat:    KindInput,
	ErrCodeInvalidOrdering:  KindInput,
	ErrCodeInvalidPath:      KindInput,
	ErrCodeInvalidMatrix:    KindUpstream,
	ErrCodeInvalidPayload:   KindUpstream,
	ErrCodeNetwork:          KindUpstream,
	ErrCodeNotFound:         KindNotFound,
	ErrCodeItemNotFound:     KindNotFound,
	ErrCodeDatasetNotFound:  KindNotFound,
	ErrCodeSessionNotFound:  KindNotFound,
	ErrCodeTimeout:          KindTimeout,
	ErrCodeUnsupported:      KindUnsupported,
}

// Kind returns the group of c. Unknown codes are internal.
func (c Code) Kind() Kind { return kinds[c] }

// HTTPStatus returns the response status for errors of kind k.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindInput:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUpstream:
		return http.StatusBadGateway
	case KindTimeout:
		return http.StatusGatewayTimeout
	case KindUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func (k Kind) String() string {
	switch k {
	case KindInput:
		return "invalid input"
	case KindNotFound:
		return "not found"
	case KindUpstream:
		return "provider error"
	case KindTimeout:
		return "timed out"
	case KindUnsupported:
		return "unsupported"
	default:
		return "internal error"
	}
}

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether any *Error in the chain of err carries code. A
// NOT_FOUND wrapped into a NETWORK_ERROR matches both.
func Is(err error, code Code) bool {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Code == code {
			return true
		}
		switch u := err.(type) {
		case interface{ Unwrap() error }:
			err = u.Unwrap()
		case interface{ Unwrap() []error }:
			for _, inner := range u.Unwrap() {
				if Is(inner, code) {
					return true
				}
			}
			return false
		default:
			return false
		}
	}
	return false
}

// GetCode returns the code of the outermost *Error in the chain of err, or
// "" if there is none.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// KindOf returns the kind of the outermost code of err.
func KindOf(err error) Kind { return GetCode(err).Kind() }

// HTTPStatus returns the response status for err.
func HTTPStatus(err error) int { return KindOf(err).HTTPStatus() }

// UserMessage returns the message of the outermost *Error, without its code,
// or err.Error() for other errors.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// StatusLine formats err for a one-line status display, labelled with its
// kind: "provider error: fetch motif profiles".
func StatusLine(err error) string {
	if GetCode(err) == "" {
		return err.Error()
	}
	return KindOf(err).String() + ": " + UserMessage(err)
}

// IsTransient reports whether err is a provider failure that a caller may
// retry. Bad provider data is not transient.
func IsTransient(err error) bool {
	switch GetCode(err) {
	case ErrCodeNetwork, ErrCodeTimeout:
		return true
	}
	return false
}
