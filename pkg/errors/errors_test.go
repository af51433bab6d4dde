package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorFormatting(t *testing.T) {
	err := New(ErrCodeInvalidPartition, "cluster %d starts at %d", 2, 7)
	assert.Equal(t, "INVALID_PARTITION: cluster 2 starts at 7", err.Error())

	cause := errors.New("connection refused")
	wrapped := Wrap(ErrCodeNetwork, cause, "fetch motif profiles")
	assert.Equal(t, "NETWORK_ERROR: fetch motif profiles: connection refused", wrapped.Error())
	assert.Same(t, cause, errors.Unwrap(wrapped))
	assert.ErrorIs(t, wrapped, cause)
}

func TestIs(t *testing.T) {
	notFound := New(ErrCodeItemNotFound, "network 40")
	tests := []struct {
		name string
		err  error
		code Code
		want bool
	}{
		{"direct", notFound, ErrCodeItemNotFound, true},
		{"other code", notFound, ErrCodeNetwork, false},
		{"outer of chain", Wrap(ErrCodeNetwork, notFound, "meta"), ErrCodeNetwork, true},
		{"inner of chain", Wrap(ErrCodeNetwork, notFound, "meta"), ErrCodeItemNotFound, true},
		{"through fmt wrap", fmt.Errorf("panel: %w", notFound), ErrCodeItemNotFound, true},
		{"joined", errors.Join(errors.New("a"), notFound), ErrCodeItemNotFound, true},
		{"plain", errors.New("plain"), ErrCodeInvalidInput, false},
		{"nil", nil, ErrCodeInvalidInput, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Is(tt.err, tt.code))
		})
	}
}

func TestGetCodeIsOutermost(t *testing.T) {
	err := fmt.Errorf("render: %w", Wrap(ErrCodeInvalidPayload, New(ErrCodeInvalidMatrix, "ragged"), "decode"))
	assert.Equal(t, ErrCodeInvalidPayload, GetCode(err))
	assert.Equal(t, Code(""), GetCode(errors.New("plain")))
	assert.Equal(t, Code(""), GetCode(nil))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{New(ErrCodeInvalidOrdering, "x"), http.StatusBadRequest},
		{New(ErrCodeInvalidPartition, "x"), http.StatusBadRequest},
		{New(ErrCodeSessionNotFound, "x"), http.StatusNotFound},
		{New(ErrCodeDatasetNotFound, "x"), http.StatusNotFound},
		{New(ErrCodeInvalidMatrix, "x"), http.StatusBadGateway},
		{New(ErrCodeNetwork, "x"), http.StatusBadGateway},
		{New(ErrCodeTimeout, "x"), http.StatusGatewayTimeout},
		{New(ErrCodeUnsupported, "x"), http.StatusNotImplemented},
		{New(ErrCodeInternal, "x"), http.StatusInternalServerError},
		{New(Code("SOMETHING_NEW"), "x"), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "network 4 has no nodes", UserMessage(New(ErrCodeInvalidInput, "network 4 has no nodes")))
	assert.Equal(t, "decode", UserMessage(fmt.Errorf("x: %w", Wrap(ErrCodeInvalidPayload, errors.New("eof"), "decode"))))
	assert.Equal(t, "plain error", UserMessage(errors.New("plain error")))
}

func TestStatusLine(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{Wrap(ErrCodeNetwork, errors.New("refused"), "fetch graph 3"), "provider error: fetch graph 3"},
		{New(ErrCodeTimeout, "fetch meta 1"), "timed out: fetch meta 1"},
		{New(ErrCodeInvalidInput, "cluster 0 is not foldable"), "invalid input: cluster 0 is not foldable"},
		{New(ErrCodeItemNotFound, "network 99"), "not found: network 99"},
		{errors.New("plain"), "plain"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusLine(tt.err))
	}
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(New(ErrCodeNetwork, "connection refused")))
	assert.True(t, IsTransient(Wrap(ErrCodeTimeout, errors.New("deadline"), "fetch meta")))
	assert.False(t, IsTransient(New(ErrCodeInvalidPayload, "bad json")))
	assert.False(t, IsTransient(errors.New("plain")))
	assert.False(t, IsTransient(nil))
}
