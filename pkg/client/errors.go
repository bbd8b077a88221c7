package client

import "errors"

var (
	// ErrRequestTimeout is returned when a correlated request gets no
	// response within the client's request timeout.
	ErrRequestTimeout = errors.New("highrise: request timed out")
	// ErrUnexpectedResponse is returned when a request is answered with a
	// variant other than the one it expects.
	ErrUnexpectedResponse = errors.New("highrise: unexpected response")
	// ErrClosed is returned by calls made on, or pending in, a closed client.
	ErrClosed = errors.New("highrise: client closed")
	// ErrHandlerPanic wraps a panic recovered from a handler or callback.
	ErrHandlerPanic = errors.New("highrise: handler panicked")
)
