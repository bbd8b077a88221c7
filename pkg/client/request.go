package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/lightforgemedia/go-highrise/pkg/model"
)

// Request sends req under a fresh correlation id and waits for the message
// answering it. A server *model.Error is returned as the response, not as
// the error; use RequestAs to get it as an error.
//
// The wait ends with ErrRequestTimeout after the client's request timeout,
// with ctx's error when ctx ends first, or with ErrClosed when the client
// is closed. In every case the id is no longer pending on return.
func (c *Client) Request(ctx context.Context, req model.CorrelatedOutgoing) (model.Incoming, error) {
	if model.IsNil(req) {
		return nil, errors.New("highrise: nil request")
	}
	if c.closed.Load() {
		return nil, ErrClosed
	}
	if c.config.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeoutCause(ctx, c.config.requestTimeout, ErrRequestTimeout)
		defer cancel()
	}

	id, fut := c.registry.Register()
	req.SetRequestID(id)

	if err := c.Send(ctx, req); err != nil {
		c.registry.Cancel(id)
		return nil, err
	}

	resp, err := fut.Wait(ctx)
	if err != nil {
		c.registry.Cancel(id)
		c.logger.Debug("Request abandoned", "rid", id, "kind", req.Kind(), "error", err)
		return nil, err
	}
	return resp, nil
}

// RequestAs sends req and asserts the response is a T. A *model.Error
// response is returned as the error; any other variant yields
// ErrUnexpectedResponse.
func RequestAs[T model.Incoming](ctx context.Context, c *Client, req model.CorrelatedOutgoing) (T, error) {
	var zero T
	resp, err := c.Request(ctx, req)
	if err != nil {
		return zero, err
	}
	if perr, ok := resp.(*model.Error); ok {
		return zero, perr
	}
	typed, ok := resp.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s answered with %s", ErrUnexpectedResponse, req.Kind(), resp.Kind())
	}
	return typed, nil
}
