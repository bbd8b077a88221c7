package client

import (
	"log/slog"
	"time"
)

const defaultRequestTimeout = 30 * time.Second

type clientConfig struct {
	logger         *slog.Logger
	requestTimeout time.Duration // <= 0 waits until the caller's ctx ends
	failurePolicy  FailurePolicy
	registry       *Registry
	tap            *Tap
}

func defaultConfig() clientConfig {
	return clientConfig{
		logger:         slog.Default(),
		requestTimeout: defaultRequestTimeout,
		failurePolicy:  FailureLog,
	}
}

// Option configures a Client.
type Option func(*clientConfig)

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(logger *slog.Logger) Option {
	return func(c *clientConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRequestTimeout bounds how long a correlated request waits for its
// response. timeout <= 0 disables the bound; the call then waits until its
// context ends.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(c *clientConfig) {
		c.requestTimeout = timeout
	}
}

// WithFailurePolicy sets what a failing handler or callback does.
func WithFailurePolicy(policy FailurePolicy) Option {
	return func(c *clientConfig) {
		c.failurePolicy = policy
	}
}

// WithRegistry makes the client correlate requests through r instead of a
// fresh registry.
func WithRegistry(r *Registry) Option {
	return func(c *clientConfig) {
		if r != nil {
			c.registry = r
		}
	}
}

// WithEventTap publishes every routed incoming message on t.
func WithEventTap(t *Tap) Option {
	return func(c *clientConfig) {
		c.tap = t
	}
}
