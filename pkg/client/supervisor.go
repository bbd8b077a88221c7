package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// FailurePolicy decides what a failed handler or callback does to the
// session.
type FailurePolicy int

const (
	// FailureLog logs the failure and keeps the session running.
	FailureLog FailurePolicy = iota
	// FailureFatal cancels the session; Wait returns the first failure.
	FailureFatal
)

func (p FailurePolicy) String() string {
	switch p {
	case FailureLog:
		return "log"
	case FailureFatal:
		return "fatal"
	default:
		return fmt.Sprintf("FailurePolicy(%d)", int(p))
	}
}

// ParseFailurePolicy maps "log" and "fatal" to their policies.
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch s {
	case "", "log":
		return FailureLog, nil
	case "fatal":
		return FailureFatal, nil
	default:
		return FailureLog, fmt.Errorf("highrise: unknown failure policy %q", s)
	}
}

// supervisor runs handler invocations and delayed callbacks under one
// cancellable context.
type supervisor struct {
	ctx    context.Context
	cancel context.CancelFunc
	group  *errgroup.Group
	policy FailurePolicy
	logger *slog.Logger
}

func newSupervisor(parent context.Context, policy FailurePolicy, logger *slog.Logger) *supervisor {
	ctx, cancel := context.WithCancel(parent)
	group, gctx := errgroup.WithContext(ctx)
	return &supervisor{
		ctx:    gctx,
		cancel: cancel,
		group:  group,
		policy: policy,
		logger: logger,
	}
}

// Go starts fn as a supervised task. Tasks started after the supervisor
// is done are dropped.
func (s *supervisor) Go(name string, fn func(context.Context) error) {
	if s.ctx.Err() != nil {
		s.logger.Debug("Dropping task, session is done", "task", name)
		return
	}
	s.group.Go(func() error {
		err := s.run(fn)
		if err == nil {
			return nil
		}
		if s.ctx.Err() != nil && errors.Is(err, context.Canceled) {
			return nil
		}
		if s.policy == FailureFatal {
			s.logger.Error("Task failed, stopping session", "task", name, "error", err)
			return fmt.Errorf("%s: %w", name, err)
		}
		s.logger.Warn("Task failed", "task", name, "error", err)
		return nil
	})
}

func (s *supervisor) run(fn func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrHandlerPanic, r)
		}
	}()
	return fn(s.ctx)
}

func (s *supervisor) Done() <-chan struct{} { return s.ctx.Done() }

func (s *supervisor) Stop() { s.cancel() }

func (s *supervisor) Wait() error {
	err := s.group.Wait()
	s.cancel()
	return err
}
