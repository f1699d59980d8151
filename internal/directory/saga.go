package directory

import (
	"context"
	"errors"
)

// Saga collects the compensations of directory writes that ran outside the
// caller's SQL transaction, so they can be undone if that transaction fails.
// It is not safe for concurrent use.
type Saga struct {
	steps []func(context.Context) error
}

// Track records the compensation of res. Writes that joined the caller's
// transaction carry none and are ignored.
func (s *Saga) Track(res *WriteResult) {
	if res != nil && res.Compensate != nil {
		s.steps = append(s.steps, res.Compensate)
	}
}

func (s *Saga) Len() int {
	return len(s.steps)
}

// Compensate undoes the tracked writes newest first. It runs every step even
// when one fails and detaches from ctx cancellation.
func (s *Saga) Compensate(ctx context.Context) error {
	ctx = context.WithoutCancel(ctx)
	var errs []error
	for i := len(s.steps) - 1; i >= 0; i-- {
		if err := s.steps[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	s.steps = nil
	return errors.Join(errs...)
}
