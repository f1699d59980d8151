package testutil

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	dErrors "unitgate/pkg/domain-errors"
	"unitgate/pkg/platform/sentinel"
)

// ConcurrentResult tracks outcomes of concurrent test operations.
type ConcurrentResult struct {
	Successes int32
	Errors    int32
	Conflicts int32
	NotFounds int32
}

func (r *ConcurrentResult) Total() int32 {
	return r.Successes + r.Errors + r.Conflicts + r.NotFounds
}

// IsConflict reports whether err means "someone else won the race": a
// conflict or already-used domain error, or a lost compare-and-set.
func IsConflict(err error) bool {
	return dErrors.HasCode(err, dErrors.CodeConflict) ||
		dErrors.HasCode(err, dErrors.CodeAlreadyUsed) ||
		errors.Is(err, sentinel.ErrInvalidState) ||
		errors.Is(err, sentinel.ErrAlreadyUsed)
}

func isNotFound(err error) bool {
	return dErrors.HasCode(err, dErrors.CodeNotFound) || errors.Is(err, sentinel.ErrNotFound)
}

// RunConcurrent executes fn in parallel goroutines released together and
// buckets the outcomes.
func RunConcurrent(goroutines int, fn func(idx int) error) *ConcurrentResult {
	var wg sync.WaitGroup
	var successes, errs, conflicts, notFounds atomic.Int32
	start := make(chan struct{})

	for i := range goroutines {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			<-start
			err := fn(idx)
			switch {
			case err == nil:
				successes.Add(1)
			case IsConflict(err):
				conflicts.Add(1)
			case isNotFound(err):
				notFounds.Add(1)
			default:
				errs.Add(1)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	return &ConcurrentResult{
		Successes: successes.Load(),
		Errors:    errs.Load(),
		Conflicts: conflicts.Load(),
		NotFounds: notFounds.Load(),
	}
}

func RunConcurrentCtx(ctx context.Context, goroutines int, fn func(ctx context.Context, idx int) error) *ConcurrentResult {
	return RunConcurrent(goroutines, func(idx int) error {
		return fn(ctx, idx)
	})
}
