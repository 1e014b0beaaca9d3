package engine

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
)

// EvalTimeout is the default limit for a single evaluation.
const EvalTimeout = 5 * time.Second

var (
	// ErrTimeout is returned when an evaluation outlives its deadline.
	ErrTimeout = errors.New("evaluation timed out")
	// ErrSuperseded is returned when a newer evaluation started on the same
	// engine before this one finished.
	ErrSuperseded = errors.New("evaluation superseded by newer request")
)

// evalResult passes an evaluation outcome through a channel.
type evalResult struct {
	result EvalResult
	err    error
}

// await returns the result sent on ch once it arrives, unless ctx ends
// first. A result whose generation is no longer latest is discarded.
//
// The evaluating goroutine is not interrupted when ctx ends; its result is
// dropped into the buffered channel and never read.
func await(ctx context.Context, ch <-chan evalResult, gen uint64, latest *atomic.Uint64) (EvalResult, error) {
	select {
	case res := <-ch:
		if latest.Load() != gen {
			return EvalResult{}, ErrSuperseded
		}
		return res.result, res.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return EvalResult{}, ErrTimeout
		}
		return EvalResult{}, ctx.Err()
	}
}
