// Package pipeline composes request handling out of ordered stages. A stage
// either transforms the in-flight value or short-circuits with a terminal
// response; once a terminal is produced no further stage runs. Side-effect
// order (verify, decode, fetch, mutate, notify) is therefore enforced
// structurally, and each stage stays independently testable.
package pipeline

import (
	"context"
	"net/http"
	"time"
)

// Terminal is a finished HTTP response: every failure and every success ends
// in one, so no error crosses the pipeline boundary uncaught.
type Terminal struct {
	Status int
	Body   any
}

// Stage transforms In into Out or short-circuits with a terminal response.
type Stage[In, Out any] func(ctx context.Context, in In) (Out, *Terminal)

// Then chains two stages left-to-right; a terminal from the first skips the
// second.
func Then[A, B, C any](first Stage[A, B], next Stage[B, C]) Stage[A, C] {
	return func(ctx context.Context, in A) (C, *Terminal) {
		mid, terminal := first(ctx, in)
		if terminal != nil {
			var zero C
			return zero, terminal
		}
		return next(ctx, mid)
	}
}

// Halt builds a short-circuit result for a stage.
func Halt[Out any](status int, body any) (Out, *Terminal) {
	var zero Out
	return zero, &Terminal{Status: status, Body: body}
}

// RunWithTimeout races a stage against the response budget. On expiry the
// in-flight work is abandoned, not cancelled: a collaborator call already
// issued may still take effect even though the caller sees the timeout
// terminal.
func RunWithTimeout[In, Out any](ctx context.Context, budget time.Duration, stage Stage[In, Out], in In, timeoutBody any) (Out, *Terminal) {
	type result struct {
		out      Out
		terminal *Terminal
	}

	done := make(chan result, 1)
	go func() {
		out, terminal := stage(ctx, in)
		done <- result{out: out, terminal: terminal}
	}()

	timer := time.NewTimer(budget)
	defer timer.Stop()

	select {
	case r := <-done:
		return r.out, r.terminal
	case <-ctx.Done():
		return Halt[Out](http.StatusInternalServerError, timeoutBody)
	case <-timer.C:
		return Halt[Out](http.StatusInternalServerError, timeoutBody)
	}
}
