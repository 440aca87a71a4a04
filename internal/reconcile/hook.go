// SPDX-License-Identifier: MPL-2.0

package reconcile

import (
	"context"
	"errors"
	"fmt"
)

// ErrPanicked wraps a panic recovered from a run.
var ErrPanicked = errors.New("reconciliation panicked")

// AfterEmit runs r as the host's post-emit callback. done is invoked exactly
// once with the outcome, including when the run panics.
func AfterEmit(ctx context.Context, r *Reconciler, done func(*Result, error)) {
	var (
		res *Result
		err error
	)
	defer func() {
		if p := recover(); p != nil {
			r.fail()
			err = fmt.Errorf("%w: %v", ErrPanicked, p)
		}
		done(res, err)
	}()

	res, err = r.Run(ctx)
}
