// SPDX-License-Identifier: MPL-2.0

package reconcile

import (
	"context"
	"errors"
	"testing"

	"github.com/afterhash/afterhash/pkg/build"
)

type panickingFingerprinter struct{}

func (panickingFingerprinter) Compute([]byte) string { panic("boom") }

func TestAfterEmitSignalsOnce(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "[name].[chunkhash:8].js", "[id].[chunkhash:8].js",
		[]build.BuildUnit{appUnit()},
		map[string]string{"app.abcdef12.js": "APP"},
	)
	r := f.reconciler(t, WithFingerprinter(&fakeFingerprinter{fallback: "11223344aabbccdd"}))

	calls := 0
	var gotRes *Result
	var gotErr error
	AfterEmit(context.Background(), r, func(res *Result, err error) {
		calls++
		gotRes, gotErr = res, err
	})

	if calls != 1 {
		t.Fatalf("done called %d times, want 1", calls)
	}
	if gotErr != nil {
		t.Fatalf("done error: %v", gotErr)
	}
	if gotRes == nil || len(gotRes.Plans) != 1 {
		t.Errorf("unexpected result: %+v", gotRes)
	}
}

func TestAfterEmitReportsFailure(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "[name].js", "[id].js", nil, nil)
	r := f.reconciler(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	AfterEmit(ctx, r, func(_ *Result, err error) {
		calls++
		if !errors.Is(err, context.Canceled) {
			t.Errorf("done error = %v, want context.Canceled", err)
		}
	})
	if calls != 1 {
		t.Fatalf("done called %d times, want 1", calls)
	}
}

func TestAfterEmitRecoversPanic(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "[name].[chunkhash:8].js", "[id].[chunkhash:8].js",
		[]build.BuildUnit{appUnit()},
		map[string]string{"app.abcdef12.js": "APP"},
	)
	r := f.reconciler(t, WithFingerprinter(panickingFingerprinter{}))

	calls := 0
	AfterEmit(context.Background(), r, func(_ *Result, err error) {
		calls++
		if !errors.Is(err, ErrPanicked) {
			t.Errorf("done error = %v, want ErrPanicked", err)
		}
	})
	if calls != 1 {
		t.Fatalf("done called %d times, want 1", calls)
	}
	if r.Phase() != PhaseFailed {
		t.Errorf("Phase() = %s, want failed", r.Phase())
	}
}
