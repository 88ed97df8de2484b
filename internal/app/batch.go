package app

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// DefaultBatchLimit bounds concurrent requests in a batch delete.
const DefaultBatchLimit = 4

// ItemError is one failed item of a batch.
type ItemError struct {
	ID  int64
	Err error
}

// BatchError reports a partially failed batch. Items that succeeded stay
// applied; there is no rollback.
type BatchError struct {
	Total     int
	Succeeded []int64
	Failed    []ItemError
}

func (e *BatchError) Error() string {
	ids := make([]string, len(e.Failed))
	for i, f := range e.Failed {
		ids[i] = fmt.Sprintf("%d (%v)", f.ID, f.Err)
	}
	return fmt.Sprintf("%d of %d deletions failed: %s", len(e.Failed), e.Total, strings.Join(ids, ", "))
}

// Unwrap exposes the individual failures to errors.Is/As.
func (e *BatchError) Unwrap() []error {
	errs := make([]error, len(e.Failed))
	for i, f := range e.Failed {
		errs[i] = f.Err
	}
	return errs
}

// runBatch calls fn for every id concurrently, at most limit at a time, and
// waits for all of them. A failure never cancels the others. It returns the
// ids that succeeded and a *BatchError when any failed.
func runBatch(ctx context.Context, ids []int64, limit int, fn func(context.Context, int64) error) ([]int64, error) {
	if limit < 1 {
		limit = DefaultBatchLimit
	}
	var (
		mu     sync.Mutex
		ok     []int64
		failed []ItemError
	)
	var g errgroup.Group
	g.SetLimit(limit)
	for _, id := range ids {
		g.Go(func() error {
			err := fn(ctx, id)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed = append(failed, ItemError{ID: id, Err: err})
			} else {
				ok = append(ok, id)
			}
			return nil // non-fatal
		})
	}
	_ = g.Wait()

	sort.Slice(ok, func(i, j int) bool { return ok[i] < ok[j] })
	if len(failed) == 0 {
		return ok, nil
	}
	sort.Slice(failed, func(i, j int) bool { return failed[i].ID < failed[j].ID })
	return ok, &BatchError{Total: len(ids), Succeeded: ok, Failed: failed}
}
