package directus

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fivetwenty-io/directus-sdk/internal/constants"
)

// BatchOperation is one independent unit of work.
type BatchOperation struct {
	ID string
	Do func(ctx context.Context) (any, error)
}

// BatchResult is the outcome of one operation.
type BatchResult struct {
	ID       string
	Success  bool
	Data     any
	Error    error
	Duration time.Duration
}

// BatchSummary aggregates a batch run.
type BatchSummary struct {
	Results   []BatchResult
	Succeeded int
	Failed    int
	Duration  time.Duration
}

// Errors returns the errors of failed operations.
func (s *BatchSummary) Errors() []error {
	var errs []error

	for _, r := range s.Results {
		if r.Error != nil {
			errs = append(errs, r.Error)
		}
	}

	return errs
}

// RunBatch runs ops with at most concurrency in flight. Operation failures
// are reported per result and never cancel the other operations. Results
// keep the order of ops.
func RunBatch(ctx context.Context, ops []BatchOperation, concurrency int) *BatchSummary {
	if concurrency <= 0 {
		concurrency = constants.DefaultConcurrencyLimit
	}

	start := time.Now()
	results := make([]BatchResult, len(ops))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(concurrency)

	for i, op := range ops {
		group.Go(func() error {
			opStart := time.Now()
			data, err := op.Do(groupCtx)
			results[i] = BatchResult{
				ID:       op.ID,
				Success:  err == nil,
				Data:     data,
				Error:    err,
				Duration: time.Since(opStart),
			}

			return nil
		})
	}

	_ = group.Wait()

	summary := &BatchSummary{Results: results, Duration: time.Since(start)}

	for _, r := range results {
		if r.Success {
			summary.Succeeded++
		} else {
			summary.Failed++
		}
	}

	return summary
}
