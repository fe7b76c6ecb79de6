package tasks

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/time/rate"

	"github.com/desertthunder/wrapped/internal/models"
	"github.com/desertthunder/wrapped/internal/shared"
)

// GenerateOpts contains configuration for generating several snapshots at once.
type GenerateOpts struct {
	NumWorkers int     // Concurrent workers (default: 3)
	RateLimit  float64 // Requests per second (default: 2)
}

// GenerateResult is the outcome for a single term.
type GenerateResult struct {
	Term     models.Term
	Snapshot *models.Snapshot // nil on failure
	Error    error
}

// BulkGenerateResult summarizes a [WrappedEngine.GenerateMany] run. Results are in completion order.
type BulkGenerateResult struct {
	Total     int
	Succeeded int
	Failed    int
	Results   []GenerateResult
}

// GenerateMany generates one snapshot per term concurrently, paced by a rate limiter.
//
// Each snapshot is appended to the collection when its request completes, so the collection ends up in
// completion order. Without a linked account it returns [shared.ErrNotLinked] and makes no request.
func (e *WrappedEngine) GenerateMany(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	terms []models.Term,
	opts GenerateOpts,
) (*BulkGenerateResult, error) {
	if e.session == nil || e.snapshots == nil {
		return nil, fmt.Errorf("%w: engine not initialized", shared.ErrServiceUnavailable)
	}
	if len(terms) == 0 {
		return nil, fmt.Errorf("%w: at least one term is required", shared.ErrMissingArgument)
	}
	if !e.session.CanGenerate() {
		return nil, shared.ErrNotLinked
	}

	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 3
	}
	if opts.NumWorkers > len(models.Terms()) {
		opts.NumWorkers = len(models.Terms())
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 2.0
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan models.Term, len(terms))
	results := make(chan GenerateResult, len(terms))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.generateWorker(ctx, &wg, jobs, results)
	}

	go func() {
		defer close(jobs)
		for i, term := range terms {
			select {
			case <-ctx.Done():
				return
			default:
			}

			if err := limiter.Wait(ctx); err != nil {
				return
			}

			jobs <- term
			e.sendProgress(prog, generatingUpdate(i+1, len(terms), term))
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	result := &BulkGenerateResult{Total: len(terms), Results: make([]GenerateResult, 0, len(terms))}

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Error == nil {
			result.Succeeded++
			e.sendProgress(prog, generateCompletedUpdate(completed, len(terms), res.Snapshot))
		} else {
			result.Failed++
			e.logger.Error("failed to generate snapshot", "term", res.Term, "error", res.Error)
			e.sendProgress(prog, generateFailedUpdate(completed, len(terms), res.Term, res.Error))
		}
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

func (e *WrappedEngine) generateWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan models.Term,
	results chan<- GenerateResult,
) {
	defer wg.Done()

	for term := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		snap, err := e.snapshots.Generate(ctx, term)
		results <- GenerateResult{Term: term, Snapshot: snap, Error: err}
	}
}
