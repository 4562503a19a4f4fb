package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/kayz/osprey/internal/classify"
	"github.com/kayz/osprey/internal/logger"
)

// ProgressFunc observes each completed extractor invocation. done counts
// completed invocations, total the planned batch size.
type ProgressFunc func(done, total int, res Result)

// Dispatcher fans a query out to every extractor matching its tags. One
// extractor failing, even by panicking, never aborts the rest of the batch.
type Dispatcher struct {
	registry *Registry
}

func NewDispatcher(registry *Registry) *Dispatcher {
	return &Dispatcher{registry: registry}
}

// Registry returns the service registry behind this dispatcher.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// invocation is one planned (service, tag) pair.
type invocation struct {
	service Service
	tag     classify.Tag
}

// plan resolves tags to services, preserving (tag order, registration
// order).
func (d *Dispatcher) plan(tags []classify.Tag) []invocation {
	var plan []invocation
	for _, tag := range tags {
		for _, svc := range d.registry.ForTag(tag) {
			plan = append(plan, invocation{service: svc, tag: tag})
		}
	}
	return plan
}

// Run executes the batch sequentially and returns every result, including
// failures. An empty or nil tag list yields an empty batch. Context
// cancellation between invocations abandons the remainder; the partial
// batch collected so far is returned and remains valid.
func (d *Dispatcher) Run(ctx context.Context, query string, tags []classify.Tag) []Result {
	return d.RunWithProgress(ctx, query, tags, nil)
}

// RunWithProgress is Run with a per-invocation observer, used by the web
// front end to stream live results.
func (d *Dispatcher) RunWithProgress(ctx context.Context, query string, tags []classify.Tag, progress ProgressFunc) []Result {
	plan := d.plan(tags)
	results := make([]Result, 0, len(plan))

	for i, inv := range plan {
		if ctx.Err() != nil {
			logger.Warnf("dispatch: batch for %q abandoned after %d/%d invocations", query, i, len(plan))
			break
		}
		res := d.invoke(ctx, inv, query)
		results = append(results, res)
		if progress != nil {
			progress(len(results), len(plan), res)
		}
	}
	return results
}

// RunParallel executes the batch over a bounded worker pool. The failure
// isolation contract is unchanged and the output keeps the same stable
// (tag order, registration order) ordering as Run.
func (d *Dispatcher) RunParallel(ctx context.Context, query string, tags []classify.Tag, workers int) []Result {
	plan := d.plan(tags)
	if len(plan) == 0 {
		return []Result{}
	}
	if workers < 1 {
		workers = 1
	}
	if workers > len(plan) {
		workers = len(plan)
	}

	results := make([]Result, len(plan))
	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = d.invoke(ctx, plan[i], query)
			}
		}()
	}

	for i := range plan {
		if ctx.Err() != nil {
			// Mark the rest abandoned rather than leaving zero records.
			for j := i; j < len(plan); j++ {
				results[j] = failed(plan[j].service.Name(), query, plan[j].tag, ctx.Err().Error())
			}
			break
		}
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}

// invoke runs one extractor, converting a panic into a failed result so a
// single broken extractor cannot take the batch down.
func (d *Dispatcher) invoke(ctx context.Context, inv invocation, query string) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("dispatch: %s panicked on %q: %v", inv.service.Name(), query, r)
			res = failed(inv.service.Name(), query, inv.tag, fmt.Sprintf("extractor panic: %v", r))
		}
	}()
	return inv.service.Search(ctx, query, inv.tag)
}
