// Package async runs fire-and-forget background work.
//
// Services that trigger background tasks (cache warming after a catalog
// write, cache invalidation after a delete) depend on the Executor
// interface rather than spawning goroutines directly. Production wiring
// uses GoroutineExecutor, which detaches the task from the request context,
// enforces a timeout, recovers panics and logs failures. Tests inject
// SyncExecutor so the "background" work completes before the assertion
// runs.
//
// Example:
//
//	exec := async.NewGoroutineExecutor(30*time.Second, logger)
//	exec.Go(r.Context(), "catalog cache fill", func(ctx context.Context) error {
//	    return cache.Fill(ctx, repo)
//	})
package async
