// Package shutdown provides graceful process termination.
//
// A Handler waits for SIGINT or SIGTERM and runs registered cleanup
// hooks in reverse order of registration, bounded by a timeout.
//
// Usage:
//
//	h := shutdown.NewHandler(30 * time.Second)
//	h.OnShutdown(func(ctx context.Context) error { return srv.Shutdown(ctx) })
//	err := h.Wait()
package shutdown
