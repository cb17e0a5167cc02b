// Package shutdown coordinates graceful process termination.
//
// A Handler waits for SIGINT/SIGTERM, cancellation of a parent context or
// an explicit Trigger, then runs the registered hooks in reverse order
// under a shared deadline:
//
//	h := shutdown.NewHandler(10 * time.Second)
//	h.OnShutdown(srv.Shutdown)
//	if err := h.Wait(ctx); err != nil { ... }
package shutdown
