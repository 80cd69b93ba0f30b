// Package health runs named dependency checks concurrently under a shared
// deadline and aggregates the outcome.
//
//	resp := health.Run(ctx, health.Checks{
//	    "storage": store.Ping,
//	}, health.WithTimeout(3*time.Second))
//	if resp.Status == health.StatusUnhealthy {
//	    // resp.Checks["storage"].Error explains why
//	}
//
// A failing check never cancels the others. A check still running at the
// deadline is reported with ErrCheckTimeout. The HTTP server renders the
// Response as JSON on /readyz.
package health
