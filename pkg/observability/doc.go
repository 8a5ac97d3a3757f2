/*
Package observability turns engine lifecycle events into Prometheus metrics
and structured log lines.

Both are delivered as domain.LifecycleHooks, so they plug into a Manager with
xcallback.WithLifecycleHooks and can be stacked with Combine.
*/
package observability
