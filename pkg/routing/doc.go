// Package routing owns the active-backend choice between the two configured
// LLM backends ("primary" and "secondary") and the consecutive-error
// accounting that drives automatic failover.
//
// The router is process-wide shared state: a failover triggered by one
// request affects every request that follows. It is injected into the
// request path rather than accessed as an ambient global, and all state is
// guarded by a single mutex. A race that double-switches backends is
// harmless (the outcome is idempotent); lost counter updates are not, so
// every mutation takes the lock.
//
// Failover is a hard threshold, not a backoff scheme: the second
// consecutive failure on the active backend swaps the active slot and
// clears both counters. There is no automatic retry of the failed request
// itself; the caller observes the failure and may resubmit.
package routing
