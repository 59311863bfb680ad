// Package providers defines the provider-agnostic abstraction for LLM
// backends and a base HTTP implementation shared by concrete adapters.
//
// A Provider wraps one chat-completion endpoint (an OpenAI-compatible API in
// this deployment) and exposes two entry points:
//
//   - SendCompletion: a single blocking request, used for internal
//     meta-requests such as prompt rewriting.
//   - StreamCompletion: a streaming request yielding incremental text
//     fragments over a channel until the upstream stream ends.
//
// Providers perform no retries. A failed or timed-out call surfaces as a
// single *BackendError; failover across backends is the responsibility of
// pkg/routing, which owns the consecutive-error accounting.
package providers
