// Package orchestrator drives one chat request end to end: session
// validation, prompt resolution, optional knowledge retrieval, history
// truncation, the streaming backend call, and server-side finalization.
//
// Each request runs an independent state machine
// (Received → Validated → Streaming → Finalizing → Closed|Error).
// Multi-turn requests on the same session id are serialized through the
// session's mutex, held from the user-turn append until finalization, so
// racing requests cannot interleave their history appends.
//
// Finalization (closing detection and the assistant-turn append) runs on
// the server side exactly once when the upstream stream ends, decoupled
// from whether the client is still reading. A client disconnect cancels
// the upstream read but work already done is kept: whatever text
// accumulated before cancellation is finalized normally.
package orchestrator
