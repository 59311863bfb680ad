// Auracall is a streaming conversation gateway for medical voice chat.
//
// It sits between an HTTP front end and two OpenAI-compatible LLM
// backends, providing:
//   - Per-session conversation state with automatic history truncation
//   - Token-by-token SSE relaying to clients
//   - Automatic backend failover after consecutive errors
//   - A feedback-driven prompt adaptation loop
//   - Optional knowledge retrieval enrichment
//
// Usage:
//
//	# Start server with default configuration
//	auracall run
//
//	# Start with custom configuration file
//	auracall run --config /path/to/config.yaml
//
//	# Show version information
//	auracall version
package main

func main() {
	Execute()
}
