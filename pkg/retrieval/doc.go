// Package retrieval is the client for the external knowledge-retrieval
// service. Retrieval is best-effort: a failed or timed-out lookup degrades
// to "no knowledge" upstream and never aborts the chat request.
package retrieval
