// Package openai implements the providers.Provider interface for
// OpenAI-compatible chat completion APIs.
//
// Both configured backends of the gateway (the local inference endpoint and
// the large hosted endpoint) speak this wire format, so a single adapter
// covers them; only base URL, credential and default model differ.
//
// Streaming uses Server-Sent Events: lines prefixed "data: " carrying JSON
// chunks, terminated by the "[DONE]" sentinel.
package openai
